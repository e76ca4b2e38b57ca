package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/planteur/planteur-core/internal/plant"
)

func newPlantsCmd() *cobra.Command {
	plants := &cobra.Command{
		Use:   "plants",
		Short: "Inspect plant descriptions",
	}
	plants.AddCommand(&cobra.Command{
		Use:   "check <file>",
		Short: "Validate a plant description and print the resulting registry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			registry, err := plant.LoadFile(args[0])
			if err != nil {
				return err
			}
			return printRegistry(cmd.OutOrStdout(), registry)
		},
	})
	return plants
}

// printRegistry writes one aligned row per plant followed by a summary line.
func printRegistry(w io.Writer, registry *plant.Registry) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "UID\tNAME\tCONNECTION\tWATERING\tSERIAL ID")
	for _, p := range registry.Plants() {
		serialID := "-"
		if p.Connection == plant.ConnectionSerial {
			serialID = fmt.Sprintf("%d", p.SerialID)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", p.UID, p.Name, p.Connection, p.Watering, serialID)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if registry.Len() == 0 {
		_, err := fmt.Fprintln(w, "warning: description contains no plants")
		return err
	}
	_, err := fmt.Fprintf(w, "%d plant(s) OK\n", registry.Len())
	return err
}
