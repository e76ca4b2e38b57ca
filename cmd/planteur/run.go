package main

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/planteur/planteur-core/internal/adapters"
	"github.com/planteur/planteur-core/internal/adapters/mqttin"
	"github.com/planteur/planteur-core/internal/adapters/network"
	"github.com/planteur/planteur-core/internal/adapters/serial"
	"github.com/planteur/planteur-core/internal/adapters/wired"
	"github.com/planteur/planteur-core/internal/api"
	"github.com/planteur/planteur-core/internal/eventbus"
	"github.com/planteur/planteur-core/internal/infrastructure/config"
	"github.com/planteur/planteur-core/internal/infrastructure/database"
	"github.com/planteur/planteur-core/internal/infrastructure/influxdb"
	"github.com/planteur/planteur-core/internal/infrastructure/logging"
	"github.com/planteur/planteur-core/internal/infrastructure/mqtt"
	"github.com/planteur/planteur-core/internal/monitoring"
	"github.com/planteur/planteur-core/internal/notify"
	"github.com/planteur/planteur-core/internal/plant"
	"github.com/planteur/planteur-core/internal/storage"
	"github.com/planteur/planteur-core/internal/watering"
	"github.com/planteur/planteur-core/migrations"
)

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
//
// Parameters:
//   - ctx: Context cancelled by shutdown signals
//   - configPath: YAML configuration file
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context, configPath string) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting Planteur Core",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log = logging.New(cfg.Logging, version).With("gateway", cfg.Gateway.ID)
	log.Info("configuration loaded", "path", configPath)

	registry, err := plant.LoadFile(cfg.Plants.File)
	if err != nil {
		return fmt.Errorf("loading plants: %w", err)
	}
	if registry.Len() == 0 {
		log.Warn("plant description is empty, every reading will be rejected", "path", cfg.Plants.File)
	}
	log.Info("plant registry loaded", "path", cfg.Plants.File, "plants", registry.Len())

	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	if migrateErr := db.Migrate(ctx, migrations.FS); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database ready", "path", cfg.Database.Path)
	store := storage.NewStore(db.DB)

	promReg := prometheus.NewRegistry()
	promReg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	busMetrics, err := eventbus.NewMetrics(promReg)
	if err != nil {
		return fmt.Errorf("registering bus metrics: %w", err)
	}

	aggregator := monitoring.NewAggregator(registry, monitoring.Options{
		QueueSize: cfg.Bus.ReadingQueueSize,
		Logger:    log.Component("aggregator"),
		Metrics:   busMetrics,
	})
	sprinkler := watering.NewSprinkler(registry, watering.Options{
		QueueSize: cfg.Bus.DemandQueueSize,
		Logger:    log.Component("sprinkler"),
		Metrics:   busMetrics,
	})

	components := map[string]api.HealthChecker{"database": db}
	buses := map[string]api.BusStats{
		monitoring.BusName: aggregator,
		watering.BusName:   sprinkler,
	}

	// Listener order is delivery order: persist first, then decide.
	readingListeners := []namedReadingListener{{"store", store}}
	demandListeners := []namedDemandListener{{"store", store}}

	if cfg.InfluxDB.Enabled {
		influxClient, connErr := influxdb.Connect(ctx, cfg.InfluxDB)
		if connErr != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", connErr)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		log.Info("InfluxDB connected", "url", cfg.InfluxDB.URL, "bucket", cfg.InfluxDB.Bucket)

		sink := influxdb.NewSink(influxClient)
		readingListeners = append(readingListeners, namedReadingListener{"influxdb", sink})
		demandListeners = append(demandListeners, namedDemandListener{"influxdb", sink})
		components["influxdb"] = influxClient
	} else {
		log.Info("InfluxDB disabled")
	}
	readingListeners = append(readingListeners, namedReadingListener{"sprinkler", sprinkler})

	var mqttClient *mqtt.Client
	if cfg.MQTT.Enabled {
		mqttClient, err = mqtt.Connect(cfg.MQTT, mqtt.Identity{
			Gateway:  cfg.Gateway.ID,
			Version:  version,
			Snapshot: gatewaySnapshot(registry, buses),
		})
		if err != nil {
			return fmt.Errorf("connecting to MQTT: %w", err)
		}
		mqttClient.SetLogger(log.Component("mqtt"))
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		mqttClient.SetOnConnect(func() {
			log.Info("MQTT reconnected")
		})
		mqttClient.SetOnDisconnect(func(err error) {
			log.Warn("MQTT disconnected", "error", err)
		})
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
		)
		components["mqtt"] = mqttClient

		if cfg.MQTT.Notify.Enabled {
			notifier := notify.New(mqttClient, notify.Options{
				QoS:              mqttClient.QoS(),
				FailureThreshold: cfg.MQTT.Notify.FailureThreshold,
				OpenTimeout:      cfg.NotifyOpenTimeout(),
				Logger:           log.Component("notify"),
			})
			demandListeners = append(demandListeners, namedDemandListener{"mqtt", notifier})
		}
	} else {
		log.Info("MQTT disabled")
	}

	if err := registerListeners(aggregator, sprinkler, readingListeners, demandListeners); err != nil {
		return err
	}

	// The buses outlive ctx so Stop can drain them after the adapters exit.
	busCtx := context.WithoutCancel(ctx)
	if err := sprinkler.Start(busCtx); err != nil {
		return fmt.Errorf("starting sprinkler: %w", err)
	}
	defer sprinkler.Stop()
	if err := aggregator.Start(busCtx); err != nil {
		return fmt.Errorf("starting aggregator: %w", err)
	}
	defer aggregator.Stop()

	if cfg.HTTP.Enabled {
		server, newErr := api.New(api.Deps{
			Config:     cfg.HTTP,
			Logger:     log.Component("api"),
			Registry:   registry,
			History:    store,
			Components: components,
			Buses:      buses,
			Gatherer:   promReg,
			Version:    version,
		})
		if newErr != nil {
			return fmt.Errorf("creating status server: %w", newErr)
		}
		if startErr := server.Start(ctx); startErr != nil {
			return fmt.Errorf("starting status server: %w", startErr)
		}
		defer func() {
			if closeErr := server.Close(); closeErr != nil {
				log.Error("error closing status server", "error", closeErr)
			}
		}()
	}

	running := buildAdapters(cfg, registry, aggregator, log)
	if cfg.MQTT.Enabled && cfg.MQTT.Ingest {
		running = append(running, mqttin.New(mqttClient, aggregator, mqttin.Options{
			QoS:    mqttClient.QoS(),
			Logger: log.Component("adapter"),
		}))
	}
	if len(running) == 0 {
		log.Warn("no adapters to start; the gateway will not receive readings")
	}

	log.Info("initialisation complete, waiting for shutdown signal", "adapters", len(running))

	// Shutdown order: adapters, then aggregator, then sprinkler. The
	// deferred Stop calls above run in that order once supervise returns.
	if err := supervise(ctx, running, log); err != nil {
		return err
	}

	log.Info("Planteur Core stopped")
	return nil
}

type namedReadingListener struct {
	name     string
	listener monitoring.ReadingListener
}

type namedDemandListener struct {
	name     string
	listener watering.DemandListener
}

func registerListeners(
	aggregator *monitoring.Aggregator,
	sprinkler *watering.Sprinkler,
	readings []namedReadingListener,
	demands []namedDemandListener,
) error {
	for _, l := range readings {
		if err := aggregator.RegisterListener(l.name, l.listener); err != nil {
			return fmt.Errorf("registering reading listener %s: %w", l.name, err)
		}
	}
	for _, l := range demands {
		if err := sprinkler.RegisterListener(l.name, l.listener); err != nil {
			return fmt.Errorf("registering demand listener %s: %w", l.name, err)
		}
	}
	return nil
}

// gatewaySnapshot samples the state published on the MQTT status topic.
func gatewaySnapshot(registry *plant.Registry, buses map[string]api.BusStats) func() mqtt.Snapshot {
	return func() mqtt.Snapshot {
		snap := mqtt.Snapshot{Plants: registry.Len(), Queues: make(map[string]mqtt.QueueStatus, len(buses))}
		for name, b := range buses {
			st := b.Stats()
			snap.Queues[name] = mqtt.QueueStatus{
				Depth:    st.QueueDepth,
				Capacity: st.QueueCapacity,
				Posted:   st.Posted,
			}
		}
		return snap
	}
}

// buildAdapters creates one adapter per transport the registry uses, and
// one wired adapter per wired plant.
func buildAdapters(cfg *config.Config, registry *plant.Registry, poster adapters.Poster, log *logging.Logger) []adapters.Adapter {
	adapterLog := log.Component("adapter")
	var out []adapters.Adapter

	if registry.HasConnection(plant.ConnectionNetwork) {
		out = append(out, network.New(poster, network.Options{
			Host:       cfg.Adapters.Network.Host,
			Port:       cfg.Adapters.Network.Port,
			BufferSize: cfg.Adapters.Network.BufferSize,
			Logger:     adapterLog,
		}))
	}

	if registry.HasConnection(plant.ConnectionSerial) {
		out = append(out, serial.New(poster, registry, serial.Options{
			Port:     cfg.Adapters.Serial.Port,
			BaudRate: cfg.Adapters.Serial.BaudRate,
			Logger:   adapterLog,
		}))
	}

	for _, p := range registry.ByConnection(plant.ConnectionWired) {
		out = append(out, wired.New(poster, p.UID, wired.NewSawtoothSensor(), wired.Options{
			PollInterval: cfg.WiredPollInterval(),
			Logger:       adapterLog,
		}))
	}

	return out
}

// supervise runs every adapter until ctx is cancelled. The first adapter
// failure cancels the others and is returned.
func supervise(ctx context.Context, running []adapters.Adapter, log *logging.Logger) error {
	g, gctx := errgroup.WithContext(ctx)

	for _, a := range running {
		g.Go(func() error {
			log.Info("adapter started", "adapter", a.Name())
			err := a.Run(gctx)
			if err != nil && gctx.Err() == nil {
				log.Error("adapter failed", "adapter", a.Name(), "error", err)
				return fmt.Errorf("adapter %s: %w", a.Name(), err)
			}
			log.Info("adapter stopped", "adapter", a.Name())
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		if ctx.Err() != nil {
			log.Info("shutdown signal received, cleaning up")
		}
		return nil
	})

	return g.Wait()
}
