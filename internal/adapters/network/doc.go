// Package network receives plant readings as UDP datagrams.
//
// Each datagram carries one JSON plant message (see adapters.PlantMessage).
// Binding is retried with exponential backoff, since the address may still
// be held by a previous gateway process during a restart.
package network
