// Package influxdb mirrors plant readings and watering demands into
// InfluxDB v2 for dashboards.
//
// Client wraps the official influxdb-client-go v2 library with batched,
// non-blocking writes. Sink adapts it to the reading and demand listener
// contracts so it can be registered on the aggregator and the sprinkler.
//
// # Measurements
//
//	plant_monitoring,uid=<uid> humidity=<int>,temperature=<float>
//	plant_watering,uid=<uid>   id="<uuid>",count=1i
//
// Absent measurements are left out of the point; a reading with neither
// field produces no point.
//
// # Usage
//
//	client, err := influxdb.Connect(ctx, cfg.InfluxDB)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//	client.SetOnError(func(err error) { logger.Warn("influx write", "error", err) })
//	sink := influxdb.NewSink(client)
package influxdb
