// Package mqtt provides the gateway's MQTT broker connection.
//
// This package manages:
//   - Connection to the broker with auto-reconnect
//   - Publishing with QoS 0..2 and a 1MB payload cap
//   - Subscriptions that survive reconnects
//   - A retained gateway status with Last Will on planteur/system/status
//
// The client is created once in main and injected into its two users: the
// mqttin adapter, which subscribes to planteur/plant, and the notify sink,
// which publishes demands on planteur/watering. Nothing in the core
// packages imports this one.
//
// # Status
//
// Each (re)connect publishes a retained message such as
//
//	{"gateway":"greenhouse-1","state":"online","version":"1.2.0",
//	 "timestamp":"2026-06-01T08:00:00Z","subscriptions":["planteur/plant"],
//	 "plants":4,"queues":{"readings":{"depth":0,"capacity":256,"posted":912}}}
//
// Close replaces it with state "offline" and reason "graceful_shutdown". If
// the process dies the broker publishes the Last Will instead, with reason
// "unexpected_disconnect".
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT, mqtt.Identity{Gateway: cfg.Gateway.ID})
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	err = client.Publish(mqtt.Topics{}.Watering(), payload, client.QoS(), false)
package mqtt
