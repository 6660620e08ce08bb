// Package mqtt publishes directive telemetry from the Aurora home skill to an
// MQTT broker.
//
// This package manages:
//   - Connection to the broker with auto-reconnect
//   - Message publishing with QoS guarantees
//   - Last Will and Testament (LWT) for offline detection
//   - Connection health monitoring
//
// MQTT is optional. When mqtt.enabled is false the skill never connects and
// directive handling is unaffected.
//
// # Security Considerations
//
//   - Enable TLS (cfg.Broker.TLS=true) for brokers outside the host
//   - Payloads never include the bearer token from the directive scope
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	client.PublishEvent(mqtt.Topics{}.Event("TurnOn"), payload)
package mqtt
