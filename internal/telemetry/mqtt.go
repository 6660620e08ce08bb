package telemetry

import (
	"encoding/json"
	"time"

	"github.com/barrymcandrews/aurora-home-skill/internal/directive"
	"github.com/barrymcandrews/aurora-home-skill/internal/envelope"
	"github.com/barrymcandrews/aurora-home-skill/internal/infrastructure/mqtt"
)

// Publisher is the subset of the MQTT client used here.
// *mqtt.Client satisfies it.
type Publisher interface {
	PublishEvent(topic string, payload []byte) error
	PublishRetained(topic string, payload []byte) error
}

// directiveMessage is published on aurora/event/{name}.
type directiveMessage struct {
	Name       string  `json:"name"`
	Namespace  string  `json:"namespace,omitempty"`
	EndpointID string  `json:"endpoint_id,omitempty"`
	Outcome    string  `json:"outcome"`
	DurationMS float64 `json:"duration_ms"`
	Error      string  `json:"error,omitempty"`
	Timestamp  string  `json:"timestamp"`
}

// stateMessage is published retained on aurora/state/{endpointId}.
type stateMessage struct {
	EndpointID   string `json:"endpoint_id"`
	PowerState   any    `json:"power_state,omitempty"`
	Color        any    `json:"color,omitempty"`
	Connectivity any    `json:"connectivity,omitempty"`
	Timestamp    string `json:"timestamp"`
}

// MQTTPublisher publishes an event per directive and, when a response
// reports endpoint properties, the endpoint's latest state.
type MQTTPublisher struct {
	publisher Publisher
	topics    mqtt.Topics
	logger    Logger
	now       func() time.Time
}

// NewMQTTPublisher creates an MQTT observer.
func NewMQTTPublisher(p Publisher, logger Logger) *MQTTPublisher {
	return &MQTTPublisher{
		publisher: p,
		logger:    orNoop(logger),
		now:       time.Now,
	}
}

// ObserveDirective implements directive.Observer.
func (p *MQTTPublisher) ObserveDirective(ev directive.Event) {
	ts := p.now().UTC().Format(time.RFC3339)

	msg := directiveMessage{
		Name:       ev.Kind.String(),
		Namespace:  ev.Namespace,
		EndpointID: ev.EndpointID,
		Outcome:    ev.Outcome,
		DurationMS: float64(ev.Duration) / float64(time.Millisecond),
		Timestamp:  ts,
	}
	if ev.Err != nil {
		msg.Error = ev.Err.Error()
	}

	p.publish(p.topics.Event(msg.Name), msg, false)

	if ev.Envelope == nil || ev.EndpointID == "" {
		return
	}

	state, ok := stateFromEnvelope(ev.EndpointID, *ev.Envelope)
	if !ok {
		return
	}
	state.Timestamp = ts
	p.publish(p.topics.EndpointState(ev.EndpointID), state, true)
}

func (p *MQTTPublisher) publish(topic string, v any, retained bool) {
	payload, err := json.Marshal(v)
	if err != nil {
		p.logger.Warn("encoding mqtt telemetry failed", "topic", topic, "error", err)
		return
	}

	if retained {
		err = p.publisher.PublishRetained(topic, payload)
	} else {
		err = p.publisher.PublishEvent(topic, payload)
	}
	if err != nil {
		p.logger.Warn("publishing mqtt telemetry failed", "topic", topic, "error", err)
	}
}

func stateFromEnvelope(endpointID string, env envelope.Envelope) (stateMessage, bool) {
	state := stateMessage{EndpointID: endpointID}
	found := false

	if prop, ok := env.Property(envelope.PowerState); ok {
		state.PowerState = prop.Value
		found = true
	}
	if prop, ok := env.Property(envelope.Color); ok {
		state.Color = prop.Value
		found = true
	}
	if prop, ok := env.Property(envelope.Connectivity); ok {
		state.Connectivity = prop.Value
		found = true
	}
	return state, found
}
