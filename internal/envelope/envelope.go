// Package envelope builds the response messages returned for smart-home
// directives.
//
// A Builder is seeded with a ResponseKind, accumulates context properties in
// call order, and produces an Envelope whose JSON form matches the v3 wire
// schema. Building performs no I/O.
package envelope

import (
	"time"

	"github.com/google/uuid"
)

// Placeholder bearer-token scope attached to every endpoint. It is echoed,
// never validated or refreshed.
const (
	ScopeType  = "BearerToken"
	ScopeToken = "access-token-from-Amazon"
)

// UncertaintyMillis is reported with every context property.
const UncertaintyMillis = 500

// TimeOfSampleLayout formats property sample times (UTC) to whole seconds.
// The wire format always carries a literal ".00Z" after the seconds, which
// cannot be written as a Go layout because ".00" is a fractional-second verb.
const TimeOfSampleLayout = "2006-01-02T15:04:05"

const timeOfSampleSuffix = ".00Z"

// FormatTimeOfSample renders t in the timeOfSample wire format,
// e.g. "2026-03-14T09:26:53.00Z". Sub-second precision is dropped.
func FormatTimeOfSample(t time.Time) string {
	return t.UTC().Format(TimeOfSampleLayout) + timeOfSampleSuffix
}

// Envelope is the serialised response. Context is nil, and omitted from
// JSON, when no properties were added.
type Envelope struct {
	Context *Context `json:"context,omitempty"`
	Event   Event    `json:"event"`
}

// Context holds reported properties.
type Context struct {
	Properties []Property `json:"properties"`
}

// Property is a single reported state attribute.
type Property struct {
	Namespace                 string `json:"namespace"`
	Name                      string `json:"name"`
	Value                     any    `json:"value"`
	TimeOfSample              string `json:"timeOfSample"`
	UncertaintyInMilliseconds int    `json:"uncertaintyInMilliseconds"`
}

// Event is the envelope body.
type Event struct {
	Header   Header    `json:"header"`
	Endpoint *Endpoint `json:"endpoint,omitempty"`
	Payload  any       `json:"payload"`
}

// Header identifies the response.
type Header struct {
	Namespace        string `json:"namespace"`
	Name             string `json:"name"`
	PayloadVersion   string `json:"payloadVersion"`
	MessageID        string `json:"messageId"`
	CorrelationToken string `json:"correlationToken,omitempty"`
}

// Endpoint names the device a response is about.
type Endpoint struct {
	Scope      Scope  `json:"scope"`
	EndpointID string `json:"endpointId"`
}

// Scope is the authorisation scope echoed back to the caller.
type Scope struct {
	Type  string `json:"type"`
	Token string `json:"token"`
}

// Option customises a Builder.
type Option func(*Builder)

// WithClock sets the source of property sample times.
func WithClock(now func() time.Time) Option {
	return func(b *Builder) { b.now = now }
}

// WithIDGenerator sets the source of message ids.
func WithIDGenerator(newID func() string) Option {
	return func(b *Builder) { b.newID = newID }
}

// Builder assembles one Envelope. A Builder is not safe for concurrent use.
type Builder struct {
	kind       ResponseKind
	header     Header
	endpoint   *Endpoint
	payload    any
	properties []Property
	now        func() time.Time
	newID      func() string
}

// New starts a response of the given kind with a fresh message id and an
// empty payload.
func New(kind ResponseKind, opts ...Option) *Builder {
	b := &Builder{
		kind:    kind,
		payload: map[string]any{},
		now:     time.Now,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(b)
	}

	b.header = Header{
		Namespace:      kind.Namespace(),
		Name:           kind.String(),
		PayloadVersion: PayloadVersion,
		MessageID:      b.newID(),
	}
	return b
}

// Kind reports the response kind the builder was created with.
func (b *Builder) Kind() ResponseKind { return b.kind }

// AddContext appends a property. Properties keep call order and are never
// deduplicated.
func (b *Builder) AddContext(kind ContextKind, value any) *Builder {
	b.properties = append(b.properties, Property{
		Namespace:                 kind.Namespace(),
		Name:                      kind.String(),
		Value:                     value,
		TimeOfSample:              FormatTimeOfSample(b.now()),
		UncertaintyInMilliseconds: UncertaintyMillis,
	})
	return b
}

// SetCorrelationToken echoes the directive's correlation token.
func (b *Builder) SetCorrelationToken(token string) *Builder {
	b.header.CorrelationToken = token
	return b
}

// SetEndpoint attaches the endpoint with the placeholder scope.
func (b *Builder) SetEndpoint(endpointID string) *Builder {
	b.endpoint = &Endpoint{
		Scope: Scope{
			Type:  ScopeType,
			Token: ScopeToken,
		},
		EndpointID: endpointID,
	}
	return b
}

// SetPayload replaces the event payload.
func (b *Builder) SetPayload(payload any) *Builder {
	b.payload = payload
	return b
}

// Build returns the assembled envelope. The builder may keep being used;
// later calls do not affect envelopes already built.
func (b *Builder) Build() Envelope {
	env := Envelope{
		Event: Event{
			Header:  b.header,
			Payload: b.payload,
		},
	}
	if b.endpoint != nil {
		ep := *b.endpoint
		env.Event.Endpoint = &ep
	}
	if len(b.properties) > 0 {
		env.Context = &Context{
			Properties: append([]Property(nil), b.properties...),
		}
	}
	return env
}

// Properties returns the context properties, or nil when there are none.
func (e Envelope) Properties() []Property {
	if e.Context == nil {
		return nil
	}
	return e.Context.Properties
}

// Property returns the first property with the given kind.
func (e Envelope) Property(kind ContextKind) (Property, bool) {
	for _, p := range e.Properties() {
		if p.Namespace == kind.Namespace() && p.Name == kind.String() {
			return p, true
		}
	}
	return Property{}, false
}
