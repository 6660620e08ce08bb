package directive

import (
	"encoding/json"
	"fmt"
)

// UnknownVersion is reported by Request.Version when neither header carries
// a payloadVersion.
const UnknownVersion = "-1"

// Request is an inbound directive message.
type Request struct {
	Directive Body `json:"directive"`

	// Header is the legacy top-level header. Only its payloadVersion is read.
	Header *Header `json:"header,omitempty"`
}

// Body is the "directive" object of a request.
type Body struct {
	Header   Header          `json:"header"`
	Endpoint *Endpoint       `json:"endpoint,omitempty"`
	Payload  json.RawMessage `json:"payload,omitempty"`
}

// Header identifies a directive.
type Header struct {
	Namespace        string  `json:"namespace,omitempty"`
	Name             string  `json:"name,omitempty"`
	PayloadVersion   *string `json:"payloadVersion,omitempty"`
	MessageID        string  `json:"messageId,omitempty"`
	CorrelationToken string  `json:"correlationToken,omitempty"`
}

// Endpoint is the device a directive targets.
type Endpoint struct {
	EndpointID string          `json:"endpointId"`
	Scope      json.RawMessage `json:"scope,omitempty"`
	Cookie     json.RawMessage `json:"cookie,omitempty"`
}

// ParseRequest decodes a directive from JSON.
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	return &req, nil
}

// Version returns the payload version from directive.header, falling back
// to the legacy top-level header, and finally to UnknownVersion. Only an
// absent payloadVersion key falls through; an empty string is returned as is
// and fails the version gate.
func (r *Request) Version() string {
	if v := r.Directive.Header.PayloadVersion; v != nil {
		return *v
	}
	if r.Header != nil && r.Header.PayloadVersion != nil {
		return *r.Header.PayloadVersion
	}
	return UnknownVersion
}

// Name returns the directive name, e.g. "TurnOn".
func (r *Request) Name() string { return r.Directive.Header.Name }

// Namespace returns the directive namespace, e.g. "Alexa.PowerController".
func (r *Request) Namespace() string { return r.Directive.Header.Namespace }

// CorrelationToken returns the token to echo in the response, if any.
func (r *Request) CorrelationToken() string { return r.Directive.Header.CorrelationToken }

// EndpointID returns the target endpoint id, or "" when absent.
func (r *Request) EndpointID() string {
	if r.Directive.Endpoint == nil {
		return ""
	}
	return r.Directive.Endpoint.EndpointID
}

func (r *Request) requireEndpoint() (string, error) {
	id := r.EndpointID()
	if id == "" {
		return "", fmt.Errorf("%w: %s requires directive.endpoint.endpointId", ErrMissingEndpoint, r.Name())
	}
	return id, nil
}
