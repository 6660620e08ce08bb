package directive

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/barrymcandrews/aurora-home-skill/internal/colorspace"
	"github.com/barrymcandrews/aurora-home-skill/internal/envelope"
	"github.com/barrymcandrews/aurora-home-skill/internal/gateway"
)

type handlerFunc func(ctx context.Context, req *Request) (envelope.Envelope, error)

// connectivityValue is the value of an Alexa.EndpointHealth connectivity
// property.
type connectivityValue struct {
	Value gateway.Connectivity `json:"value"`
}

// setColorPayload is the payload of Alexa.ColorController/SetColor.
type setColorPayload struct {
	Color *colorspace.HSV `json:"color"`
}

// discoveryPayload is the payload of a Discover.Response.
type discoveryPayload struct {
	Endpoints []gateway.Endpoint `json:"endpoints"`
}

func (r *Router) handlePower(ctx context.Context, req *Request) (envelope.Envelope, error) {
	id, err := req.requireEndpoint()
	if err != nil {
		return envelope.Envelope{}, err
	}

	power := gateway.PowerOff
	if KindOf(req.Name()) == KindTurnOn {
		power = gateway.PowerOn
	}

	if err := r.gateway.SetPower(ctx, id, power); err != nil {
		return envelope.Envelope{}, err
	}

	return r.newEnvelope(envelope.Response).
		AddContext(envelope.PowerState, string(power)).
		SetEndpoint(id).
		SetCorrelationToken(req.CorrelationToken()).
		Build(), nil
}

func (r *Router) handleSetColor(ctx context.Context, req *Request) (envelope.Envelope, error) {
	id, err := req.requireEndpoint()
	if err != nil {
		return envelope.Envelope{}, err
	}

	var payload setColorPayload
	if len(req.Directive.Payload) > 0 {
		if err := json.Unmarshal(req.Directive.Payload, &payload); err != nil {
			return envelope.Envelope{}, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
		}
	}
	if payload.Color == nil {
		return envelope.Envelope{}, fmt.Errorf("%w: SetColor requires payload.color", ErrInvalidPayload)
	}
	color := *payload.Color

	if err := r.gateway.SetColor(ctx, id, color); err != nil {
		return envelope.Envelope{}, err
	}

	return r.newEnvelope(envelope.Response).
		AddContext(envelope.Color, color).
		SetEndpoint(id).
		SetCorrelationToken(req.CorrelationToken()).
		Build(), nil
}

func (r *Router) handleReportState(ctx context.Context, req *Request) (envelope.Envelope, error) {
	id, err := req.requireEndpoint()
	if err != nil {
		return envelope.Envelope{}, err
	}

	connectivity := r.gateway.ConnectivityStatus(ctx, id)

	if err := r.gateway.RefreshStateCache(ctx); err != nil {
		if connectivity == gateway.ConnectivityOK {
			return envelope.Envelope{}, err
		}
		r.logger.Warn("state refresh failed for unreachable endpoint",
			"endpoint", id,
			"error", err,
		)
	}

	b := r.newEnvelope(envelope.StateReport).
		AddContext(envelope.Connectivity, connectivityValue{Value: connectivity})

	if connectivity == gateway.ConnectivityOK {
		b.AddContext(envelope.PowerState, string(r.gateway.PowerOf(id)))
		b.AddContext(envelope.Color, r.gateway.ColorOf(id))
	}

	return b.SetEndpoint(id).
		SetCorrelationToken(req.CorrelationToken()).
		Build(), nil
}

func (r *Router) handleAcceptGrant(_ context.Context, _ *Request) (envelope.Envelope, error) {
	return r.newEnvelope(envelope.AcceptGrant).Build(), nil
}

func (r *Router) handleDiscover(ctx context.Context, _ *Request) (envelope.Envelope, error) {
	endpoints, err := r.gateway.ListEndpoints(ctx)
	if err != nil {
		return envelope.Envelope{}, err
	}
	if endpoints == nil {
		endpoints = []gateway.Endpoint{}
	}

	return r.newEnvelope(envelope.Discover).
		SetPayload(discoveryPayload{Endpoints: endpoints}).
		Build(), nil
}
