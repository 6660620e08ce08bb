package directive

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/barrymcandrews/aurora-home-skill/internal/colorspace"
	"github.com/barrymcandrews/aurora-home-skill/internal/envelope"
	"github.com/barrymcandrews/aurora-home-skill/internal/gateway"
)

// SupportedVersion is the only payloadVersion the router accepts.
const SupportedVersion = envelope.PayloadVersion

// Gateway is the device/state boundary used by the handlers.
// *gateway.Gateway satisfies it.
type Gateway interface {
	ListEndpoints(ctx context.Context) ([]gateway.Endpoint, error)
	ConnectivityStatus(ctx context.Context, endpointID string) gateway.Connectivity
	RefreshStateCache(ctx context.Context) error
	SetPower(ctx context.Context, endpointID string, power gateway.PowerState) error
	SetColor(ctx context.Context, endpointID string, color colorspace.HSV) error
	ColorOf(endpointID string) colorspace.HSV
	PowerOf(endpointID string) gateway.PowerState
}

// Validator checks a built response against the request that produced it.
type Validator interface {
	Validate(request, response any) error
}

// Observer is notified once per handled or rejected directive.
type Observer interface {
	ObserveDirective(ev Event)
}

// Logger defines the logging interface used by the router.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Outcome labels reported to observers.
const (
	OutcomeSuccess            = "success"
	OutcomeUnhandled          = "unhandled"
	OutcomeUnsupportedVersion = "unsupported_version"
	OutcomeInvalidResponse    = "invalid_response"
	OutcomeError              = "error"
)

// Event describes one processed directive.
type Event struct {
	Kind       Kind
	Name       string
	Namespace  string
	EndpointID string
	Outcome    string
	Duration   time.Duration
	Err        error

	// Envelope is the response, nil unless Outcome is OutcomeSuccess.
	Envelope *envelope.Envelope
}

// Outcome is the result of routing a directive. Handled is false when the
// directive name is not supported; Envelope is then empty and nothing should
// be sent back.
type Outcome struct {
	Kind     Kind
	Handled  bool
	Envelope envelope.Envelope
}

// Options configures a Router.
type Options struct {
	// Validator gates every response. Nil disables validation.
	Validator Validator

	// Observer is notified after every directive. Optional.
	Observer Observer

	// Logger defaults to a no-op logger.
	Logger Logger

	// EnvelopeOptions are applied to every response builder.
	EnvelopeOptions []envelope.Option
}

// Router dispatches directives to handlers.
//
// Thread Safety: Handle may be called concurrently. Dispatch is serialised so
// that each directive sees the gateway caches it refreshed itself; observers
// are notified after the lock is released.
type Router struct {
	gateway   Gateway
	validator Validator
	observer  Observer
	logger    Logger
	envOpts   []envelope.Option
	handlers  map[Kind]handlerFunc

	mu sync.Mutex
}

// NewRouter builds the dispatch table for all supported directives.
func NewRouter(gw Gateway, opts Options) *Router {
	r := &Router{
		gateway:   gw,
		validator: opts.Validator,
		observer:  opts.Observer,
		logger:    opts.Logger,
		envOpts:   opts.EnvelopeOptions,
	}
	if r.logger == nil {
		r.logger = noopLogger{}
	}

	r.handlers = map[Kind]handlerFunc{
		KindTurnOn:      r.handlePower,
		KindTurnOff:     r.handlePower,
		KindSetColor:    r.handleSetColor,
		KindReportState: r.handleReportState,
		KindAcceptGrant: r.handleAcceptGrant,
		KindDiscover:    r.handleDiscover,
	}
	return r
}

// Handle processes one directive.
//
// Steps:
//  1. Reject any payloadVersion other than "3" with ErrUnsupportedVersion.
//  2. Report unsupported directive names as an unhandled Outcome (nil error).
//  3. Run the handler; gateway errors are returned as-is.
//  4. Validate the response; failures wrap ErrInvalidResponse.
func (r *Router) Handle(ctx context.Context, req *Request) (Outcome, error) {
	start := time.Now()
	kind := KindOf(req.Name())

	r.logger.Info("directive received",
		"namespace", req.Namespace(),
		"name", req.Name(),
		"endpoint", req.EndpointID(),
		"message_id", req.Directive.Header.MessageID,
	)

	r.mu.Lock()
	outcome, err := r.dispatch(ctx, req, kind)
	r.mu.Unlock()

	// Observers may block on the network; they run outside the lock.
	r.notify(req, kind, outcome, err, time.Since(start))
	return outcome, err
}

func (r *Router) dispatch(ctx context.Context, req *Request, kind Kind) (Outcome, error) {
	if v := req.Version(); v != SupportedVersion {
		return Outcome{Kind: kind}, fmt.Errorf("%w: %q", ErrUnsupportedVersion, v)
	}

	handler, ok := r.handlers[kind]
	if !ok {
		r.logger.Warn("unsupported directive",
			"namespace", req.Namespace(),
			"name", req.Name(),
		)
		return Outcome{Kind: kind}, nil
	}

	env, err := handler(ctx, req)
	if err != nil {
		return Outcome{Kind: kind}, fmt.Errorf("handling %s: %w", kind, err)
	}

	if r.validator != nil {
		if err := r.validator.Validate(req, env); err != nil {
			return Outcome{Kind: kind}, fmt.Errorf("%w: %s: %w", ErrInvalidResponse, kind, err)
		}
	}

	r.logger.Info("directive handled",
		"name", env.Event.Header.Name,
		"namespace", env.Event.Header.Namespace,
		"message_id", env.Event.Header.MessageID,
		"properties", len(env.Properties()),
	)

	return Outcome{Kind: kind, Handled: true, Envelope: env}, nil
}

func (r *Router) notify(req *Request, kind Kind, outcome Outcome, err error, d time.Duration) {
	if r.observer == nil {
		return
	}

	ev := Event{
		Kind:       kind,
		Name:       req.Name(),
		Namespace:  req.Namespace(),
		EndpointID: req.EndpointID(),
		Duration:   d,
		Err:        err,
	}

	switch {
	case errors.Is(err, ErrUnsupportedVersion):
		ev.Outcome = OutcomeUnsupportedVersion
	case errors.Is(err, ErrInvalidResponse):
		ev.Outcome = OutcomeInvalidResponse
	case err != nil:
		ev.Outcome = OutcomeError
	case !outcome.Handled:
		ev.Outcome = OutcomeUnhandled
	default:
		ev.Outcome = OutcomeSuccess
		env := outcome.Envelope
		ev.Envelope = &env
	}

	r.observer.ObserveDirective(ev)
}

func (r *Router) newEnvelope(kind envelope.ResponseKind) *envelope.Builder {
	return envelope.New(kind, r.envOpts...)
}
