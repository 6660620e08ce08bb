package directive

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/barrymcandrews/aurora-home-skill/internal/channel"
	"github.com/barrymcandrews/aurora-home-skill/internal/colorspace"
	"github.com/barrymcandrews/aurora-home-skill/internal/envelope"
	"github.com/barrymcandrews/aurora-home-skill/internal/gateway"
)

// mockGateway records calls and serves canned state.
type mockGateway struct {
	mu           sync.Mutex
	endpoints    []gateway.Endpoint
	listErr      error
	connectivity gateway.Connectivity
	refreshErr   error
	setErr       error
	power        gateway.PowerState
	color        colorspace.HSV

	calls       []string
	powerCalls  []gateway.PowerState
	colorCalls  []colorspace.HSV
	refreshHits int
}

func (m *mockGateway) record(call string) {
	m.mu.Lock()
	m.calls = append(m.calls, call)
	m.mu.Unlock()
}

func (m *mockGateway) ListEndpoints(context.Context) ([]gateway.Endpoint, error) {
	m.record("ListEndpoints")
	return m.endpoints, m.listErr
}

func (m *mockGateway) ConnectivityStatus(context.Context, string) gateway.Connectivity {
	m.record("ConnectivityStatus")
	return m.connectivity
}

func (m *mockGateway) RefreshStateCache(context.Context) error {
	m.record("RefreshStateCache")
	m.refreshHits++
	return m.refreshErr
}

func (m *mockGateway) SetPower(_ context.Context, _ string, p gateway.PowerState) error {
	m.record("SetPower")
	m.powerCalls = append(m.powerCalls, p)
	return m.setErr
}

func (m *mockGateway) SetColor(_ context.Context, _ string, c colorspace.HSV) error {
	m.record("SetColor")
	m.colorCalls = append(m.colorCalls, c)
	return m.setErr
}

func (m *mockGateway) ColorOf(string) colorspace.HSV {
	m.record("ColorOf")
	return m.color
}

func (m *mockGateway) PowerOf(string) gateway.PowerState {
	m.record("PowerOf")
	return m.power
}

// mockObserver captures events.
type mockObserver struct {
	mu     sync.Mutex
	events []Event
}

func (o *mockObserver) ObserveDirective(ev Event) {
	o.mu.Lock()
	o.events = append(o.events, ev)
	o.mu.Unlock()
}

// validatorFunc adapts a function to the Validator interface.
type validatorFunc func(request, response any) error

func (f validatorFunc) Validate(request, response any) error { return f(request, response) }

func newTestRouter(gw Gateway, opts Options) *Router {
	opts.EnvelopeOptions = []envelope.Option{
		envelope.WithClock(func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }),
		envelope.WithIDGenerator(func() string { return "test-id" }),
	}
	return NewRouter(gw, opts)
}

func mustParse(t *testing.T, raw string) *Request {
	t.Helper()
	req, err := ParseRequest([]byte(raw))
	if err != nil {
		t.Fatalf("ParseRequest() error = %v", err)
	}
	return req
}

const turnOnLamp1 = `{
	"directive": {
		"header": {"namespace": "Alexa.PowerController", "name": "TurnOn", "payloadVersion": "3", "messageId": "m1", "correlationToken": "tok1"},
		"endpoint": {"endpointId": "Lamp1", "scope": {"type": "BearerToken", "token": "x"}, "cookie": {}},
		"payload": {}
	}
}`

func TestHandle_TurnOn(t *testing.T) {
	gw := &mockGateway{}
	r := newTestRouter(gw, Options{})

	out, err := r.Handle(context.Background(), mustParse(t, turnOnLamp1))
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if !out.Handled || out.Kind != KindTurnOn {
		t.Fatalf("Outcome = %+v", out)
	}

	h := out.Envelope.Event.Header
	if h.Name != "Response" || h.Namespace != "Alexa" || h.CorrelationToken != "tok1" {
		t.Errorf("header = %+v", h)
	}
	if ep := out.Envelope.Event.Endpoint; ep == nil || ep.EndpointID != "Lamp1" {
		t.Errorf("endpoint = %+v", ep)
	}

	p, ok := out.Envelope.Property(envelope.PowerState)
	if !ok || p.Value != "ON" {
		t.Errorf("powerState = %+v, %v; want ON", p, ok)
	}
	if len(gw.powerCalls) != 1 || gw.powerCalls[0] != gateway.PowerOn {
		t.Errorf("SetPower calls = %v", gw.powerCalls)
	}
}

func TestHandle_TurnOff(t *testing.T) {
	gw := &mockGateway{}
	r := newTestRouter(gw, Options{})

	req := mustParse(t, `{"directive":{"header":{"namespace":"Alexa.PowerController","name":"TurnOff","payloadVersion":"3","correlationToken":"tok2"},"endpoint":{"endpointId":"Desk"}}}`)
	out, err := r.Handle(context.Background(), req)
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}

	p, ok := out.Envelope.Property(envelope.PowerState)
	if !ok || p.Value != "OFF" {
		t.Errorf("powerState = %v, want OFF", p.Value)
	}
	if len(gw.powerCalls) != 1 || gw.powerCalls[0] != gateway.PowerOff {
		t.Errorf("SetPower calls = %v", gw.powerCalls)
	}
}

func TestHandle_MissingVersionFails(t *testing.T) {
	gw := &mockGateway{}
	r := newTestRouter(gw, Options{})

	req := mustParse(t, `{"directive":{"header":{"namespace":"Alexa.PowerController","name":"TurnOn"},"endpoint":{"endpointId":"Lamp1"}}}`)
	if v := req.Version(); v != "-1" {
		t.Fatalf("Version() = %q, want -1", v)
	}

	_, err := r.Handle(context.Background(), req)
	if !errors.Is(err, ErrUnsupportedVersion) {
		t.Fatalf("error = %v, want ErrUnsupportedVersion", err)
	}
	if len(gw.calls) != 0 {
		t.Errorf("gateway was called: %v", gw.calls)
	}
}

func TestRequest_Version(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "directive header", raw: `{"directive":{"header":{"payloadVersion":"3"}}}`, want: "3"},
		{name: "legacy header", raw: `{"header":{"payloadVersion":"2"},"directive":{"header":{}}}`, want: "2"},
		{name: "directive header wins", raw: `{"header":{"payloadVersion":"2"},"directive":{"header":{"payloadVersion":"3"}}}`, want: "3"},
		{name: "absent", raw: `{"directive":{"header":{"name":"TurnOn"}}}`, want: "-1"},
		{name: "empty object", raw: `{}`, want: "-1"},
		{name: "empty directive version does not fall back", raw: `{"header":{"payloadVersion":"3"},"directive":{"header":{"payloadVersion":""}}}`, want: ""},
		{name: "empty legacy version", raw: `{"header":{"payloadVersion":""},"directive":{"header":{}}}`, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := mustParse(t, tt.raw).Version(); got != tt.want {
				t.Errorf("Version() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestHandle_EmptyVersionFails(t *testing.T) {
	gw := &mockGateway{}
	r := newTestRouter(gw, Options{})

	req := mustParse(t, `{"header":{"payloadVersion":"3"},"directive":{"header":{"namespace":"Alexa.PowerController","name":"TurnOn","payloadVersion":""},"endpoint":{"endpointId":"Lamp1"}}}`)
	if _, err := r.Handle(context.Background(), req); !errors.Is(err, ErrUnsupportedVersion) {
		t.Fatalf("error = %v, want ErrUnsupportedVersion", err)
	}
	if len(gw.calls) != 0 {
		t.Errorf("gateway was called: %v", gw.calls)
	}
}

func TestHandle_WrongVersion(t *testing.T) {
	r := newTestRouter(&mockGateway{}, Options{})

	req := mustParse(t, `{"directive":{"header":{"name":"Discover","payloadVersion":"2"}}}`)
	if _, err := r.Handle(context.Background(), req); !errors.Is(err, ErrUnsupportedVersion) {
		t.Errorf("error = %v, want ErrUnsupportedVersion", err)
	}
}

func TestHandle_UnsupportedDirective(t *testing.T) {
	gw := &mockGateway{}
	obs := &mockObserver{}
	r := newTestRouter(gw, Options{Observer: obs})

	req := mustParse(t, `{"directive":{"header":{"namespace":"Alexa.BrightnessController","name":"SetBrightness","payloadVersion":"3"},"endpoint":{"endpointId":"Lamp1"}}}`)
	out, err := r.Handle(context.Background(), req)
	if err != nil {
		t.Fatalf("Handle() error = %v, want nil", err)
	}
	if out.Handled {
		t.Error("Handled = true, want false")
	}
	if len(gw.calls) != 0 {
		t.Errorf("gateway was called: %v", gw.calls)
	}
	if len(obs.events) != 1 || obs.events[0].Outcome != OutcomeUnhandled {
		t.Errorf("events = %+v", obs.events)
	}
}

func TestHandle_SetColorEchoesInput(t *testing.T) {
	gw := &mockGateway{}
	r := newTestRouter(gw, Options{})

	req := mustParse(t, `{"directive":{
		"header":{"namespace":"Alexa.ColorController","name":"SetColor","payloadVersion":"3","correlationToken":"tok3"},
		"endpoint":{"endpointId":"Lamp1"},
		"payload":{"color":{"hue":350.5,"saturation":0.7138,"brightness":0.6524}}}}`)

	out, err := r.Handle(context.Background(), req)
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}

	want := colorspace.HSV{Hue: 350.5, Saturation: 0.7138, Brightness: 0.6524}
	if len(gw.colorCalls) != 1 || gw.colorCalls[0] != want {
		t.Errorf("SetColor calls = %v", gw.colorCalls)
	}

	p, ok := out.Envelope.Property(envelope.Color)
	if !ok || p.Value != want {
		t.Errorf("color property = %+v, want %+v", p.Value, want)
	}
	if out.Envelope.Event.Header.CorrelationToken != "tok3" {
		t.Errorf("correlation token = %q", out.Envelope.Event.Header.CorrelationToken)
	}
}

func TestHandle_BadRequests(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr error
	}{
		{
			name:    "power without endpoint",
			raw:     `{"directive":{"header":{"name":"TurnOn","payloadVersion":"3"}}}`,
			wantErr: ErrMissingEndpoint,
		},
		{
			name:    "report state without endpoint",
			raw:     `{"directive":{"header":{"name":"ReportState","payloadVersion":"3"},"endpoint":{}}}`,
			wantErr: ErrMissingEndpoint,
		},
		{
			name:    "set color without color",
			raw:     `{"directive":{"header":{"name":"SetColor","payloadVersion":"3"},"endpoint":{"endpointId":"Lamp1"},"payload":{}}}`,
			wantErr: ErrInvalidPayload,
		},
		{
			name:    "set color with malformed color",
			raw:     `{"directive":{"header":{"name":"SetColor","payloadVersion":"3"},"endpoint":{"endpointId":"Lamp1"},"payload":{"color":"red"}}}`,
			wantErr: ErrInvalidPayload,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := &mockGateway{}
			r := newTestRouter(gw, Options{})

			if _, err := r.Handle(context.Background(), mustParse(t, tt.raw)); !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
			if len(gw.powerCalls)+len(gw.colorCalls) != 0 {
				t.Error("no mutation expected")
			}
		})
	}
}

func TestHandle_MutationErrorPropagates(t *testing.T) {
	gw := &mockGateway{setErr: channel.ErrUnexpectedStatus}
	obs := &mockObserver{}
	r := newTestRouter(gw, Options{Observer: obs})

	_, err := r.Handle(context.Background(), mustParse(t, turnOnLamp1))
	if !errors.Is(err, channel.ErrUnexpectedStatus) {
		t.Fatalf("error = %v, want ErrUnexpectedStatus", err)
	}
	if len(obs.events) != 1 || obs.events[0].Outcome != OutcomeError || obs.events[0].Envelope != nil {
		t.Errorf("events = %+v", obs.events)
	}
}

func TestHandle_ReportStateReachable(t *testing.T) {
	gw := &mockGateway{
		connectivity: gateway.ConnectivityOK,
		power:        gateway.PowerOn,
		color:        colorspace.HSV{Hue: 120, Saturation: 1, Brightness: 0.5},
	}
	r := newTestRouter(gw, Options{})

	req := mustParse(t, `{"directive":{"header":{"namespace":"Alexa","name":"ReportState","payloadVersion":"3","correlationToken":"tok4"},"endpoint":{"endpointId":"Lamp1"}}}`)
	out, err := r.Handle(context.Background(), req)
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}

	if out.Envelope.Event.Header.Name != "StateReport" {
		t.Errorf("name = %q", out.Envelope.Event.Header.Name)
	}

	props := out.Envelope.Properties()
	if len(props) != 3 {
		t.Fatalf("len(properties) = %d, want 3", len(props))
	}
	if props[0].Name != "connectivity" || props[1].Name != "powerState" || props[2].Name != "color" {
		t.Errorf("property order = %s, %s, %s", props[0].Name, props[1].Name, props[2].Name)
	}
	if props[1].Value != "ON" || props[2].Value != gw.color {
		t.Errorf("values = %v, %v", props[1].Value, props[2].Value)
	}

	wantCalls := []string{"ConnectivityStatus", "RefreshStateCache", "PowerOf", "ColorOf"}
	if len(gw.calls) != len(wantCalls) {
		t.Fatalf("calls = %v, want %v", gw.calls, wantCalls)
	}
	for i := range wantCalls {
		if gw.calls[i] != wantCalls[i] {
			t.Errorf("call %d = %s, want %s", i, gw.calls[i], wantCalls[i])
		}
	}
}

func TestHandle_ReportStateUnreachable(t *testing.T) {
	gw := &mockGateway{
		connectivity: gateway.ConnectivityUnreachable,
		refreshErr:   channel.ErrUnreachable,
		power:        gateway.PowerOn,
	}
	r := newTestRouter(gw, Options{})

	req := mustParse(t, `{"directive":{"header":{"namespace":"Alexa","name":"ReportState","payloadVersion":"3"},"endpoint":{"endpointId":"Ghost"}}}`)
	out, err := r.Handle(context.Background(), req)
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}

	props := out.Envelope.Properties()
	if len(props) != 1 {
		t.Fatalf("len(properties) = %d, want exactly 1", len(props))
	}
	raw, err := json.Marshal(props[0].Value)
	if err != nil {
		t.Fatal(err)
	}
	if props[0].Name != "connectivity" || string(raw) != `{"value":"UNREACHABLE"}` {
		t.Errorf("property = %s %s", props[0].Name, raw)
	}
	if gw.refreshHits != 1 {
		t.Errorf("RefreshStateCache called %d times, want 1", gw.refreshHits)
	}
}

func TestHandle_ReportStateRefreshErrorWhenReachable(t *testing.T) {
	gw := &mockGateway{
		connectivity: gateway.ConnectivityOK,
		refreshErr:   channel.ErrUnexpectedStatus,
	}
	r := newTestRouter(gw, Options{})

	req := mustParse(t, `{"directive":{"header":{"name":"ReportState","payloadVersion":"3"},"endpoint":{"endpointId":"Lamp1"}}}`)
	if _, err := r.Handle(context.Background(), req); !errors.Is(err, channel.ErrUnexpectedStatus) {
		t.Errorf("error = %v, want ErrUnexpectedStatus", err)
	}
}

func TestHandle_AcceptGrant(t *testing.T) {
	r := newTestRouter(&mockGateway{}, Options{})

	req := mustParse(t, `{"directive":{"header":{"namespace":"Alexa.Authorization","name":"AcceptGrant","payloadVersion":"3"},"payload":{"grant":{"type":"OAuth2.AuthorizationCode","code":"abc"}}}}`)
	out, err := r.Handle(context.Background(), req)
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}

	h := out.Envelope.Event.Header
	if h.Namespace != "Alexa.Authorization" || h.Name != "AcceptGrant.Response" {
		t.Errorf("header = %+v", h)
	}
	if out.Envelope.Context != nil || out.Envelope.Event.Endpoint != nil {
		t.Error("accept grant should carry no context or endpoint")
	}
}

func TestHandle_DiscoverCountsDistinctEndpoints(t *testing.T) {
	gw := &mockGateway{endpoints: []gateway.Endpoint{
		{EndpointID: "Lamp1", FriendlyName: "Lamp1"},
		{EndpointID: "Desk", FriendlyName: "Desk"},
	}}
	r := newTestRouter(gw, Options{})

	req := mustParse(t, `{"directive":{"header":{"namespace":"Alexa.Discovery","name":"Discover","payloadVersion":"3","messageId":"m"},"payload":{"scope":{"type":"BearerToken","token":"x"}}}}`)
	out, err := r.Handle(context.Background(), req)
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}

	raw, err := json.Marshal(out.Envelope)
	if err != nil {
		t.Fatal(err)
	}
	var decoded struct {
		Event struct {
			Header  map[string]any `json:"header"`
			Payload struct {
				Endpoints []map[string]any `json:"endpoints"`
			} `json:"payload"`
		} `json:"event"`
	}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded.Event.Header["name"] != "Discover.Response" {
		t.Errorf("name = %v", decoded.Event.Header["name"])
	}
	if len(decoded.Event.Payload.Endpoints) != 2 {
		t.Errorf("len(endpoints) = %d, want 2", len(decoded.Event.Payload.Endpoints))
	}
}

func TestHandle_DiscoverEmptyList(t *testing.T) {
	r := newTestRouter(&mockGateway{}, Options{})

	req := mustParse(t, `{"directive":{"header":{"namespace":"Alexa.Discovery","name":"Discover","payloadVersion":"3"}}}`)
	out, err := r.Handle(context.Background(), req)
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}

	raw, _ := json.Marshal(out.Envelope.Event.Payload)
	if string(raw) != `{"endpoints":[]}` {
		t.Errorf("payload = %s", raw)
	}
}

func TestHandle_DiscoverError(t *testing.T) {
	r := newTestRouter(&mockGateway{listErr: channel.ErrUnreachable}, Options{})

	req := mustParse(t, `{"directive":{"header":{"name":"Discover","payloadVersion":"3"}}}`)
	if _, err := r.Handle(context.Background(), req); !errors.Is(err, channel.ErrUnreachable) {
		t.Errorf("error = %v, want ErrUnreachable", err)
	}
}

func TestHandle_ValidatorGate(t *testing.T) {
	var gotRequest, gotResponse any
	validator := validatorFunc(func(request, response any) error {
		gotRequest, gotResponse = request, response
		return nil
	})
	r := newTestRouter(&mockGateway{}, Options{Validator: validator})

	req := mustParse(t, turnOnLamp1)
	out, err := r.Handle(context.Background(), req)
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if gotRequest != req {
		t.Error("validator did not receive the original request")
	}
	if env, ok := gotResponse.(envelope.Envelope); !ok || env.Event.Header.MessageID != out.Envelope.Event.Header.MessageID {
		t.Errorf("validator response = %#v", gotResponse)
	}
}

func TestHandle_ValidatorRejects(t *testing.T) {
	schemaErr := errors.New("missing event.header.messageId")
	obs := &mockObserver{}
	r := newTestRouter(&mockGateway{}, Options{
		Validator: validatorFunc(func(any, any) error { return schemaErr }),
		Observer:  obs,
	})

	out, err := r.Handle(context.Background(), mustParse(t, turnOnLamp1))
	if !errors.Is(err, ErrInvalidResponse) || !errors.Is(err, schemaErr) {
		t.Fatalf("error = %v, want ErrInvalidResponse wrapping schema error", err)
	}
	if out.Handled {
		t.Error("rejected response must not be returned as handled")
	}
	if obs.events[0].Outcome != OutcomeInvalidResponse {
		t.Errorf("outcome = %s", obs.events[0].Outcome)
	}
}

func TestHandle_ObserverSuccess(t *testing.T) {
	obs := &mockObserver{}
	r := newTestRouter(&mockGateway{}, Options{Observer: obs})

	if _, err := r.Handle(context.Background(), mustParse(t, turnOnLamp1)); err != nil {
		t.Fatal(err)
	}

	if len(obs.events) != 1 {
		t.Fatalf("events = %d, want 1", len(obs.events))
	}
	ev := obs.events[0]
	if ev.Kind != KindTurnOn || ev.Name != "TurnOn" || ev.EndpointID != "Lamp1" || ev.Outcome != OutcomeSuccess {
		t.Errorf("event = %+v", ev)
	}
	if ev.Envelope == nil || ev.Envelope.Event.Header.Name != "Response" {
		t.Errorf("event envelope = %+v", ev.Envelope)
	}
}

// blockingObserver holds the first notification until release is closed.
type blockingObserver struct {
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func (o *blockingObserver) ObserveDirective(Event) {
	first := false
	o.once.Do(func() { first = true })
	if first {
		close(o.entered)
		<-o.release
	}
}

func TestHandle_SlowObserverDoesNotBlockOtherDirectives(t *testing.T) {
	obs := &blockingObserver{entered: make(chan struct{}), release: make(chan struct{})}
	r := newTestRouter(&mockGateway{}, Options{Observer: obs})
	defer close(obs.release)

	first, second := mustParse(t, turnOnLamp1), mustParse(t, turnOnLamp1)

	go func() {
		_, _ = r.Handle(context.Background(), first)
	}()

	select {
	case <-obs.entered:
	case <-time.After(2 * time.Second):
		t.Fatal("first directive never reached the observer")
	}

	done := make(chan error, 1)
	go func() {
		_, err := r.Handle(context.Background(), second)
		done <- err
	}()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("second Handle() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("second directive blocked behind a slow observer")
	}
}

func TestKindOf(t *testing.T) {
	for _, name := range []string{"TurnOn", "TurnOff", "SetColor", "ReportState", "AcceptGrant", "Discover"} {
		k := KindOf(name)
		if k == KindUnknown || k.String() != name {
			t.Errorf("KindOf(%q) = %v", name, k)
		}
	}
	if KindOf("SetBrightness") != KindUnknown || KindUnknown.String() != "Unknown" {
		t.Error("unknown names should map to KindUnknown")
	}
}

func TestParseRequest_Invalid(t *testing.T) {
	if _, err := ParseRequest([]byte(`{"directive":`)); !errors.Is(err, ErrInvalidRequest) {
		t.Errorf("error = %v, want ErrInvalidRequest", err)
	}
}
