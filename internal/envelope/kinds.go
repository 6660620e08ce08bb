package envelope

// PayloadVersion is the only protocol version this skill speaks.
const PayloadVersion = "3"

// ResponseKind is the closed set of responses the skill can emit.
type ResponseKind int

const (
	// Discover answers Alexa.Discovery/Discover.
	Discover ResponseKind = iota
	// Response acknowledges a controller directive.
	Response
	// StateReport answers Alexa/ReportState.
	StateReport
	// AcceptGrant answers Alexa.Authorization/AcceptGrant.
	AcceptGrant
)

type responseDescriptor struct {
	namespace string
	name      string
}

var responses = map[ResponseKind]responseDescriptor{
	Discover:    {namespace: "Alexa.Discovery", name: "Discover.Response"},
	Response:    {namespace: "Alexa", name: "Response"},
	StateReport: {namespace: "Alexa", name: "StateReport"},
	AcceptGrant: {namespace: "Alexa.Authorization", name: "AcceptGrant.Response"},
}

// Namespace returns the header namespace for the kind.
func (k ResponseKind) Namespace() string { return responses[k].namespace }

// String returns the header name for the kind.
func (k ResponseKind) String() string { return responses[k].name }

// ContextKind is the closed set of reportable properties.
type ContextKind int

const (
	// PowerState is Alexa.PowerController/powerState.
	PowerState ContextKind = iota
	// Color is Alexa.ColorController/color.
	Color
	// Connectivity is Alexa.EndpointHealth/connectivity.
	Connectivity
)

type contextDescriptor struct {
	namespace string
	name      string
}

var contexts = map[ContextKind]contextDescriptor{
	PowerState:   {namespace: "Alexa.PowerController", name: "powerState"},
	Color:        {namespace: "Alexa.ColorController", name: "color"},
	Connectivity: {namespace: "Alexa.EndpointHealth", name: "connectivity"},
}

// Namespace returns the property namespace for the kind.
func (k ContextKind) Namespace() string { return contexts[k].namespace }

// String returns the property name for the kind.
func (k ContextKind) String() string { return contexts[k].name }
