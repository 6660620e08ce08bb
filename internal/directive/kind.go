package directive

// Kind is the closed set of directives the router dispatches.
type Kind int

// Supported directive kinds.
const (
	KindUnknown Kind = iota
	KindTurnOn
	KindTurnOff
	KindSetColor
	KindReportState
	KindAcceptGrant
	KindDiscover
)

var kindNames = map[Kind]string{
	KindTurnOn:      "TurnOn",
	KindTurnOff:     "TurnOff",
	KindSetColor:    "SetColor",
	KindReportState: "ReportState",
	KindAcceptGrant: "AcceptGrant",
	KindDiscover:    "Discover",
}

var kindsByName = func() map[string]Kind {
	m := make(map[string]Kind, len(kindNames))
	for k, name := range kindNames {
		m[name] = k
	}
	return m
}()

// KindOf maps a directive header name to its Kind. Unrecognised names map
// to KindUnknown.
func KindOf(name string) Kind {
	return kindsByName[name]
}

// String returns the directive name for the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "Unknown"
}
