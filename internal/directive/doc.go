// Package directive routes inbound smart-home directives to handlers and
// builds their responses.
//
// Every directive goes through the same steps: version check, dispatch by
// directive name, handler execution against the gateway, and response
// validation. The supported directives are:
//
//	Alexa.PowerController   TurnOn, TurnOff
//	Alexa.ColorController   SetColor
//	Alexa                   ReportState
//	Alexa.Authorization     AcceptGrant
//	Alexa.Discovery         Discover
//
// Dispatch is by header name only. A name outside this table yields an
// Outcome with Handled set to false rather than an error.
package directive
