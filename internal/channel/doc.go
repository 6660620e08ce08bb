// Package channel is the HTTP client for the remote device channel service
// that drives the LED strips.
//
// The service exposes two resources:
//
//	GET    /channels        list of {device: <friendly name>, ...}
//	GET    /presets         active presets, in activation order
//	POST   /presets         create/activate a preset
//	DELETE /presets/{id}    deactivate a preset
//
// A preset is the service's only notion of device state: a device listed in
// any active preset is lit, a device in none is off. Colour is carried by
// presets whose payload type is "levels".
//
// # Error Handling
//
// Transport failures wrap ErrUnreachable; non-2xx answers wrap
// ErrUnexpectedStatus; malformed bodies wrap ErrDecodeFailed. Nothing is
// retried.
package channel
