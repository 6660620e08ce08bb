// Package gateway is the device/state boundary between directive handling
// and the remote channel service.
//
// The channel service has no direct notion of power or color. A device is
// "on" when some active preset lists it, and its color is the levels payload
// of that preset. The Gateway infers both from a state cache that callers
// rebuild with RefreshStateCache before reading PowerOf or ColorOf.
//
// # Caches
//
//   - Endpoint cache: built lazily on the first ListEndpoints call and never
//     invalidated. Endpoints are keyed by friendly name.
//   - State cache: device name to the first active preset listing it,
//     replaced wholesale on every refresh.
//
// # Failure Semantics
//
// Discovery errors on the connectivity path degrade to UNREACHABLE. Errors
// from mutations (SetPower, SetColor) are returned to the caller.
//
// # Usage
//
//	catalog, err := gateway.LoadCatalog(cfg.Catalog.CapabilitiesFile, cfg.Catalog.ColorPresetsFile)
//	gw := gateway.New(gateway.Options{
//	    Channels: client,
//	    Catalog:  catalog,
//	    Logger:   log,
//	})
//	endpoints, err := gw.ListEndpoints(ctx)
package gateway
