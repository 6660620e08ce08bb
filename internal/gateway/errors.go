package gateway

import "errors"

// Sentinel errors for gateway operations.
var (
	// ErrNoColorPresets indicates power-on was requested but the catalog
	// holds no color presets to choose from.
	ErrNoColorPresets = errors.New("gateway: no color presets configured")

	// ErrInvalidCatalog indicates a catalog file is missing or malformed.
	ErrInvalidCatalog = errors.New("gateway: invalid catalog")
)
