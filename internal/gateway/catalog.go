package gateway

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/barrymcandrews/aurora-home-skill/internal/channel"
)

// Catalog holds the static files the gateway needs: the capability
// descriptors merged into every endpoint and the presets used for power-on.
//
// A Catalog is read-only after loading and may be shared.
type Catalog struct {
	// Capabilities is the verbatim JSON array of capability descriptors.
	Capabilities json.RawMessage

	// ColorPresets are the candidates for power-on. Their ids and devices
	// are ignored.
	ColorPresets []channel.Preset
}

// LoadCatalog reads the capability descriptor set and the color preset list.
//
// Parameters:
//   - capabilitiesPath: JSON array of capability descriptors
//   - presetsPath: JSON array of presets
//
// Returns:
//   - *Catalog: Loaded catalog
//   - error: ErrInvalidCatalog wrapped with the failing file
func LoadCatalog(capabilitiesPath, presetsPath string) (*Catalog, error) {
	capabilities, err := os.ReadFile(capabilitiesPath) //nolint:gosec // Path comes from trusted config
	if err != nil {
		return nil, fmt.Errorf("%w: reading capabilities: %w", ErrInvalidCatalog, err)
	}

	var descriptors []json.RawMessage
	if err := json.Unmarshal(capabilities, &descriptors); err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %w", ErrInvalidCatalog, capabilitiesPath, err)
	}

	raw, err := os.ReadFile(presetsPath) //nolint:gosec // Path comes from trusted config
	if err != nil {
		return nil, fmt.Errorf("%w: reading color presets: %w", ErrInvalidCatalog, err)
	}

	var presets []channel.Preset
	if err := json.Unmarshal(raw, &presets); err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %w", ErrInvalidCatalog, presetsPath, err)
	}

	return &Catalog{
		Capabilities: json.RawMessage(capabilities),
		ColorPresets: presets,
	}, nil
}
