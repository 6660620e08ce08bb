package channel

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// PayloadTypeLevels is the preset payload type that carries raw channel levels.
const PayloadTypeLevels = "levels"

// Channel is one entry of GET /channels. Only the friendly device name is
// interpreted; everything else the service sends is ignored.
type Channel struct {
	Device string `json:"device"`
}

// PresetID identifies a preset on the remote service. The service emits
// numeric ids but string ids are accepted as well.
type PresetID string

// UnmarshalJSON accepts both JSON numbers and strings.
func (id *PresetID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = PresetID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("preset id: %w", err)
	}
	*id = PresetID(n.String())
	return nil
}

// MarshalJSON emits numeric ids as numbers so they round-trip unchanged.
func (id PresetID) MarshalJSON() ([]byte, error) {
	if n, err := strconv.ParseInt(string(id), 10, 64); err == nil && strconv.FormatInt(n, 10) == string(id) {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

// Preset binds devices to a payload. Presence of a preset for a device is
// the only notion of "on" the service has.
//
// Payload is kept as raw JSON so that presets of types this skill does not
// understand survive a read/modify/write cycle byte-for-byte.
type Preset struct {
	ID      PresetID        `json:"id,omitempty"`
	Name    string          `json:"name,omitempty"`
	Devices []string        `json:"devices"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Levels is the payload of a "levels" preset. Channel values are 0-100.
type Levels struct {
	Type  string `json:"type"`
	Red   int    `json:"red"`
	Green int    `json:"green"`
	Blue  int    `json:"blue"`
}

// PayloadType returns the payload's "type" field, or "" when the payload is
// absent or not an object.
func (p Preset) PayloadType() string {
	if len(p.Payload) == 0 {
		return ""
	}
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(p.Payload, &head); err != nil {
		return ""
	}
	return head.Type
}

// Levels decodes the payload as channel levels. ok is false for any other
// payload type.
func (p Preset) Levels() (Levels, bool) {
	if p.PayloadType() != PayloadTypeLevels {
		return Levels{}, false
	}
	var l Levels
	if err := json.Unmarshal(p.Payload, &l); err != nil {
		return Levels{}, false
	}
	return l, true
}

// NewLevelsPayload encodes a "levels" payload.
func NewLevelsPayload(red, green, blue int) json.RawMessage {
	//nolint:errcheck // Marshalling a struct of ints cannot fail
	b, _ := json.Marshal(Levels{Type: PayloadTypeLevels, Red: red, Green: green, Blue: blue})
	return b
}

// ForDevice returns a copy of p restricted to a single device. The remote id
// is dropped so the copy can be POSTed as a new preset.
func (p Preset) ForDevice(device string) Preset {
	out := Preset{
		Name:    p.Name,
		Devices: []string{device},
	}
	if len(p.Payload) > 0 {
		out.Payload = append(json.RawMessage(nil), p.Payload...)
	}
	return out
}
