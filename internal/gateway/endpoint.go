package gateway

import (
	"encoding/json"
	"time"
)

// Fixed endpoint metadata reported for every strip.
const (
	ManufacturerName = "Barry McAndrews"
	Description      = "RGB LED Strip"
	DisplayCategory  = "LIGHT"
)

// PowerState is the inferred power state of an endpoint.
type PowerState string

// Power states.
const (
	PowerOn  PowerState = "ON"
	PowerOff PowerState = "OFF"
)

// Connectivity is the reachability of an endpoint.
type Connectivity string

// Connectivity values.
const (
	ConnectivityOK          Connectivity = "OK"
	ConnectivityUnreachable Connectivity = "UNREACHABLE"
)

// Endpoint is a discovered device as reported in a discovery response.
type Endpoint struct {
	EndpointID        string          `json:"endpointId"`
	ManufacturerName  string          `json:"manufacturerName"`
	FriendlyName      string          `json:"friendlyName"`
	Description       string          `json:"description"`
	DisplayCategories []string        `json:"displayCategories"`
	Cookie            map[string]any  `json:"cookie"`
	Capabilities      json.RawMessage `json:"capabilities"`
}

func newEndpoint(friendlyName string, capabilities json.RawMessage) Endpoint {
	return Endpoint{
		EndpointID:        friendlyName,
		ManufacturerName:  ManufacturerName,
		FriendlyName:      friendlyName,
		Description:       Description,
		DisplayCategories: []string{DisplayCategory},
		Cookie:            map[string]any{},
		Capabilities:      capabilities,
	}
}

// Stats is a point-in-time view of the gateway caches.
type Stats struct {
	Endpoints     int       `json:"endpoints"`
	ActiveDevices int       `json:"active_devices"`
	LastRefresh   time.Time `json:"last_refresh"`
	Refreshes     uint64    `json:"refreshes"`
	Mutations     uint64    `json:"mutations"`
}
