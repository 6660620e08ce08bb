package mqtt

import "fmt"

// TopicPrefix is the root of every topic the skill publishes.
const TopicPrefix = "aurora"

// Topics provides builders for the skill's MQTT topics.
//
//	aurora/system/status          retained online/offline presence (and LWT)
//	aurora/event/{directive}      one message per processed directive
//	aurora/state/{endpointId}     retained last reported endpoint state
type Topics struct{}

// SystemStatus returns the presence topic.
func (Topics) SystemStatus() string {
	return TopicPrefix + "/system/status"
}

// Event returns the topic for directive events.
//
// Example: aurora/event/TurnOn
func (Topics) Event(directive string) string {
	return fmt.Sprintf("%s/event/%s", TopicPrefix, directive)
}

// EndpointState returns the retained state topic for an endpoint.
//
// Example: aurora/state/Lamp1
func (Topics) EndpointState(endpointID string) string {
	return fmt.Sprintf("%s/state/%s", TopicPrefix, endpointID)
}

