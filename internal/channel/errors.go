package channel

import "errors"

// Sentinel errors for channel API operations.
//
// These errors can be checked using errors.Is() for specific handling:
//
//	if errors.Is(err, channel.ErrUnreachable) {
//	    // report the endpoint as UNREACHABLE
//	}
var (
	// ErrUnreachable indicates the request never produced an HTTP response
	// (connection refused, DNS failure, timeout).
	ErrUnreachable = errors.New("channel: service unreachable")

	// ErrUnexpectedStatus indicates the service answered with a non-2xx status.
	ErrUnexpectedStatus = errors.New("channel: unexpected status")

	// ErrDecodeFailed indicates a response body was not the expected JSON.
	ErrDecodeFailed = errors.New("channel: decoding response failed")

	// ErrInvalidConfig indicates the client configuration is unusable.
	ErrInvalidConfig = errors.New("channel: invalid configuration")
)
