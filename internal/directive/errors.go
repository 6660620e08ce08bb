package directive

import "errors"

// Sentinel errors for directive handling.
//
// The HTTP layer maps them to status codes:
//
//	ErrInvalidRequest, ErrMissingEndpoint, ErrInvalidPayload -> 400 bad_request
//	ErrUnsupportedVersion                                  -> 400 unsupported_version
//	ErrInvalidResponse                                     -> 500 invalid_response
var (
	// ErrInvalidRequest indicates the request body is not a directive.
	ErrInvalidRequest = errors.New("directive: invalid request")

	// ErrUnsupportedVersion indicates a payloadVersion other than "3".
	ErrUnsupportedVersion = errors.New("directive: unsupported payload version")

	// ErrMissingEndpoint indicates a device directive without an endpoint id.
	ErrMissingEndpoint = errors.New("directive: missing endpoint")

	// ErrInvalidPayload indicates the directive payload lacks required fields.
	ErrInvalidPayload = errors.New("directive: invalid payload")

	// ErrInvalidResponse indicates the built response failed validation.
	ErrInvalidResponse = errors.New("directive: response failed validation")
)
