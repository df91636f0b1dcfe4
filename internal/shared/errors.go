package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Backend errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrTaskNotFound       = fmt.Errorf("task not found")
	ErrFileNotFound       = fmt.Errorf("file not found")
	ErrDecodeResponse     = fmt.Errorf("unexpected response body")

	// Input validation errors
	ErrInvalidURL      = fmt.Errorf("invalid URL")
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")

	// Local state errors
	ErrAlreadyRunning = fmt.Errorf("another instance is already running")
	ErrNoCookies      = fmt.Errorf("no cookies found")
)
