package scanner

import "fmt"

// UserError is a structured, user-facing error shared by the engine, the
// HTTP API, and the CLI. It carries enough context for a caller to decide
// what to do next without parsing an error string.
type UserError struct {
	Code       string
	Message    string
	Suggestion string
	Err        error
}

func (e *UserError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Suggestion)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *UserError) Unwrap() error { return e.Err }

func newUserError(code, message, suggestion string, err error) *UserError {
	return &UserError{Code: code, Message: message, Suggestion: suggestion, Err: err}
}

func ErrInvalidHost(host string, err error) *UserError {
	return newUserError("invalid_host", fmt.Sprintf("cannot resolve host %q", host),
		"check the hostname or IP address", err)
}

func ErrInvalidPort(raw string, err error) *UserError {
	return newUserError("invalid_port", fmt.Sprintf("invalid port %q", raw),
		"use a number between 1 and 65535", err)
}

func ErrInvalidProtocol(got string) *UserError {
	return newUserError("invalid_protocol", fmt.Sprintf("unsupported protocol %q", got),
		`use "tcp" or "udp"`, nil)
}

func ErrUnknownService(name string) *UserError {
	return newUserError("unknown_service", fmt.Sprintf("service %q is not in the service name table", name),
		"check for a typo, or confirm the probe database was loaded", nil)
}

func ErrProbeDatabase(err error) *UserError {
	return newUserError("probe_database", "failed to load the probe database",
		"check that the embedded nmap-service-probes data is well formed", err)
}

func ErrConfigLoad(err error) *UserError {
	return newUserError("config_load_failed", "failed to load configuration",
		"check environment variables and any referenced config files", err)
}

func ErrRedisUnavailable(err error) *UserError {
	return newUserError("redis_unavailable", "failed to reach the redis backend",
		"check REDIS_ADDR and that redis is running", err)
}

func ErrRateLimitExceeded() *UserError {
	return newUserError("rate_limit_exceeded", "too many requests",
		"slow down and retry later", nil)
}
