package domain

import "errors"

// RetriableError defines an interface for errors that can be retried
type RetriableError interface {
	error
	IsRetriable() bool
}

// IsRetriable checks if an error is retriable
func IsRetriable(err error) bool {
	var re RetriableError
	if errors.As(err, &re) {
		return re.IsRetriable()
	}
	return false
}

// NetworkError represents a feed or API transport error that may be retriable
type NetworkError struct {
	Op        string // Operation that failed (e.g., "connect", "read", "subscribe")
	Err       error  // Underlying error
	Retriable bool   // Whether this error is retriable
}

func (e *NetworkError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *NetworkError) IsRetriable() bool {
	return e.Retriable
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// NewNetworkError creates a new retriable network error
func NewNetworkError(op string, err error) *NetworkError {
	return &NetworkError{Op: op, Err: err, Retriable: true}
}

// NewFatalNetworkError creates a non-retriable network error
func NewFatalNetworkError(op string, err error) *NetworkError {
	return &NetworkError{Op: op, Err: err, Retriable: false}
}

// ConfigError represents a configuration error (never retriable)
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	return "config error [" + e.Field + "]: " + e.Err.Error()
}

func (e *ConfigError) IsRetriable() bool {
	return false
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// RejectError is returned when an admission policy turns an order away.
// Never retriable: the same order will be rejected again.
type RejectError struct {
	Policy string
	Reason string
}

func (e *RejectError) Error() string {
	return "order rejected [" + e.Policy + "]: " + e.Reason
}

func (e *RejectError) IsRetriable() bool {
	return false
}

var (
	// ErrConnectionFailed is returned when a feed connection fails. Usually retriable.
	ErrConnectionFailed = errors.New("connection failed")

	// ErrInvalidSymbol is returned when a symbol is not configured or malformed. Not retriable.
	ErrInvalidSymbol = errors.New("invalid symbol")

	// ErrInvalidOrder is returned when an order fails Valid() at the ingest edge.
	ErrInvalidOrder = errors.New("invalid order")

	// ErrUnknownOrder is returned when a cancel names an order the book does not hold.
	ErrUnknownOrder = errors.New("unknown order")

	// ErrConfigNotFound is returned when the configuration file is missing
	ErrConfigNotFound = errors.New("configuration not found")
)
