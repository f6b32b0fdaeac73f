package errs

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by read paths when the expected document is
// absent, or when a lookup that requires exactly one match finds zero or
// several.
var ErrNotFound = errors.New("not found")

// ExternalServiceError wraps a failed call to one of the hosted
// collaborators (identity store, aggregator, payment network).
type ExternalServiceError struct {
	Service string
	Op      string
	Err     error
}

func (e *ExternalServiceError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Service, e.Op, e.Err)
}

func (e *ExternalServiceError) Unwrap() error {
	return e.Err
}

// AggregatorExchangeError indicates the aggregator rejected the one-time
// public token during the linking flow.
type AggregatorExchangeError struct {
	Err error
}

func (e *AggregatorExchangeError) Error() string {
	return fmt.Sprintf("aggregator token exchange failed: %v", e.Err)
}

func (e *AggregatorExchangeError) Unwrap() error {
	return e.Err
}

// AggregatorFetchError indicates the aggregator rejected the durable
// access token, or returned no accounts for it.
type AggregatorFetchError struct {
	Err error
}

func (e *AggregatorFetchError) Error() string {
	return fmt.Sprintf("aggregator account fetch failed: %v", e.Err)
}

func (e *AggregatorFetchError) Unwrap() error {
	return e.Err
}

// ConfigurationError indicates a credential or setting required in the
// current deployment environment is missing or invalid.
type ConfigurationError struct {
	Setting string
	Reason  string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s: %s", e.Setting, e.Reason)
}
