package contracts

import (
	"errors"
	"fmt"
)

// Sentinel errors shared across packages
var (
	// ErrSourceUnavailable: the lot feed could not be read or produced no rows
	ErrSourceUnavailable = errors.New("lot source unavailable")

	// ErrFeedShape: required columns are missing from the feed
	ErrFeedShape = fmt.Errorf("%w: required columns missing", ErrSourceUnavailable)

	ErrPriceUnavailable      = errors.New("price unavailable")
	ErrDiagnosticUnavailable = errors.New("diagnostic unavailable")
	ErrInvalidRow            = errors.New("invalid row")
	ErrInvalidTicker         = errors.New("invalid ticker: exchange suffix required")
)

// Reasons a ticker ends up without a usable price
const (
	PriceReasonNoQuote      = "no_quote"
	PriceReasonNonPositive  = "non_positive_price"
	PriceReasonBatchFailed  = "batch_failed"
	PriceReasonEmptyHistory = "empty_history"
)

// PriceUnavailableError records why a ticker could not be priced
type PriceUnavailableError struct {
	Ticker string
	Reason string
}

func (e *PriceUnavailableError) Error() string {
	return fmt.Sprintf("%s: price unavailable (%s)", e.Ticker, e.Reason)
}

func (e *PriceUnavailableError) Unwrap() error { return ErrPriceUnavailable }

// DiagnosticUnavailableError wraps a fetch failure of the diagnostic pipeline
type DiagnosticUnavailableError struct {
	Ticker string
	Err    error
}

func (e *DiagnosticUnavailableError) Error() string {
	return fmt.Sprintf("%s: diagnostic unavailable: %v", e.Ticker, e.Err)
}

func (e *DiagnosticUnavailableError) Unwrap() error { return e.Err }

// Is lets errors.Is match the sentinel as well as the cause
func (e *DiagnosticUnavailableError) Is(target error) bool {
	return target == ErrDiagnosticUnavailable
}

// InvalidRowError describes a feed row dropped during normalization
type InvalidRowError struct {
	Line   int
	Ticker string
	Reason string
}

func (e *InvalidRowError) Error() string {
	if e.Ticker != "" {
		return fmt.Sprintf("row %d (%s): %s", e.Line, e.Ticker, e.Reason)
	}
	return fmt.Sprintf("row %d: %s", e.Line, e.Reason)
}

func (e *InvalidRowError) Unwrap() error { return ErrInvalidRow }

// Status is the user-facing classification of a failure
type Status string

const (
	StatusOK                   Status = "ok"
	StatusWaitingForData       Status = "waiting_for_data"
	StatusConfigurationProblem Status = "configuration_problem"
)

// StatusFor maps an error to what the user should be told.
// Feed shape problems need a fix on the user's side; everything else is
// treated as data that has not arrived yet.
func StatusFor(err error) Status {
	switch {
	case err == nil:
		return StatusOK
	case errors.Is(err, ErrFeedShape), errors.Is(err, ErrInvalidTicker):
		return StatusConfigurationProblem
	default:
		return StatusWaitingForData
	}
}

// StatusMessage returns a short human message for a status
func StatusMessage(s Status) string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusConfigurationProblem:
		return "configuration problem: check the feed columns (ID, Price, Qty) and settings"
	default:
		return "data temporarily unavailable, connecting..."
	}
}
