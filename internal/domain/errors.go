package domain

import (
	"errors"
	"fmt"
)

// ErrNoData means not a single ticker resolved to a usable price series
var ErrNoData = errors.New("no valid price data found")

// ErrDuplicateDate is a data integrity error on a price series
var ErrDuplicateDate = errors.New("duplicate date in price series")

type FetchErrorKind string

const (
	FetchErrorInvalidSymbol   FetchErrorKind = "INVALID_SYMBOL"
	FetchErrorMissingField    FetchErrorKind = "MISSING_FIELD"
	FetchErrorNoData          FetchErrorKind = "NO_DATA"
	FetchErrorTimeout         FetchErrorKind = "TIMEOUT"
	FetchErrorUpstreamFailure FetchErrorKind = "UPSTREAM_FAILURE"
)

// FetchError describes why a single ticker (or, with an empty Symbol, a
// whole batch) could not be resolved
type FetchError struct {
	Symbol Ticker
	Kind   FetchErrorKind
	Err    error
}

func NewFetchError(symbol Ticker, kind FetchErrorKind, err error) *FetchError {
	return &FetchError{
		Symbol: symbol,
		Kind:   kind,
		Err:    err,
	}
}

func (e *FetchError) Error() string {
	target := "batch"
	if e.Symbol != "" {
		target = string(e.Symbol)
	}
	if e.Err == nil {
		return fmt.Sprintf("failed to fetch %s: %s", target, e.Kind)
	}
	return fmt.Sprintf("failed to fetch %s: %s: %s", target, e.Kind, e.Err.Error())
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

type ConfigurationErrorKind string

const (
	ConfigLengthMismatch      ConfigurationErrorKind = "LENGTH_MISMATCH"
	ConfigUnknownFilingStatus ConfigurationErrorKind = "UNKNOWN_FILING_STATUS"
	ConfigInvalidDateRange    ConfigurationErrorKind = "INVALID_DATE_RANGE"
	ConfigInvalidAmount       ConfigurationErrorKind = "INVALID_AMOUNT"
	ConfigEmptyTickers        ConfigurationErrorKind = "EMPTY_TICKERS"
	ConfigInvalidBrackets     ConfigurationErrorKind = "INVALID_BRACKETS"
)

// ConfigurationError is a caller error, detected before any computation
type ConfigurationError struct {
	Kind  ConfigurationErrorKind
	Field string
	Msg   string
}

func NewConfigurationError(kind ConfigurationErrorKind, field string, format string, args ...any) *ConfigurationError {
	return &ConfigurationError{
		Kind:  kind,
		Field: field,
		Msg:   fmt.Sprintf(format, args...),
	}
}

func (e *ConfigurationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid configuration (%s): %s", e.Kind, e.Msg)
	}
	return fmt.Sprintf("invalid %s (%s): %s", e.Field, e.Kind, e.Msg)
}

func IsConfigurationError(err error, kind ConfigurationErrorKind) bool {
	var cfgErr *ConfigurationError
	if !errors.As(err, &cfgErr) {
		return false
	}
	return cfgErr.Kind == kind
}
