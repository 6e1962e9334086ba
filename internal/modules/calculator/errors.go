package calculator

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidAmount means the amount is not a positive finite number
	ErrInvalidAmount = errors.New("amount must be positive")
	// ErrFutureDate means the purchase date lies after today
	ErrFutureDate = errors.New("date is in the future")
	// ErrUnknownAssetClass means the asset id is not in the catalogue
	ErrUnknownAssetClass = errors.New("unknown asset")
	// ErrMissingSelection means a required sub-asset was not chosen
	ErrMissingSelection = errors.New("missing selection")
	// ErrUnknownSelection means the chosen sub-asset does not exist
	ErrUnknownSelection = errors.New("unknown selection")
	// ErrNoHistoricalData means no past price exists for the requested date or year
	ErrNoHistoricalData = errors.New("no historical data")
	// ErrNoCurrentRate means every current price path was exhausted
	ErrNoCurrentRate = errors.New("no current rate")
)

// SelectionError reports a missing or unknown sub-asset
type SelectionError struct {
	Selection string // crypto, stock or car
	Value     string // empty when nothing was chosen
}

func (e *SelectionError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("no %s selected", e.Selection)
	}
	return fmt.Sprintf("unknown %s %q", e.Selection, e.Value)
}

// Is matches ErrMissingSelection or ErrUnknownSelection
func (e *SelectionError) Is(target error) bool {
	if e.Value == "" {
		return target == ErrMissingSelection
	}
	return target == ErrUnknownSelection
}

// DataRangeError reports a date or year outside the available data.
// Earliest is the first available date, empty when unknown.
type DataRangeError struct {
	Label    string
	Key      string
	Date     string
	Earliest string
}

func (e *DataRangeError) Error() string {
	if e.Earliest == "" {
		return fmt.Sprintf("no historical data for %s on %s", e.Key, e.Date)
	}
	return fmt.Sprintf("no historical data for %s on %s (data starts %s)", e.Key, e.Date, e.Earliest)
}

func (e *DataRangeError) Unwrap() error {
	return ErrNoHistoricalData
}

// UserMessage renders err as a message fit for the person who asked for the
// calculation. Raw error text is never exposed.
func UserMessage(err error) string {
	var sel *SelectionError
	var dr *DataRangeError

	switch {
	case err == nil:
		return ""
	case errors.As(err, &sel):
		if sel.Value == "" {
			return fmt.Sprintf("Please select a %s.", sel.Selection)
		}
		return fmt.Sprintf("The selected %s was not found.", sel.Selection)
	case errors.As(err, &dr):
		if dr.Earliest != "" {
			return fmt.Sprintf("%s data starts on %s. Please pick a later date.", dr.Label, dr.Earliest)
		}
		return fmt.Sprintf("No %s data was found for the selected date.", dr.Label)
	case errors.Is(err, ErrInvalidAmount):
		return "Please enter an amount greater than zero."
	case errors.Is(err, ErrFutureDate):
		return "The date cannot be in the future."
	case errors.Is(err, ErrUnknownAssetClass):
		return "Unknown asset type."
	case errors.Is(err, ErrNoCurrentRate):
		return "Current prices are unavailable right now. Please try again later."
	case errors.Is(err, ErrNoHistoricalData):
		return "No data was found for the selected date."
	}
	return "The calculation could not be completed."
}
