// Package core holds the domain model and the pure computations over it.
//
// This file contains parsing of currency-formatted strings as they appear
// in spreadsheet exports ("$1,200.00") and in store records (plain decimal
// strings), plus the shared display formatting.
package core

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

// NoValueSentinel is the placeholder spreadsheet exports use for an empty
// money cell. It decodes to an absent value, not zero.
const NoValueSentinel = "$ -"

var ErrUnparsableAmount = errors.New("unparsable amount")

// ParseCurrency parses a currency-formatted string ("$1,200.00") into a
// float. The sentinel "$ -" and the empty string yield nil. A string that
// still fails to parse after cleanup is an error; NaN is never returned.
func ParseCurrency(s string) (*float64, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == NoValueSentinel {
		return nil, nil
	}
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)
	if s == "" || s == "-" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		// ParseFloat accepts "NaN" and "Inf" spellings; those are not
		// amounts and must not reach the aggregations or the encoder.
		return nil, ErrUnparsableAmount
	}
	return &v, nil
}

// ParseDecimal parses a plain decimal string as stored in the document
// store. Empty or unparsable input maps to nil rather than an error: the
// store's numeric encoding uses "" for absent values, and a corrupt field
// must never surface as NaN.
func ParseDecimal(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// FormatDecimal renders a numeric field for the store: plain decimal
// string, nil as "".
func FormatDecimal(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

// FormatAmount renders an amount for display with two decimals.
func FormatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
