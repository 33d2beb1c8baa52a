package utils

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Reference IDs follow the pattern {base}-{yy}{nn}: a 2-digit year suffix
// plus a zero-padded per-year sequence, e.g. "xyz-2501".
const (
	refSeparator       = "-"
	refYearDigits      = 2
	refSequencePadding = 2
)

// NextReferenceID builds the next pledge reference for a base, given the
// reference IDs already issued for that base. Sequence numbering restarts
// each year.
func NextReferenceID(base string, now time.Time, existing []string) string {
	yearSuffix := fmt.Sprintf("%0*d", refYearDigits, now.Year()%100)

	next := 1
	for _, id := range existing {
		seq, ok := referenceSequence(id, base, yearSuffix)
		if ok && seq >= next {
			next = seq + 1
		}
	}

	return fmt.Sprintf("%s%s%s%0*d", base, refSeparator, yearSuffix, refSequencePadding, next)
}

// IsValidReferenceID reports whether a reference ID follows the
// {base}-{yy}{nn} pattern. IDs that predate the pattern are legacy entries.
func IsValidReferenceID(referenceID string) bool {
	parts := strings.Split(referenceID, refSeparator)
	if len(parts) != 2 {
		return false
	}
	suffix := parts[1]
	if len(suffix) < refYearDigits+1 {
		return false
	}
	if _, err := strconv.Atoi(suffix); err != nil {
		return false
	}
	year, err := strconv.Atoi(suffix[:refYearDigits])
	if err != nil {
		return false
	}
	// Reject years implausibly far in the future
	return year <= (time.Now().Year()%100)+10
}

func referenceSequence(id, base, yearSuffix string) (int, bool) {
	prefix := base + refSeparator + yearSuffix
	if !strings.HasPrefix(id, prefix) || !IsValidReferenceID(id) {
		return 0, false
	}
	seq, err := strconv.Atoi(id[len(prefix):])
	if err != nil {
		return 0, false
	}
	return seq, true
}

// Date formats accepted on input. Storage is always time.Time.
var dateLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02-01-2006",
}

// ParseDate parses a date string in any of the accepted layouts.
func ParseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// DecimalFromString converts string to decimal.Decimal
func DecimalFromString(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(s)
}

// FormatMoney renders a decimal with two fractional digits for reports.
func FormatMoney(d decimal.Decimal) string {
	return d.StringFixed(2)
}
