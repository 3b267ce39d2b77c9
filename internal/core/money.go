// Package core implements the ledger engine: the data model, time-window
// aggregation, day-level consolidation and annual reporting. Everything in
// this package is a pure function over an in-memory Snapshot; persistence
// belongs to the store package.
package core

import (
	"math"
	"strconv"
	"strings"
	"unicode"
)

// Money is an amount in fen (hundredths of a yuan). Ledger arithmetic is
// integer arithmetic; floats appear only at the formatting boundary.
type Money int64

// ParseAmount converts a decimal string to Money with half-up rounding on
// the third decimal place. Both dot (12.34) and comma (12,34) separators
// are accepted. Zero, negative and non-numeric input is rejected.
func ParseAmount(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return 0, ErrInvalidAmount
	}
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, ErrInvalidAmount
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	for _, r := range fracPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	// Prevent overflow when multiplying by 100.
	const maxSafeInt64 = (1<<63 - 1) / 100
	if iv > maxSafeInt64 {
		return 0, ErrInvalidAmount
	}
	var fracFen int64
	if len(fracPart) > 0 {
		d1 := int64(fracPart[0] - '0')
		fracFen = d1 * 10
		if len(fracPart) > 1 {
			d2 := int64(fracPart[1] - '0')
			fracFen += d2
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				fracFen++
			}
		}
	}
	fen := iv*100 + fracFen
	if fen <= 0 {
		return 0, ErrInvalidAmount
	}
	return Money(fen), nil
}

// String formats the amount as a plain decimal with two places, e.g. "12.34".
func (m Money) String() string {
	neg := m < 0
	if neg {
		m = -m
	}
	s := strconv.FormatInt(int64(m)/100, 10) + "." + pad2(int64(m)%100)
	if neg {
		return "-" + s
	}
	return s
}

// Grouped formats the amount with thousands separators and two decimal
// places, e.g. "1,234.56". Used by the report summary and templates.
func (m Money) Grouped() string {
	neg := m < 0
	if neg {
		m = -m
	}
	whole := strconv.FormatInt(int64(m)/100, 10)
	var b strings.Builder
	lead := len(whole) % 3
	if lead == 0 {
		lead = 3
	}
	b.WriteString(whole[:lead])
	for i := lead; i < len(whole); i += 3 {
		b.WriteByte(',')
		b.WriteString(whole[i : i+3])
	}
	out := b.String() + "." + pad2(int64(m)%100)
	if neg {
		return "-" + out
	}
	return out
}

// MarshalJSON writes the amount as a decimal yuan number so the persisted
// document stays readable and round-trips with hand-edited backups.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatFloat(float64(m)/100, 'f', -1, 64)), nil
}

// UnmarshalJSON accepts a decimal yuan number (or quoted number) and
// converts it to fen with half-up rounding.
func (m *Money) UnmarshalJSON(data []byte) error {
	s := strings.Trim(strings.TrimSpace(string(data)), `"`)
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return ErrInvalidAmount
	}
	*m = Money(math.Round(f * 100))
	return nil
}

func pad2(n int64) string {
	if n < 10 {
		return "0" + strconv.FormatInt(n, 10)
	}
	return strconv.FormatInt(n, 10)
}
