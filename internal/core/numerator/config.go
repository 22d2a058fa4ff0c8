// Package numerator provides domain contracts for document auto-numbering.
package numerator

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Document prefixes.
const (
	PrefixBill  = "INV"
	PrefixOrder = "ORD"
)

// DefaultPadWidth is the width of the daily sequence suffix.
const DefaultPadWidth = 4

// dayLayout is the date part embedded in every number.
const dayLayout = "20060102"

// Config holds numbering configuration for one document type.
type Config struct {
	// Prefix added to all numbers (e.g., "INV", "ORD")
	Prefix string

	// PadWidth is the minimum width of the sequence suffix (default 4)
	PadWidth int
}

// DefaultConfig returns the daily numbering scheme PREFIX-YYYYMMDDNNNN.
func DefaultConfig(prefix string) Config {
	return Config{
		Prefix:   prefix,
		PadWidth: DefaultPadWidth,
	}
}

// Key is the counter key; the sequence restarts every calendar day.
func (c Config) Key(day time.Time) string {
	return c.Prefix + "_" + day.Format(dayLayout)
}

// Stem is the number without its sequence suffix, e.g. "INV-20261019".
func (c Config) Stem(day time.Time) string {
	return c.Prefix + "-" + day.Format(dayLayout)
}

// Format renders the final number string.
func (c Config) Format(day time.Time, seq int64) string {
	pad := c.PadWidth
	if pad <= 0 {
		pad = DefaultPadWidth
	}
	return fmt.Sprintf("%s%0*d", c.Stem(day), pad, seq)
}

// Parsed is a decomposed document number.
type Parsed struct {
	Prefix string
	Day    time.Time
	Seq    int64
}

// Parse splits PREFIX-YYYYMMDDNNNN. ok is false for anything else.
func Parse(number string) (Parsed, bool) {
	prefix, rest, found := strings.Cut(number, "-")
	if !found || prefix == "" || len(rest) <= len(dayLayout) {
		return Parsed{}, false
	}

	day, err := time.Parse(dayLayout, rest[:len(dayLayout)])
	if err != nil {
		return Parsed{}, false
	}

	seq, err := strconv.ParseInt(rest[len(dayLayout):], 10, 64)
	if err != nil || seq <= 0 {
		return Parsed{}, false
	}

	return Parsed{Prefix: prefix, Day: day, Seq: seq}, true
}
