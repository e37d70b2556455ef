package ratelimit

import (
	"fmt"
	"strings"
	"time"
)

// Unit is the granularity of a gate's window. It names the window length,
// not a cap on it: "minute" means a one-minute rolling window.
type Unit string

const (
	Millisecond Unit = "millisecond"
	Second      Unit = "second"
	Minute      Unit = "minute"
	Hour        Unit = "hour"
)

// ParseUnit maps a config string onto a Unit, tolerating case and
// surrounding whitespace. Unknown units are an ErrInvalidConfig.
func ParseUnit(s string) (Unit, error) {
	switch u := Unit(strings.ToLower(strings.TrimSpace(s))); u {
	case Millisecond, Second, Minute, Hour:
		return u, nil
	default:
		return "", fmt.Errorf("%w: unknown window unit %q (want millisecond, second, minute or hour)", ErrInvalidConfig, s)
	}
}

// Duration returns the window length for the unit, or 0 if the unit is not
// one of the supported constants.
func (u Unit) Duration() time.Duration {
	switch u {
	case Millisecond:
		return time.Millisecond
	case Second:
		return time.Second
	case Minute:
		return time.Minute
	case Hour:
		return time.Hour
	}
	return 0
}
