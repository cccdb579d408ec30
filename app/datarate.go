// Package app provides the traffic applications that run on the nodes: an
// on/off constant-rate source and a packet sink.
package app

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// ErrInvalidDataRate is returned when a data rate string cannot be parsed.
var ErrInvalidDataRate = errors.New("invalid data rate")

// DataRate is a rate in bits per second.
type DataRate float64

var dataRateUnits = map[string]float64{
	"":     1,
	"bps":  1,
	"b/s":  1,
	"kbps": 1e3,
	"Kbps": 1e3,
	"kb/s": 1e3,
	"Kb/s": 1e3,
	"Mbps": 1e6,
	"Mb/s": 1e6,
	"Gbps": 1e9,
	"Gb/s": 1e9,
	"Bps":  8,
	"B/s":  8,
	"kBps": 8e3,
	"KBps": 8e3,
	"kB/s": 8e3,
	"KB/s": 8e3,
	"MBps": 8e6,
	"MB/s": 8e6,
	"GBps": 8e9,
	"GB/s": 8e9,
}

// ParseDataRate parses strings such as "1Mbps", "500kb/s" or "2MB/s". A
// lower case "b" means bits and an upper case "B" means bytes. A bare number
// is in bits per second.
func ParseDataRate(s string) (DataRate, error) {
	s = strings.TrimSpace(s)

	split := strings.IndexFunc(s, func(r rune) bool {
		return unicode.IsLetter(r) || r == '/'
	})
	if split < 0 {
		split = len(s)
	}

	number := strings.TrimSpace(s[:split])
	unit := s[split:]

	value, err := strconv.ParseFloat(number, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDataRate, s)
	}

	scale, ok := dataRateUnits[unit]
	if !ok {
		return 0, fmt.Errorf("%w: unknown unit %q in %q",
			ErrInvalidDataRate, unit, s)
	}

	rate := value * scale
	if rate <= 0 {
		return 0, fmt.Errorf("%w: %q must be positive", ErrInvalidDataRate, s)
	}

	return DataRate(rate), nil
}

// BitsPerSecond returns the rate as a float.
func (r DataRate) BitsPerSecond() float64 {
	return float64(r)
}

func (r DataRate) String() string {
	switch {
	case r >= 1e9:
		return strconv.FormatFloat(float64(r)/1e9, 'g', -1, 64) + "Gbps"
	case r >= 1e6:
		return strconv.FormatFloat(float64(r)/1e6, 'g', -1, 64) + "Mbps"
	case r >= 1e3:
		return strconv.FormatFloat(float64(r)/1e3, 'g', -1, 64) + "kbps"
	default:
		return strconv.FormatFloat(float64(r), 'g', -1, 64) + "bps"
	}
}
