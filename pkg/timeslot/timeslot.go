// Package timeslot canonicalizes the "HH:MM AM" slot labels used for
// schedules, overrides and appointments.
package timeslot

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var rePattern = regexp.MustCompile(`^(\d{1,2}):(\d{2})\s*([AaPp][Mm])$`)

type parts struct {
	hour   int
	minute string
	marker string
}

func parse(raw string) (parts, bool) {
	m := rePattern.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return parts{}, false
	}
	h, err := strconv.Atoi(m[1])
	if err != nil || h < 1 || h > 12 {
		return parts{}, false
	}
	if mm, err := strconv.Atoi(m[2]); err != nil || mm > 59 {
		return parts{}, false
	}
	return parts{hour: h, minute: m[2], marker: strings.ToUpper(m[3])}, true
}

// Normalize turns "8:00 am" into "08:00 AM". Input that does not look like a
// 12-hour clock label is returned unchanged. Normalize(Normalize(s)) == Normalize(s).
func Normalize(raw string) string {
	p, ok := parse(raw)
	if !ok {
		return raw
	}
	return p.String()
}

// IsCanonical reports whether raw parses as a slot label.
func IsCanonical(raw string) bool {
	_, ok := parse(raw)
	return ok
}

// Minutes returns minutes since midnight for a slot label, or -1 when the
// label does not parse. Used to order slots chronologically.
func Minutes(raw string) int {
	p, ok := parse(raw)
	if !ok {
		return -1
	}
	h := p.hour % 12
	if p.marker == "PM" {
		h += 12
	}
	mm, _ := strconv.Atoi(p.minute)
	return h*60 + mm
}

// Less orders slots by time of day; unparseable labels sort last, lexically.
func Less(a, b string) bool {
	ma, mb := Minutes(a), Minutes(b)
	switch {
	case ma < 0 && mb < 0:
		return a < b
	case ma < 0:
		return false
	case mb < 0:
		return true
	case ma != mb:
		return ma < mb
	default:
		return a < b
	}
}

func (p parts) String() string {
	return fmt.Sprintf("%02d:%s %s", p.hour, p.minute, p.marker)
}
