package zone

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"time"
)

// SerialOverflowError means no safe monotonic successor exists for a
// serial. It is fatal: the author has to pick a new serial by hand.
type SerialOverflowError struct {
	Old    uint32
	Reason string
}

func (e *SerialOverflowError) Error() string {
	return fmt.Sprintf("cannot compute successor of serial %d: %s", e.Old, e.Reason)
}

// SerialIncreased reports whether new is a proper increase of old in the
// RFC 1982 serial number space.
func SerialIncreased(old, new uint32) bool {
	diff := new - old // wraps mod 2^32
	return 0 < diff && diff < math.MaxInt32
}

// dateShape splits a YYYYMMDDnn serial into its day and counter. ok is
// false when the serial does not have that shape (wrong width or the
// first eight digits are not a calendar date).
func dateShape(serial uint32) (day time.Time, counter uint32, ok bool) {
	s := strconv.FormatUint(uint64(serial), 10)
	if len(s) != 10 {
		return time.Time{}, 0, false
	}
	day, err := time.Parse("20060102", s[:8])
	if err != nil {
		return time.Time{}, 0, false
	}
	return day, serial % 100, true
}

// NextSerial computes the replacement serial for a zone whose content
// changed without the author increasing the serial. The shape of the old
// serial is inferred, never declared:
//
//   - YYYYMMDDnn updated today: the counter is incremented; past 99 there
//     is no same-day successor and the error is fatal rather than rolling
//     into tomorrow's date space.
//   - YYYYMMDDnn updated on a past day: today with counter 00.
//   - unix timestamp (between 1e9 and now): the current timestamp.
//   - anything else: old+1.
//
// The result is guaranteed to be an RFC 1982 increase of old.
func NextSerial(old uint32, now time.Time) (uint32, error) {
	next, err := nextSerial(old, now)
	if err != nil {
		return 0, err
	}
	if !SerialIncreased(old, next) {
		return 0, &SerialOverflowError{Old: old, Reason: "successor does not increase in serial space"}
	}
	return next, nil
}

func nextSerial(old uint32, now time.Time) (uint32, error) {
	today := now.Format("20060102")
	if day, counter, ok := dateShape(old); ok {
		switch dayStr := day.Format("20060102"); {
		case dayStr == today:
			if counter >= 99 {
				return 0, &SerialOverflowError{Old: old, Reason: "daily counter exhausted, bump the serial manually"}
			}
			return old + 1, nil
		case dayStr < today:
			n, err := strconv.ParseUint(today+"00", 10, 32)
			if err != nil {
				return 0, &SerialOverflowError{Old: old, Reason: "today's date does not fit a 32-bit serial"}
			}
			return uint32(n), nil
		}
		// Date in the future, fall through to a plain increment.
	} else if unix := now.Unix(); old > 1_000_000_000 && int64(old) < unix {
		return uint32(unix), nil
	}
	if old == math.MaxUint32 {
		return 0, &SerialOverflowError{Old: old, Reason: "serial is at the maximum representable value"}
	}
	return old + 1, nil
}

// ReplaceSerial returns a copy of text with the SOA serial field replaced.
// ok is false when the serial field cannot be located textually.
func ReplaceSerial(text []byte, serial uint32) ([]byte, bool) {
	start, end, ok := serialToken(text)
	if !ok {
		return nil, false
	}
	out := make([]byte, 0, len(text)+10)
	out = append(out, text[:start]...)
	out = strconv.AppendUint(out, uint64(serial), 10)
	out = append(out, text[end:]...)
	return out, true
}

// equalIgnoringSerial compares two zone texts with the SOA serial field
// blanked out in both, so a serial-only edit counts as "unchanged".
func equalIgnoringSerial(a, b []byte) bool {
	na, aok := ReplaceSerial(a, 0)
	nb, bok := ReplaceSerial(b, 0)
	if !aok || !bok {
		return bytes.Equal(a, b)
	}
	return bytes.Equal(na, nb)
}

// Policy decides how a zone's serial must evolve between two accepted
// revisions. Now is injectable for tests and defaults to time.Now.
type Policy struct {
	Now func() time.Time
}

// Decision is the outcome of evaluating the serial policy for one file.
type Decision struct {
	// Serial is the serial that must appear in the accepted content.
	Serial uint32
	// Rewrite is true when Serial differs from what the author wrote
	// and has to be substituted into the content before acceptance.
	Rewrite bool
}

// Evaluate applies the serial policy to a zone file transition. prev is
// nil for newly added files, which are accepted as-is.
func (p Policy) Evaluate(prev, next *ZoneFile) (Decision, error) {
	if prev == nil {
		return Decision{Serial: next.Serial}, nil
	}
	if equalIgnoringSerial(prev.Text, next.Text) {
		// Content untouched, the serial may stay where it is.
		return Decision{Serial: next.Serial}, nil
	}
	if SerialIncreased(prev.Serial, next.Serial) {
		return Decision{Serial: next.Serial}, nil
	}
	now := time.Now
	if p.Now != nil {
		now = p.Now
	}
	serial, err := NextSerial(prev.Serial, now())
	if err != nil {
		return Decision{}, err
	}
	return Decision{Serial: serial, Rewrite: true}, nil
}
