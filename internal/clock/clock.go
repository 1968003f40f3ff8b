package clock

import "time"

// Clock provides the store's current local time. Injected everywhere a
// timestamp is written so tests can pin it.
type Clock interface {
	Now() time.Time
}

// Location is a Clock in a real IANA timezone (the shop runs on
// Asia/Kolkata by default), instead of a hand-applied UTC offset.
type Location struct{ loc *time.Location }

func ForZone(name string) (*Location, error) {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, err
	}
	return &Location{loc: loc}, nil
}

func (c *Location) Now() time.Time { return time.Now().In(c.loc) }

// Fixed always returns T. Test helper.
type Fixed struct{ T time.Time }

func (f Fixed) Now() time.Time { return f.T }

// Stamp formats a clock reading the way the store persists timestamps.
func Stamp(c Clock) string { return c.Now().Format(time.RFC3339) }
