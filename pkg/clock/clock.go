// Package clock holds the time source and civil-date helpers shared by the
// streak machine and the schedule matcher.
package clock

import (
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"gorm.io/datatypes"
)

type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func System() Clock {
	return systemClock{}
}

func (systemClock) Now() time.Time {
	return time.Now().UTC()
}

// Fixed always reports the same instant. Used by tests and manual runs.
type Fixed time.Time

func (f Fixed) Now() time.Time {
	return time.Time(f)
}

// Location resolves an IANA zone name. Empty or unknown names resolve to UTC.
func Location(name string) *time.Location {
	name = strings.TrimSpace(name)
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Today is the civil date of now in loc.
func Today(c Clock, loc *time.Location) civil.Date {
	return civil.DateOf(c.Now().In(loc))
}

func ToDBDate(d civil.Date) datatypes.Date {
	return datatypes.Date(d.In(time.UTC))
}

func FromDBDate(d datatypes.Date) civil.Date {
	return civil.DateOf(time.Time(d))
}

func ToDBDatePtr(d *civil.Date) *datatypes.Date {
	if d == nil {
		return nil
	}
	v := ToDBDate(*d)
	return &v
}

func FromDBDatePtr(d *datatypes.Date) *civil.Date {
	if d == nil {
		return nil
	}
	v := FromDBDate(*d)
	return &v
}
