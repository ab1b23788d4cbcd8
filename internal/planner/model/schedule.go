package model

import (
	"encoding/json"
	"time"
)

// Occurrence is a stop placed on one day of the week.
type Occurrence struct {
	Stop         ServiceStop `json:"stop"`
	EventStart   time.Time   `json:"eventStart"`
	EventEnd     time.Time   `json:"eventEnd"`
	StopTime     string      `json:"stopTime"`
	StopDuration int64       `json:"stopDuration"` // ms
	AddressType  string      `json:"addressType"`  // label
}

// Entry is one calendar/map unit: a single occurrence, or several that share
// time and address.
type Entry []Occurrence

func (e Entry) Grouped() bool { return len(e) > 1 }

// MarshalJSON keeps single occurrences as objects and groups as arrays.
func (e Entry) MarshalJSON() ([]byte, error) {
	if len(e) == 1 {
		return json.Marshal(e[0])
	}
	return json.Marshal([]Occurrence(e))
}

// WeeklyBucket is one column of the weekly view.
type WeeklyBucket struct {
	Day   int     `json:"day"` // 1..5 Mon..Fri, 6 adhoc
	Label string  `json:"label"`
	Date  string  `json:"date"`
	Stops []Entry `json:"stops"`
}
