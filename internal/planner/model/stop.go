package model

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Slots is the number of frequency slots: Mon..Fri plus Adhoc.
const Slots = 6

// SlotAdhoc is the index of the adhoc slot.
const SlotAdhoc = 5

// SlotNames are the short labels of the slots in storage order.
var SlotNames = [Slots]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Adhoc"}

// Frequency flags the slots a stop is serviced on, in SlotNames order.
type Frequency [Slots]bool

// ParseFrequency reads the stored "1,0,0,0,0,1" form.
func ParseFrequency(s string) (Frequency, error) {
	var f Frequency
	parts := strings.Split(strings.TrimSpace(s), ",")
	if len(parts) != Slots {
		return f, fmt.Errorf("frequency %q: want %d flags, got %d", s, Slots, len(parts))
	}
	for i, p := range parts {
		switch strings.TrimSpace(p) {
		case "1":
			f[i] = true
		case "0":
		default:
			return f, fmt.Errorf("frequency %q: flag %d is not 0 or 1", s, i+1)
		}
	}
	return f, nil
}

func (f Frequency) String() string {
	parts := make([]string, Slots)
	for i, on := range f {
		parts[i] = "0"
		if on {
			parts[i] = "1"
		}
	}
	return strings.Join(parts, ",")
}

// Any reports whether at least one slot is set.
func (f Frequency) Any() bool {
	for _, on := range f {
		if on {
			return true
		}
	}
	return false
}

func (f Frequency) MarshalText() ([]byte, error) { return []byte(f.String()), nil }

func (f *Frequency) UnmarshalText(b []byte) error {
	v, err := ParseFrequency(string(b))
	if err != nil {
		return err
	}
	*f = v
	return nil
}

var reClock = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

// StopTime is one slot's start clock ("HH:MM") and duration.
type StopTime struct {
	Clock    string
	Duration time.Duration
}

// DefaultStopTime fills slots that are not serviced.
var DefaultStopTime = StopTime{Clock: "09:00", Duration: 5 * time.Minute}

// ParseStopTime reads the stored "HH:MM|millis" form.
func ParseStopTime(s string) (StopTime, error) {
	clock, ms, ok := strings.Cut(strings.TrimSpace(s), "|")
	if !ok {
		return StopTime{}, fmt.Errorf("stop time %q: missing duration", s)
	}
	if !reClock.MatchString(clock) {
		return StopTime{}, fmt.Errorf("stop time %q: bad clock", s)
	}
	n, err := strconv.ParseInt(ms, 10, 64)
	if err != nil || n < 0 {
		return StopTime{}, fmt.Errorf("stop time %q: bad duration", s)
	}
	return StopTime{Clock: clock, Duration: time.Duration(n) * time.Millisecond}, nil
}

func (t StopTime) String() string {
	return t.Clock + "|" + strconv.FormatInt(t.Duration.Milliseconds(), 10)
}

// StopTimes is parallel to Frequency.
type StopTimes [Slots]StopTime

// DefaultStopTimes has every slot set to DefaultStopTime.
func DefaultStopTimes() StopTimes {
	var st StopTimes
	for i := range st {
		st[i] = DefaultStopTime
	}
	return st
}

// ParseStopTimes reads the stored comma separated list of slot entries.
func ParseStopTimes(s string) (StopTimes, error) {
	var st StopTimes
	parts := strings.Split(strings.TrimSpace(s), ",")
	if len(parts) != Slots {
		return st, fmt.Errorf("stop times %q: want %d entries, got %d", s, Slots, len(parts))
	}
	for i, p := range parts {
		t, err := ParseStopTime(p)
		if err != nil {
			return st, err
		}
		st[i] = t
	}
	return st, nil
}

func (st StopTimes) String() string {
	parts := make([]string, Slots)
	for i, t := range st {
		parts[i] = t.String()
	}
	return strings.Join(parts, ",")
}

func (st StopTimes) MarshalText() ([]byte, error) { return []byte(st.String()), nil }

func (st *StopTimes) UnmarshalText(b []byte) error {
	v, err := ParseStopTimes(string(b))
	if err != nil {
		return err
	}
	*st = v
	return nil
}

// ServiceStop is a recurring stop on a run plan.
type ServiceStop struct {
	ID           string
	CustomerID   string
	ServiceID    string
	PlanID       string
	FranchiseeID string
	OperatorID   string
	StopName     string
	Frequency    Frequency
	StopTimes    StopTimes
	Address      AddressRef
	Notes        string
	Sequence     int

	// pass-through transfer / relief details
	TransferType     string
	TransferStopID   string
	ReliefOperatorID string
}

// AddressKind is the kind of the stop's address reference.
func (s ServiceStop) AddressKind() AddressKind { return KindOf(s.Address) }

// stopJSON is the flat record shape: type code plus three exclusive fields.
type stopJSON struct {
	ID               string      `json:"id,omitempty"`
	CustomerID       string      `json:"customerId"`
	ServiceID        string      `json:"serviceId"`
	PlanID           string      `json:"planId"`
	FranchiseeID     string      `json:"franchiseeId"`
	OperatorID       string      `json:"operatorId"`
	StopName         string      `json:"stopName"`
	Frequency        Frequency   `json:"frequency"`
	StopTimes        StopTimes   `json:"stopTimes"`
	AddressType      AddressKind `json:"addressType"`
	AddressBookID    string      `json:"addressBookId,omitempty"`
	LocationID       string      `json:"locationId,omitempty"`
	ManualAddress    *Address    `json:"manualAddress,omitempty"`
	Notes            string      `json:"notes,omitempty"`
	Sequence         int         `json:"sequence,omitempty"`
	TransferType     string      `json:"transferType,omitempty"`
	TransferStopID   string      `json:"transferStopId,omitempty"`
	ReliefOperatorID string      `json:"reliefOperatorId,omitempty"`
}

func (s ServiceStop) MarshalJSON() ([]byte, error) {
	w := stopJSON{
		ID: s.ID, CustomerID: s.CustomerID, ServiceID: s.ServiceID, PlanID: s.PlanID,
		FranchiseeID: s.FranchiseeID, OperatorID: s.OperatorID, StopName: s.StopName,
		Frequency: s.Frequency, StopTimes: s.StopTimes, AddressType: s.AddressKind(),
		Notes: s.Notes, Sequence: s.Sequence, TransferType: s.TransferType,
		TransferStopID: s.TransferStopID, ReliefOperatorID: s.ReliefOperatorID,
	}
	switch ref := s.Address.(type) {
	case ManualRef:
		a := ref.Address
		w.ManualAddress = &a
	case BookRef:
		w.AddressBookID = ref.ID
	case LocationRef:
		w.LocationID = ref.ID
	}
	return json.Marshal(w)
}

func (s *ServiceStop) UnmarshalJSON(b []byte) error {
	w := stopJSON{StopTimes: DefaultStopTimes()}
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	ref, err := NewAddressRef(w.AddressType, w.AddressBookID, w.LocationID, w.ManualAddress)
	if err != nil {
		return err
	}
	*s = ServiceStop{
		ID: w.ID, CustomerID: w.CustomerID, ServiceID: w.ServiceID, PlanID: w.PlanID,
		FranchiseeID: w.FranchiseeID, OperatorID: w.OperatorID, StopName: w.StopName,
		Frequency: w.Frequency, StopTimes: w.StopTimes, Address: ref,
		Notes: w.Notes, Sequence: w.Sequence, TransferType: w.TransferType,
		TransferStopID: w.TransferStopID, ReliefOperatorID: w.ReliefOperatorID,
	}
	return nil
}

// NewAddressRef builds the reference for a stored type code; only the field
// belonging to the type is read.
func NewAddressRef(kind AddressKind, bookID, locationID string, manual *Address) (AddressRef, error) {
	switch kind {
	case KindUnresolved:
		return nil, nil
	case KindManual:
		if manual == nil {
			return nil, &ValidationError{Field: "manualAddress", Msg: "required for manual address type"}
		}
		return ManualRef{Address: *manual}, nil
	case KindBook:
		if bookID == "" {
			return nil, &ValidationError{Field: "addressBookId", Msg: "required for address book type"}
		}
		return BookRef{ID: bookID}, nil
	case KindLocation:
		if locationID == "" {
			return nil, &ValidationError{Field: "locationId", Msg: "required for location type"}
		}
		return LocationRef{ID: locationID}, nil
	}
	return nil, &ValidationError{Field: "addressType", Msg: fmt.Sprintf("unknown type %d", kind)}
}
