package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// AddressKind is the stored address-type code of a service stop.
type AddressKind int

const (
	KindUnresolved AddressKind = 0
	KindManual     AddressKind = 1 // manually entered, stored as JSON
	KindBook       AddressKind = 2 // customer address-book entry
	KindLocation   AddressKind = 3 // non-customer location registry
)

var kindLabels = [...]string{"", "Manually Entered", "Address Book", "Non-Customer Location"}

// Label is the human readable name shown next to a stop.
func (k AddressKind) Label() string {
	if k < KindManual || k > KindLocation {
		return ""
	}
	return kindLabels[k]
}

// String returns the numeric code, which is also the sort key form.
func (k AddressKind) String() string { return strconv.Itoa(int(k)) }

// MarshalJSON encodes the unresolved kind as null.
func (k AddressKind) MarshalJSON() ([]byte, error) {
	if k == KindUnresolved {
		return []byte("null"), nil
	}
	return []byte(k.String()), nil
}

func (k *AddressKind) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "null" || s == "" {
		*k = KindUnresolved
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < int(KindUnresolved) || n > int(KindLocation) {
		return fmt.Errorf("invalid address type %q", s)
	}
	*k = AddressKind(n)
	return nil
}

// AddressRef points a stop at exactly one address source.
// Implemented by ManualRef, BookRef and LocationRef.
type AddressRef interface {
	Kind() AddressKind
	// Key is the type-specific identifier: manual JSON, book id or location id.
	Key() string
}

type ManualRef struct{ Address Address }

func (ManualRef) Kind() AddressKind { return KindManual }
func (r ManualRef) Key() string {
	b, _ := json.Marshal(r.Address)
	return string(b)
}

type BookRef struct{ ID string }

func (BookRef) Kind() AddressKind { return KindBook }
func (r BookRef) Key() string     { return r.ID }

type LocationRef struct{ ID string }

func (LocationRef) Kind() AddressKind { return KindLocation }
func (r LocationRef) Key() string     { return r.ID }

// KindOf tolerates a nil reference.
func KindOf(r AddressRef) AddressKind {
	if r == nil {
		return KindUnresolved
	}
	return r.Kind()
}

// Address is the normalised postal form shared by all three sources.
type Address struct {
	Name  string  `json:"name,omitempty"`
	Addr1 string  `json:"addr1"`
	Addr2 string  `json:"addr2"`
	City  string  `json:"city"`
	State string  `json:"state"`
	Zip   string  `json:"zip"`
	Lat   float64 `json:"lat,omitempty"`
	Lng   float64 `json:"lng,omitempty"`
}

// Line renders "addr1 addr2, city state zip".
func (a Address) Line() string {
	return fmt.Sprintf("%s %s, %s %s %s", a.Addr1, a.Addr2, a.City, a.State, a.Zip)
}

// CustomerAddress is one entry of a customer's address book.
type CustomerAddress struct {
	ID          string  `json:"id"`
	CustomerID  string  `json:"customerId"`
	CompanyName string  `json:"companyName"`
	Address     Address `json:"address"`
}

func (c CustomerAddress) Formatted() string { return c.Address.Line() }

// Location is a known non-customer location (post office, lodgement point...).
type Location struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Address  Address `json:"address"`
	Inactive bool    `json:"inactive"`
}

func (l Location) FullAddress() string { return l.Address.Line() }

// Formatted renders "name (full address)".
func (l Location) Formatted() string { return fmt.Sprintf("%s (%s)", l.Name, l.FullAddress()) }

// LocationFilter describes a location search. Set fields are AND-combined;
// the token lists are OR-combined within themselves.
type LocationFilter struct {
	NameEquals         string   // case-insensitive equality on name
	ActiveOnly         bool     // exclude inactive locations
	Postcode           string   // exact postcode
	AddressContainsAny []string // addr1 or addr2 contains any token
	NameContainsAny    []string // name contains any token
}

// Match is the reference evaluation of the filter.
func (f LocationFilter) Match(l Location) bool {
	if f.NameEquals != "" && !strings.EqualFold(l.Name, f.NameEquals) {
		return false
	}
	if f.ActiveOnly && l.Inactive {
		return false
	}
	if f.Postcode != "" && strings.TrimSpace(l.Address.Zip) != f.Postcode {
		return false
	}
	if len(f.AddressContainsAny) > 0 &&
		!containsAny(l.Address.Addr1, f.AddressContainsAny) && !containsAny(l.Address.Addr2, f.AddressContainsAny) {
		return false
	}
	if len(f.NameContainsAny) > 0 && !containsAny(l.Name, f.NameContainsAny) {
		return false
	}
	return true
}

func containsAny(s string, tokens []string) bool {
	s = strings.ToLower(s)
	for _, t := range tokens {
		if t != "" && strings.Contains(s, strings.ToLower(t)) {
			return true
		}
	}
	return false
}
