package model

// Candidate is one scored address source considered by the resolver.
type Candidate struct {
	AddressType AddressKind      `json:"addressType"`
	AddressID   string           `json:"addressId"`
	Similarity  float64          `json:"similarity"`
	Address     Address          `json:"address"`
	Formatted   string           `json:"formatted"`
	Book        *CustomerAddress `json:"book,omitempty"`     // raw source for book candidates
	Location    *Location        `json:"location,omitempty"` // raw source for location candidates
}

// Ref converts the candidate into a stop address reference.
func (c Candidate) Ref() AddressRef {
	switch c.AddressType {
	case KindBook:
		return BookRef{ID: c.AddressID}
	case KindLocation:
		return LocationRef{ID: c.AddressID}
	}
	return nil
}

// DisplayName is the stop name derived from the matched source.
func (c Candidate) DisplayName() string {
	switch {
	case c.Book != nil:
		return c.Book.CompanyName
	case c.Location != nil:
		return c.Location.Name
	}
	return ""
}

// Resolution is the outcome of resolving one free-text address.
// AddressType is KindUnresolved when nothing met the threshold; Candidates then
// holds everything that was scored, best first.
type Resolution struct {
	AddressType AddressKind `json:"addressType"`
	Input       string      `json:"address"`
	Match       *Candidate  `json:"match,omitempty"`
	Candidates  []Candidate `json:"candidates,omitempty"`
}

func (r Resolution) Resolved() bool { return r.AddressType != KindUnresolved && r.Match != nil }
