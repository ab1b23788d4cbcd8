package address

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"run-planner/internal/metrics"
	"run-planner/internal/planner/model"
)

// AddressBook lists a customer's address-book entries.
type AddressBook interface {
	ListCustomerAddresses(ctx context.Context, customerID string) ([]model.CustomerAddress, error)
}

// LocationSearcher queries the non-customer location registry.
type LocationSearcher interface {
	SearchLocations(ctx context.Context, f model.LocationFilter) ([]model.Location, error)
}

// Directory is everything the resolver reads.
type Directory interface {
	AddressBook
	LocationSearcher
}

// DefaultThreshold requires every input token to be found.
const DefaultThreshold = 1.0

// Resolver decides which address source a free-text address refers to.
// It holds no state between calls.
type Resolver struct {
	dir Directory
	log zerolog.Logger
}

func NewResolver(dir Directory, logger zerolog.Logger) *Resolver {
	return &Resolver{dir: dir, log: logger}
}

// Resolve runs the address-book pass, the exact location name pass and then
// either the postcode pass or the name-fragment pass. A result below threshold
// everywhere comes back unresolved with every scored candidate attached.
func (r *Resolver) Resolve(ctx context.Context, customerID, input string, threshold float64) (model.Resolution, error) {
	res, err := r.resolve(ctx, customerID, input, threshold)
	switch {
	case err != nil:
		metrics.Resolutions.WithLabelValues("error").Inc()
	case res.AddressType == model.KindBook:
		metrics.Resolutions.WithLabelValues("book").Inc()
	case res.AddressType == model.KindLocation:
		metrics.Resolutions.WithLabelValues("location").Inc()
	default:
		metrics.Resolutions.WithLabelValues("unresolved").Inc()
	}
	return res, err
}

func (r *Resolver) resolve(ctx context.Context, customerID, input string, threshold float64) (model.Resolution, error) {
	tokens := Tokenize(input)
	log := r.log.With().Str("customer", customerID).Str("input", input).Logger()

	// 1) customer address book
	book, err := r.bookCandidates(ctx, customerID, tokens)
	if err != nil {
		return model.Resolution{}, err
	}
	if accepted(book, threshold) {
		log.Debug().Float64("similarity", book[0].Similarity).Msg("resolved from address book")
		return found(input, book[0]), nil
	}

	// 2) location whose name is exactly the input
	exact, err := r.ExactLocation(ctx, input)
	if err != nil {
		return model.Resolution{}, err
	}
	if exact != nil {
		log.Debug().Str("location", exact.AddressID).Msg("resolved by exact location name")
		return found(input, *exact), nil
	}

	// 3) postcode narrowed search, or name fragments when there is no postcode
	var locs []model.Candidate
	if pc, ok := postcodeToken(tokens); ok {
		locs, err = r.locationCandidates(ctx, tokens, model.LocationFilter{
			Postcode:           pc,
			AddressContainsAny: tokens,
		}, model.Location.FullAddress)
	} else if len(tokens) > 0 {
		locs, err = r.locationCandidates(ctx, tokens, model.LocationFilter{
			ActiveOnly:      true,
			NameContainsAny: tokens,
		}, func(l model.Location) string { return l.Name })
	}
	if err != nil {
		return model.Resolution{}, err
	}
	if accepted(locs, threshold) {
		log.Debug().Float64("similarity", locs[0].Similarity).Msg("resolved from locations")
		return found(input, locs[0]), nil
	}

	merged := make([]model.Candidate, 0, len(book)+len(locs))
	merged = append(merged, book...)
	merged = append(merged, locs...)
	rank(merged)
	log.Debug().Int("candidates", len(merged)).Msg("unresolved")
	return model.Resolution{AddressType: model.KindUnresolved, Input: input, Candidates: merged}, nil
}

// ExactLocation looks up an active location by its exact name. It returns nil
// without error when there is none.
func (r *Resolver) ExactLocation(ctx context.Context, name string) (*model.Candidate, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}
	locs, err := r.dir.SearchLocations(ctx, model.LocationFilter{NameEquals: name, ActiveOnly: true})
	if err != nil {
		return nil, lookupErr("locations by name", err)
	}
	if len(locs) == 0 {
		return nil, nil
	}
	c := locationCandidate(locs[0], 1)
	return &c, nil
}

func (r *Resolver) bookCandidates(ctx context.Context, customerID string, tokens []string) ([]model.Candidate, error) {
	if customerID == "" {
		return nil, nil
	}
	entries, err := r.dir.ListCustomerAddresses(ctx, customerID)
	if err != nil {
		return nil, lookupErr("customer addresses", err)
	}
	out := make([]model.Candidate, 0, len(entries))
	for i := range entries {
		e := entries[i]
		out = append(out, model.Candidate{
			AddressType: model.KindBook,
			AddressID:   e.ID,
			Similarity:  Similarity(tokens, e.Formatted()),
			Address:     e.Address,
			Formatted:   e.Formatted(),
			Book:        &e,
		})
	}
	rank(out)
	return out, nil
}

func (r *Resolver) locationCandidates(ctx context.Context, tokens []string, f model.LocationFilter, text func(model.Location) string) ([]model.Candidate, error) {
	locs, err := r.dir.SearchLocations(ctx, f)
	if err != nil {
		return nil, lookupErr("locations", err)
	}
	out := make([]model.Candidate, 0, len(locs))
	for _, l := range locs {
		out = append(out, locationCandidate(l, Similarity(tokens, text(l))))
	}
	rank(out)
	return out, nil
}

func locationCandidate(l model.Location, sim float64) model.Candidate {
	a := l.Address
	a.Name = l.Name
	return model.Candidate{
		AddressType: model.KindLocation,
		AddressID:   l.ID,
		Similarity:  sim,
		Address:     a,
		Formatted:   l.Formatted(),
		Location:    &l,
	}
}

func found(input string, c model.Candidate) model.Resolution {
	return model.Resolution{AddressType: c.AddressType, Input: input, Match: &c}
}

func lookupErr(op string, err error) error {
	if model.IsLookup(err) {
		return err
	}
	return &model.LookupError{Op: op, Err: err}
}
