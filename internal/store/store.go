// Package store holds the address directory and service-stop persistence
// backends: in-memory, Postgres, Elasticsearch, plus caching and throttling
// decorators.
package store

import (
	"context"

	"github.com/google/uuid"

	"run-planner/internal/planner/address"
	"run-planner/internal/planner/model"
)

// StopRepo persists service stops.
type StopRepo interface {
	// SaveStops inserts or updates stops; stops without an ID get one.
	SaveStops(ctx context.Context, stops []model.ServiceStop) ([]model.ServiceStop, error)
	// ListStopsByPlan returns a plan's stops ordered by customer and sequence.
	ListStopsByPlan(ctx context.Context, planID string) ([]model.ServiceStop, error)
}

// LocationLister enumerates the whole location registry.
type LocationLister interface {
	ListLocations(ctx context.Context) ([]model.Location, error)
}

// combined joins an address book with a separate location backend.
type combined struct {
	address.AddressBook
	address.LocationSearcher
}

// Combine serves address books and location searches from different backends.
func Combine(book address.AddressBook, locs address.LocationSearcher) address.Directory {
	return combined{AddressBook: book, LocationSearcher: locs}
}

func newID() string { return uuid.NewString() }
