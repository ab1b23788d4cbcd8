package store

import (
	"context"
	"sort"
	"sync"

	"run-planner/internal/planner/model"
)

// Memory is an in-process directory and stop repository, used when no
// DATABASE_URL is configured and in tests. Lists keep insertion order.
type Memory struct {
	mu        sync.RWMutex
	books     map[string][]model.CustomerAddress // customer -> address book
	locations []model.Location
	stops     map[string]model.ServiceStop // id -> stop
	stopOrder []string
}

func NewMemory() *Memory {
	return &Memory{
		books: map[string][]model.CustomerAddress{},
		stops: map[string]model.ServiceStop{},
	}
}

// AddCustomerAddress appends to the customer's address book.
func (m *Memory) AddCustomerAddress(a model.CustomerAddress) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.books[a.CustomerID] = append(m.books[a.CustomerID], a)
}

// AddLocation appends to the location registry.
func (m *Memory) AddLocation(l model.Location) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.locations = append(m.locations, l)
}

func (m *Memory) ListCustomerAddresses(_ context.Context, customerID string) ([]model.CustomerAddress, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]model.CustomerAddress(nil), m.books[customerID]...), nil
}

func (m *Memory) SearchLocations(_ context.Context, f model.LocationFilter) ([]model.Location, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []model.Location
	for _, l := range m.locations {
		if f.Match(l) {
			out = append(out, l)
		}
	}
	return out, nil
}

func (m *Memory) ListLocations(_ context.Context) ([]model.Location, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]model.Location(nil), m.locations...), nil
}

func (m *Memory) SaveStops(_ context.Context, stops []model.ServiceStop) ([]model.ServiceStop, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.ServiceStop, len(stops))
	for i, s := range stops {
		if s.ID == "" {
			s.ID = newID()
		}
		if _, ok := m.stops[s.ID]; !ok {
			m.stopOrder = append(m.stopOrder, s.ID)
		}
		m.stops[s.ID] = s
		out[i] = s
	}
	return out, nil
}

func (m *Memory) ListStopsByPlan(_ context.Context, planID string) ([]model.ServiceStop, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []model.ServiceStop
	for _, id := range m.stopOrder {
		if s := m.stops[id]; s.PlanID == planID {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CustomerID != out[j].CustomerID {
			return out[i].CustomerID < out[j].CustomerID
		}
		return out[i].Sequence < out[j].Sequence
	})
	return out, nil
}
