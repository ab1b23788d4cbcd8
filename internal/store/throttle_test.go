package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"run-planner/internal/planner/model"
)

func TestThrottledPassesThrough(t *testing.T) {
	m := NewMemory()
	m.AddLocation(model.Location{ID: "L1", Name: "GPO"})
	th := NewThrottled(m, 0, 0)

	got, err := th.SearchLocations(context.Background(), model.LocationFilter{})
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestThrottledHonoursCancellation(t *testing.T) {
	th := NewThrottled(NewMemory(), 0.001, 1)
	ctx := context.Background()
	_, err := th.ListCustomerAddresses(ctx, "C1") // uses the single burst token
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(ctx)
	cancel()
	_, err = th.ListCustomerAddresses(ctx, "C1")
	assert.Error(t, err)
}
