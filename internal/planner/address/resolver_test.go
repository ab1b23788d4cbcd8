package address_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"run-planner/internal/planner/address"
	"run-planner/internal/planner/model"
	"run-planner/internal/store"
)

// failingDir returns err from whichever lookup is configured to fail.
type failingDir struct {
	*store.Memory
	bookErr, locErr error
	filters         []model.LocationFilter
}

func (d *failingDir) ListCustomerAddresses(ctx context.Context, id string) ([]model.CustomerAddress, error) {
	if d.bookErr != nil {
		return nil, d.bookErr
	}
	return d.Memory.ListCustomerAddresses(ctx, id)
}

func (d *failingDir) SearchLocations(ctx context.Context, f model.LocationFilter) ([]model.Location, error) {
	d.filters = append(d.filters, f)
	if d.locErr != nil {
		return nil, d.locErr
	}
	return d.Memory.SearchLocations(ctx, f)
}

func smithStreet() model.CustomerAddress {
	return model.CustomerAddress{
		ID: "ab-1", CustomerID: "C1", CompanyName: "Smith & Co",
		Address: model.Address{Addr1: "12 Smith Street", City: "Sydney", State: "NSW", Zip: "2000"},
	}
}

func newDir() *failingDir {
	mem := store.NewMemory()
	mem.AddCustomerAddress(smithStreet())
	mem.AddLocation(model.Location{
		ID: "L1", Name: "Sydney GPO",
		Address: model.Address{Addr1: "1 Martin Place", City: "Sydney", State: "NSW", Zip: "2000"},
	})
	mem.AddLocation(model.Location{
		ID: "L2", Name: "Parramatta LPO",
		Address: model.Address{Addr1: "2 Smith Street", City: "Parramatta", State: "NSW", Zip: "2150"},
	})
	mem.AddLocation(model.Location{
		ID: "L3", Name: "Old Depot", Inactive: true,
		Address: model.Address{Addr1: "9 Depot Road", City: "Sydney", State: "NSW", Zip: "2000"},
	})
	return &failingDir{Memory: mem}
}

func TestResolveBelowThresholdIsUnresolvedWithCandidates(t *testing.T) {
	r := address.NewResolver(newDir(), zerolog.Nop())

	res, err := r.Resolve(context.Background(), "C1", "12 smith st sydney", 0.8)
	require.NoError(t, err)
	assert.Equal(t, model.KindUnresolved, res.AddressType)
	assert.Nil(t, res.Match)
	require.NotEmpty(t, res.Candidates)
	assert.Equal(t, "ab-1", res.Candidates[0].AddressID)
	assert.Equal(t, 0.75, res.Candidates[0].Similarity)
}

func TestResolveThresholdIsInclusive(t *testing.T) {
	r := address.NewResolver(newDir(), zerolog.Nop())

	res, err := r.Resolve(context.Background(), "C1", "12 smith st sydney", 0.75)
	require.NoError(t, err)
	require.True(t, res.Resolved())
	assert.Equal(t, model.KindBook, res.AddressType)
	assert.Equal(t, "ab-1", res.Match.AddressID)
	assert.Equal(t, model.BookRef{ID: "ab-1"}, res.Match.Ref())
	assert.Equal(t, "Smith & Co", res.Match.DisplayName())
}

func TestResolveExactLocationName(t *testing.T) {
	d := newDir()
	r := address.NewResolver(d, zerolog.Nop())

	res, err := r.Resolve(context.Background(), "C1", "sydney gpo", 1)
	require.NoError(t, err)
	require.True(t, res.Resolved())
	assert.Equal(t, model.KindLocation, res.AddressType)
	assert.Equal(t, "L1", res.Match.AddressID)
	assert.Equal(t, 1.0, res.Match.Similarity)
	assert.Equal(t, "Sydney GPO (1 Martin Place , Sydney NSW 2000)", res.Match.Formatted)
}

func TestResolvePostcodePass(t *testing.T) {
	d := newDir()
	r := address.NewResolver(d, zerolog.Nop())

	res, err := r.Resolve(context.Background(), "", "2 Smith Street Parramatta NSW 2150", 1)
	require.NoError(t, err)
	require.True(t, res.Resolved())
	assert.Equal(t, "L2", res.Match.AddressID)

	last := d.filters[len(d.filters)-1]
	assert.Equal(t, "2150", last.Postcode)
	assert.False(t, last.ActiveOnly)
}

func TestResolveNameFragmentPassSkipsInactive(t *testing.T) {
	d := newDir()
	r := address.NewResolver(d, zerolog.Nop())

	res, err := r.Resolve(context.Background(), "", "old depot", 1)
	require.NoError(t, err)
	assert.False(t, res.Resolved())
	assert.Empty(t, res.Candidates)

	last := d.filters[len(d.filters)-1]
	assert.True(t, last.ActiveOnly)
	assert.Equal(t, []string{"old", "depot"}, last.NameContainsAny)
}

func TestResolveWithoutCustomerSkipsBook(t *testing.T) {
	d := newDir()
	d.bookErr = errors.New("must not be called")
	r := address.NewResolver(d, zerolog.Nop())

	_, err := r.Resolve(context.Background(), "", "12 smith st sydney", 0.8)
	require.NoError(t, err)
}

func TestResolveWrapsLookupFailures(t *testing.T) {
	boom := errors.New("connection refused")

	d := newDir()
	d.bookErr = boom
	_, err := address.NewResolver(d, zerolog.Nop()).Resolve(context.Background(), "C1", "anything", 1)
	require.Error(t, err)
	assert.True(t, model.IsLookup(err))
	assert.ErrorIs(t, err, boom)

	d = newDir()
	d.locErr = boom
	_, err = address.NewResolver(d, zerolog.Nop()).Resolve(context.Background(), "C1", "anything", 1)
	assert.True(t, model.IsLookup(err))
}

func TestResolveIsDeterministic(t *testing.T) {
	r := address.NewResolver(newDir(), zerolog.Nop())
	first, err := r.Resolve(context.Background(), "C1", "smith street", 1.1)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := r.Resolve(context.Background(), "C1", "smith street", 1.1)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}
