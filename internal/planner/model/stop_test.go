package model_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"run-planner/internal/planner/model"
)

func TestParseFrequency(t *testing.T) {
	f, err := model.ParseFrequency("1,0,1,0,0,1")
	require.NoError(t, err)
	assert.Equal(t, model.Frequency{true, false, true, false, false, true}, f)
	assert.Equal(t, "1,0,1,0,0,1", f.String())
	assert.True(t, f.Any())

	for _, bad := range []string{"", "1,0,1", "1,0,1,0,0,2", "1,0,1,0,0,1,0"} {
		_, err := model.ParseFrequency(bad)
		assert.Error(t, err, bad)
	}
	assert.False(t, model.Frequency{}.Any())
}

func TestStopTimes(t *testing.T) {
	st, err := model.ParseStopTimes("07:00|300000,09:00|300000,09:00|300000,13:30|600000,09:00|300000,09:00|300000")
	require.NoError(t, err)
	assert.Equal(t, model.StopTime{Clock: "13:30", Duration: 10 * time.Minute}, st[3])
	assert.Equal(t, model.DefaultStopTime, st[1])

	_, err = model.ParseStopTime("25:00|300000")
	assert.Error(t, err)
	_, err = model.ParseStopTime("07:00")
	assert.Error(t, err)
	_, err = model.ParseStopTime("07:00|-1")
	assert.Error(t, err)

	assert.Equal(t, "09:00|300000", model.DefaultStopTimes()[5].String())
}

func TestAddressKindJSON(t *testing.T) {
	b, err := json.Marshal(model.KindUnresolved)
	require.NoError(t, err)
	assert.Equal(t, "null", string(b))

	var k model.AddressKind
	require.NoError(t, json.Unmarshal([]byte(`"3"`), &k))
	assert.Equal(t, model.KindLocation, k)
	assert.Error(t, json.Unmarshal([]byte(`7`), &k))

	assert.Equal(t, "Manually Entered", model.KindManual.Label())
	assert.Equal(t, "Address Book", model.KindBook.Label())
	assert.Equal(t, "Non-Customer Location", model.KindLocation.Label())
	assert.Equal(t, "", model.KindUnresolved.Label())
}

func TestServiceStopJSONKeepsOneAddressField(t *testing.T) {
	s := model.ServiceStop{
		CustomerID: "C1", StopName: "GPO",
		Frequency: model.Frequency{true}, StopTimes: model.DefaultStopTimes(),
		Address: model.LocationRef{ID: "L9"},
	}
	b, err := json.Marshal(s)
	require.NoError(t, err)

	var flat map[string]any
	require.NoError(t, json.Unmarshal(b, &flat))
	assert.Equal(t, float64(3), flat["addressType"])
	assert.Equal(t, "L9", flat["locationId"])
	assert.NotContains(t, flat, "addressBookId")
	assert.NotContains(t, flat, "manualAddress")
	assert.Equal(t, "1,0,0,0,0,0", flat["frequency"])
}

func TestServiceStopJSONRequiresTypeField(t *testing.T) {
	var s model.ServiceStop
	err := json.Unmarshal([]byte(`{"addressType":2,"locationId":"L1"}`), &s)
	require.Error(t, err)
	assert.True(t, model.IsValidation(err))

	err = json.Unmarshal([]byte(`{"addressType":1,"manualAddress":{"addr1":"1 George St","city":"Sydney","state":"NSW","zip":"2000"}}`), &s)
	require.NoError(t, err)
	require.IsType(t, model.ManualRef{}, s.Address)
	assert.Equal(t, "Sydney", s.Address.(model.ManualRef).Address.City)
	assert.Equal(t, model.DefaultStopTimes(), s.StopTimes, "missing stop times fall back to defaults")
}

func TestLocationFilterMatch(t *testing.T) {
	l := model.Location{Name: "Sydney GPO", Address: model.Address{Addr1: "1 Martin Place", Addr2: "Level 2", Zip: "2000"}}

	assert.True(t, model.LocationFilter{NameEquals: "sydney gpo"}.Match(l))
	assert.False(t, model.LocationFilter{NameEquals: "sydney"}.Match(l))
	assert.True(t, model.LocationFilter{Postcode: "2000", AddressContainsAny: []string{"level"}}.Match(l))
	assert.False(t, model.LocationFilter{Postcode: "2001"}.Match(l))
	assert.True(t, model.LocationFilter{NameContainsAny: []string{"nowhere", "gpo"}}.Match(l))

	l.Inactive = true
	assert.False(t, model.LocationFilter{ActiveOnly: true}.Match(l))
	assert.True(t, model.LocationFilter{}.Match(l))
}
