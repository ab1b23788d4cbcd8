package importer_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"run-planner/internal/fileio"
	"run-planner/internal/planner/address"
	"run-planner/internal/planner/importer"
	"run-planner/internal/planner/model"
	"run-planner/internal/store"
)

func directory() *store.Memory {
	mem := store.NewMemory()
	mem.AddCustomerAddress(model.CustomerAddress{
		ID: "ab-1", CustomerID: "C1", CompanyName: "Smith & Co",
		Address: model.Address{Addr1: "12 Smith Street", City: "Sydney", State: "NSW", Zip: "2000"},
	})
	mem.AddLocation(model.Location{
		ID: "L1", Name: "Sydney GPO",
		Address: model.Address{Addr1: "1 Martin Place", City: "Sydney", State: "NSW", Zip: "2000"},
	})
	return mem
}

func newImporter(dir address.Directory) *importer.Importer {
	return importer.New(address.NewResolver(dir, zerolog.Nop()), 0.8, 3, zerolog.Nop())
}

func sheet(header []string, rows ...[]string) fileio.Sheet {
	sh := fileio.Sheet{Header: header}
	for i, cells := range rows {
		fields := map[string]string{}
		for j, h := range header {
			if j < len(cells) {
				fields[h] = cells[j]
			}
		}
		sh.Records = append(sh.Records, fileio.Record{Line: i + 2, Fields: fields})
	}
	return sh
}

var oldHeader = []string{
	"Franchisee ID", "Customer ID", "Service ID", "Run Plan ID", "Operator ID", "Frequency",
	"Stop 1 Location", "Stop 1 Time", "Stop 2 Location", "Stop 2 Time", "Duration", "Notes",
}

var newHeader = []string{
	"Franchisee ID", "Customer ID", "Service ID", "Run Plan ID", "Operator ID", "Stop Name",
	"Address Type", "Address", "Duration", "Mon", "Tue", "Wed", "Thu", "Fri", "Adhoc", "Notes",
}

func TestImportOldTemplate(t *testing.T) {
	sh := sheet(oldHeader,
		[]string{"F1", "C1", "S1", "P1", "O1", "Mon, Wed", "12 Smith Street Sydney", "7:00", "Sydney GPO", "8:30 am", "10", "gate code 1234"},
		[]string{"F1", "C1", "S1", "P1", "O1", "Daily", "12 Smith Street Sydney", "07:00", "Nowhere Land", "09:00", "", ""},
		[]string{"F1", "", "S1", "P1", "O1", "Mon", "x", "07:00", "y", "08:00", "", ""},
	)

	rep, err := newImporter(directory()).Import(context.Background(), sh)
	require.NoError(t, err)
	assert.Equal(t, importer.TemplateOld, rep.Template)
	assert.NotEmpty(t, rep.BatchID)
	assert.Equal(t, 3, rep.Rows)
	require.Len(t, rep.Stops, 4)
	assert.Equal(t, 3, rep.Ready)

	first, second := rep.Stops[0], rep.Stops[1]
	assert.Equal(t, 2, first.Line)
	assert.Equal(t, 1, first.Stop.Sequence)
	assert.Equal(t, model.BookRef{ID: "ab-1"}, first.Stop.Address)
	assert.Equal(t, "Smith & Co", first.Stop.StopName)
	assert.Equal(t, "gate code 1234", first.Stop.Notes)
	assert.Equal(t, model.Frequency{true, false, true, false, false, false}, first.Stop.Frequency)
	assert.Equal(t, model.StopTime{Clock: "07:00", Duration: 10 * time.Minute}, first.Stop.StopTimes[0])
	assert.Equal(t, model.DefaultStopTime, first.Stop.StopTimes[1])
	assert.True(t, first.Ready)

	assert.Equal(t, 2, second.Stop.Sequence)
	assert.Equal(t, model.LocationRef{ID: "L1"}, second.Stop.Address)
	assert.Equal(t, "08:30", second.Stop.StopTimes[2].Clock)

	unresolved := rep.Stops[3]
	assert.Equal(t, 3, unresolved.Line)
	assert.False(t, unresolved.Ready)
	require.NotNil(t, unresolved.Resolution)
	assert.Equal(t, model.KindUnresolved, unresolved.Resolution.AddressType)
	assert.Nil(t, unresolved.Stop.Address)
	assert.NotEmpty(t, unresolved.Problems)

	require.Len(t, rep.Failures, 1)
	assert.Equal(t, 4, rep.Failures[0].Line)
	assert.Equal(t, "validation", rep.Failures[0].Kind)
	assert.Contains(t, rep.Failures[0].Error, "Customer ID")
}

func TestImportNewTemplate(t *testing.T) {
	sh := sheet(newHeader,
		[]string{"F1", "C1", "S1", "P1", "O1", "Morning", "Known Address", "Sydney GPO (1 Martin Place)", "", "07:30", "", "", "", "2:15 PM", "", ""},
		[]string{"F1", "C1", "S1", "P1", "O1", "Rose", "Undocumented", "5 Rose Lane, Newtown NSW 2042", "15", "", "10:00", "", "", "", "", ""},
		[]string{"F1", "C1", "S1", "P1", "O1", "Office", "Customer's Address", "12 Smith Street Sydney", "", "", "", "", "", "", "11:00", ""},
		[]string{"F1", "C1", "S1", "P1", "O1", "Office", "Somewhere", "12 Smith Street Sydney", "", "09:00", "", "", "", "", "", ""},
		[]string{"F1", "C1", "S1", "P1", "O1", "Office", "Undocumented", "1 Any St", "", "", "", "", "", "", "", ""},
	)

	rep, err := newImporter(directory()).Import(context.Background(), sh)
	require.NoError(t, err)
	assert.Equal(t, importer.TemplateNew, rep.Template)
	require.Len(t, rep.Stops, 3)
	assert.Equal(t, 3, rep.Ready)

	known := rep.Stops[0].Stop
	assert.Equal(t, model.LocationRef{ID: "L1"}, known.Address)
	assert.Equal(t, model.Frequency{true, false, false, false, true, false}, known.Frequency)
	assert.Equal(t, "14:15", known.StopTimes[4].Clock)
	assert.Equal(t, importer.DefaultDuration, known.StopTimes[0].Duration)

	manual := rep.Stops[1].Stop
	assert.Equal(t, model.ManualRef{Address: model.Address{Addr1: "5 Rose Lane", City: "Newtown", State: "NSW", Zip: "2042"}}, manual.Address)
	assert.Equal(t, "Rose", manual.StopName)
	assert.Equal(t, 15*time.Minute, manual.StopTimes[1].Duration)
	assert.Nil(t, rep.Stops[1].Resolution)

	book := rep.Stops[2].Stop
	assert.Equal(t, model.BookRef{ID: "ab-1"}, book.Address)
	assert.True(t, book.Frequency[model.SlotAdhoc])

	require.Len(t, rep.Failures, 2)
	assert.Equal(t, 5, rep.Failures[0].Line)
	assert.Contains(t, rep.Failures[0].Error, "Address Type")
	assert.Equal(t, 6, rep.Failures[1].Line)
	assert.Contains(t, rep.Failures[1].Error, "no day")
}

func TestImportFromCSV(t *testing.T) {
	csv := strings.Join([]string{
		"franchisee id,customer id,service id,run plan id,operator id,frequency,stop 1 location,stop 1 time,stop 2 location,stop 2 time",
		"F1,C1,S1,P1,O1,1;0;0;0;0;0,Sydney GPO,0700,Sydney GPO,0800",
		"F1,C1,S1,P1,O1,\"1,0,0,0,0,0\",Sydney GPO,0700,Sydney GPO,0800",
	}, "\n")
	sh, err := fileio.ReadSheet(strings.NewReader(csv), "run.csv", 1)
	require.NoError(t, err)

	rep, err := newImporter(directory()).Import(context.Background(), sh)
	require.NoError(t, err)
	assert.Equal(t, importer.TemplateOld, rep.Template)
	require.Len(t, rep.Failures, 1, "semicolon vector is not a day list")
	assert.Equal(t, 2, rep.Failures[0].Line)
	require.Len(t, rep.Stops, 2)
	assert.Equal(t, "07:00", rep.Stops[0].Stop.StopTimes[0].Clock)
}

type brokenDir struct{ *store.Memory }

func (brokenDir) SearchLocations(context.Context, model.LocationFilter) ([]model.Location, error) {
	return nil, errors.New("search unavailable")
}

func TestImportLookupFailureIsPerRow(t *testing.T) {
	sh := sheet(newHeader,
		[]string{"F1", "C1", "S1", "P1", "O1", "GPO", "Known Address", "Sydney GPO", "", "07:30", "", "", "", "", "", ""},
		[]string{"F1", "C1", "S1", "P1", "O1", "Rose", "Undocumented", "5 Rose Lane, Newtown NSW 2042", "", "07:30", "", "", "", "", "", ""},
	)

	rep, err := newImporter(brokenDir{directory()}).Import(context.Background(), sh)
	require.NoError(t, err)
	require.Len(t, rep.Failures, 1)
	assert.Equal(t, "lookup", rep.Failures[0].Kind)
	require.Len(t, rep.Stops, 1)
	assert.Equal(t, 3, rep.Stops[0].Line)
}

func TestImportCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	sh := sheet(newHeader, []string{"F1", "C1", "S1", "P1", "O1", "x", "Undocumented", "1 Any St", "", "07:30"})
	_, err := newImporter(directory()).Import(ctx, sh)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestImportEmptySheet(t *testing.T) {
	rep, err := newImporter(directory()).Import(context.Background(), sheet(newHeader))
	require.NoError(t, err)
	assert.Zero(t, rep.Rows)
	assert.Empty(t, rep.Stops)
	assert.Empty(t, rep.Failures)
}

func TestValidate(t *testing.T) {
	s := model.ServiceStop{CustomerID: "C1"}
	err := importer.Validate(s)
	require.Error(t, err)
	assert.True(t, model.IsValidation(err))
	assert.Contains(t, err.Error(), "at least one day")

	s = model.ServiceStop{
		CustomerID: "C1", ServiceID: "S1", PlanID: "P1", FranchiseeID: "F1", OperatorID: "O1",
		StopName: "GPO", Address: model.LocationRef{ID: "L1"}, Frequency: model.Frequency{true},
	}
	assert.NoError(t, importer.Validate(s))
	assert.Empty(t, importer.Problems(s))
}

func TestImportNewTemplateMissingAddressColumn(t *testing.T) {
	header := []string{
		"Franchisee ID", "Customer ID", "Service ID", "Run Plan ID", "Operator ID", "Stop Name",
		"Address Type", "Duration", "Mon", "Tue", "Wed", "Thu", "Fri", "Adhoc", "Notes",
	}
	sh := sheet(header,
		[]string{"F1", "C1", "S1", "P1", "O1", "Rose", "Undocumented", "", "07:30", "", "", "", "", "", ""},
	)

	rep, err := newImporter(directory()).Import(context.Background(), sh)
	require.NoError(t, err)
	assert.Empty(t, rep.Stops)
	assert.Zero(t, rep.Ready)
	require.Len(t, rep.Failures, 1)
	assert.Equal(t, 2, rep.Failures[0].Line)
	assert.Equal(t, "validation", rep.Failures[0].Kind)
	assert.Contains(t, rep.Failures[0].Error, "Address")
	assert.NotContains(t, rep.Failures[0].Error, "Address Type")
}

func TestImportKnownAddressFallsBackToResolver(t *testing.T) {
	sh := sheet(newHeader,
		[]string{"F1", "C1", "S1", "P1", "O1", "Office", "Known Address", "12 Smith Street Sydney", "", "07:30", "", "", "", "", "", ""},
		[]string{"F1", "C1", "S1", "P1", "O1", "Nowhere", "Known Address", "Nowhere Land", "", "07:30", "", "", "", "", "", ""},
	)

	rep, err := newImporter(directory()).Import(context.Background(), sh)
	require.NoError(t, err)
	require.Empty(t, rep.Failures)
	require.Len(t, rep.Stops, 2)

	hit := rep.Stops[0]
	require.NotNil(t, hit.Resolution)
	assert.Equal(t, model.KindBook, hit.Resolution.AddressType)
	assert.Equal(t, model.BookRef{ID: "ab-1"}, hit.Stop.Address)
	assert.True(t, hit.Ready)

	miss := rep.Stops[1]
	require.NotNil(t, miss.Resolution)
	assert.Equal(t, model.KindUnresolved, miss.Resolution.AddressType)
	assert.Nil(t, miss.Stop.Address)
	assert.False(t, miss.Ready)
}
