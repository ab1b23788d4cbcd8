package importer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveKey(t *testing.T) {
	tests := []struct {
		name string
		keys []string
		want string
		exp  string
	}{
		{"exact", []string{"Notes", "Customer ID"}, colCustomer, "Customer ID"},
		{"exact alias", []string{"Comments"}, colNotes, "Comments"},
		{"normalised", []string{"customer_id "}, colCustomer, "customer_id "},
		{"normalised beats containment", []string{"Stop Name (optional)", "stop-name"}, colStopName, "stop-name"},
		{"containment", []string{"Stop Name (optional)"}, colStopName, "Stop Name (optional)"},
		{"containment on word boundary only", []string{"Common Area"}, colDays[0], ""},
		{"typo", []string{"Frequncy"}, colFrequency, "Frequncy"},
		{"typo keeps numbers", []string{"Stop 2 Tme"}, colStop1Time, ""},
		{"other column not borrowed", []string{"Address Type", "Mon"}, colAddress, ""},
		{"other column skipped, free header used", []string{"Address Type", "Site Address"}, colAddress, "Site Address"},
		{"own column still exact", []string{"Address Type", "Address"}, colAddress, "Address"},
		{"missing", []string{"Notes"}, colOperator, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.exp, resolveKey(tt.keys, tt.want))
		})
	}
}

func TestSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, similarity("", ""))
	assert.Equal(t, 0.0, similarity("a", ""))
	assert.Equal(t, 1.0, similarity("notes", "notes"))
	assert.Equal(t, 0.5, similarity("ab", "ba"))
	assert.InDelta(t, 1-1.0/9, similarity("frequency", "frequncy"), 1e-9)
	assert.GreaterOrEqual(t, similarity("frequency", "freqeuncy"), typoThreshold)
	assert.Less(t, similarity("duration", "operator"), typoThreshold)
}

func TestDamerauLevenshtein(t *testing.T) {
	assert.Equal(t, 0, damerauLevenshtein("mon", "mon"))
	assert.Equal(t, 1, damerauLevenshtein("mon", "mno"))
	assert.Equal(t, 3, damerauLevenshtein("", "tue"))
	assert.Equal(t, 1, damerauLevenshtein("café", "cafe"))
}
