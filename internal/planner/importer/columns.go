package importer

import (
	"regexp"
	"strings"
)

// Header aliases, "|" separated, first one is the canonical name.
const (
	colFranchisee = "Franchisee ID|Franchisee Internal ID|Franchisee"
	colCustomer   = "Customer ID|Customer Internal ID|Customer"
	colService    = "Service ID|Service Internal ID|Service"
	colPlan       = "Run Plan ID|Plan ID|Run Plan"
	colOperator   = "Operator ID|Operator Internal ID|Operator"
	colFrequency  = "Frequency|Days"
	colStop1Loc   = "Stop 1 Location"
	colStop1Time  = "Stop 1 Time"
	colStop2Loc   = "Stop 2 Location"
	colStop2Time  = "Stop 2 Time"
	colDuration   = "Duration|Duration (mins)|Stop Duration"
	colNotes      = "Notes|Comments"
	colStopName   = "Stop Name"
	colAddrType   = "Address Type"
	colAddress    = "Address|Stop Address"
)

// slot columns in storage order
var colDays = [...]string{"Mon|Monday", "Tue|Tuesday", "Wed|Wednesday", "Thu|Thursday", "Fri|Friday", "Adhoc|Ad hoc|Ad-hoc"}

// knownHeaders holds every normalised alias of every column. A header that is
// some column's own name is never taken by the fuzzy passes of another one.
var knownHeaders = func() map[string]struct{} {
	all := []string{
		colFranchisee, colCustomer, colService, colPlan, colOperator, colFrequency,
		colStop1Loc, colStop1Time, colStop2Loc, colStop2Time, colDuration, colNotes,
		colStopName, colAddrType, colAddress,
	}
	all = append(all, colDays[:]...)
	m := make(map[string]struct{})
	for _, col := range all {
		for _, a := range strings.Split(col, "|") {
			m[normHeaderKey(a)] = struct{}{}
		}
	}
	return m
}()

var (
	reNonAlnum = regexp.MustCompile(`[^\p{L}\p{N}]+`)
	reNonDigit = regexp.MustCompile(`\D+`)
)

// normHeaderKey lowercases and collapses punctuation/space runs.
func normHeaderKey(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = reNonAlnum.ReplaceAllString(s, " ")
	return strings.Join(strings.Fields(s), " ")
}

// resolveKey finds the header in keys matching want. Tried in order: exact
// alias, normalised alias, header containing the alias, then a close
// misspelling of the alias with the same numbers. The last two skip headers
// that belong to another column, so "Address" never falls back to
// "Address Type".
func resolveKey(keys []string, want string) string {
	alts := strings.Split(want, "|")
	for i := range alts {
		alts[i] = strings.TrimSpace(alts[i])
	}

	for _, a := range alts {
		for _, k := range keys {
			if k == a {
				return k
			}
		}
	}

	norm := make([]string, len(alts))
	for i, a := range alts {
		norm[i] = normHeaderKey(a)
	}
	normKeys := make([]string, len(keys))
	for i, k := range keys {
		normKeys[i] = normHeaderKey(k)
	}

	for _, n := range norm {
		for i, nk := range normKeys {
			if nk == n {
				return keys[i]
			}
		}
	}

	for i, nk := range normKeys {
		if _, taken := knownHeaders[nk]; taken {
			normKeys[i] = ""
		}
	}

	// longest alias contained in a header wins; ties keep header order
	best, bestLen := "", 0
	for _, n := range norm {
		for i, nk := range normKeys {
			if nk == "" {
				continue
			}
			if containsWord(nk, n) && len(n) > bestLen {
				best, bestLen = keys[i], len(n)
			}
		}
	}
	if best != "" {
		return best
	}

	bestScore := 0.0
	for _, n := range norm {
		for i, nk := range normKeys {
			if nk == "" || digits(nk) != digits(n) {
				continue
			}
			if s := similarity(nk, n); s >= typoThreshold && s > bestScore {
				best, bestScore = keys[i], s
			}
		}
	}
	return best
}

// digits keeps only the numbers of a header; "Stop 1 Time" must never be
// taken for "Stop 2 Time".
func digits(s string) string {
	return reNonDigit.ReplaceAllString(s, "")
}

// containsWord reports whether the word sequence n appears in h on word
// boundaries ("stop name" in "stop name optional", but "mon" not in "common").
func containsWord(h, n string) bool {
	return strings.Contains(" "+h+" ", " "+n+" ")
}
