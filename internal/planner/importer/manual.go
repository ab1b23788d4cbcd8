package importer

import (
	"regexp"
	"strings"

	"run-planner/internal/planner/model"
)

var reStatePostcode = regexp.MustCompile(`(?i)[,\s]+(NSW|VIC|QLD|SA|WA|TAS|NT|ACT)\s+(\d{4})\s*$`)

// parseManualAddress splits "street, suburb STATE 2000" leniently. Whatever
// cannot be placed stays in addr1.
func parseManualAddress(s string) model.Address {
	s = strings.TrimSpace(s)
	var a model.Address
	if m := reStatePostcode.FindStringSubmatchIndex(s); m != nil {
		a.State = strings.ToUpper(s[m[2]:m[3]])
		a.Zip = s[m[4]:m[5]]
		s = strings.TrimSpace(s[:m[0]])
	}
	if i := strings.LastIndex(s, ","); i >= 0 {
		a.Addr1 = strings.TrimSpace(s[:i])
		a.City = strings.TrimSpace(s[i+1:])
	} else {
		a.Addr1 = s
	}
	return a
}
