package importer

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"run-planner/internal/planner/model"
	"run-planner/internal/utils"
)

// DefaultDuration applies when a row has no duration cell.
const DefaultDuration = 5 * time.Minute

// row gives header-alias access to one record.
type row struct {
	line   int
	fields map[string]string
	keys   []string
}

func newRow(line int, fields map[string]string) row {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	// stable header order for the containment/typo fallbacks
	sort.Strings(keys)
	return row{line: line, fields: fields, keys: keys}
}

func (r row) get(col string) string {
	k := resolveKey(r.keys, col)
	if k == "" {
		return ""
	}
	return strings.TrimSpace(r.fields[k])
}

func (r row) required(col string) (string, error) {
	v := r.get(col)
	if v == "" {
		return "", r.invalid(col, "is required")
	}
	return v, nil
}

func (r row) invalid(col, format string, args ...any) error {
	name, _, _ := strings.Cut(col, "|")
	return &model.ValidationError{Line: r.line, Field: name, Msg: fmt.Sprintf(format, args...)}
}

// header reads the identifiers every template carries.
func (r row) header() (model.ServiceStop, error) {
	var s model.ServiceStop
	var err error
	if s.FranchiseeID, err = r.required(colFranchisee); err != nil {
		return s, err
	}
	if s.CustomerID, err = r.required(colCustomer); err != nil {
		return s, err
	}
	if s.ServiceID, err = r.required(colService); err != nil {
		return s, err
	}
	if s.PlanID, err = r.required(colPlan); err != nil {
		return s, err
	}
	if s.OperatorID, err = r.required(colOperator); err != nil {
		return s, err
	}
	s.Notes = r.get(colNotes)
	s.StopTimes = model.DefaultStopTimes()
	return s, nil
}

func (r row) duration() (time.Duration, error) {
	v := r.get(colDuration)
	if v == "" {
		return DefaultDuration, nil
	}
	mins, ok := utils.ParseNumber(v)
	if !ok || mins <= 0 {
		return 0, r.invalid(colDuration, "%q is not a number of minutes", v)
	}
	return time.Duration(mins * float64(time.Minute)), nil
}

func (r row) clock(col string) (string, error) {
	v := r.get(col)
	c, ok := utils.ParseClock(v)
	if !ok {
		return "", r.invalid(col, "%q is not a time of day", v)
	}
	return c, nil
}

var (
	reVector   = regexp.MustCompile(`^[01](\s*,\s*[01]){5}$`)
	reDaySplit = regexp.MustCompile(`[^a-z]+`)
)

var dayPrefixes = [model.Slots][]string{
	{"mon"}, {"tue"}, {"wed"}, {"thu"}, {"fri"}, {"adhoc", "adh"},
}

// frequency reads "Mon, Wed, Fri", "Daily", "Adhoc" or a "1,0,1,0,1,0" vector.
func (r row) frequency() (model.Frequency, error) {
	raw, err := r.required(colFrequency)
	if err != nil {
		return model.Frequency{}, err
	}
	if reVector.MatchString(raw) {
		f, err := model.ParseFrequency(strings.ReplaceAll(raw, " ", ""))
		if err != nil {
			return f, r.invalid(colFrequency, "%v", err)
		}
		if !f.Any() {
			return f, r.invalid(colFrequency, "no day selected")
		}
		return f, nil
	}

	s := strings.ToLower(raw)
	s = strings.NewReplacer("ad hoc", "adhoc", "ad-hoc", "adhoc").Replace(s)
	var f model.Frequency
	for _, tok := range reDaySplit.Split(s, -1) {
		if tok == "" {
			continue
		}
		if tok == "daily" || tok == "weekdays" {
			for i := 0; i < model.SlotAdhoc; i++ {
				f[i] = true
			}
			continue
		}
		i := daySlot(tok)
		if i < 0 {
			return f, r.invalid(colFrequency, "unknown day %q", tok)
		}
		f[i] = true
	}
	if !f.Any() {
		return f, r.invalid(colFrequency, "no day selected")
	}
	return f, nil
}

func daySlot(tok string) int {
	for i, prefixes := range dayPrefixes {
		for _, p := range prefixes {
			if strings.HasPrefix(tok, p) {
				return i
			}
		}
	}
	return -1
}
