package importer

import (
	"context"
	"strings"
	"time"

	"run-planner/internal/planner/model"
)

// Address type labels of the new template, in code order (1-based).
var addressTypeLabels = [...]string{"Undocumented", "Customer's Address", "Known Address"}

// ParseOldTemplateRow reads an old-template row into its two stops. Both stop
// locations are free text and always go through the resolver.
func (im *Importer) ParseOldTemplateRow(ctx context.Context, line int, fields map[string]string) ([]ImportedStop, error) {
	r := newRow(line, fields)
	base, err := r.header()
	if err != nil {
		return nil, err
	}
	if base.Frequency, err = r.frequency(); err != nil {
		return nil, err
	}
	dur, err := r.duration()
	if err != nil {
		return nil, err
	}

	legs := [2]struct{ loc, clock string }{{colStop1Loc, colStop1Time}, {colStop2Loc, colStop2Time}}
	out := make([]ImportedStop, 0, len(legs))
	for i, leg := range legs {
		loc, err := r.required(leg.loc)
		if err != nil {
			return nil, err
		}
		clock, err := r.clock(leg.clock)
		if err != nil {
			return nil, err
		}

		s := base
		s.Sequence = i + 1
		s.StopTimes = slotTimes(base.Frequency, clock, dur)

		res, err := im.resolver.Resolve(ctx, s.CustomerID, loc, im.threshold)
		if err != nil {
			return nil, err
		}
		applyResolution(&s, res)
		out = append(out, finish(line, s, &res))
	}
	return out, nil
}

// ParseNewTemplateRow reads a new-template row into one stop. The address type
// column decides how the address cell is interpreted.
func (im *Importer) ParseNewTemplateRow(ctx context.Context, line int, fields map[string]string) ([]ImportedStop, error) {
	r := newRow(line, fields)
	s, err := r.header()
	if err != nil {
		return nil, err
	}
	s.Sequence = 1
	s.StopName = r.get(colStopName)

	label, err := r.required(colAddrType)
	if err != nil {
		return nil, err
	}
	kind := addressKindOf(label)
	if kind == model.KindUnresolved {
		return nil, r.invalid(colAddrType, "unknown address type %q", label)
	}
	addr, err := r.required(colAddress)
	if err != nil {
		return nil, err
	}

	dur, err := r.duration()
	if err != nil {
		return nil, err
	}
	for i, col := range colDays {
		if r.get(col) == "" {
			continue
		}
		clock, err := r.clock(col)
		if err != nil {
			return nil, err
		}
		s.Frequency[i] = true
		s.StopTimes[i] = model.StopTime{Clock: clock, Duration: dur}
	}
	if !s.Frequency.Any() {
		return nil, r.invalid("Days", "no day has a stop time")
	}

	var res *model.Resolution
	switch kind {
	case model.KindManual:
		s.Address = model.ManualRef{Address: parseManualAddress(addr)}
	case model.KindLocation:
		name, _, _ := strings.Cut(addr, "(")
		c, err := im.resolver.ExactLocation(ctx, name)
		if err != nil {
			return nil, err
		}
		if c != nil {
			found := model.Resolution{AddressType: model.KindLocation, Input: addr, Match: c}
			res = &found
			break
		}
		fallthrough
	default:
		resolved, err := im.resolver.Resolve(ctx, s.CustomerID, addr, im.threshold)
		if err != nil {
			return nil, err
		}
		res = &resolved
	}
	if res != nil {
		applyResolution(&s, *res)
	}
	return []ImportedStop{finish(line, s, res)}, nil
}

// applyResolution points the stop at the matched source and names it after it.
func applyResolution(s *model.ServiceStop, res model.Resolution) {
	if !res.Resolved() {
		return
	}
	s.Address = res.Match.Ref()
	if name := res.Match.DisplayName(); name != "" {
		s.StopName = name
	}
}

func addressKindOf(label string) model.AddressKind {
	for i, l := range addressTypeLabels {
		if strings.EqualFold(strings.TrimSpace(label), l) {
			return model.AddressKind(i + 1)
		}
	}
	return model.KindUnresolved
}

// slotTimes sets clock/dur on every serviced slot; others keep the default.
func slotTimes(f model.Frequency, clock string, dur time.Duration) model.StopTimes {
	st := model.DefaultStopTimes()
	for i, on := range f {
		if on {
			st[i] = model.StopTime{Clock: clock, Duration: dur}
		}
	}
	return st
}
