package importer

import (
	"strings"

	"run-planner/internal/planner/model"
)

// Problems lists why a stop cannot be saved yet; empty means valid.
func Problems(s model.ServiceStop) []string {
	var out []string
	req := func(v, name string) {
		if strings.TrimSpace(v) == "" {
			out = append(out, name+" is required")
		}
	}
	req(s.CustomerID, "customer")
	req(s.ServiceID, "service")
	req(s.PlanID, "run plan")
	req(s.FranchiseeID, "franchisee")
	req(s.OperatorID, "operator")
	req(s.StopName, "stop name")
	if s.Address == nil || s.Address.Key() == "" {
		out = append(out, "address is required")
	}
	if !s.Frequency.Any() {
		out = append(out, "at least one day must be selected")
	}
	return out
}

// Validate returns a ValidationError describing every problem, or nil.
func Validate(s model.ServiceStop) error {
	p := Problems(s)
	if len(p) == 0 {
		return nil
	}
	return &model.ValidationError{Msg: strings.Join(p, "; ")}
}
