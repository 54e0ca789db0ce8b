package model

import (
	"errors"
	"slices"
	"strings"
)

const (
	MaxLocations       = 3
	MaxEmploymentTypes = 2
)

var ErrRoleRequired = errors.New("role is required")

var EmploymentTypeOptions = []Option{
	{Label: "Full Time", Value: "full_time"},
	{Label: "Part Time", Value: "part_time"},
	{Label: "Internship", Value: "internship"},
	{Label: "Contract", Value: "contract"},
	{Label: "Temporary", Value: "temporary"},
	{Label: "Free Lance", Value: "free_lance"},
}

// DatePostedOptions are windows in seconds; the empty value means all time.
var DatePostedOptions = []Option{
	{Label: "All time", Value: ""},
	{Label: "Today", Value: "86400"},
	{Label: "Last 3 days", Value: "259200"},
	{Label: "Last week", Value: "604800"},
	{Label: "Last month", Value: "2592000"},
}

// SearchParameters is the entry-stage form. The field names match the backend payload.
type SearchParameters struct {
	Role            string   `json:"role" yaml:"role"`
	Locations       []string `json:"uk_location" yaml:"uk_location"`
	DatePosted      string   `json:"date_posted" yaml:"date_posted"`
	EmploymentTypes []string `json:"employment_types" yaml:"employment_types"`
	HybridOrRemote  bool     `json:"hybrid_or_remote" yaml:"hybrid_or_remote"`
}

// NewSearchParameters returns the empty form with non-nil sets so the payload encodes [] not null.
func NewSearchParameters() SearchParameters {
	return SearchParameters{Locations: []string{}, EmploymentTypes: []string{}}
}

// SelectLocations replaces the location set. A selection over MaxLocations is rejected and the
// current set is left unchanged.
func (p *SearchParameters) SelectLocations(values []string) bool {
	next, ok := boundedSet(values, MaxLocations)
	if !ok {
		return false
	}
	p.Locations = next
	return true
}

// ToggleLocation adds or removes one location, respecting MaxLocations.
func (p *SearchParameters) ToggleLocation(value string) bool {
	next, ok := toggle(p.Locations, value, MaxLocations)
	if ok {
		p.Locations = next
	}
	return ok
}

func (p *SearchParameters) SelectEmploymentTypes(values []string) bool {
	for _, v := range values {
		if !validOption(EmploymentTypeOptions, v) {
			return false
		}
	}
	next, ok := boundedSet(values, MaxEmploymentTypes)
	if !ok {
		return false
	}
	p.EmploymentTypes = next
	return true
}

func (p *SearchParameters) ToggleEmploymentType(value string) bool {
	if !validOption(EmploymentTypeOptions, value) {
		return false
	}
	next, ok := toggle(p.EmploymentTypes, value, MaxEmploymentTypes)
	if ok {
		p.EmploymentTypes = next
	}
	return ok
}

// SetDatePosted accepts only the preset windows.
func (p *SearchParameters) SetDatePosted(value string) bool {
	if !validOption(DatePostedOptions, value) {
		return false
	}
	p.DatePosted = value
	return true
}

// Validate reports whether the form can be submitted.
func (p SearchParameters) Validate() error {
	if strings.TrimSpace(p.Role) == "" {
		return ErrRoleRequired
	}
	return nil
}

func boundedSet(values []string, max int) ([]string, bool) {
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" || slices.Contains(out, v) {
			continue
		}
		out = append(out, v)
	}
	if len(out) > max {
		return nil, false
	}
	return out, true
}

func toggle(cur []string, value string, max int) ([]string, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return cur, false
	}
	if i := slices.Index(cur, value); i >= 0 {
		return slices.Delete(slices.Clone(cur), i, i+1), true
	}
	if len(cur) >= max {
		return cur, false
	}
	return append(slices.Clone(cur), value), true
}

func validOption(opts []Option, v string) bool {
	for _, o := range opts {
		if o.Value == v {
			return true
		}
	}
	return false
}
