package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ID is an opaque backend identifier. The backend mixes string ids (search and idea-set
// tokens) with integer ids (saved entries); both decode into the same string form.
type ID string

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("id: expected string or number, got %s", string(b))
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string { return string(id) }

// StringList accepts either a JSON list of strings or a single string. Saved parameter
// snapshots store placeholders such as "All UK Locations" instead of an empty list.
type StringList []string

func (l *StringList) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*l = nil
		return nil
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		if strings.TrimSpace(s) == "" {
			*l = nil
			return nil
		}
		*l = StringList{s}
		return nil
	}
	var out []string
	if err := json.Unmarshal(b, &out); err != nil {
		return err
	}
	*l = out
	return nil
}

type Project struct {
	Title                  string   `json:"title" yaml:"title"`
	ProblemStatement       string   `json:"problem_statement" yaml:"problem_statement"`
	CoreFeatures           []string `json:"core_features" yaml:"core_features"`
	RecommendedTechStack   []string `json:"recommended_tech_stack" yaml:"recommended_tech_stack"`
	AchievedQualifications []string `json:"achieved_qualifications" yaml:"achieved_qualifications"`
	TargetUsers            []string `json:"target_users" yaml:"target_users"`
}

type ProjectList struct {
	Projects []Project `json:"projects" yaml:"projects"`
}

// IdeaSet is the generated project list for one search. Its id authorizes the evidence stage.
type IdeaSet struct {
	ID   ID `json:"id" yaml:"id"`
	Data struct {
		ProjectList ProjectList `json:"project_list" yaml:"project_list"`
	} `json:"data" yaml:"data"`
}

func (s IdeaSet) Projects() []Project { return s.Data.ProjectList.Projects }

// EvidenceRecord pairs one project achievement with a matched job qualification.
type EvidenceRecord struct {
	ProjectTitle       string `json:"project_title" yaml:"project_title"`
	JobTitle           string `json:"job_title" yaml:"job_title"`
	CompanyName        string `json:"company_name" yaml:"company_name"`
	ProjectAchievement string `json:"project_achievement" yaml:"project_achievement"`
	Qualification      string `json:"qualification" yaml:"qualification"`
}

// SavedParameters is the snapshot the backend stores alongside a saved idea set.
type SavedParameters struct {
	Role            string     `json:"role" yaml:"role"`
	Country         string     `json:"country" yaml:"country"`
	Locations       StringList `json:"locations" yaml:"locations"`
	DatePosted      string     `json:"date_posted" yaml:"date_posted"`
	OffSite         bool       `json:"off_site" yaml:"off_site"`
	EmploymentTypes StringList `json:"employment_types" yaml:"employment_types"`
}

type SavedEntry struct {
	ID         ID              `json:"id" yaml:"id"`
	Title      string          `json:"title" yaml:"title"`
	Parameters SavedParameters `json:"parameters" yaml:"parameters"`
}

// SavedProject is a persisted idea set addressed by its durable id.
type SavedProject struct {
	ID          ID              `json:"id" yaml:"id"`
	Title       string          `json:"title" yaml:"title"`
	Parameters  SavedParameters `json:"parameters" yaml:"parameters"`
	ProjectList ProjectList     `json:"project_list" yaml:"project_list"`
}

// RecentParameters is the parameter shape recorded by the backend for recent searches.
type RecentParameters struct {
	Role            string     `json:"role" yaml:"role"`
	UKLocations     StringList `json:"uk_locations" yaml:"uk_locations"`
	DatePosted      string     `json:"date_posted" yaml:"date_posted"`
	OffSite         bool       `json:"off_site" yaml:"off_site"`
	EmploymentTypes StringList `json:"employment_types" yaml:"employment_types"`
}

type RecentSearch struct {
	JobSearchID ID               `json:"job_search_id" yaml:"job_search_id"`
	Parameters  RecentParameters `json:"parameters" yaml:"parameters"`
	Timestamp   string           `json:"timestamp,omitempty" yaml:"timestamp,omitempty"`
	JobCount    int              `json:"job_count,omitempty" yaml:"job_count,omitempty"`
}

// DisplayText renders "<role> • <locations>" the way the entry stage lists recent searches.
func (r RecentSearch) DisplayText() string {
	locations := strings.Join(r.Parameters.UKLocations, ", ")
	if locations == "" {
		locations = "All locations"
	}
	return r.Parameters.Role + " • " + locations
}

// Option is a label/value pair offered by a selection input.
type Option struct {
	Label string `json:"label" yaml:"label"`
	Value string `json:"value" yaml:"value"`
}

func OptionLabel(opts []Option, value string) string {
	for _, o := range opts {
		if o.Value == value {
			return o.Label
		}
	}
	return value
}

// DatePostedLabel maps a stored date-posted window (seconds) to its label.
func DatePostedLabel(v string) string {
	if _, err := strconv.Atoi(v); err != nil && v != "" {
		return v
	}
	return OptionLabel(DatePostedOptions, v)
}
