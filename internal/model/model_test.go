package model

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectLocations_RejectsFourthLocation(t *testing.T) {
	p := NewSearchParameters()
	require.True(t, p.SelectLocations([]string{"London", "Leeds", "Bristol"}))

	ok := p.SelectLocations([]string{"London", "Leeds", "Bristol", "Cardiff"})
	assert.False(t, ok)
	assert.Equal(t, []string{"London", "Leeds", "Bristol"}, p.Locations)

	assert.False(t, p.ToggleLocation("Cardiff"))
	assert.Equal(t, []string{"London", "Leeds", "Bristol"}, p.Locations)

	assert.True(t, p.ToggleLocation("Leeds"))
	assert.Equal(t, []string{"London", "Bristol"}, p.Locations)
}

func TestSelectEmploymentTypes_RejectsThirdType(t *testing.T) {
	p := NewSearchParameters()
	require.True(t, p.ToggleEmploymentType("full_time"))
	require.True(t, p.ToggleEmploymentType("contract"))

	assert.False(t, p.ToggleEmploymentType("internship"))
	assert.False(t, p.SelectEmploymentTypes([]string{"full_time", "contract", "temporary"}))
	assert.Equal(t, []string{"full_time", "contract"}, p.EmploymentTypes)

	assert.False(t, p.ToggleEmploymentType("gig"), "unknown values are not selectable")
}

func TestSelectLocations_IgnoresDuplicates(t *testing.T) {
	p := NewSearchParameters()
	require.True(t, p.SelectLocations([]string{"London", "London", " London ", "Leeds"}))
	assert.Equal(t, []string{"London", "Leeds"}, p.Locations)
}

func TestSetDatePosted_OnlyPresets(t *testing.T) {
	p := NewSearchParameters()
	assert.True(t, p.SetDatePosted("604800"))
	assert.False(t, p.SetDatePosted("12"))
	assert.Equal(t, "604800", p.DatePosted)
	assert.True(t, p.SetDatePosted(""))
}

func TestValidate_RequiresRole(t *testing.T) {
	p := NewSearchParameters()
	assert.ErrorIs(t, p.Validate(), ErrRoleRequired)
	p.Role = "   "
	assert.ErrorIs(t, p.Validate(), ErrRoleRequired)
	p.Role = "Backend Engineer"
	assert.NoError(t, p.Validate())
}

func TestSearchParameters_EncodesEmptySetsAsLists(t *testing.T) {
	p := NewSearchParameters()
	p.Role = "Backend Engineer"
	b, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{"role":"Backend Engineer","uk_location":[],"date_posted":"","employment_types":[],"hybrid_or_remote":false}`, string(b))
}

func TestID_DecodesNumbersAndStrings(t *testing.T) {
	var v struct {
		A ID `json:"a"`
		B ID `json:"b"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a": 42, "b": "ux_info:S1"}`), &v))
	assert.Equal(t, ID("42"), v.A)
	assert.Equal(t, ID("ux_info:S1"), v.B)
}

func TestSavedParameters_AcceptsStringOrList(t *testing.T) {
	var p SavedParameters
	require.NoError(t, json.Unmarshal([]byte(`{"role":"Data Engineer","locations":"All UK Locations","employment_types":["full_time"]}`), &p))
	assert.Equal(t, StringList{"All UK Locations"}, p.Locations)
	assert.Equal(t, StringList{"full_time"}, p.EmploymentTypes)
}

func TestRecentSearch_DisplayText(t *testing.T) {
	r := RecentSearch{Parameters: RecentParameters{Role: "SRE"}}
	assert.Equal(t, "SRE • All locations", r.DisplayText())
	r.Parameters.UKLocations = StringList{"London", "Leeds"}
	assert.Equal(t, "SRE • London, Leeds", r.DisplayText())
}

func TestLoadLocationOptions(t *testing.T) {
	opts, err := LoadLocationOptions("")
	require.NoError(t, err)
	assert.NotEmpty(t, opts)
	assert.Equal(t, "London", opts[0].Value)

	path := filepath.Join(t.TempDir(), "cities.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"label":"York","value":"York"},{"value":"Bath"},{"label":"blank"}]`), 0o644))
	opts, err = LoadLocationOptions(path)
	require.NoError(t, err)
	assert.Equal(t, []Option{{Label: "York", Value: "York"}, {Label: "Bath", Value: "Bath"}}, opts)

	for _, body := range []string{`[]`, `[{"label":"blank"},{"value":"  "}]`} {
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
		_, err = LoadLocationOptions(path)
		assert.ErrorContains(t, err, "no options", body)
	}
}
