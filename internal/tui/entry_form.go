package tui

import (
	"fmt"
	"slices"
	"strings"

	"projectforge-cli/internal/model"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type formField int

const (
	fieldRole formField = iota
	fieldLocations
	fieldEmployment
	fieldDatePosted
	fieldRemote
	fieldSubmit
	fieldCount
)

func (f formField) label() string {
	switch f {
	case fieldRole:
		return "Role"
	case fieldLocations:
		return "Locations"
	case fieldEmployment:
		return "Employment type"
	case fieldDatePosted:
		return "Date posted"
	case fieldRemote:
		return "Hybrid or remote"
	}
	return ""
}

// entryForm is the search form. Selection limits live in model.SearchParameters; the form only
// moves cursors and reports refused changes.
type entryForm struct {
	params    model.SearchParameters
	locations []model.Option
	role      textinput.Model
	focus     formField
	// cursor per option picker.
	cursors map[formField]int
	note    string
}

func newEntryForm(locations []model.Option) entryForm {
	in := textinput.New()
	in.Placeholder = "e.g. Backend Engineer"
	in.Prompt = ""
	in.CharLimit = 120
	in.Focus()
	return entryForm{
		params:    model.NewSearchParameters(),
		locations: locations,
		role:      in,
		focus:     fieldRole,
		cursors:   map[formField]int{},
	}
}

func (f *entryForm) options(field formField) []model.Option {
	switch field {
	case fieldLocations:
		return f.locations
	case fieldEmployment:
		return model.EmploymentTypeOptions
	case fieldDatePosted:
		return model.DatePostedOptions
	}
	return nil
}

func (f *entryForm) setFocus(field formField) {
	f.focus = (field + fieldCount) % fieldCount
	if f.focus == fieldRole {
		f.role.Focus()
	} else {
		f.role.Blur()
	}
}

// submitParams syncs the role input into the parameters and validates.
func (f *entryForm) submitParams() (model.SearchParameters, error) {
	f.params.Role = strings.TrimSpace(f.role.Value())
	if err := f.params.Validate(); err != nil {
		f.note = "Enter a role to search for"
		return f.params, err
	}
	f.note = ""
	return f.params, nil
}

func (f *entryForm) moveCursor(delta int) {
	opts := f.options(f.focus)
	if len(opts) == 0 {
		return
	}
	c := f.cursors[f.focus] + delta
	if c < 0 {
		c = 0
	}
	if c >= len(opts) {
		c = len(opts) - 1
	}
	f.cursors[f.focus] = c
}

// toggleCurrent applies the option under the cursor for the focused field.
func (f *entryForm) toggleCurrent() {
	f.note = ""
	if f.focus != fieldRemote && len(f.options(f.focus)) == 0 {
		return
	}
	switch f.focus {
	case fieldLocations:
		opt := f.locations[f.cursors[fieldLocations]]
		if !f.params.ToggleLocation(opt.Value) {
			f.note = fmt.Sprintf("You can select up to %d locations", model.MaxLocations)
		}
	case fieldEmployment:
		opt := model.EmploymentTypeOptions[f.cursors[fieldEmployment]]
		if !f.params.ToggleEmploymentType(opt.Value) {
			f.note = fmt.Sprintf("You can select up to %d employment types", model.MaxEmploymentTypes)
		}
	case fieldDatePosted:
		opt := model.DatePostedOptions[f.cursors[fieldDatePosted]]
		f.params.SetDatePosted(opt.Value)
	case fieldRemote:
		f.params.HybridOrRemote = !f.params.HybridOrRemote
	}
}

// update handles keys for the form fields. submit is true when the user asked to submit.
func (f *entryForm) update(msg tea.KeyMsg) (cmd tea.Cmd, submit bool) {
	switch msg.String() {
	case "tab":
		f.setFocus(f.focus + 1)
		return nil, false
	case "shift+tab":
		f.setFocus(f.focus - 1)
		return nil, false
	case "enter":
		return nil, true
	}

	if f.focus == fieldRole {
		var c tea.Cmd
		f.role, c = f.role.Update(msg)
		return c, false
	}

	switch msg.String() {
	case "left", "up", "k", "h":
		f.moveCursor(-1)
	case "right", "down", "j", "l":
		f.moveCursor(1)
	case " ", "x":
		if f.focus == fieldSubmit {
			return nil, true
		}
		f.toggleCurrent()
	}
	return nil, false
}

func (f entryForm) view() string {
	labelW := 18
	rowStyle := func(field formField) lipgloss.Style {
		st := lipgloss.NewStyle().Width(labelW)
		if f.focus == field {
			return st.Bold(true).Foreground(colorAccent)
		}
		return st.Foreground(colorChromeMutedFg)
	}

	var lines []string
	lines = append(lines, rowStyle(fieldRole).Render(fieldRole.label())+f.role.View())
	lines = append(lines, "")
	lines = append(lines, f.pickerRow(fieldLocations, rowStyle(fieldLocations), func(v string) bool {
		return slices.Contains(f.params.Locations, v)
	}))
	lines = append(lines, f.pickerRow(fieldEmployment, rowStyle(fieldEmployment), func(v string) bool {
		return slices.Contains(f.params.EmploymentTypes, v)
	}))
	lines = append(lines, f.pickerRow(fieldDatePosted, rowStyle(fieldDatePosted), func(v string) bool {
		return f.params.DatePosted == v
	}))

	remote := "[ ]"
	if f.params.HybridOrRemote {
		remote = "[x]"
	}
	lines = append(lines, rowStyle(fieldRemote).Render(fieldRemote.label())+remote)
	lines = append(lines, "")
	lines = append(lines, styleButton(f.focus == fieldSubmit, false).Render("Generate project ideas"))
	if f.note != "" {
		lines = append(lines, "", styleError().Render(f.note))
	}
	return strings.Join(lines, "\n")
}

// pickerRow shows the selected values and, when focused, the option under the cursor.
func (f entryForm) pickerRow(field formField, label lipgloss.Style, selected func(string) bool) string {
	opts := f.options(field)
	var chosen []string
	for _, o := range opts {
		if selected(o.Value) {
			chosen = append(chosen, o.Label)
		}
	}
	val := strings.Join(chosen, ", ")
	if val == "" {
		val = styleMuted().Render("Any")
	}
	row := label.Render(field.label()) + val
	if f.focus == field && len(opts) > 0 {
		o := opts[f.cursors[field]]
		mark := "○"
		if selected(o.Value) {
			mark = "●"
		}
		hint := fmt.Sprintf("  ‹ %s %s ›", mark, o.Label)
		row += styleChrome().Render(hint)
	}
	return row
}
