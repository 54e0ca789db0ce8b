package tui

import (
	"projectforge-cli/internal/model"

	"github.com/charmbracelet/bubbles/list"
)

type recentItem struct{ search model.RecentSearch }

func (i recentItem) Title() string { return i.search.DisplayText() }
func (i recentItem) Description() string {
	return model.DatePostedLabel(i.search.Parameters.DatePosted)
}
func (i recentItem) FilterValue() string { return i.search.DisplayText() }

type projectItem struct{ project model.Project }

func (i projectItem) Title() string       { return i.project.Title }
func (i projectItem) Description() string { return i.project.ProblemStatement }
func (i projectItem) FilterValue() string { return i.project.Title }

type savedItem struct{ entry model.SavedEntry }

func (i savedItem) Title() string       { return "× " + i.entry.Title }
func (i savedItem) Description() string { return i.entry.Parameters.Role }
func (i savedItem) FilterValue() string { return i.entry.Title }

func recentItems(searches []model.RecentSearch) []list.Item {
	out := make([]list.Item, 0, len(searches))
	for _, r := range searches {
		out = append(out, recentItem{search: r})
	}
	return out
}

func projectItems(projects []model.Project) []list.Item {
	out := make([]list.Item, 0, len(projects))
	for _, p := range projects {
		out = append(out, projectItem{project: p})
	}
	return out
}

func savedItems(entries []model.SavedEntry) []list.Item {
	out := make([]list.Item, 0, len(entries))
	for _, e := range entries {
		out = append(out, savedItem{entry: e})
	}
	return out
}

func newList(title string, items []list.Item, focused *bool) list.Model {
	l := list.New(items, newCompactItemDelegate(focused), 0, 0)
	l.Title = title
	// The app renders its own headings and footer, so keep list chrome minimal.
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetShowPagination(false)
	l.SetFilteringEnabled(false)
	// Bubble list defaults to quitting on ESC; here ESC is "back".
	l.KeyMap.Quit.SetKeys("q")
	cursorUpKeys := append([]string{}, l.KeyMap.CursorUp.Keys()...)
	l.KeyMap.CursorUp.SetKeys(append(cursorUpKeys, "ctrl+p")...)
	cursorDownKeys := append([]string{}, l.KeyMap.CursorDown.Keys()...)
	l.KeyMap.CursorDown.SetKeys(append(cursorDownKeys, "ctrl+n")...)
	return l
}

func selectedItem[T list.Item](l list.Model) (T, bool) {
	var zero T
	it, ok := l.SelectedItem().(T)
	if !ok {
		return zero, false
	}
	return it, true
}
