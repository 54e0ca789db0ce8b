package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Run starts the interactive client. Each run is one session: its workflow markers live only
// as long as the process.
func Run(opts Options) error {
	applyColorProfilePreference()
	applyThemePreference(opts.Theme)
	m := newAppModel(opts)
	final, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	if fm, ok := final.(appModel); ok {
		fm.unmount()
	}
	return err
}
