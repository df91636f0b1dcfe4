package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	up      key.Binding
	down    key.Binding
	enter   key.Binding
	back    key.Binding
	edit    key.Binding
	submit  key.Binding
	nextTab key.Binding
	prevTab key.Binding
	help    key.Binding
	quit    key.Binding

	// download view
	download key.Binding
	enqueue  key.Binding
	save     key.Binding

	// queue view
	remove  key.Binding
	clear   key.Binding
	refresh key.Binding

	// library view
	toggle    key.Binding
	selectAll key.Binding
	unselect  key.Binding
	delete    key.Binding
	zip       key.Binding
	playAll   key.Binding
	yes       key.Binding
	no        key.Binding

	// player
	playPause key.Binding
	next      key.Binding
	previous  key.Binding
	seekBack  key.Binding
	seekFwd   key.Binding
	volDown   key.Binding
	volUp     key.Binding
	mute      key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		enter:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
		back:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		edit:    key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "edit")),
		submit:  key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "submit")),
		nextTab: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next view")),
		prevTab: key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev view")),
		help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),

		download: key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "download")),
		enqueue:  key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add to queue")),
		save:     key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "save file")),

		remove:  key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "remove")),
		clear:   key.NewBinding(key.WithKeys("C"), key.WithHelp("C", "clear queue")),
		refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),

		toggle:    key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "select")),
		selectAll: key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "select all")),
		unselect:  key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "unselect")),
		delete:    key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete selected")),
		zip:       key.NewBinding(key.WithKeys("z"), key.WithHelp("z", "zip selected")),
		playAll:   key.NewBinding(key.WithKeys("P"), key.WithHelp("P", "play all")),
		yes:       key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "yes")),
		no:        key.NewBinding(key.WithKeys("n", "esc"), key.WithHelp("n", "no")),

		playPause: key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "play/pause")),
		next:      key.NewBinding(key.WithKeys(">"), key.WithHelp(">", "next")),
		previous:  key.NewBinding(key.WithKeys("<"), key.WithHelp("<", "previous")),
		seekBack:  key.NewBinding(key.WithKeys("["), key.WithHelp("[", "seek -5%")),
		seekFwd:   key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "seek +5%")),
		volDown:   key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "volume -")),
		volUp:     key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "volume +")),
		mute:      key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "mute")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.nextTab, k.playPause, k.help, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.nextTab, k.prevTab, k.edit, k.submit, k.back},
		{k.playPause, k.next, k.previous, k.seekBack, k.seekFwd},
		{k.volDown, k.volUp, k.mute, k.help, k.quit},
	}
}
