package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/desertthunder/downyt/internal/models"
	"github.com/desertthunder/downyt/internal/player"
	"github.com/desertthunder/downyt/internal/shared"
	"github.com/desertthunder/downyt/internal/tasks"
)

const maxPlaylistPreview = 10

// View renders the UI based on the current view state.
func (m *Model) View() string {
	var body string
	switch m.view {
	case DownloadView:
		body = m.renderDownload()
	case QueueView:
		body = m.renderQueue()
	case LibraryView:
		body = m.renderLibrary()
	case SettingsView:
		body = m.renderSettings()
	}

	sections := []string{m.renderTabs(), body}
	if line := m.renderStatus(); line != "" {
		sections = append(sections, line)
	}
	if bar := m.renderPlayer(); bar != "" {
		sections = append(sections, bar)
	}
	sections = append(sections, m.renderHelp())
	return strings.Join(sections, "\n\n")
}

func (m *Model) renderTabs() string {
	tabs := make([]string, len(viewNames))
	for i, name := range viewNames {
		label := fmt.Sprintf("%d %s", i+1, name)
		if ViewState(i) == QueueView && m.snapshot.Badge > 0 {
			label = fmt.Sprintf("%s (%d)", label, m.snapshot.Badge)
		}
		if ViewState(i) == m.view {
			tabs[i] = styles.activeTab.Render(label)
		} else {
			tabs[i] = styles.tab.Render(label)
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m *Model) renderStatus() string {
	if m.err != nil {
		return styles.err.Render("Erro: " + m.err.Error())
	}
	if m.status != "" {
		return styles.ok.Render(m.status)
	}
	return ""
}

func (m *Model) renderDownload() string {
	var b strings.Builder
	b.WriteString(styles.title.Render("Download"))
	b.WriteString("\n")
	b.WriteString(m.urlInput.View())

	switch {
	case m.loading:
		b.WriteString("\n\n" + styles.help.Render("Buscando informações..."))
	case m.info != nil:
		b.WriteString("\n\n" + renderInfo(m.info))
	}

	if ev := m.event; ev != nil {
		b.WriteString("\n\n")
		b.WriteString(m.bar.ViewAs(float64(ev.Percent) / 100))
		b.WriteString("\n")
		switch ev.Kind {
		case tasks.EventProgress:
			b.WriteString(ev.StatusLine)
		case tasks.EventCompleted:
			b.WriteString(styles.ok.Render("✓ " + ev.Message))
		default:
			b.WriteString(styles.err.Render("✗ " + ev.Message))
		}
	}
	return b.String()
}

func renderInfo(info *models.MediaInfo) string {
	var b strings.Builder
	b.WriteString(styles.cursor.Render(info.Title))

	if info.Type != models.TypePlaylist {
		if info.Channel != "" {
			b.WriteString("\n" + info.Channel)
		}
		b.WriteString("\nDuração: " + shared.FormatDuration(info.Duration))
		return b.String()
	}

	count := info.Count
	if count == 0 {
		count = len(info.Videos)
	}
	fmt.Fprintf(&b, "\nPlaylist • %d vídeos", count)
	for i, video := range info.Videos {
		if i == maxPlaylistPreview {
			fmt.Fprintf(&b, "\n  ... e mais %d", len(info.Videos)-maxPlaylistPreview)
			break
		}
		fmt.Fprintf(&b, "\n  %d. %s (%s)", i+1, shared.Truncate(video.Title, 50), shared.FormatDuration(video.Duration))
	}
	return b.String()
}

func (m *Model) renderQueue() string {
	var b strings.Builder
	b.WriteString(styles.title.Render("Queue"))
	b.WriteString("\n")

	s := m.snapshot.Stats
	fmt.Fprintf(&b, "Na fila: %d  Baixando: %d  Completos: %d  Erros: %d  %s",
		s.Pending, s.Processing, s.Completed, s.Errors,
		styles.help.Render("("+m.snapshot.Cadence.String()+")"))

	if len(m.snapshot.Rows) == 0 {
		b.WriteString("\n\n" + styles.help.Render("Fila vazia"))
	}
	for i, row := range m.snapshot.Rows {
		item := row.Item
		prefix := "  "
		if i == m.queueCursor {
			prefix = styles.cursor.Render("> ")
		}
		title := item.Title
		if title == "" {
			title = item.URL
		}
		fmt.Fprintf(&b, "\n%s%-10s %s  %s",
			prefix,
			styles.status(item.Status, tasks.StatusLabel(item.Status)),
			shared.Truncate(title, 50),
			styles.help.Render(tasks.ProgressDetail(item)))
	}

	b.WriteString("\n\n")
	b.WriteString(m.batchInput.View())
	return b.String()
}

func (m *Model) renderLibrary() string {
	var b strings.Builder
	b.WriteString(m.libraryList.View())

	if m.deps.Library != nil {
		if n := len(m.deps.Library.Selected()); n > 0 {
			fmt.Fprintf(&b, "\n%d selecionado(s)", n)
		}
	}
	if m.confirm {
		b.WriteString("\n" + styles.warn.Render("Excluir os arquivos selecionados? (y/n)"))
	}
	return b.String()
}

func (m *Model) renderSettings() string {
	var b strings.Builder
	b.WriteString(styles.title.Render("Settings"))
	b.WriteString("\n")

	if m.cookies == "" {
		b.WriteString("Cookies: " + styles.warn.Render("nenhum"))
	} else {
		b.WriteString("Cookies: " + styles.ok.Render(fmt.Sprintf("configurados (%d caracteres)", len(m.cookies))))
	}
	b.WriteString("\n\n")
	b.WriteString(m.cookieInput.View())
	return b.String()
}

func (m *Model) renderPlayer() string {
	s := m.playerState
	if s.Current == "" {
		return ""
	}

	state := "⏸"
	if s.Playing {
		state = "▶"
	}
	title := s.Title
	if title == "" {
		title = shared.TrackTitle(s.Current)
	}

	pct := 0.0
	if s.Duration > 0 {
		pct = s.Position / s.Duration
	}
	const width = 30
	filled := min(int(pct*width), width)
	seek := strings.Repeat("━", filled) + strings.Repeat("─", width-filled)

	line := fmt.Sprintf("%s %s  %s / %s  %s  %s %d%%  (%d/%d)",
		state,
		styles.playing.Render(shared.Truncate(title, 40)),
		shared.FormatTime(s.Position),
		shared.FormatDuration(s.Duration),
		seek,
		player.VolumeIcon(s.Volume, s.Muted),
		int(s.Volume*100),
		s.Cursor+1, len(s.Tracks),
	)
	return styles.bar.Render(line)
}

func (m *Model) renderHelp() string {
	if m.help.ShowAll {
		return m.help.FullHelpView(m.keys.FullHelp())
	}

	var bindings []key.Binding
	switch {
	case m.editing && m.view == QueueView:
		bindings = []key.Binding{m.keys.submit, m.keys.back}
	case m.editing:
		bindings = []key.Binding{m.keys.enter, m.keys.back}
	case m.view == DownloadView:
		bindings = []key.Binding{m.keys.edit, m.keys.download, m.keys.enqueue, m.keys.save}
	case m.view == QueueView:
		bindings = []key.Binding{m.keys.up, m.keys.down, m.keys.enter, m.keys.remove, m.keys.clear, m.keys.edit}
	case m.view == LibraryView:
		bindings = []key.Binding{m.keys.enter, m.keys.playAll, m.keys.toggle, m.keys.selectAll, m.keys.delete, m.keys.zip}
	case m.view == SettingsView:
		bindings = []key.Binding{m.keys.edit, m.keys.remove}
	}
	bindings = append(bindings, m.keys.ShortHelp()...)
	return m.help.ShortHelpView(bindings)
}
