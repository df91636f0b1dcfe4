package ui

import (
	"fmt"
	"io"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/downyt/internal/models"
	"github.com/desertthunder/downyt/internal/shared"
	"github.com/desertthunder/downyt/internal/tasks"
)

func waitFor[T any](ch chan T, wrap func(T) Msg) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		v, ok := <-ch
		if !ok {
			return nil
		}
		return wrap(v)
	}
}

func tickPlayer() tea.Cmd {
	return tea.Tick(playerTick, func(time.Time) tea.Msg { return playerTickMsg() })
}

// fetchInfo validates raw before any request is made.
func (m *Model) fetchInfo(raw string) tea.Cmd {
	u, err := shared.ValidateURL(raw)
	if err != nil {
		m.err = err
		return nil
	}
	m.err = nil
	m.info = nil
	m.loading = true
	return func() tea.Msg {
		info, err := m.deps.Backend.Info(m.ctx, u)
		return infoFetchedMsg(u, info, err)
	}
}

func (m *Model) startDownload(raw string, kind models.DownloadType) tea.Cmd {
	m.err = nil
	return func() tea.Msg {
		id, err := m.deps.Backend.Download(m.ctx, raw, kind)
		return downloadStartedMsg(id, kind, err)
	}
}

func (m *Model) recordHistory(data downloadStarted) tea.Cmd {
	history := m.deps.History
	if history == nil {
		return nil
	}
	entry := &models.HistoryEntry{TaskID: data.taskID, URL: m.infoURL, Type: data.kind}
	if m.info != nil {
		entry.Title = m.info.Title
	}
	return func() tea.Msg {
		if err := history.Create(m.ctx, entry); err != nil {
			m.logger.Warn("failed to record download", "task", data.taskID, "err", err)
		}
		return nil
	}
}

func (m *Model) updateHistory(ev tasks.TaskEvent) tea.Cmd {
	history := m.deps.History
	if history == nil {
		return nil
	}
	return func() tea.Msg {
		if err := history.UpdateStatus(m.ctx, ev.TaskID, ev.Task.Status, ev.Message); err != nil {
			m.logger.Warn("failed to update download history", "task", ev.TaskID, "err", err)
		}
		return nil
	}
}

func (m *Model) saveTask(taskID string, kind models.DownloadType) tea.Cmd {
	return func() tea.Msg {
		path, err := tasks.SaveTaskResult(m.ctx, m.deps.Backend, taskID, kind, m.deps.OutputDir)
		return savedMsg(path, err)
	}
}

func (m *Model) addBatch(raw []string) tea.Cmd {
	urls := make([]string, 0, len(raw))
	for _, r := range raw {
		u, err := shared.ValidateURL(r)
		if err != nil {
			m.err = err
			return nil
		}
		urls = append(urls, u)
	}
	if len(urls) == 0 {
		m.err = fmt.Errorf("%w: no URLs", shared.ErrMissingArgument)
		return nil
	}
	m.err = nil
	return func() tea.Msg {
		resp, err := m.deps.Backend.Batch(m.ctx, urls)
		return batchAddedMsg(resp, err)
	}
}

func (m *Model) refreshQueue() tea.Cmd {
	q := m.deps.Queue
	if q == nil {
		return nil
	}
	return func() tea.Msg {
		if err := q.Refresh(m.ctx); err != nil {
			return failedMsg(err)
		}
		return nil
	}
}

func (m *Model) removeItem(taskID string) tea.Cmd {
	return func() tea.Msg {
		err := m.deps.Backend.RemoveFromQueue(m.ctx, taskID)
		return queueChangedMsg("Item removido da fila", err)
	}
}

func (m *Model) clearQueue() tea.Cmd {
	return func() tea.Msg {
		err := m.deps.Backend.ClearQueue(m.ctx)
		return queueChangedMsg("Fila limpa", err)
	}
}

func (m *Model) playQueueItem(item models.QueueItem) tea.Cmd {
	return func() tea.Msg {
		name, err := tasks.PlayableFile(m.ctx, m.deps.Backend, item)
		if err != nil {
			return failedMsg(err)
		}
		return failedMsg(m.deps.Player.PlayTrack(name, nil))
	}
}

func (m *Model) playTrack(name string, list []string) tea.Cmd {
	return m.playerAction(func() error { return m.deps.Player.PlayTrack(name, list) })
}

func (m *Model) playerAction(fn func() error) tea.Cmd {
	return func() tea.Msg {
		if err := fn(); err != nil {
			return failedMsg(err)
		}
		return nil
	}
}

func (m *Model) loadLibrary() tea.Cmd {
	lib := m.deps.Library
	if lib == nil {
		return nil
	}
	return func() tea.Msg {
		files, err := lib.Load(m.ctx)
		return libraryLoadedMsg(files, err)
	}
}

func (m *Model) runLibraryOp(run func(prog chan<- tasks.ProgressUpdate) Msg) tea.Cmd {
	op := &libraryOp{progress: make(chan tasks.ProgressUpdate, channelBuffer)}
	m.libraryOp = op
	go func() {
		op.done = run(op.progress)
		close(op.progress)
	}()
	return op.wait()
}

func (m *Model) deleteSelected() tea.Cmd {
	lib := m.deps.Library
	return m.runLibraryOp(func(prog chan<- tasks.ProgressUpdate) Msg {
		result, err := lib.DeleteSelected(m.ctx, prog)
		return deleteCompleteMsg(result, err)
	})
}

func (m *Model) zipSelected() tea.Cmd {
	lib := m.deps.Library
	return m.runLibraryOp(func(prog chan<- tasks.ProgressUpdate) Msg {
		path, err := tasks.SaveFile(m.deps.OutputDir, m.deps.ZipName, "", func(w io.Writer) (string, error) {
			return lib.DownloadSelected(m.ctx, w, prog)
		})
		return zipCompleteMsg(path, err)
	})
}

func (m *Model) loadCookies() tea.Cmd {
	store := m.deps.Cookies
	if store == nil {
		return nil
	}
	return func() tea.Msg {
		value, err := store.Get(m.ctx)
		return cookiesLoadedMsg(value, err)
	}
}

// saveCookies stores value. A pasted cURL command is reduced to its cookie header.
func (m *Model) saveCookies(value string) tea.Cmd {
	store := m.deps.Cookies
	if store == nil {
		return nil
	}
	value = strings.TrimSpace(value)
	if strings.HasPrefix(value, "curl ") {
		parsed, err := shared.ParseCurlCommand(value)
		if err != nil {
			m.err = err
			return nil
		}
		value = parsed.Header
	}
	return func() tea.Msg {
		err := store.Set(m.ctx, value)
		return cookiesSavedMsg(value, err)
	}
}
