package ui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/desertthunder/downyt/internal/models"
	"github.com/desertthunder/downyt/internal/player"
	"github.com/desertthunder/downyt/internal/services"
	"github.com/desertthunder/downyt/internal/shared"
	"github.com/desertthunder/downyt/internal/tasks"
)

const (
	channelBuffer = 64
	playerTick    = time.Second
	seekStep      = 5.0
	volumeStep    = 10.0
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	DownloadView ViewState = iota
	QueueView
	LibraryView
	SettingsView
)

var viewNames = [...]string{"Download", "Queue", "Library", "Settings"}

func (v ViewState) String() string {
	if int(v) < len(viewNames) {
		return viewNames[v]
	}
	return ""
}

// CookieStore reads and replaces the saved cookie string.
type CookieStore interface {
	Get(ctx context.Context) (string, error)
	Set(ctx context.Context, value string) error
}

// HistoryRecorder records downloads started from the TUI.
type HistoryRecorder interface {
	Create(ctx context.Context, entry *models.HistoryEntry) error
	UpdateStatus(ctx context.Context, taskID string, status models.Status, message string) error
}

// Channels carry controller notifications into the program. Pass each one to the matching controller
// through [tasks.ChannelListener].
type Channels struct {
	Tasks  chan tasks.TaskEvent
	Queue  chan tasks.QueueSnapshot
	Player chan player.State
}

func NewChannels() *Channels {
	return &Channels{
		Tasks:  make(chan tasks.TaskEvent, channelBuffer),
		Queue:  make(chan tasks.QueueSnapshot, channelBuffer),
		Player: make(chan player.State, channelBuffer),
	}
}

// Deps holds the controllers and stores the model drives.
type Deps struct {
	Backend   services.Backend
	Tasks     *tasks.TaskPoller
	Queue     *tasks.QueuePoller
	Library   *tasks.Library
	Player    *player.Controller
	Cookies   CookieStore
	History   HistoryRecorder // optional
	Channels  *Channels
	OutputDir string
	ZipName   string
	Logger    *log.Logger
}

// libraryOp is a running bulk library operation. done is written before progress is closed.
type libraryOp struct {
	progress chan tasks.ProgressUpdate
	done     Msg
}

// Model represents the TUI application state.
type Model struct {
	ctx    context.Context
	deps   Deps
	logger *log.Logger

	view    ViewState
	width   int
	height  int
	editing bool
	confirm bool
	status  string
	err     error

	urlInput textinput.Model
	info     *models.MediaInfo
	infoURL  string
	loading  bool
	bar      progress.Model
	taskID   string
	taskKind models.DownloadType
	event    *tasks.TaskEvent

	batchInput  textarea.Model
	snapshot    tasks.QueueSnapshot
	queueCursor int

	libraryList list.Model
	libraryOp   *libraryOp
	libProgress tasks.ProgressUpdate

	cookieInput textinput.Model
	cookies     string

	playerState player.State

	help help.Model
	keys keyMap
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, deps Deps) *Model {
	if deps.Channels == nil {
		deps.Channels = NewChannels()
	}
	if deps.Logger == nil {
		deps.Logger = shared.NewLogger(nil)
	}
	if deps.ZipName == "" {
		deps.ZipName = "downloads.zip"
	}

	urlInput := textinput.New()
	urlInput.Placeholder = "https://www.youtube.com/watch?v=..."
	urlInput.Prompt = "URL: "
	urlInput.CharLimit = 2048

	batchInput := textarea.New()
	batchInput.Placeholder = "Uma URL por linha"
	batchInput.ShowLineNumbers = false
	batchInput.SetHeight(4)

	cookieInput := textinput.New()
	cookieInput.Placeholder = "cookie string or a browser 'Copy as cURL' command"
	cookieInput.Prompt = "Cookies: "
	cookieInput.EchoMode = textinput.EchoPassword

	libraryList := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	libraryList.Title = "Library"
	libraryList.SetShowHelp(false)
	libraryList.KeyMap.Quit.SetEnabled(false)

	m := &Model{
		ctx:         ctx,
		deps:        deps,
		logger:      shared.WithLogger(deps.Logger, "component", "tui"),
		view:        DownloadView,
		urlInput:    urlInput,
		bar:         progress.New(progress.WithDefaultGradient()),
		batchInput:  batchInput,
		libraryList: libraryList,
		cookieInput: cookieInput,
		help:        help.New(),
		keys:        newKeyMap(),
	}
	if deps.Player != nil {
		m.playerState = deps.Player.State()
	}
	return m
}

// Init subscribes to controller notifications and loads the saved cookies.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		waitFor(m.deps.Channels.Tasks, taskEventMsg),
		waitFor(m.deps.Channels.Queue, queueSnapshotMsg),
		waitFor(m.deps.Channels.Player, playerStateMsg),
		tickPlayer(),
		m.loadCookies(),
		m.refreshQueue(),
	)
}

// Close stops polling and playback.
func (m *Model) Close() {
	if m.deps.Tasks != nil {
		m.deps.Tasks.Stop()
	}
	if m.deps.Queue != nil {
		m.deps.Queue.Stop()
	}
	if m.deps.Player != nil {
		if err := m.deps.Player.Close(); err != nil {
			m.logger.Warn("failed to stop player", "err", err)
		}
	}
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.bar.Width = min(msg.Width-10, 60)
		m.batchInput.SetWidth(msg.Width - 4)
		m.libraryList.SetSize(msg.Width-4, msg.Height-10)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case Msg:
		return m.handleMsg(msg)
	}

	return m.updateComponents(msg)
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgInfoFetched:
		data := msg.data.(infoFetched)
		m.loading = false
		if data.err != nil {
			m.err = data.err
			return m, nil
		}
		m.info = data.info
		m.infoURL = data.url
		return m, nil

	case MsgDownloadStarted:
		data := msg.data.(downloadStarted)
		if data.err != nil {
			m.err = data.err
			return m, nil
		}
		m.taskID = data.taskID
		m.taskKind = data.kind
		m.event = nil
		m.status = "Download iniciado"
		if err := m.deps.Tasks.Start(m.ctx, data.taskID, data.kind); err != nil {
			m.err = err
			return m, nil
		}
		return m, m.recordHistory(data)

	case MsgTaskEvent:
		ev := msg.data.(tasks.TaskEvent)
		next := waitFor(m.deps.Channels.Tasks, taskEventMsg)
		if ev.TaskID != m.taskID {
			return m, next
		}
		m.event = &ev
		if !ev.Terminal() {
			return m, next
		}
		switch ev.Kind {
		case tasks.EventCompleted:
			m.status = ev.Message
		default:
			m.err = taskError(ev)
		}
		return m, tea.Batch(next, m.updateHistory(ev), m.refreshQueue())

	case MsgSaved:
		data := msg.data.(pathResult)
		m.setResult(data.err, "Salvo em "+data.path)
		return m, nil

	case MsgBatchAdded:
		data := msg.data.(batchAdded)
		if data.err != nil {
			m.err = data.err
			return m, nil
		}
		m.err = nil
		m.status = data.resp.Message
		m.batchInput.Reset()
		return m, m.refreshQueue()

	case MsgQueueSnapshot:
		m.snapshot = msg.data.(tasks.QueueSnapshot)
		if m.queueCursor >= len(m.snapshot.Rows) {
			m.queueCursor = max(len(m.snapshot.Rows)-1, 0)
		}
		return m, waitFor(m.deps.Channels.Queue, queueSnapshotMsg)

	case MsgQueueChanged:
		data := msg.data.(queueChanged)
		m.setResult(data.err, data.message)
		return m, m.refreshQueue()

	case MsgLibraryLoaded:
		data := msg.data.(libraryLoaded)
		if data.err != nil {
			m.err = data.err
			return m, nil
		}
		return m, m.syncLibrary()

	case MsgProgressUpdate:
		m.libProgress = msg.data.(tasks.ProgressUpdate)
		m.status = m.libProgress.Message
		if m.libraryOp == nil {
			return m, nil
		}
		return m, m.libraryOp.wait()

	case MsgDeleteComplete:
		data := msg.data.(deleteComplete)
		m.libraryOp = nil
		if data.err != nil {
			m.err = data.err
		} else {
			m.setResult(nil, fmt.Sprintf("%d arquivo(s) excluído(s), %d falha(s)", data.result.Deleted, data.result.Failed))
		}
		return m, m.syncLibrary()

	case MsgZipComplete:
		data := msg.data.(pathResult)
		m.libraryOp = nil
		m.setResult(data.err, "Zip salvo em "+data.path)
		return m, nil

	case MsgPlayerState:
		m.playerState = msg.data.(player.State)
		return m, tea.Batch(waitFor(m.deps.Channels.Player, playerStateMsg), m.syncLibrary())

	case MsgPlayerTick:
		if m.deps.Player != nil {
			m.playerState = m.deps.Player.State()
		}
		return m, tickPlayer()

	case MsgCookiesLoaded:
		data := msg.data.(cookiesResult)
		if data.err != nil {
			m.err = data.err
			return m, nil
		}
		m.cookies = data.value
		return m, nil

	case MsgCookiesSaved:
		data := msg.data.(cookiesResult)
		if data.err != nil {
			m.err = data.err
			return m, nil
		}
		m.cookies = data.value
		m.cookieInput.Reset()
		if data.value == "" {
			m.setResult(nil, "Cookies removidos")
		} else {
			m.setResult(nil, "Cookies salvos")
		}
		return m, nil

	case MsgFailed:
		if err, ok := msg.data.(error); ok && err != nil {
			m.err = err
		}
		return m, nil
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		m.Close()
		return m, tea.Quit
	}
	if m.editing {
		return m.handleEditingKeys(msg)
	}
	if m.confirm {
		return m.handleConfirmKeys(msg)
	}
	if m.view == LibraryView && m.libraryList.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.libraryList, cmd = m.libraryList.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		m.Close()
		return m, tea.Quit
	case key.Matches(msg, m.keys.nextTab):
		return m, m.switchView((m.view + 1) % 4)
	case key.Matches(msg, m.keys.prevTab):
		return m, m.switchView((m.view + 3) % 4)
	case key.Matches(msg, m.keys.help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}

	if v, ok := viewShortcut(msg.String()); ok {
		return m, m.switchView(v)
	}
	if cmd, ok := m.handlePlayerKeys(msg); ok {
		return m, cmd
	}

	switch m.view {
	case DownloadView:
		return m.handleDownloadKeys(msg)
	case QueueView:
		return m.handleQueueKeys(msg)
	case LibraryView:
		return m.handleLibraryKeys(msg)
	case SettingsView:
		return m.handleSettingsKeys(msg)
	}
	return m, nil
}

func viewShortcut(s string) (ViewState, bool) {
	switch s {
	case "1":
		return DownloadView, true
	case "2":
		return QueueView, true
	case "3":
		return LibraryView, true
	case "4":
		return SettingsView, true
	}
	return 0, false
}

func (m *Model) handleEditingKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.back) {
		m.stopEditing()
		return m, nil
	}

	switch m.view {
	case DownloadView:
		if msg.Type == tea.KeyEnter {
			m.stopEditing()
			return m, m.fetchInfo(m.urlInput.Value())
		}
	case QueueView:
		if key.Matches(msg, m.keys.submit) {
			m.stopEditing()
			return m, m.addBatch(shared.SplitURLs(m.batchInput.Value()))
		}
	case SettingsView:
		if msg.Type == tea.KeyEnter {
			m.stopEditing()
			return m, m.saveCookies(m.cookieInput.Value())
		}
	}
	return m.updateComponents(msg)
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.yes):
		m.confirm = false
		return m, m.deleteSelected()
	case key.Matches(msg, m.keys.no):
		m.confirm = false
	}
	return m, nil
}

func (m *Model) handlePlayerKeys(msg tea.KeyMsg) (tea.Cmd, bool) {
	p := m.deps.Player
	if p == nil {
		return nil, false
	}

	switch {
	case key.Matches(msg, m.keys.playPause):
		return m.playerAction(p.TogglePlay), true
	case key.Matches(msg, m.keys.next):
		return m.playerAction(p.Next), true
	case key.Matches(msg, m.keys.previous):
		return m.playerAction(p.Previous), true
	case key.Matches(msg, m.keys.seekBack), key.Matches(msg, m.keys.seekFwd):
		step := seekStep
		if key.Matches(msg, m.keys.seekBack) {
			step = -seekStep
		}
		pct := step
		if s := m.playerState; s.Duration > 0 {
			pct = s.Position/s.Duration*100 + step
		}
		return m.playerAction(func() error { return p.Seek(pct) }), true
	case key.Matches(msg, m.keys.volDown), key.Matches(msg, m.keys.volUp):
		step := volumeStep
		if key.Matches(msg, m.keys.volDown) {
			step = -volumeStep
		}
		pct := m.playerState.Volume*100 + step
		return m.playerAction(func() error { return p.SetVolume(pct) }), true
	case key.Matches(msg, m.keys.mute):
		return m.playerAction(p.ToggleMute), true
	}
	return nil, false
}

func (m *Model) handleDownloadKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.edit), key.Matches(msg, m.keys.enter):
		return m, m.startEditing()
	case key.Matches(msg, m.keys.download):
		if m.info == nil {
			m.err = fmt.Errorf("%w: fetch the video info first", shared.ErrMissingArgument)
			return m, nil
		}
		return m, m.startDownload(m.infoURL, m.info.Type)
	case key.Matches(msg, m.keys.enqueue):
		raw := m.infoURL
		if raw == "" {
			raw = m.urlInput.Value()
		}
		return m, m.addBatch([]string{raw})
	case key.Matches(msg, m.keys.save):
		if m.event == nil || m.event.Kind != tasks.EventCompleted {
			m.err = fmt.Errorf("%w: no finished download to save", shared.ErrInvalidArgument)
			return m, nil
		}
		return m, m.saveTask(m.taskID, m.taskKind)
	case key.Matches(msg, m.keys.back):
		m.info = nil
		m.infoURL = ""
		m.err = nil
		m.status = ""
		m.urlInput.Reset()
	}
	return m, nil
}

func (m *Model) handleQueueKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	rows := m.snapshot.Rows
	switch {
	case key.Matches(msg, m.keys.up):
		if m.queueCursor > 0 {
			m.queueCursor--
		}
	case key.Matches(msg, m.keys.down):
		if m.queueCursor < len(rows)-1 {
			m.queueCursor++
		}
	case key.Matches(msg, m.keys.edit):
		return m, m.startEditing()
	case key.Matches(msg, m.keys.refresh):
		return m, m.refreshQueue()
	case key.Matches(msg, m.keys.clear):
		return m, m.clearQueue()
	case key.Matches(msg, m.keys.remove):
		if row, ok := m.selectedRow(); ok && row.Actions.Has(tasks.ActionRemove) {
			return m, m.removeItem(row.Item.ID)
		}
	case key.Matches(msg, m.keys.enter):
		if row, ok := m.selectedRow(); ok && row.Actions.Has(tasks.ActionPlay) {
			return m, m.playQueueItem(row.Item)
		}
	case key.Matches(msg, m.keys.save):
		if row, ok := m.selectedRow(); ok && row.Actions.Has(tasks.ActionDownload) {
			return m, m.saveTask(row.Item.ID, row.Item.Type)
		}
	}
	return m, nil
}

func (m *Model) handleLibraryKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	lib := m.deps.Library
	switch {
	case key.Matches(msg, m.keys.enter):
		if item, ok := m.libraryList.SelectedItem().(fileItem); ok {
			return m, m.playTrack(item.file.Name, lib.Names())
		}
		return m, nil
	case key.Matches(msg, m.keys.playAll):
		names := lib.Names()
		if len(names) == 0 {
			return m, nil
		}
		return m, m.playTrack(names[0], names)
	case key.Matches(msg, m.keys.toggle):
		if item, ok := m.libraryList.SelectedItem().(fileItem); ok {
			lib.Toggle(item.file.Name)
		}
		return m, m.syncLibrary()
	case key.Matches(msg, m.keys.selectAll):
		lib.SelectAll()
		return m, m.syncLibrary()
	case key.Matches(msg, m.keys.unselect):
		lib.ClearSelection()
		return m, m.syncLibrary()
	case key.Matches(msg, m.keys.delete):
		if len(lib.Selected()) > 0 && m.libraryOp == nil {
			m.confirm = true
		}
		return m, nil
	case key.Matches(msg, m.keys.zip):
		if len(lib.Selected()) > 0 && m.libraryOp == nil {
			return m, m.zipSelected()
		}
		return m, nil
	case key.Matches(msg, m.keys.refresh):
		return m, m.loadLibrary()
	}

	var cmd tea.Cmd
	m.libraryList, cmd = m.libraryList.Update(msg)
	return m, cmd
}

func (m *Model) handleSettingsKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.edit), key.Matches(msg, m.keys.enter):
		return m, m.startEditing()
	case key.Matches(msg, m.keys.remove):
		return m, m.saveCookies("")
	}
	return m, nil
}

func (m *Model) updateComponents(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case DownloadView:
		m.urlInput, cmd = m.urlInput.Update(msg)
	case QueueView:
		m.batchInput, cmd = m.batchInput.Update(msg)
	case LibraryView:
		m.libraryList, cmd = m.libraryList.Update(msg)
	case SettingsView:
		m.cookieInput, cmd = m.cookieInput.Update(msg)
	}
	return m, cmd
}

func (m *Model) switchView(v ViewState) tea.Cmd {
	m.stopEditing()
	m.confirm = false
	m.view = v
	m.err = nil

	switch v {
	case QueueView:
		return m.refreshQueue()
	case LibraryView:
		return m.loadLibrary()
	case SettingsView:
		return m.loadCookies()
	}
	return nil
}

func (m *Model) startEditing() tea.Cmd {
	m.editing = true
	m.err = nil
	switch m.view {
	case DownloadView:
		return m.urlInput.Focus()
	case QueueView:
		return m.batchInput.Focus()
	case SettingsView:
		return m.cookieInput.Focus()
	}
	return nil
}

func (m *Model) stopEditing() {
	m.editing = false
	m.urlInput.Blur()
	m.batchInput.Blur()
	m.cookieInput.Blur()
}

func (m *Model) setResult(err error, message string) {
	if err != nil {
		m.err = err
		return
	}
	m.err = nil
	m.status = message
}

func (m *Model) selectedRow() (tasks.QueueRow, bool) {
	rows := m.snapshot.Rows
	if m.queueCursor < 0 || m.queueCursor >= len(rows) {
		return tasks.QueueRow{}, false
	}
	return rows[m.queueCursor], true
}

// syncLibrary rebuilds the library list from the controller's listing and selection.
func (m *Model) syncLibrary() tea.Cmd {
	if m.deps.Library == nil {
		return nil
	}
	files := m.deps.Library.Files()
	names := make([]string, len(files))
	for i, f := range files {
		names[i] = f.Name
	}
	playing := player.Highlight(m.playerState.Current, names)

	items := make([]list.Item, len(files))
	for i, f := range files {
		items[i] = fileItem{file: f, selected: m.deps.Library.IsSelected(f.Name), playing: playing[i]}
	}
	return m.libraryList.SetItems(items)
}

func taskError(ev tasks.TaskEvent) error {
	return errors.New(ev.Message)
}

func (op *libraryOp) wait() tea.Cmd {
	return func() tea.Msg {
		update, ok := <-op.progress
		if !ok {
			return op.done
		}
		return progressUpdateMsg(update)
	}
}

// Run starts the bubbletea program on the alternate screen and blocks until it exits.
func Run(ctx context.Context, deps Deps) error {
	m := NewModel(ctx, deps)
	defer m.Close()

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx), tea.WithOutput(os.Stdout))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
