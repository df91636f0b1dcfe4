package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/downyt/internal/models"
	"github.com/desertthunder/downyt/internal/player"
	"github.com/desertthunder/downyt/internal/tasks"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgInfoFetched MsgKind = iota
	MsgDownloadStarted
	MsgTaskEvent
	MsgSaved
	MsgBatchAdded
	MsgQueueSnapshot
	MsgQueueChanged
	MsgLibraryLoaded
	MsgProgressUpdate
	MsgDeleteComplete
	MsgZipComplete
	MsgPlayerState
	MsgPlayerTick
	MsgCookiesLoaded
	MsgCookiesSaved
	MsgFailed
)

type infoFetched struct {
	url  string
	info *models.MediaInfo
	err  error
}

type downloadStarted struct {
	taskID string
	kind   models.DownloadType
	err    error
}

type pathResult struct {
	path string
	err  error
}

type batchAdded struct {
	resp *models.BatchResponse
	err  error
}

type queueChanged struct {
	message string
	err     error
}

type libraryLoaded struct {
	files []models.FileInfo
	err   error
}

type deleteComplete struct {
	result *tasks.DeleteResult
	err    error
}

type cookiesResult struct {
	value string
	err   error
}

// infoFetchedMsg is the constructor for [MsgInfoFetched]
func infoFetchedMsg(url string, info *models.MediaInfo, err error) Msg {
	return Msg{kind: MsgInfoFetched, data: infoFetched{url, info, err}}
}

// downloadStartedMsg is the constructor for [MsgDownloadStarted]
func downloadStartedMsg(taskID string, kind models.DownloadType, err error) Msg {
	return Msg{kind: MsgDownloadStarted, data: downloadStarted{taskID, kind, err}}
}

// taskEventMsg is the constructor for [MsgTaskEvent]
func taskEventMsg(ev tasks.TaskEvent) Msg {
	return Msg{kind: MsgTaskEvent, data: ev}
}

// savedMsg is the constructor for [MsgSaved]
func savedMsg(path string, err error) Msg {
	return Msg{kind: MsgSaved, data: pathResult{path, err}}
}

// batchAddedMsg is the constructor for [MsgBatchAdded]
func batchAddedMsg(resp *models.BatchResponse, err error) Msg {
	return Msg{kind: MsgBatchAdded, data: batchAdded{resp, err}}
}

// queueSnapshotMsg is the constructor for [MsgQueueSnapshot]
func queueSnapshotMsg(snap tasks.QueueSnapshot) Msg {
	return Msg{kind: MsgQueueSnapshot, data: snap}
}

// queueChangedMsg is the constructor for [MsgQueueChanged]
func queueChangedMsg(message string, err error) Msg {
	return Msg{kind: MsgQueueChanged, data: queueChanged{message, err}}
}

// libraryLoadedMsg is the constructor for [MsgLibraryLoaded]
func libraryLoadedMsg(files []models.FileInfo, err error) Msg {
	return Msg{kind: MsgLibraryLoaded, data: libraryLoaded{files, err}}
}

// progressUpdateMsg is the constructor for [MsgProgressUpdate]
func progressUpdateMsg(update tasks.ProgressUpdate) Msg {
	return Msg{kind: MsgProgressUpdate, data: update}
}

// deleteCompleteMsg is the constructor for [MsgDeleteComplete]
func deleteCompleteMsg(result *tasks.DeleteResult, err error) Msg {
	return Msg{kind: MsgDeleteComplete, data: deleteComplete{result, err}}
}

// zipCompleteMsg is the constructor for [MsgZipComplete]
func zipCompleteMsg(path string, err error) Msg {
	return Msg{kind: MsgZipComplete, data: pathResult{path, err}}
}

// playerStateMsg is the constructor for [MsgPlayerState]
func playerStateMsg(state player.State) Msg {
	return Msg{kind: MsgPlayerState, data: state}
}

// playerTickMsg is the constructor for [MsgPlayerTick]
func playerTickMsg() Msg {
	return Msg{kind: MsgPlayerTick}
}

// cookiesLoadedMsg is the constructor for [MsgCookiesLoaded]
func cookiesLoadedMsg(value string, err error) Msg {
	return Msg{kind: MsgCookiesLoaded, data: cookiesResult{value, err}}
}

// cookiesSavedMsg is the constructor for [MsgCookiesSaved]
func cookiesSavedMsg(value string, err error) Msg {
	return Msg{kind: MsgCookiesSaved, data: cookiesResult{value, err}}
}

// failedMsg is the constructor for [MsgFailed], used by one-shot actions that only report errors.
func failedMsg(err error) Msg {
	return Msg{kind: MsgFailed, data: err}
}
