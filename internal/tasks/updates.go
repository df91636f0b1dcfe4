package tasks

import (
	"fmt"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	FetchLibrary Phase = iota
	DeleteFiles
	ZipFiles
)

func (p Phase) String() string {
	switch p {
	case FetchLibrary:
		return "fetch_library"
	case DeleteFiles:
		return "delete_files"
	case ZipFiles:
		return "zip_files"
	default:
		return ""
	}
}

// sendProgress sends a progress update through the channel without blocking.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// ChannelListener adapts a channel to a listener func. Sends never block; a full channel drops the value.
func ChannelListener[T any](ch chan<- T) func(T) {
	return func(v T) {
		select {
		case ch <- v:
		default:
		}
	}
}

func deleteFileUpdate(step, total int, name string, err error) ProgressUpdate {
	if err != nil {
		return ProgressUpdate{
			Phase:   DeleteFiles,
			Step:    step,
			Total:   total,
			Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, name, err),
			Data:    name,
		}
	}
	return ProgressUpdate{
		Phase:   DeleteFiles,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s", step, total, name),
		Data:    name,
	}
}

func fetchLibraryUpdate(count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchLibrary,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Library reloaded (%d files)", count),
		Data:    count,
	}
}

func zipFilesUpdate(count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ZipFiles,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Requesting zip of %d files...", count),
	}
}
