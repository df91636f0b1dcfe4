package tasks

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/downyt/internal/models"
	"github.com/desertthunder/downyt/internal/shared"
	"golang.org/x/time/rate"
)

// LibraryBackend is the part of the backend the library controller uses.
type LibraryBackend interface {
	ListDownloads(ctx context.Context) ([]models.FileInfo, error)
	DeleteFile(ctx context.Context, filename string) error
	DownloadMultiple(ctx context.Context, filenames []string, w io.Writer) (string, error)
}

// LibraryOpts configures a [Library].
type LibraryOpts struct {
	DeleteRate float64 // delete requests per second (default: 5)
	Logger     *log.Logger
}

// DeleteOutcome is the result of deleting one file.
type DeleteOutcome struct {
	Name string
	Err  error
}

// DeleteResult collects the outcome of [Library.DeleteSelected].
type DeleteResult struct {
	Outcomes []DeleteOutcome
	Deleted  int
	Failed   int
}

// Library holds the downloaded file listing and the user's selection.
type Library struct {
	mu       sync.Mutex
	backend  LibraryBackend
	limiter  *rate.Limiter
	logger   *log.Logger
	files    []models.FileInfo
	selected map[string]struct{}
}

// NewLibrary creates an empty library bound to backend.
func NewLibrary(backend LibraryBackend, opts LibraryOpts) *Library {
	if opts.DeleteRate <= 0 {
		opts.DeleteRate = 5.0
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	return &Library{
		backend:  backend,
		limiter:  rate.NewLimiter(rate.Limit(opts.DeleteRate), 1),
		logger:   shared.WithLogger(opts.Logger, "component", "library"),
		selected: make(map[string]struct{}),
	}
}

// Load fetches the listing, newest first. Selected names that disappeared are dropped from the selection.
func (l *Library) Load(ctx context.Context) ([]models.FileInfo, error) {
	files, err := l.backend.ListDownloads(ctx)
	if err != nil {
		return nil, err
	}
	SortByModified(files)

	l.mu.Lock()
	defer l.mu.Unlock()

	l.files = files
	present := make(map[string]struct{}, len(files))
	for _, f := range files {
		present[f.Name] = struct{}{}
	}
	for name := range l.selected {
		if _, ok := present[name]; !ok {
			delete(l.selected, name)
		}
	}

	return l.filesLocked(), nil
}

// SortByModified orders files by modification time, newest first.
func SortByModified(files []models.FileInfo) {
	sort.SliceStable(files, func(i, j int) bool {
		return files[i].Modified > files[j].Modified
	})
}

// Files returns a copy of the loaded listing.
func (l *Library) Files() []models.FileInfo {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.filesLocked()
}

func (l *Library) filesLocked() []models.FileInfo {
	out := make([]models.FileInfo, len(l.files))
	copy(out, l.files)
	return out
}

// Names returns the filenames in listing order, used as the player's queue.
func (l *Library) Names() []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	names := make([]string, len(l.files))
	for i, f := range l.files {
		names[i] = f.Name
	}
	return names
}

// Toggle flips the selection of name and reports whether it is now selected.
func (l *Library) Toggle(name string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.selected[name]; ok {
		delete(l.selected, name)
		return false
	}
	l.selected[name] = struct{}{}
	return true
}

// Select adds names to the selection.
func (l *Library) Select(names ...string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, name := range names {
		l.selected[name] = struct{}{}
	}
}

// SelectAll selects every loaded file.
func (l *Library) SelectAll() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, f := range l.files {
		l.selected[f.Name] = struct{}{}
	}
}

// ClearSelection empties the selection.
func (l *Library) ClearSelection() {
	l.mu.Lock()
	defer l.mu.Unlock()
	clear(l.selected)
}

// IsSelected reports whether name is selected.
func (l *Library) IsSelected(name string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.selected[name]
	return ok
}

// Selected returns the selected names, in listing order first and then alphabetically for names not in the listing.
func (l *Library) Selected() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.selectedLocked()
}

func (l *Library) selectedLocked() []string {
	names := make([]string, 0, len(l.selected))
	seen := make(map[string]struct{}, len(l.selected))
	for _, f := range l.files {
		if _, ok := l.selected[f.Name]; ok {
			names = append(names, f.Name)
			seen[f.Name] = struct{}{}
		}
	}

	var rest []string
	for name := range l.selected {
		if _, ok := seen[name]; !ok {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	return append(names, rest...)
}

// DeleteSelected issues one delete request per selected file, in order and rate limited, then clears the
// selection whatever the outcomes and reloads the listing.
//
// Progress updates are sent on prog without blocking; prog may be nil.
func (l *Library) DeleteSelected(ctx context.Context, prog chan<- ProgressUpdate) (*DeleteResult, error) {
	l.mu.Lock()
	names := l.selectedLocked()
	l.mu.Unlock()

	defer l.ClearSelection()

	if len(names) == 0 {
		return nil, fmt.Errorf("%w: no files selected", shared.ErrMissingArgument)
	}

	result := &DeleteResult{Outcomes: make([]DeleteOutcome, 0, len(names))}
	for i, name := range names {
		if err := l.limiter.Wait(ctx); err != nil {
			return result, err
		}

		err := l.backend.DeleteFile(ctx, name)
		if err != nil {
			result.Failed++
			l.logger.Warn("delete failed", "file", name, "err", err)
		} else {
			result.Deleted++
		}
		result.Outcomes = append(result.Outcomes, DeleteOutcome{Name: name, Err: err})
		sendProgress(prog, deleteFileUpdate(i+1, len(names), name, err))
	}

	files, err := l.Load(ctx)
	if err != nil {
		l.logger.Warn("library reload failed", "err", err)
	} else {
		sendProgress(prog, fetchLibraryUpdate(len(files)))
	}

	return result, nil
}

// DownloadSelected writes a zip of the selected files to w and returns the server-suggested name.
func (l *Library) DownloadSelected(ctx context.Context, w io.Writer, prog chan<- ProgressUpdate) (string, error) {
	names := l.Selected()
	if len(names) == 0 {
		return "", fmt.Errorf("%w: no files selected", shared.ErrMissingArgument)
	}

	sendProgress(prog, zipFilesUpdate(len(names)))
	return l.backend.DownloadMultiple(ctx, names, w)
}
