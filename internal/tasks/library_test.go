package tasks_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/desertthunder/downyt/internal/models"
	"github.com/desertthunder/downyt/internal/shared"
	"github.com/desertthunder/downyt/internal/tasks"
)

type fakeLibrary struct {
	mu      sync.Mutex
	files   []models.FileInfo
	deletes []string
	failOn  map[string]bool
	zipped  []string
}

func (f *fakeLibrary) ListDownloads(ctx context.Context) ([]models.FileInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.FileInfo(nil), f.files...), nil
}

func (f *fakeLibrary) DeleteFile(ctx context.Context, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes = append(f.deletes, name)
	if f.failOn[name] {
		return fmt.Errorf("%w: permission denied", shared.ErrAPIRequest)
	}
	kept := f.files[:0]
	for _, file := range f.files {
		if file.Name != name {
			kept = append(kept, file)
		}
	}
	f.files = kept
	return nil
}

func (f *fakeLibrary) DownloadMultiple(ctx context.Context, names []string, w io.Writer) (string, error) {
	f.zipped = names
	_, err := w.Write([]byte("PK"))
	return "musicas_selecionadas.zip", err
}

func newLibrary() (*tasks.Library, *fakeLibrary) {
	backend := &fakeLibrary{
		files: []models.FileInfo{
			{Name: "old.mp3", Modified: 100},
			{Name: "new.mp3", Modified: 300},
			{Name: "mid.mp3", Modified: 200},
		},
		failOn: map[string]bool{},
	}
	return tasks.NewLibrary(backend, tasks.LibraryOpts{DeleteRate: 1000, Logger: quietLogger()}), backend
}

func TestLibrary(t *testing.T) {
	ctx := context.Background()

	t.Run("Load Sorts Newest First", func(t *testing.T) {
		lib, _ := newLibrary()
		if _, err := lib.Load(ctx); err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if got := strings.Join(lib.Names(), ","); got != "new.mp3,mid.mp3,old.mp3" {
			t.Errorf("Names() = %s", got)
		}
	})

	t.Run("Selection", func(t *testing.T) {
		lib, _ := newLibrary()
		lib.Load(ctx)

		if !lib.Toggle("old.mp3") || !lib.IsSelected("old.mp3") {
			t.Error("Toggle should select")
		}
		lib.Select("new.mp3")
		if got := strings.Join(lib.Selected(), ","); got != "new.mp3,old.mp3" {
			t.Errorf("Selected() should follow listing order, got %s", got)
		}
		if lib.Toggle("old.mp3") {
			t.Error("second Toggle should deselect")
		}
		lib.SelectAll()
		if len(lib.Selected()) != 3 {
			t.Errorf("SelectAll selected %d", len(lib.Selected()))
		}
		lib.ClearSelection()
		if len(lib.Selected()) != 0 {
			t.Error("ClearSelection should empty the selection")
		}
	})

	t.Run("DeleteSelected Issues One Request Per File", func(t *testing.T) {
		lib, backend := newLibrary()
		lib.Load(ctx)
		lib.Select("old.mp3", "new.mp3", "mid.mp3")
		backend.failOn["mid.mp3"] = true

		prog := make(chan tasks.ProgressUpdate, 10)
		result, err := lib.DeleteSelected(ctx, prog)
		if err != nil {
			t.Fatalf("DeleteSelected() error = %v", err)
		}

		if len(backend.deletes) != 3 {
			t.Errorf("expected exactly 3 delete requests, got %v", backend.deletes)
		}
		if result.Deleted != 2 || result.Failed != 1 {
			t.Errorf("unexpected result %+v", result)
		}
		if !errors.Is(result.Outcomes[1].Err, shared.ErrAPIRequest) || result.Outcomes[1].Name != "mid.mp3" {
			t.Errorf("expected mid.mp3 failure in outcomes, got %+v", result.Outcomes)
		}
		if len(lib.Selected()) != 0 {
			t.Error("selection should be cleared regardless of failures")
		}
		if got := strings.Join(lib.Names(), ","); got != "mid.mp3" {
			t.Errorf("expected reloaded listing, got %s", got)
		}
		if len(prog) != 4 {
			t.Errorf("expected 3 delete updates and 1 reload update, got %d", len(prog))
		}
	})

	t.Run("DeleteSelected Without Selection", func(t *testing.T) {
		lib, backend := newLibrary()
		if _, err := lib.DeleteSelected(ctx, nil); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
		if len(backend.deletes) != 0 {
			t.Error("no requests expected")
		}
	})

	t.Run("DeleteSelected Cancelled", func(t *testing.T) {
		lib, backend := newLibrary()
		lib.Load(ctx)
		lib.SelectAll()

		cctx, cancel := context.WithCancel(ctx)
		cancel()
		if _, err := lib.DeleteSelected(cctx, nil); err == nil {
			t.Error("expected context error")
		}
		if len(backend.deletes) != 0 || len(lib.Selected()) != 0 {
			t.Errorf("expected no requests and a cleared selection, deletes=%v", backend.deletes)
		}
	})

	t.Run("DownloadSelected", func(t *testing.T) {
		lib, backend := newLibrary()
		lib.Load(ctx)

		var buf bytes.Buffer
		if _, err := lib.DownloadSelected(ctx, &buf, nil); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}

		lib.Select("old.mp3", "new.mp3")
		name, err := lib.DownloadSelected(ctx, &buf, nil)
		if err != nil || name != "musicas_selecionadas.zip" || buf.String() != "PK" {
			t.Errorf("DownloadSelected() = %q, %v", name, err)
		}
		if strings.Join(backend.zipped, ",") != "new.mp3,old.mp3" {
			t.Errorf("zipped %v", backend.zipped)
		}
	})

	t.Run("Load Prunes Missing Selection", func(t *testing.T) {
		lib, backend := newLibrary()
		lib.Load(ctx)
		lib.Select("old.mp3", "ghost.mp3")

		backend.files = backend.files[:2]
		lib.Load(ctx)
		if got := strings.Join(lib.Selected(), ","); got != "old.mp3" {
			t.Errorf("Selected() = %s", got)
		}
	})
}
