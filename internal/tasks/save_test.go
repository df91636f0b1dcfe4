package tasks_test

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/desertthunder/downyt/internal/models"
	"github.com/desertthunder/downyt/internal/shared"
	"github.com/desertthunder/downyt/internal/tasks"
	tu "github.com/desertthunder/downyt/internal/testing"
)

type fakeResults struct {
	name  string
	err   error
	calls []string
}

func (f *fakeResults) DownloadFile(ctx context.Context, taskID string, w io.Writer) (string, error) {
	f.calls = append(f.calls, "file:"+taskID)
	if f.err != nil {
		return "", f.err
	}
	_, err := io.WriteString(w, "ID3")
	return f.name, err
}

func (f *fakeResults) DownloadZip(ctx context.Context, taskID string, w io.Writer) (string, error) {
	f.calls = append(f.calls, "zip:"+taskID)
	if f.err != nil {
		return "", f.err
	}
	_, err := io.WriteString(w, "PK")
	return f.name, err
}

func TestSaveTaskResult(t *testing.T) {
	ctx := context.Background()

	t.Run("Video Uses Suggested Name", func(t *testing.T) {
		dir := t.TempDir()
		fetcher := &fakeResults{name: "Song.mp3"}

		path, err := tasks.SaveTaskResult(ctx, fetcher, "t1", models.TypeVideo, dir)
		if err != nil {
			t.Fatalf("SaveTaskResult() error = %v", err)
		}
		if path != filepath.Join(dir, "Song.mp3") {
			t.Errorf("path = %s", path)
		}
		if got := tu.MustReadFile(t, path); got != "ID3" {
			t.Errorf("content = %q", got)
		}
		if len(fetcher.calls) != 1 || fetcher.calls[0] != "file:t1" {
			t.Errorf("calls = %v", fetcher.calls)
		}
	})

	t.Run("Playlist Falls Back To Task Zip", func(t *testing.T) {
		dir := t.TempDir()
		fetcher := &fakeResults{}

		path, err := tasks.SaveTaskResult(ctx, fetcher, "t2", models.TypePlaylist, dir)
		if err != nil {
			t.Fatalf("SaveTaskResult() error = %v", err)
		}
		if filepath.Base(path) != "t2.zip" || fetcher.calls[0] != "zip:t2" {
			t.Errorf("path = %s, calls = %v", path, fetcher.calls)
		}
	})

	t.Run("Suggested Name Cannot Escape Dir", func(t *testing.T) {
		dir := t.TempDir()
		path, err := tasks.SaveTaskResult(ctx, &fakeResults{name: "../../evil.mp3"}, "t3", models.TypeVideo, dir)
		if err != nil {
			t.Fatalf("SaveTaskResult() error = %v", err)
		}
		if path != filepath.Join(dir, "evil.mp3") {
			t.Errorf("path = %s", path)
		}
	})

	t.Run("Failure Leaves No File", func(t *testing.T) {
		dir := t.TempDir()
		boom := errors.New("boom")

		if _, err := tasks.SaveTaskResult(ctx, &fakeResults{err: boom}, "t4", models.TypeVideo, dir); !errors.Is(err, boom) {
			t.Fatalf("expected boom, got %v", err)
		}
		entries, _ := os.ReadDir(dir)
		if len(entries) != 0 {
			t.Errorf("expected empty dir, found %d entries", len(entries))
		}
	})

	t.Run("Missing Task", func(t *testing.T) {
		if _, err := tasks.SaveTaskResult(ctx, &fakeResults{}, "", models.TypeVideo, t.TempDir()); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})
}

func TestSaveFile(t *testing.T) {
	t.Run("Explicit Name Wins", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "nested")
		path, err := tasks.SaveFile(dir, "downloads.zip", "fallback.zip", func(w io.Writer) (string, error) {
			_, err := io.WriteString(w, "PK")
			return "musicas_selecionadas.zip", err
		})
		if err != nil {
			t.Fatalf("SaveFile() error = %v", err)
		}
		if path != filepath.Join(dir, "downloads.zip") {
			t.Errorf("path = %s", path)
		}
		tu.AssertFileExists(t, path)
	})
}
