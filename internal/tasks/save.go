package tasks

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/desertthunder/downyt/internal/models"
	"github.com/desertthunder/downyt/internal/shared"
)

// ResultFetcher streams the output of a finished task.
type ResultFetcher interface {
	DownloadFile(ctx context.Context, taskID string, w io.Writer) (string, error)
	DownloadZip(ctx context.Context, taskID string, w io.Writer) (string, error)
}

// SaveFile streams fetch into a file under dir and returns its path.
//
// The file is called name, or the name suggested by fetch when name is empty, or fallback when fetch
// suggests nothing. Data goes to a temporary file first so a failed transfer leaves nothing behind.
func SaveFile(dir, name, fallback string, fetch func(w io.Writer) (string, error)) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".downyt-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	suggested, err := fetch(tmp)
	if cerr := tmp.Close(); err == nil && cerr != nil {
		err = cerr
	}
	if err != nil {
		return "", err
	}

	if name == "" {
		name = suggested
	}
	if name == "" {
		name = fallback
	}
	name = filepath.Base(name)
	if name == "." || name == string(filepath.Separator) {
		return "", fmt.Errorf("%w: no file name for download", shared.ErrInvalidArgument)
	}

	path := filepath.Join(dir, name)
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("failed to save %s: %w", name, err)
	}
	return path, nil
}

// SaveTaskResult saves the output of a finished task into dir: the mp3 of a video, or the zip of a
// playlist.
func SaveTaskResult(ctx context.Context, fetcher ResultFetcher, taskID string, kind models.DownloadType, dir string) (string, error) {
	if taskID == "" {
		return "", fmt.Errorf("%w: task id", shared.ErrMissingArgument)
	}

	if kind == models.TypePlaylist {
		return SaveFile(dir, "", taskID+".zip", func(w io.Writer) (string, error) {
			return fetcher.DownloadZip(ctx, taskID, w)
		})
	}
	return SaveFile(dir, "", taskID+".mp3", func(w io.Writer) (string, error) {
		return fetcher.DownloadFile(ctx, taskID, w)
	})
}
