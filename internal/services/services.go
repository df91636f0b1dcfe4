// package services defines clients for the HTTP APIs downyt talks to
package services

import (
	"context"
	"io"

	"github.com/desertthunder/downyt/internal/models"
)

// Backend is the set of download backend operations used by the CLI and TUI.
// [APIService] implements it.
type Backend interface {
	Info(ctx context.Context, rawURL string) (*models.MediaInfo, error)
	Download(ctx context.Context, rawURL string, kind models.DownloadType) (string, error)
	Progress(ctx context.Context, taskID string) (*models.Task, error)
	Batch(ctx context.Context, urls []string) (*models.BatchResponse, error)
	Queue(ctx context.Context) (*models.QueueResponse, error)
	RemoveFromQueue(ctx context.Context, taskID string) error
	ClearQueue(ctx context.Context) error
	ListDownloads(ctx context.Context) ([]models.FileInfo, error)
	DeleteFile(ctx context.Context, filename string) error
	DownloadFile(ctx context.Context, taskID string, w io.Writer) (string, error)
	DownloadZip(ctx context.Context, taskID string, w io.Writer) (string, error)
	DownloadExisting(ctx context.Context, filename string, w io.Writer) (string, error)
	DownloadMultiple(ctx context.Context, filenames []string, w io.Writer) (string, error)
	StreamURL(filename string) string
}

var _ Backend = (*APIService)(nil)
