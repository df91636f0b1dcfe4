package models

import (
	"fmt"
	"time"
)

// Status is the lifecycle state the backend reports for a task or queue item.
type Status string

const (
	StatusQueued      Status = "queued"
	StatusStarting    Status = "starting"
	StatusDownloading Status = "downloading"
	StatusProcessing  Status = "processing"
	StatusConverting  Status = "converting"
	StatusCompleted   Status = "completed"
	StatusError       Status = "error"
	StatusCancelled   Status = "cancelled"
)

// IsTerminal reports whether polling should stop once this status is observed.
// Unknown statuses are intermediate.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusError, StatusCancelled:
		return true
	default:
		return false
	}
}

// DownloadType distinguishes a single video from a playlist.
type DownloadType string

const (
	TypeVideo    DownloadType = "video"
	TypePlaylist DownloadType = "playlist"
)

// ParseDownloadType validates a user supplied type.
func ParseDownloadType(s string) (DownloadType, error) {
	switch DownloadType(s) {
	case TypeVideo, TypePlaylist:
		return DownloadType(s), nil
	default:
		return "", fmt.Errorf("unknown download type %q (want video or playlist)", s)
	}
}

// PlaylistVideo is the per-entry state of a playlist task.
type PlaylistVideo struct {
	Title    string `json:"title"`
	Filename string `json:"filename,omitempty"`
	Status   Status `json:"status"`
	Error    string `json:"error,omitempty"`
}

// Task is the progress record returned by GET /api/progress/:task_id.
type Task struct {
	ID             string          `json:"task_id,omitempty"`
	Status         Status          `json:"status"`
	Progress       float64         `json:"progress"`
	Type           DownloadType    `json:"type,omitempty"`
	Title          string          `json:"title,omitempty"`
	CurrentVideo   string          `json:"current_video,omitempty"`
	CurrentIndex   int             `json:"current_index,omitempty"`
	Total          int             `json:"total,omitempty"`
	Filename       string          `json:"filename,omitempty"`
	Error          string          `json:"error,omitempty"`
	CompletedCount int             `json:"completed_count,omitempty"`
	Videos         []PlaylistVideo `json:"videos,omitempty"`
}

// CountCompleted returns how many playlist entries finished successfully.
func (t Task) CountCompleted() int {
	n := 0
	for _, v := range t.Videos {
		if v.Status == StatusCompleted {
			n++
		}
	}
	return n
}

// QueueItem is an entry of the batch queue.
type QueueItem struct {
	ID           string       `json:"task_id"`
	URL          string       `json:"url,omitempty"`
	Title        string       `json:"title"`
	Type         DownloadType `json:"type"`
	Status       Status       `json:"status"`
	Progress     float64      `json:"progress"`
	CurrentVideo string       `json:"current_video,omitempty"`
	CurrentIndex int          `json:"current_index,omitempty"`
	Total        int          `json:"total,omitempty"`
	Filename     string       `json:"filename,omitempty"`
	Error        string       `json:"error,omitempty"`
	AddedAt      string       `json:"added_at,omitempty"`
	CompletedAt  string       `json:"completed_at,omitempty"`
}

// QueueResponse is the body of GET /api/queue.
type QueueResponse struct {
	QueueSize  int         `json:"queue_size"`
	TotalItems int         `json:"total_items"`
	Items      []QueueItem `json:"items"`
}

// BatchResponse is the body of POST /api/batch.
type BatchResponse struct {
	Message string      `json:"message"`
	Items   []QueueItem `json:"items"`
}

// FileInfo describes a file in the library listing.
type FileInfo struct {
	Name     string  `json:"name"`
	Size     int64   `json:"size"`
	Modified float64 `json:"modified"`
	Duration float64 `json:"duration,omitempty"`
	Title    string  `json:"title,omitempty"`
	Artist   string  `json:"artist,omitempty"`
	Album    string  `json:"album,omitempty"`
	Year     string  `json:"year,omitempty"`
	Genre    string  `json:"genre,omitempty"`
}

// PlaylistEntry is a video listed inside a playlist's [MediaInfo].
type PlaylistEntry struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Duration float64 `json:"duration,omitempty"`
}

// MediaInfo is returned by POST /api/info; the populated fields depend on Type.
type MediaInfo struct {
	Type      DownloadType    `json:"type"`
	Title     string          `json:"title"`
	Duration  float64         `json:"duration,omitempty"`
	Thumbnail string          `json:"thumbnail,omitempty"`
	Channel   string          `json:"channel,omitempty"`
	Count     int             `json:"count,omitempty"`
	Videos    []PlaylistEntry `json:"videos,omitempty"`
}

// HistoryEntry records a download started from this client.
type HistoryEntry struct {
	ID        string
	TaskID    string
	URL       string
	Type      DownloadType
	Title     string
	Status    Status
	Message   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate checks the fields required before the entry is stored.
func (h *HistoryEntry) Validate() error {
	if h.TaskID == "" {
		return fmt.Errorf("task id is required")
	}
	if h.URL == "" {
		return fmt.Errorf("url is required")
	}
	if h.Type != TypeVideo && h.Type != TypePlaylist {
		return fmt.Errorf("invalid type %q", h.Type)
	}
	return nil
}
