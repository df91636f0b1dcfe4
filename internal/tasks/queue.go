package tasks

import (
	"fmt"

	"github.com/desertthunder/downyt/internal/models"
)

// Cadence is the queue poller's rate tier. Tiers are ordered fast < slow < stopped.
type Cadence int

const (
	CadenceFast Cadence = iota
	CadenceSlow
	CadenceStopped
)

func (c Cadence) String() string {
	switch c {
	case CadenceFast:
		return "fast"
	case CadenceSlow:
		return "slow"
	case CadenceStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

func (c Cadence) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// CadenceFor picks the tier for a queue: fast while anything is processing, slow while anything is queued,
// stopped otherwise.
func CadenceFor(items []models.QueueItem) Cadence {
	cadence := CadenceStopped
	for _, item := range items {
		switch item.Status {
		case models.StatusProcessing:
			return CadenceFast
		case models.StatusQueued:
			cadence = CadenceSlow
		}
	}
	return cadence
}

// Action is a bit set of the operations available on a queue row.
type Action uint8

const (
	ActionRemove Action = 1 << iota
	ActionDisabled
	ActionPlay
	ActionDownload
)

// Has reports whether every bit of b is set in a.
func (a Action) Has(b Action) bool {
	return a&b == b
}

// ActionsFor returns the actions offered for an item with the given status and type.
func ActionsFor(status models.Status, kind models.DownloadType) Action {
	switch status {
	case models.StatusQueued:
		return ActionRemove
	case models.StatusProcessing:
		return ActionDisabled
	case models.StatusCompleted:
		if kind == models.TypeVideo {
			return ActionPlay | ActionDownload
		}
		return ActionDownload
	default:
		return ActionRemove
	}
}

// Stats counts queue items per status.
type Stats struct {
	Pending    int `json:"pending"`
	Processing int `json:"processing"`
	Completed  int `json:"completed"`
	Errors     int `json:"errors"`
}

// ComputeStats counts items by status. Statuses outside the four tracked ones are ignored.
func ComputeStats(items []models.QueueItem) Stats {
	var s Stats
	for _, item := range items {
		switch item.Status {
		case models.StatusQueued:
			s.Pending++
		case models.StatusProcessing:
			s.Processing++
		case models.StatusCompleted:
			s.Completed++
		case models.StatusError:
			s.Errors++
		}
	}
	return s
}

// Badge is the number of active items (queued or processing).
func Badge(items []models.QueueItem) int {
	s := ComputeStats(items)
	return s.Pending + s.Processing
}

// DownloadPath returns the backend path serving a finished item.
func DownloadPath(item models.QueueItem) string {
	if item.Type == models.TypePlaylist {
		return "/api/download-zip/" + item.ID
	}
	return "/api/download-file/" + item.ID
}

// StatusLabel is the short caption of an item's status.
func StatusLabel(status models.Status) string {
	switch status {
	case models.StatusProcessing:
		return "Baixando"
	case models.StatusQueued:
		return "Na fila"
	case models.StatusCompleted:
		return "Completo"
	case models.StatusError:
		return "Erro"
	case models.StatusCancelled:
		return "Cancelado"
	default:
		return string(status)
	}
}

// ProgressDetail renders the progress column of a queue row.
func ProgressDetail(item models.QueueItem) string {
	switch item.Status {
	case models.StatusProcessing:
		percent := Percent(item.Progress)
		if item.CurrentVideo != "" && item.Total > 0 {
			return fmt.Sprintf("%d/%d - %d%%", item.CurrentIndex, item.Total, percent)
		}
		return fmt.Sprintf("%d%%", percent)
	case models.StatusQueued:
		return "Aguardando..."
	case models.StatusCompleted:
		return "✓ Concluído"
	case models.StatusError:
		if item.Error != "" {
			return "✗ " + item.Error
		}
		return "✗ Erro desconhecido"
	case models.StatusCancelled:
		return "Cancelado"
	default:
		return string(item.Status)
	}
}

// QueueRow is one rendered queue item.
type QueueRow struct {
	Item         models.QueueItem `json:"item"`
	Actions      Action           `json:"actions"`
	DownloadPath string           `json:"download_path,omitempty"`
}

// QueueSnapshot is what the queue poller reports after each applied fetch.
type QueueSnapshot struct {
	QueueSize int        `json:"queue_size"`
	Rows      []QueueRow `json:"rows"`
	Stats     Stats      `json:"stats"`
	Badge     int        `json:"badge"`
	Cadence   Cadence    `json:"cadence"`
}

// Items returns the queue items in backend order.
func (s QueueSnapshot) Items() []models.QueueItem {
	items := make([]models.QueueItem, len(s.Rows))
	for i, row := range s.Rows {
		items[i] = row.Item
	}
	return items
}

// BuildSnapshot derives rows, counts and cadence from a queue response. It depends only on the items.
func BuildSnapshot(resp models.QueueResponse) QueueSnapshot {
	rows := make([]QueueRow, len(resp.Items))
	for i, item := range resp.Items {
		row := QueueRow{Item: item, Actions: ActionsFor(item.Status, item.Type)}
		if row.Actions.Has(ActionDownload) {
			row.DownloadPath = DownloadPath(item)
		}
		rows[i] = row
	}

	return QueueSnapshot{
		QueueSize: resp.QueueSize,
		Rows:      rows,
		Stats:     ComputeStats(resp.Items),
		Badge:     Badge(resp.Items),
		Cadence:   CadenceFor(resp.Items),
	}
}
