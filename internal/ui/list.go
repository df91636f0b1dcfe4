package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"

	"github.com/desertthunder/downyt/internal/models"
	"github.com/desertthunder/downyt/internal/shared"
)

var (
	_ list.Item = fileItem{}
)

// fileItem wraps [models.FileInfo] to implement [list.Item].
type fileItem struct {
	file     models.FileInfo
	selected bool
	playing  bool
}

func (i fileItem) FilterValue() string { return i.file.Name }

func (i fileItem) Title() string {
	var b strings.Builder
	switch {
	case i.playing:
		b.WriteString("▶ ")
	case i.selected:
		b.WriteString("● ")
	default:
		b.WriteString("  ")
	}
	title := i.file.Title
	if title == "" {
		title = shared.TrackTitle(i.file.Name)
	}
	b.WriteString(shared.Truncate(title, 60))
	return b.String()
}

func (i fileItem) Description() string {
	desc := fmt.Sprintf("%s • %s • %s",
		shared.FormatDuration(i.file.Duration),
		shared.FormatFileSize(i.file.Size),
		shared.FormatModified(i.file.Modified))
	if i.file.Artist != "" {
		desc = fmt.Sprintf("%s • %s", shared.Truncate(i.file.Artist, 25), desc)
	}
	return "  " + desc
}
