package formatter

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"

	"github.com/desertthunder/downyt/internal/models"
	"github.com/desertthunder/downyt/internal/shared"
	"github.com/desertthunder/downyt/internal/tasks"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

// ShouldColorize reports whether w is a terminal.
func ShouldColorize(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// StatusColors maps a status to its table color.
func StatusColors(status models.Status) text.Colors {
	switch status {
	case models.StatusCompleted:
		return text.Colors{text.FgGreen}
	case models.StatusError:
		return text.Colors{text.FgRed}
	case models.StatusProcessing, models.StatusDownloading, models.StatusConverting, models.StatusStarting:
		return text.Colors{text.FgBlue}
	case models.StatusQueued:
		return text.Colors{text.FgYellow}
	default:
		return text.Colors{text.FgHiBlack}
	}
}

func paint(s string, colors text.Colors, colorize bool) string {
	if !colorize || s == "" {
		return s
	}
	return colors.Sprint(s)
}

func renderTable(headers []string, rows [][]string, aligns []columnAlignment, footer []string) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i := range columns {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := range columns {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	if len(footer) > 0 {
		f := make(table.Row, columns)
		for i := range columns {
			if i < len(footer) {
				f[i] = footer[i]
			} else {
				f[i] = ""
			}
		}
		tw.AppendFooter(f)
	}

	columnConfigs := make([]table.ColumnConfig, 0, columns)
	for i := range columns {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		columnConfigs = append(columnConfigs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(columnConfigs)

	return tw.Render()
}

// QueueTable renders a queue snapshot with a stats footer.
func QueueTable(snap tasks.QueueSnapshot, colorize bool) string {
	headers := []string{"#", "Task", "Title", "Type", "Status", "Progress"}
	aligns := []columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft, alignRight}

	rows := make([][]string, 0, len(snap.Rows))
	for i, row := range snap.Rows {
		item := row.Item
		title := item.Title
		if title == "" {
			title = item.URL
		}
		colors := StatusColors(item.Status)
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			item.ID,
			shared.Truncate(title, 50),
			string(item.Type),
			paint(tasks.StatusLabel(item.Status), colors, colorize),
			paint(tasks.ProgressDetail(item), colors, colorize),
		})
	}

	stats := snap.Stats
	footer := []string{
		"",
		fmt.Sprintf("na fila %d", stats.Pending),
		fmt.Sprintf("baixando %d", stats.Processing),
		fmt.Sprintf("completos %d", stats.Completed),
		fmt.Sprintf("erros %d", stats.Errors),
		"",
	}
	return renderTable(headers, rows, aligns, footer)
}

// LibraryTable renders the library listing. Selected files are marked with "*".
func LibraryTable(files []models.FileInfo, selected func(name string) bool, colorize bool) string {
	headers := []string{"", "#", "Title", "Artist", "Duration", "Size", "Modified"}
	aligns := []columnAlignment{alignLeft, alignRight, alignLeft, alignLeft, alignRight, alignRight, alignLeft}

	rows := make([][]string, 0, len(files))
	var total int64
	for i, file := range files {
		mark := ""
		if selected != nil && selected(file.Name) {
			mark = paint("*", text.Colors{text.FgGreen}, colorize)
		}
		total += file.Size
		rows = append(rows, []string{
			mark,
			strconv.Itoa(i + 1),
			shared.Truncate(displayTitle(file), 45),
			shared.Truncate(file.Artist, 25),
			shared.FormatDuration(file.Duration),
			shared.FormatFileSize(file.Size),
			shared.FormatModified(file.Modified),
		})
	}

	footer := []string{"", "", fmt.Sprintf("%d files", len(files)), "", "", shared.FormatFileSize(total), ""}
	return renderTable(headers, rows, aligns, footer)
}

// HistoryTable renders locally recorded downloads.
func HistoryTable(entries []*models.HistoryEntry, colorize bool) string {
	headers := []string{"Started", "Task", "Type", "Status", "Title", "Message"}

	rows := make([][]string, 0, len(entries))
	for _, entry := range entries {
		title := entry.Title
		if title == "" {
			title = entry.URL
		}
		rows = append(rows, []string{
			entry.CreatedAt.Local().Format("2006-01-02 15:04"),
			entry.TaskID,
			string(entry.Type),
			paint(string(entry.Status), StatusColors(entry.Status), colorize),
			shared.Truncate(title, 45),
			shared.Truncate(entry.Message, 30),
		})
	}
	return renderTable(headers, rows, nil, nil)
}

// PlaylistTable renders the videos of a playlist info response.
func PlaylistTable(info *models.MediaInfo) string {
	headers := []string{"#", "ID", "Title", "Duration"}
	aligns := []columnAlignment{alignRight, alignLeft, alignLeft, alignRight}

	rows := make([][]string, 0, len(info.Videos))
	for i, video := range info.Videos {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			video.ID,
			shared.Truncate(video.Title, 50),
			shared.FormatDuration(video.Duration),
		})
	}
	return renderTable(headers, rows, aligns, nil)
}
