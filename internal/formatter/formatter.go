// package formatter renders queue, library and history data as terminal tables and exports
// the library listing to various formats (CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/desertthunder/downyt/internal/models"
	"github.com/desertthunder/downyt/internal/shared"
)

// Format names a library export format.
type Format string

const (
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
	FormatText     Format = "text"
	FormatJSON     Format = "json"
)

// ParseFormat accepts the format names and their common aliases (md, txt).
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "csv":
		return FormatCSV, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "text", "txt":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, name)
	}
}

// Extension returns the file extension used for f.
func (f Format) Extension() string {
	switch f {
	case FormatMarkdown:
		return ".md"
	case FormatText:
		return ".txt"
	default:
		return "." + string(f)
	}
}

// ExportToCSV converts a library listing to CSV with columns: Name, Title, Artist, Album, Year, Genre, Duration, Size, Modified
func ExportToCSV(files []models.FileInfo) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Name", "Title", "Artist", "Album", "Year", "Genre", "Duration", "Size", "Modified"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, file := range files {
		record := []string{
			file.Name,
			file.Title,
			file.Artist,
			file.Album,
			file.Year,
			file.Genre,
			strconv.FormatFloat(file.Duration, 'f', 0, 64),
			strconv.FormatInt(file.Size, 10),
			strconv.FormatFloat(file.Modified, 'f', 0, 64),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a library listing to a Markdown document headed by title
func ExportToMarkdown(title string, files []models.FileInfo) ([]byte, error) {
	var buf bytes.Buffer

	if title == "" {
		title = "Library"
	}
	buf.WriteString(fmt.Sprintf("# %s\n\n", title))

	var total int64
	for _, file := range files {
		total += file.Size
	}
	buf.WriteString(fmt.Sprintf("**Files**: %d\n", len(files)))
	buf.WriteString(fmt.Sprintf("**Total size**: %s\n\n", shared.FormatFileSize(total)))

	buf.WriteString("## Files\n\n")
	for i, file := range files {
		artistPart := ""
		if file.Artist != "" {
			artistPart = file.Artist + " - "
		}
		albumPart := ""
		if file.Album != "" {
			albumPart = fmt.Sprintf(" (%s)", file.Album)
		}
		buf.WriteString(fmt.Sprintf("%d. %s%s%s [%s, %s]\n",
			i+1, artistPart, displayTitle(file), albumPart,
			shared.FormatDuration(file.Duration), shared.FormatFileSize(file.Size)))
	}

	return buf.Bytes(), nil
}

// ExportToText converts a library listing to plain text format
func ExportToText(files []models.FileInfo) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Files: %d\n\n", len(files)))
	for i, file := range files {
		buf.WriteString(fmt.Sprintf("%d. %s\n", i+1, file.Name))
	}

	return buf.Bytes(), nil
}

// Export renders files in the given format.
func Export(files []models.FileInfo, format Format) ([]byte, error) {
	switch format {
	case FormatCSV:
		return ExportToCSV(files)
	case FormatMarkdown:
		return ExportToMarkdown("", files)
	case FormatText:
		return ExportToText(files)
	case FormatJSON:
		return shared.MarshalJSON(files, true)
	default:
		return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, format)
	}
}

// WriteExport writes files in the given format to path.
//
// Defaults to library{ext} in the working directory when path is empty.
func WriteExport(files []models.FileInfo, format Format, path string) (string, error) {
	if path == "" {
		path = "library" + format.Extension()
	}

	data, err := Export(files, format)
	if err != nil {
		return "", err
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s export: %w", format, err)
	}

	return path, nil
}

// displayTitle prefers the tagged title and falls back to the filename without extension.
func displayTitle(file models.FileInfo) string {
	if file.Title != "" {
		return file.Title
	}
	return shared.TrackTitle(file.Name)
}
