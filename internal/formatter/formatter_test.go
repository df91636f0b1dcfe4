package formatter

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/desertthunder/downyt/internal/models"
	"github.com/desertthunder/downyt/internal/shared"
	"github.com/desertthunder/downyt/internal/tasks"
	th "github.com/desertthunder/downyt/internal/testing"
)

func sampleFiles() []models.FileInfo {
	return []models.FileInfo{
		{Name: "Song One.mp3", Size: 5 * 1024 * 1024, Modified: 1700000000, Duration: 185, Title: "Song One", Artist: "Artist One", Album: "Album One", Year: "2020"},
		{Name: "untagged.mp3", Size: 512, Modified: 1690000000},
	}
}

func TestExporters(t *testing.T) {
	t.Run("ExportToCSV", func(t *testing.T) {
		data, err := ExportToCSV(sampleFiles())
		if err != nil {
			t.Fatalf("ExportToCSV failed: %v", err)
		}

		output := string(data)
		if !strings.Contains(output, "Name,Title,Artist,Album,Year,Genre,Duration,Size,Modified") {
			t.Errorf("CSV missing headers, got: %s", output)
		}
		if !strings.Contains(output, "Song One.mp3,Song One,Artist One,Album One,2020,,185,5242880,1700000000") {
			t.Errorf("CSV missing first record, got: %s", output)
		}
		if lines := strings.Count(output, "\n"); lines != 3 {
			t.Errorf("expected 3 lines, got %d", lines)
		}
	})

	t.Run("ExportToMarkdown", func(t *testing.T) {
		data, err := ExportToMarkdown("My Library", sampleFiles())
		if err != nil {
			t.Fatalf("ExportToMarkdown failed: %v", err)
		}

		output := string(data)
		for _, want := range []string{
			"# My Library",
			"**Files**: 2",
			"1. Artist One - Song One (Album One) [3:05, 5.0 MiB]",
			"2. untagged [--:--, 512 B]",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("Markdown missing %q, got:\n%s", want, output)
			}
		}
	})

	t.Run("ExportToMarkdown Default Title", func(t *testing.T) {
		data, _ := ExportToMarkdown("", nil)
		if !strings.HasPrefix(string(data), "# Library\n") {
			t.Errorf("unexpected heading: %s", data)
		}
	})

	t.Run("ExportToText", func(t *testing.T) {
		data, err := ExportToText(sampleFiles())
		if err != nil {
			t.Fatalf("ExportToText failed: %v", err)
		}
		want := "Files: 2\n\n1. Song One.mp3\n2. untagged.mp3\n"
		if string(data) != want {
			t.Errorf("got %q, want %q", data, want)
		}
	})

	t.Run("Export JSON", func(t *testing.T) {
		data, err := Export(sampleFiles(), FormatJSON)
		if err != nil {
			t.Fatalf("Export failed: %v", err)
		}
		if !bytes.Contains(data, []byte(`"name": "Song One.mp3"`)) {
			t.Errorf("unexpected JSON: %s", data)
		}
	})
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
		ext  string
	}{
		{"csv", FormatCSV, ".csv"},
		{"MD", FormatMarkdown, ".md"},
		{"markdown", FormatMarkdown, ".md"},
		{" txt ", FormatText, ".txt"},
		{"json", FormatJSON, ".json"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if err != nil {
				t.Fatalf("ParseFormat(%q) error = %v", tt.in, err)
			}
			if got != tt.want || got.Extension() != tt.ext {
				t.Errorf("ParseFormat(%q) = %v (%s), want %v (%s)", tt.in, got, got.Extension(), tt.want, tt.ext)
			}
		})
	}

	t.Run("Unknown", func(t *testing.T) {
		if _, err := ParseFormat("xml"); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})
}

func TestWriteExport(t *testing.T) {
	t.Run("Explicit Path", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "out.csv")

		got, err := WriteExport(sampleFiles(), FormatCSV, path)
		if err != nil {
			t.Fatalf("WriteExport failed: %v", err)
		}
		if got != path {
			t.Errorf("expected %s, got %s", path, got)
		}
		th.AssertFileExists(t, path)

		content := th.MustReadFile(t, path)
		if !strings.HasPrefix(string(content), "Name,Title") {
			t.Errorf("unexpected file content: %s", content)
		}
	})

	t.Run("Default Path", func(t *testing.T) {
		t.Chdir(t.TempDir())

		got, err := WriteExport(sampleFiles(), FormatMarkdown, "")
		if err != nil {
			t.Fatalf("WriteExport failed: %v", err)
		}
		if got != "library.md" {
			t.Errorf("expected library.md, got %s", got)
		}
		if _, err := os.Stat(got); err != nil {
			t.Errorf("export not written: %v", err)
		}
	})

	t.Run("Unwritable Path", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "missing", "dir", "out.txt")
		if _, err := WriteExport(sampleFiles(), FormatText, path); err == nil {
			t.Error("expected error for missing directory")
		}
	})
}

func TestTables(t *testing.T) {
	t.Run("QueueTable", func(t *testing.T) {
		snap := tasks.BuildSnapshot(models.QueueResponse{
			QueueSize: 1,
			Items: []models.QueueItem{
				{ID: "t1", Title: "Mix", Type: models.TypePlaylist, Status: models.StatusProcessing, Progress: 40, CurrentVideo: "a", CurrentIndex: 2, Total: 5},
				{ID: "t2", URL: "https://youtu.be/x", Type: models.TypeVideo, Status: models.StatusQueued},
				{ID: "t3", Title: "Broken", Type: models.TypeVideo, Status: models.StatusError, Error: "boom"},
			},
		})

		output := QueueTable(snap, false)
		for _, want := range []string{"Mix", "Baixando", "2/5 - 40%", "https://youtu.be/x", "Aguardando...", "✗ boom"} {
			if !strings.Contains(output, want) {
				t.Errorf("queue table missing %q:\n%s", want, output)
			}
		}
		upper := strings.ToUpper(output)
		if !strings.Contains(upper, "NA FILA 1") || !strings.Contains(upper, "ERROS 1") {
			t.Errorf("queue table missing stats footer:\n%s", output)
		}
		if !strings.HasPrefix(output, "╭") {
			t.Errorf("expected rounded style, got:\n%s", output)
		}
		if strings.Contains(output, "\x1b[") {
			t.Error("uncolored table must not contain escape codes")
		}
	})

	t.Run("QueueTable Colorized", func(t *testing.T) {
		text.EnableColors()
		snap := tasks.BuildSnapshot(models.QueueResponse{
			Items: []models.QueueItem{{ID: "t1", Title: "Done", Type: models.TypeVideo, Status: models.StatusCompleted}},
		})
		if output := QueueTable(snap, true); !strings.Contains(output, "\x1b[") {
			t.Errorf("expected escape codes in colorized table:\n%s", output)
		}
	})

	t.Run("LibraryTable", func(t *testing.T) {
		selected := func(name string) bool { return name == "untagged.mp3" }

		output := LibraryTable(sampleFiles(), selected, false)
		for _, want := range []string{"Song One", "Artist One", "3:05", "5.0 MiB", "untagged", "--:--", "*"} {
			if !strings.Contains(output, want) {
				t.Errorf("library table missing %q:\n%s", want, output)
			}
		}
		if !strings.Contains(strings.ToUpper(output), "2 FILES") {
			t.Errorf("library table missing file count:\n%s", output)
		}
	})

	t.Run("LibraryTable Without Selection", func(t *testing.T) {
		output := LibraryTable(sampleFiles()[:1], nil, false)
		if strings.Contains(output, "*") {
			t.Errorf("unexpected selection mark:\n%s", output)
		}
	})

	t.Run("HistoryTable", func(t *testing.T) {
		entries := []*models.HistoryEntry{
			{TaskID: "abc", URL: "https://youtu.be/x", Type: models.TypeVideo, Status: models.StatusCompleted, Message: "x.mp3", CreatedAt: time.Now()},
		}
		output := HistoryTable(entries, false)
		for _, want := range []string{"abc", "https://youtu.be/x", "completed", "x.mp3"} {
			if !strings.Contains(output, want) {
				t.Errorf("history table missing %q:\n%s", want, output)
			}
		}
	})

	t.Run("PlaylistTable", func(t *testing.T) {
		info := &models.MediaInfo{
			Type:  models.TypePlaylist,
			Title: "List",
			Videos: []models.PlaylistEntry{
				{ID: "v1", Title: "First", Duration: 61},
				{ID: "v2", Title: "Second"},
			},
		}
		output := PlaylistTable(info)
		for _, want := range []string{"v1", "First", "1:01", "Second", "--:--"} {
			if !strings.Contains(output, want) {
				t.Errorf("playlist table missing %q:\n%s", want, output)
			}
		}
	})

	t.Run("ShouldColorize", func(t *testing.T) {
		if ShouldColorize(&bytes.Buffer{}) {
			t.Error("buffers are never terminals")
		}
		f, err := os.CreateTemp(t.TempDir(), "out")
		if err != nil {
			t.Fatal(err)
		}
		defer f.Close()
		if ShouldColorize(f) {
			t.Error("regular files are not terminals")
		}
	})
}
