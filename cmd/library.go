package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"

	"github.com/desertthunder/downyt/internal/formatter"
	"github.com/desertthunder/downyt/internal/player"
	"github.com/desertthunder/downyt/internal/shared"
	"github.com/desertthunder/downyt/internal/tasks"
	"github.com/urfave/cli/v3"
)

func (r *Runner) newLibrary() *tasks.Library {
	return tasks.NewLibrary(r.api, tasks.LibraryOpts{
		DeleteRate: r.config.Library.DeleteRate,
		Logger:     r.logger,
	})
}

// newElement returns the injected element or an external player process built from config.
func (r *Runner) newElement() player.Element {
	if r.element != nil {
		return r.element
	}
	cfg := r.config.Player
	return player.NewExecElement(cfg.Command, cfg.Args, player.ExecOpts{
		Volume: float64(cfg.Volume) / 100,
		Logger: r.logger,
	})
}

// LibraryList prints the listing as a table, JSON or one of the export formats.
func (r *Runner) LibraryList(ctx context.Context, cmd *cli.Command) error {
	files, err := r.newLibrary().Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to list downloads: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(files, true)
	}

	name := cmd.String("format")
	out := cmd.String("output")
	if name == "" && out == "" {
		r.writePlain("%s\n", formatter.LibraryTable(files, nil, formatter.ShouldColorize(r.output)))
		return nil
	}

	format := formatter.FormatText
	if name != "" {
		if format, err = formatter.ParseFormat(name); err != nil {
			return err
		}
	}

	if out != "" {
		path, err := formatter.WriteExport(files, format, out)
		if err != nil {
			return err
		}
		r.writePlain("✓ Exported %d files to %s\n", len(files), path)
		return nil
	}

	data, err := formatter.Export(files, format)
	if err != nil {
		return err
	}
	if _, err := r.output.Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// stopAfter hides the ended event of the last track from the controller and closes stop instead.
// Playback errors are passed on to the controller and reported on errs.
type stopAfter struct {
	player.Element
	last string
	stop chan struct{}
	errs chan player.Event
	once sync.Once
}

func (s *stopAfter) OnEvent(fn func(player.Event)) {
	s.Element.OnEvent(func(ev player.Event) {
		switch {
		case ev.Kind == player.EventEnded && ev.Source.Name == s.last:
			s.once.Do(func() { close(s.stop) })
			return
		case ev.Kind == player.EventError:
			select {
			case s.errs <- ev:
			default:
			}
		}
		fn(ev)
	})
}

// LibraryPlay plays one file, or with --all every file once starting from name, then returns.
func (r *Runner) LibraryPlay(ctx context.Context, cmd *cli.Command) error {
	name := cmd.StringArg("name")
	all := cmd.Bool("all")
	if name == "" && !all {
		return fmt.Errorf("%w: file name or --all", shared.ErrMissingArgument)
	}

	library := r.newLibrary()
	files, err := library.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to list downloads: %w", err)
	}

	durations := make(map[string]float64, len(files))
	for _, f := range files {
		durations[f.Name] = f.Duration
	}

	var list []string
	if all {
		list = library.Names()
		if len(list) == 0 {
			return fmt.Errorf("%w: library is empty", shared.ErrFileNotFound)
		}
		if name == "" {
			name = list[0]
		}
	}
	if _, ok := durations[name]; !ok {
		return fmt.Errorf("%w: %s", shared.ErrFileNotFound, name)
	}

	last := name
	if start := indexOf(list, name); start >= 0 {
		last = list[(start+len(list)-1)%len(list)]
	}

	el := &stopAfter{
		Element: r.newElement(),
		last:    last,
		stop:    make(chan struct{}),
		errs:    make(chan player.Event, 1),
	}
	states := make(chan player.State, 16)
	ctrl := player.NewController(el, player.Options{
		StreamURL:        r.api.StreamURL,
		DurationOf:       func(n string) float64 { return durations[n] },
		RestartThreshold: r.config.Player.RestartThresholdS,
		Logger:           r.logger,
		Listener:         tasks.ChannelListener(states),
	})
	defer ctrl.Close()

	if err := ctrl.PlayTrack(name, list); err != nil {
		return err
	}

	var current string
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-el.stop:
			return nil
		case ev := <-el.errs:
			return fmt.Errorf("%w: failed to play %s: %v", shared.ErrAPIRequest, ev.Source.Name, ev.Err)
		case s := <-states:
			if s.Current != "" && s.Current != current {
				current = s.Current
				r.writePlain("▶ %s (%d/%d)\n", shared.TrackTitle(current), s.Cursor+1, len(s.Tracks))
			}
		}
	}
}

func indexOf(list []string, name string) int {
	for i, n := range list {
		if n == name {
			return i
		}
	}
	return -1
}

// LibraryGet saves one library file.
func (r *Runner) LibraryGet(ctx context.Context, cmd *cli.Command) error {
	name := cmd.StringArg("name")
	if name == "" {
		return fmt.Errorf("%w: file name", shared.ErrMissingArgument)
	}

	path, err := tasks.SaveFile(cmd.String("output"), "", name, func(w io.Writer) (string, error) {
		return r.api.DownloadExisting(ctx, name, w)
	})
	if err != nil {
		return fmt.Errorf("failed to save %s: %w", name, err)
	}
	r.writePlain("Salvo em %s\n", path)
	return nil
}

// selectFiles loads the listing and selects names, failing on names the server does not list.
func (r *Runner) selectFiles(ctx context.Context, library *tasks.Library, names []string) error {
	if len(names) == 0 {
		return fmt.Errorf("%w: file names", shared.ErrMissingArgument)
	}

	files, err := library.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to list downloads: %w", err)
	}

	known := make(map[string]bool, len(files))
	for _, f := range files {
		known[f.Name] = true
	}
	for _, name := range names {
		if !known[name] {
			return fmt.Errorf("%w: %s", shared.ErrFileNotFound, name)
		}
	}

	library.Select(names...)
	return nil
}

// LibraryDelete deletes the named files after confirmation.
func (r *Runner) LibraryDelete(ctx context.Context, cmd *cli.Command) error {
	library := r.newLibrary()
	if err := r.selectFiles(ctx, library, cmd.Args().Slice()); err != nil {
		return err
	}

	selected := library.Selected()
	if !cmd.Bool("yes") && !r.confirm(fmt.Sprintf("Excluir %d arquivo(s)?", len(selected))) {
		library.ClearSelection()
		r.writePlain("Cancelado\n")
		return nil
	}

	result, err := library.DeleteSelected(ctx, nil)
	if err != nil {
		return err
	}

	for _, outcome := range result.Outcomes {
		if outcome.Err != nil {
			r.writePlain("✗ %s: %v\n", outcome.Name, outcome.Err)
		} else {
			r.writePlain("✓ %s\n", outcome.Name)
		}
	}
	r.writePlain("%d arquivo(s) excluído(s), %d falha(s)\n", result.Deleted, result.Failed)

	if result.Failed > 0 {
		return fmt.Errorf("%w: %d of %d deletes failed", shared.ErrAPIRequest, result.Failed, len(result.Outcomes))
	}
	return nil
}

// LibraryZip saves the named files as one archive.
func (r *Runner) LibraryZip(ctx context.Context, cmd *cli.Command) error {
	library := r.newLibrary()
	if err := r.selectFiles(ctx, library, cmd.Args().Slice()); err != nil {
		return err
	}

	dir, name := ".", ""
	if out := cmd.String("output"); out != "" {
		dir, name = filepath.Dir(out), filepath.Base(out)
	}

	path, err := tasks.SaveFile(dir, name, r.config.Library.ZipName, func(w io.Writer) (string, error) {
		return library.DownloadSelected(ctx, w, nil)
	})
	if err != nil {
		return fmt.Errorf("failed to download zip: %w", err)
	}
	r.writePlain("Zip salvo em %s\n", path)
	return nil
}

// confirm asks a yes/no question on the runner's input.
func (r *Runner) confirm(question string) bool {
	r.writePlain("%s (y/n) ", question)
	answer, err := bufio.NewReader(r.input).ReadString('\n')
	if err != nil && answer == "" {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes" || answer == "s" || answer == "sim"
}
