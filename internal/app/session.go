package app

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kamaal505/MLAnalytics/internal/chart"
	"github.com/kamaal505/MLAnalytics/internal/config"
	"github.com/kamaal505/MLAnalytics/internal/export"
	"github.com/kamaal505/MLAnalytics/internal/output"
	"github.com/kamaal505/MLAnalytics/internal/report"
	"github.com/kamaal505/MLAnalytics/internal/store"
)

// session is one command invocation: its configuration, input file and,
// once opened, its output directory.
type session struct {
	command string
	cfg     *config.Config
	input   string
	out     io.Writer

	dir *export.Dir
	db  *store.DB
}

// newSession loads configuration, applies the persistent flags and
// resolves the input path. Nothing is written yet.
func newSession(cmd *cobra.Command, args []string) (*session, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if flagNoColor || !cfg.Output.Color || !output.IsTerminal(os.Stdout) {
		output.SetNoColor(true)
	}
	if flagNoCharts {
		cfg.Output.Charts = false
	}
	if flagSQLite {
		cfg.Output.SQLite = true
	}

	input, err := inputPath(cmd, args)
	if err != nil {
		return nil, err
	}
	slog.Debug("resolved input", "command", cmd.Name(), "path", input)

	return &session{
		command: cmd.Name(),
		cfg:     cfg,
		input:   input,
		out:     cmd.OutOrStdout(),
	}, nil
}

// outputDir returns --output-dir, or subdir next to the input file.
func (s *session) outputDir(subdir string) string {
	if flagOutputDir != "" {
		return flagOutputDir
	}
	return filepath.Join(filepath.Dir(s.input), subdir)
}

// open creates the output directory and, when enabled, the SQLite sink.
func (s *session) open(subdir string) error {
	path := s.outputDir(subdir)

	var sinks []export.Sink
	if s.cfg.Output.SQLite {
		db, err := store.Create(filepath.Join(path, s.cfg.Output.SQLiteName))
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		run, err := db.BeginRun(s.command, s.input)
		if err != nil {
			_ = db.Close()
			return fmt.Errorf("recording run: %w", err)
		}
		s.db = db
		sinks = append(sinks, run)
	}

	dir, err := export.NewDir(path, sinks...)
	if err != nil {
		s.close()
		return err
	}
	s.dir = dir
	if s.db != nil {
		dir.Track(filepath.Join(path, s.cfg.Output.SQLiteName))
	}
	slog.Debug("writing outputs", "dir", path, "sqlite", s.db != nil)
	return nil
}

func (s *session) close() {
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			slog.Warn("closing database", "error", err)
		}
		s.db = nil
	}
}

func (s *session) chartOptions() chart.Options {
	return chart.Options{
		Width:  s.cfg.Chart.Width,
		Height: s.cfg.Chart.Height,
		DPI:    s.cfg.Chart.DPI,
	}
}

// chart renders one chart into the output directory unless charts are
// disabled. A chart with nothing to draw is skipped.
func (s *session) chart(name string, render func(path string, opts chart.Options) error) error {
	return s.chartAt(s.dir.File(name), render)
}

// chartAt is chart with an explicit destination path.
func (s *session) chartAt(path string, render func(path string, opts chart.Options) error) error {
	if !s.cfg.Output.Charts {
		return nil
	}
	err := render(path, s.chartOptions())
	if errors.Is(err, chart.ErrNoData) {
		slog.Debug("skipping empty chart", "file", path)
		return nil
	}
	if err != nil {
		return err
	}
	s.dir.Track(path)
	return nil
}

// table prints a titled console summary of t.
func (s *session) table(title string, t report.Table) {
	fmt.Fprintln(s.out, output.Section(title))
	if len(t.Rows) == 0 {
		fmt.Fprintln(s.out, output.StyleMuted.Render(" no rows"))
		return
	}
	tbl := output.FromReport(t, s.cfg.Output.MaxRows)
	fmt.Fprint(s.out, tbl.Render())
	if hidden := len(t.Rows) - tbl.Len(); hidden > 0 {
		fmt.Fprintln(s.out, output.StyleMuted.Render(fmt.Sprintf(" … %s more rows", output.Count(hidden))))
	}
}

// finish prints the result as JSON under --json, otherwise the list of
// written files.
func (s *session) finish(result any) error {
	if flagJSON {
		data, err := export.MarshalJSON(result)
		if err != nil {
			return fmt.Errorf("encoding result: %w", err)
		}
		_, err = s.out.Write(data)
		return err
	}
	fmt.Fprint(s.out, output.FileList(s.dir.Written()))
	return nil
}

// summary reports whether the styled console summary should be printed.
func (s *session) summary() bool {
	return !flagJSON
}
