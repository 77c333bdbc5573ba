package app

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kamaal505/MLAnalytics/internal/chart"
	"github.com/kamaal505/MLAnalytics/internal/config"
	"github.com/kamaal505/MLAnalytics/internal/export"
	"github.com/kamaal505/MLAnalytics/internal/output"
	"github.com/kamaal505/MLAnalytics/internal/records"
	"github.com/kamaal505/MLAnalytics/internal/store"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor [input.json]",
	Short: "Check whether the mlanalytics setup is healthy",
	Long: `Run a series of health checks against your mlanalytics configuration,
the chart renderer and the SQLite driver. Given an input file, also report
which analyses it can feed and whether its directory is writable.

Prints a pass/fail line for each check and a summary of how many passed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

// doctorCheck holds the result of a single health check.
type doctorCheck struct {
	Name    string `json:"name"`
	Passed  bool   `json:"passed"`
	Message string `json:"message"`
}

// doctorOutput is the JSON-serializable result of the doctor command.
type doctorOutput struct {
	Checks      []doctorCheck `json:"checks"`
	PassedCount int           `json:"passed"`
	TotalCount  int           `json:"total"`
}

func runDoctor(cmd *cobra.Command, args []string) error {
	if flagNoColor {
		output.SetNoColor(true)
	}

	cfg, cfgCheck := checkConfig(flagConfig)
	checks := []doctorCheck{cfgCheck}
	if cfg == nil {
		cfg = defaultConfig()
	}
	checks = append(checks, checkChartRenderer(cfg), checkSQLite())

	if len(args) == 1 {
		checks = append(checks, checkInput(args[0]), checkWritable(filepath.Dir(args[0])))
	}

	passed := 0
	for _, c := range checks {
		if c.Passed {
			passed++
		}
	}

	out := cmd.OutOrStdout()
	if flagJSON {
		data, err := export.MarshalJSON(doctorOutput{
			Checks:      checks,
			PassedCount: passed,
			TotalCount:  len(checks),
		})
		if err != nil {
			return err
		}
		_, err = out.Write(data)
		return err
	}

	fmt.Fprintln(out, output.Section("Doctor"))
	fmt.Fprintln(out)
	for _, c := range checks {
		renderDoctorCheck(out, c)
	}
	fmt.Fprintln(out)
	summary := fmt.Sprintf("%d/%d checks passed", passed, len(checks))
	if passed == len(checks) {
		fmt.Fprintf(out, " %s\n\n", output.StyleSuccess.Render(summary))
	} else {
		fmt.Fprintf(out, " %s\n\n", output.StyleWarning.Render(summary))
	}
	return nil
}

// renderDoctorCheck prints a single check result line.
func renderDoctorCheck(w io.Writer, c doctorCheck) {
	indicator := output.StyleSuccess.Render("✓")
	if !c.Passed {
		indicator = output.StyleWarning.Render("✗")
	}
	label := output.StyleBold.Render(c.Name)
	detail := output.StyleMuted.Render(c.Message)
	fmt.Fprintf(w, "  %s  %-24s %s\n", indicator, label, detail)
}

func defaultConfig() *config.Config {
	return &config.Config{
		BenchmarkDir: config.DefaultBenchmarkDir,
		PairwiseDir:  config.DefaultPairwiseDir,
		Output:       config.DefaultOutput,
		Chart:        config.DefaultChart,
	}
}

// checkConfig loads the configuration. A missing file passes with defaults.
func checkConfig(cfgFile string) (*config.Config, doctorCheck) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, doctorCheck{Name: "Configuration", Message: err.Error()}
	}
	path := cfgFile
	if path == "" {
		path = filepath.Join(config.ConfigDir(), "config.yaml")
	}
	msg := "defaults (no file at " + path + ")"
	if _, err := os.Stat(path); err == nil {
		msg = path
	}
	return cfg, doctorCheck{Name: "Configuration", Passed: true, Message: msg}
}

// checkChartRenderer draws a one-bar chart into a scratch directory.
func checkChartRenderer(cfg *config.Config) doctorCheck {
	const name = "Chart renderer"
	dir, err := os.MkdirTemp("", "mlanalytics-doctor-")
	if err != nil {
		return doctorCheck{Name: name, Message: err.Error()}
	}
	defer os.RemoveAll(dir)

	bars := []chart.Bar{{Label: "check", Segments: []chart.Segment{{Label: "ok", Value: 1}}}}
	opts := chart.Options{Width: cfg.Chart.Width, Height: cfg.Chart.Height, DPI: cfg.Chart.DPI}
	if err := chart.StackedBar(filepath.Join(dir, "check.png"), "check", bars, opts); err != nil {
		return doctorCheck{Name: name, Message: err.Error()}
	}
	return doctorCheck{
		Name:    name,
		Passed:  true,
		Message: fmt.Sprintf("%dx%d at %v dpi", cfg.Chart.Width, cfg.Chart.Height, cfg.Chart.DPI),
	}
}

// checkSQLite opens and migrates an in-memory database.
func checkSQLite() doctorCheck {
	db, err := store.OpenInMemory()
	if err != nil {
		return doctorCheck{Name: "SQLite driver", Message: err.Error()}
	}
	_ = db.Close()
	return doctorCheck{Name: "SQLite driver", Passed: true, Message: "in-memory database migrated"}
}

// checkInput reports which analyses the input file can feed.
func checkInput(path string) doctorCheck {
	const name = "Input file"
	data, err := records.ReadInput(path)
	if err != nil {
		return doctorCheck{Name: name, Message: err.Error()}
	}
	if convs, err := records.ParseConversations(data); err == nil {
		return doctorCheck{
			Name:    name,
			Passed:  true,
			Message: fmt.Sprintf("%s conversations (benchmark, pairwise, filter)", output.Count(len(convs))),
		}
	}
	if recs, err := records.ParseFlatRecords(data); err == nil {
		return doctorCheck{
			Name:    name,
			Passed:  true,
			Message: fmt.Sprintf("%s flat records (breaks, distribution)", output.Count(len(recs))),
		}
	}
	return doctorCheck{Name: name, Message: "neither a conversation list nor a record map"}
}

// checkWritable verifies that outputs can be created in dir.
func checkWritable(dir string) doctorCheck {
	const name = "Output directory"
	f, err := os.CreateTemp(dir, ".mlanalytics-")
	if err != nil {
		return doctorCheck{Name: name, Message: fmt.Sprintf("not writable: %v", err)}
	}
	_ = f.Close()
	_ = os.Remove(f.Name())
	return doctorCheck{Name: name, Passed: true, Message: dir}
}
