package app

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kamaal505/MLAnalytics/internal/config"
	"github.com/kamaal505/MLAnalytics/internal/export"
	"github.com/kamaal505/MLAnalytics/internal/output"
	"github.com/kamaal505/MLAnalytics/internal/records"
	"github.com/kamaal505/MLAnalytics/internal/store"
)

var runsFlagRun int64

var runsCmd = &cobra.Command{
	Use:   "runs <analysis.db> [table]",
	Short: "List or inspect tables stored with --sqlite",
	Long: `Browse a database written by an analysis run with --sqlite.

Without a table name, every stored run is listed with its tables. With a
table name, that table is printed from the latest run, or from --run.

Examples:
  mlanalytics runs benchmarking_data/analysis.db
  mlanalytics runs analysis.db prob_model
  mlanalytics runs analysis.db prob_model --json`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runRuns,
}

func init() {
	runsCmd.Flags().Int64Var(&runsFlagRun, "run", 0, "Run ID to read the table from (default: latest)")
	rootCmd.AddCommand(runsCmd)
}

// storedRun is one run with its table summaries.
type storedRun struct {
	store.Run
	Tables []store.StoredTable `json:"tables"`
}

func runRuns(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if flagNoColor || !cfg.Output.Color || !output.IsTerminal(os.Stdout) {
		output.SetNoColor(true)
	}

	// Open would create a fresh database for a mistyped path.
	if _, err := os.Stat(args[0]); err != nil {
		return fmt.Errorf("%s: %w", args[0], records.ErrInputNotFound)
	}
	db, err := store.Open(args[0])
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	runs, err := db.GetRuns()
	if err != nil {
		return fmt.Errorf("listing runs: %w", err)
	}
	out := cmd.OutOrStdout()

	if len(args) == 2 {
		runID := runsFlagRun
		if runID == 0 {
			if len(runs) == 0 {
				return fmt.Errorf("no runs stored in %s", args[0])
			}
			runID = runs[len(runs)-1].ID
		}
		t, err := db.LoadTable(runID, args[1])
		if err != nil {
			return err
		}
		if flagJSON {
			data, err := export.MarshalJSON(t)
			if err != nil {
				return err
			}
			_, err = out.Write(data)
			return err
		}
		fmt.Fprintln(out, output.Section(fmt.Sprintf("%s (run %d)", t.Name, runID)))
		fmt.Fprint(out, output.FromReport(t, 0).Render())
		return nil
	}

	listed := make([]storedRun, 0, len(runs))
	for _, r := range runs {
		tables, err := db.GetTables(r.ID)
		if err != nil {
			return fmt.Errorf("listing tables of run %d: %w", r.ID, err)
		}
		listed = append(listed, storedRun{Run: r, Tables: tables})
	}

	if flagJSON {
		data, err := export.MarshalJSON(listed)
		if err != nil {
			return err
		}
		_, err = out.Write(data)
		return err
	}

	if len(listed) == 0 {
		fmt.Fprintln(out, " No runs stored.")
		return nil
	}
	for _, r := range listed {
		fmt.Fprintln(out, output.Section(fmt.Sprintf("Run %d: %s", r.ID, r.Command)))
		fmt.Fprintln(out, output.KeyValue("Input", r.Input))
		tbl := output.NewTable("Table", "Rows", "Columns")
		for _, st := range r.Tables {
			tbl.AddRow(st.Name, output.Count(st.Rows), output.Count(len(st.Columns)))
		}
		fmt.Fprint(out, tbl.Render())
		fmt.Fprintln(out)
	}
	return nil
}
