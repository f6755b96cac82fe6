package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ahmedmhm/bimdiff/internal/compare"
	"github.com/ahmedmhm/bimdiff/internal/modelfile"
	"github.com/ahmedmhm/bimdiff/internal/models"
	"github.com/ahmedmhm/bimdiff/internal/report"
	"github.com/ahmedmhm/bimdiff/internal/visual"
)

var compareCmd = &cobra.Command{
	Use:   "compare <old-snapshot> <new-snapshot>",
	Short: "Compare two model snapshots",
	Long: `Compare two model snapshot files and print per-element change verdicts.
Elements are matched by stable identity; matched pairs run through the
semantic, geometric, and shape comparison tiers.`,
	Args: cobra.ExactArgs(2),
	Run:  runCompare,
}

var (
	compareStat      bool
	compareType      string
	compareWorkers   int
	compareCSV       string
	compareChangeLog string
	comparePLY       string
	compareSave      bool
	compareDB        string
)

func init() {
	compareCmd.Flags().BoolVar(&compareStat, "stat", false, "Show summary counts instead of full diff")
	compareCmd.Flags().StringVar(&compareType, "type", "", "Only show elements of this type")
	compareCmd.Flags().IntVar(&compareWorkers, "workers", 0, "Number of comparison workers (0 = all CPUs)")
	compareCmd.Flags().StringVar(&compareCSV, "csv", "", "Write a CSV change list to this path")
	compareCmd.Flags().StringVar(&compareChangeLog, "changelog", "", "Write a JSON change log to this path")
	compareCmd.Flags().StringVar(&comparePLY, "ply", "", "Write a color-coded PLY mesh to this path")
	compareCmd.Flags().BoolVar(&compareSave, "save", false, "Persist the run in the local store")
	compareCmd.Flags().StringVar(&compareDB, "db", "", "Store database path (overrides config)")
}

func runCompare(cmd *cobra.Command, args []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg := loadConfig()
	if compareWorkers > 0 {
		cfg.Workers = compareWorkers
	}
	if compareDB != "" {
		cfg.DatabasePath = compareDB
	}

	logger := newLogger()
	defer logger.Sync()

	oldModel, err := modelfile.Load(args[0])
	if err != nil {
		exitError("failed to load old snapshot: %v", err)
	}
	newModel, err := modelfile.Load(args[1])
	if err != nil {
		exitError("failed to load new snapshot: %v", err)
	}

	engine, err := compare.NewEngine(cfg, logger)
	if err != nil {
		exitError("%v", err)
	}

	res, err := engine.Run(ctx, oldModel, newModel)
	if err != nil {
		exitError("comparison failed: %v", err)
	}

	if compareCSV != "" {
		writeReport(compareCSV, func(f *os.File) error { return report.WriteCSV(f, res) })
	}
	if compareChangeLog != "" {
		writeReport(compareChangeLog, func(f *os.File) error { return report.WriteChangeLog(f, res) })
	}
	if comparePLY != "" {
		writeReport(comparePLY, func(f *os.File) error { return visual.WritePLY(f, res, oldModel, newModel) })
	}

	if compareSave {
		st := openStore(cfg.DatabasePath)
		defer st.Close()
		runID, err := st.SaveRun(res, cfg)
		if err != nil {
			exitError("failed to save run: %v", err)
		}
		logger.Info("run saved", zap.String("run_id", runID))
		fmt.Printf("Saved run %s\n", shortID(runID))
	}

	displayResult(res)
}

func writeReport(path string, write func(*os.File) error) {
	f, err := os.Create(path)
	if err != nil {
		exitError("failed to create %s: %v", path, err)
	}
	defer f.Close()
	if err := write(f); err != nil {
		exitError("failed to write %s: %v", path, err)
	}
}

func displayResult(res *models.ComparisonResult) {
	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)
	blue := color.New(color.FgBlue)
	magenta := color.New(color.FgMagenta)

	changes := res.Summary.Total() - res.Summary.Unchanged
	if changes == 0 {
		fmt.Println("No changes")
		return
	}

	if compareStat {
		if res.Summary.Added > 0 {
			green.Printf(" %d additions(+)\n", res.Summary.Added)
		}
		if res.Summary.Modified > 0 {
			blue.Printf(" %d modifications(~)\n", res.Summary.Modified)
		}
		if res.Summary.Deleted > 0 {
			red.Printf(" %d deletions(-)\n", res.Summary.Deleted)
		}
		fmt.Printf(" %d of %d elements changed\n", changes, res.Summary.Total())

		byType := res.ByType()
		types := make([]string, 0, len(byType))
		for t := range byType {
			types = append(types, t)
		}
		sort.Strings(types)
		for _, tp := range types {
			s := byType[tp]
			if s.Added+s.Deleted+s.Modified == 0 {
				continue
			}
			fmt.Printf("   %-24s +%d -%d ~%d =%d\n", tp, s.Added, s.Deleted, s.Modified, s.Unchanged)
		}
		return
	}

	for i := range res.Verdicts {
		v := &res.Verdicts[i]
		if compareType != "" && v.Type != compareType {
			continue
		}

		switch v.Classification {
		case models.ClassAdded:
			green.Printf("+++ %s/%s%s\n", v.Type, v.ID, nameSuffix(v))
		case models.ClassDeleted:
			red.Printf("--- %s/%s%s\n", v.Type, v.ID, nameSuffix(v))
		case models.ClassModified:
			blue.Printf("~~~ %s/%s%s\n", v.Type, v.ID, nameSuffix(v))
			displayTiers(v, green, red)
		case models.ClassUnchanged:
			if !v.NeedsReview {
				continue
			}
		}
		if v.NeedsReview {
			magenta.Printf("  ! needs review: a comparison tier failed for %s\n", v.ID)
		}
		fmt.Println()
	}
}

func displayTiers(v *models.ElementVerdict, green, red *color.Color) {
	for _, t := range v.Tiers {
		if !t.Changed {
			continue
		}
		fmt.Printf("  %s:\n", t.Tier)
		for _, e := range t.Entries {
			if e.Old != nil {
				red.Printf("    - %s: %v\n", e.Path, e.Old)
			}
			if e.New != nil {
				green.Printf("    + %s: %v\n", e.Path, e.New)
			}
		}
	}
	if v.ShapeStatus == models.ShapeChecked {
		if d := v.Tier(models.TierShape); d != nil && d.Changed {
			fmt.Printf("    surface distance %g exceeds %g\n", float64(v.ShapeDistance), d.Threshold)
		}
	}
}

func nameSuffix(v *models.ElementVerdict) string {
	if v.Name == "" {
		return ""
	}
	return fmt.Sprintf(" (%s)", v.Name)
}
