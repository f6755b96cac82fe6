package cli

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ahmedmhm/bimdiff/internal/models"
)

var showCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show the verdicts of a stored run",
	Long:  `Show the per-element verdicts of a stored comparison run. The run ID may be abbreviated to a unique prefix.`,
	Args:  cobra.ExactArgs(1),
	Run:   runShow,
}

var (
	showDB    string
	showClass string
)

func init() {
	showCmd.Flags().StringVar(&showDB, "db", "", "Store database path (overrides config)")
	showCmd.Flags().StringVar(&showClass, "classification", "", "Only show verdicts with this classification")
}

func runShow(cmd *cobra.Command, args []string) {
	cfg := loadConfig()
	if showDB != "" {
		cfg.DatabasePath = showDB
	}

	st := openStore(cfg.DatabasePath)
	defer st.Close()

	runID := resolveRunID(args[0])
	run, err := st.GetRun(runID)
	if err != nil {
		exitError("failed to load run %s: %v", shortID(runID), err)
	}

	verdicts, err := st.GetVerdicts(runID, models.Classification(showClass))
	if err != nil {
		exitError("failed to load verdicts: %v", err)
	}

	fmt.Printf("run %s  %s -> %s  (%s)\n\n",
		shortID(run.ID), run.OldVersion, run.NewVersion,
		run.CreatedAt.Format("2006-01-02 15:04:05"))

	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)
	blue := color.New(color.FgBlue)

	for i := range verdicts {
		v := &verdicts[i]
		switch v.Classification {
		case models.ClassAdded:
			green.Printf("+++ %s/%s%s\n", v.Type, v.ID, nameSuffix(v))
		case models.ClassDeleted:
			red.Printf("--- %s/%s%s\n", v.Type, v.ID, nameSuffix(v))
		case models.ClassModified:
			blue.Printf("~~~ %s/%s%s\n", v.Type, v.ID, nameSuffix(v))
			displayTiers(v, green, red)
		case models.ClassUnchanged:
			fmt.Printf("=== %s/%s%s\n", v.Type, v.ID, nameSuffix(v))
		}
	}
}

// resolveRunID expands a run ID prefix to the full stored ID. Ambiguous or
// unknown prefixes fall through unchanged so the store reports not-found.
func resolveRunID(prefix string) string {
	cfg := loadConfig()
	if showDB != "" {
		cfg.DatabasePath = showDB
	}
	st := openStore(cfg.DatabasePath)
	defer st.Close()

	runs, err := st.ListRuns()
	if err != nil {
		return prefix
	}

	match := prefix
	found := 0
	for _, r := range runs {
		if strings.HasPrefix(r.ID, prefix) {
			match = r.ID
			found++
		}
	}
	if found == 1 {
		return match
	}
	return prefix
}
