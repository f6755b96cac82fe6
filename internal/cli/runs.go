package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List stored comparison runs",
	Run:   runRuns,
}

var runsDB string

func init() {
	runsCmd.Flags().StringVar(&runsDB, "db", "", "Store database path (overrides config)")
}

func runRuns(cmd *cobra.Command, args []string) {
	cfg := loadConfig()
	if runsDB != "" {
		cfg.DatabasePath = runsDB
	}

	st := openStore(cfg.DatabasePath)
	defer st.Close()

	runs, err := st.ListRuns()
	if err != nil {
		exitError("failed to list runs: %v", err)
	}

	if len(runs) == 0 {
		fmt.Println("No stored runs")
		return
	}

	for _, r := range runs {
		fmt.Printf("%s  %s  %s -> %s  +%d -%d ~%d =%d\n",
			shortID(r.ID),
			r.CreatedAt.Format("2006-01-02 15:04:05"),
			r.OldVersion, r.NewVersion,
			r.Summary.Added, r.Summary.Deleted, r.Summary.Modified, r.Summary.Unchanged,
		)
	}
}
