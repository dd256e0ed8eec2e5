package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pathway-dev/pathway/internal/config"
	"github.com/pathway-dev/pathway/internal/store"
)

var sessionsLimit int

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List locally recorded assessment sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		workDir, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("getting current directory: %w", err)
		}

		cfg, err := config.ReadConfig(workDir)
		if err != nil {
			cfg = config.DefaultConfig(workDir)
		}

		st, err := store.NewStore(cfg.StorePath(workDir))
		if err != nil {
			return fmt.Errorf("opening session store: %w", err)
		}
		defer func() { _ = st.Close() }()

		summaries, err := st.ListSessions(sessionsLimit)
		if err != nil {
			return fmt.Errorf("listing sessions: %w", err)
		}
		if len(summaries) == 0 {
			fmt.Println("No sessions recorded yet. Run 'pathway' to start one.")
			return nil
		}

		fmt.Printf("%-36s  %-16s  %-16s  %8s  %s\n", "ID", "USER", "STATUS", "ANSWERS", "UPDATED")
		for _, s := range summaries {
			fmt.Printf("%-36s  %-16s  %-16s  %8d  %s\n",
				s.ID, s.UserID, s.Status, s.Answered, s.UpdatedAt.Format("2006-01-02 15:04"))
		}
		return nil
	},
}

func init() {
	sessionsCmd.Flags().IntVar(&sessionsLimit, "limit", 20, "Maximum number of sessions to list")
}
