package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pathway-dev/pathway/internal/config"
	"github.com/pathway-dev/pathway/internal/store"
)

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export <session-id>",
	Short: "Export a session's answers as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sessionID := args[0]

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

		sess, err := st.GetSession(sessionID)
		if err != nil {
			return fmt.Errorf("loading session: %w", err)
		}
		if sess == nil {
			return fmt.Errorf("session %s not found", sessionID)
		}

		answers, err := st.GetAnswers(sessionID)
		if err != nil {
			return fmt.Errorf("loading answers: %w", err)
		}

		payload := struct {
			SessionID string      `json:"session_id"`
			RemoteID  string      `json:"remote_id,omitempty"`
			UserID    string      `json:"user_id"`
			Status    string      `json:"status"`
			Answers   interface{} `json:"answers"`
		}{sess.ID, sess.RemoteID, sess.UserID, sess.Status, answers}

		data, err := json.MarshalIndent(payload, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding export: %w", err)
		}
		data = append(data, '\n')

		if exportOut == "" || exportOut == "-" {
			_, err = os.Stdout.Write(data)
			return err
		}
		if err := os.WriteFile(exportOut, data, 0644); err != nil {
			return fmt.Errorf("writing export: %w", err)
		}
		fmt.Printf("Exported %d answers to %s\n", len(answers), exportOut)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportOut, "out", "", "Write to file instead of stdout")
}
