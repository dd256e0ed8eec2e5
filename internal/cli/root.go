// Package cli defines Cobra command definitions for the pathway CLI.
// This file contains the root command, which launches the assessment chat.
package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pathway-dev/pathway/internal/api"
	"github.com/pathway-dev/pathway/internal/assessment"
	"github.com/pathway-dev/pathway/internal/config"
	"github.com/pathway-dev/pathway/internal/log"
	"github.com/pathway-dev/pathway/internal/persist"
	"github.com/pathway-dev/pathway/internal/store"
	"github.com/pathway-dev/pathway/internal/tui"
	"github.com/pathway-dev/pathway/internal/tui/app"
)

var (
	userFlag string
	version  = "dev" // set via ldflags at build time
)

var rootCmd = &cobra.Command{
	Use:   "pathway",
	Short: "Career-assessment chat client",
	Long: `Pathway runs the career-assessment questionnaire as a chat in your
terminal. Answers are sent to the assessment backend as you go and the
finished session feeds resume building and job matching.`,
	Version:       version,
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !tui.IsTTY() {
			return cmd.Help()
		}

		workDir, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("getting current directory: %w", err)
		}

		// Config not found or invalid means first run; use defaults.
		cfg, err := config.ReadConfig(workDir)
		if err != nil {
			cfg = config.DefaultConfig(workDir)
		}

		userID := userFlag
		if userID == "" {
			userID = cfg.User.ID
		}
		if userID == "" {
			return fmt.Errorf("no user id: set user.id in .pathway/config.yaml, PATHWAY_USER_ID, or pass --user")
		}

		return runChat(workDir, cfg, userID)
	},
}

// runChat wires the chat controller's collaborators and runs the TUI.
func runChat(workDir string, cfg *config.Config, userID string) error {
	logger, err := log.NewLogger(workDir)
	if err != nil {
		return fmt.Errorf("opening event log: %w", err)
	}

	client := api.New(cfg.Backend.BaseURL, requestTimeout(cfg))

	// The local store is a convenience, not a requirement: a failure to
	// open it degrades to an in-memory run.
	var sessionStore *store.Store
	localID := ""
	if st, err := store.NewStore(cfg.StorePath(workDir)); err == nil {
		sessionStore = st
		defer func() { _ = st.Close() }()
		if local, err := st.CreateSession(userID); err == nil {
			localID = local.ID
		} else {
			sessionStore = nil
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	queue := persist.NewQueue(
		func(ctx context.Context, job persist.Job) error {
			// The reply carries next-question data the chat never uses;
			// dropping it here is what discards stale responses.
			_, err := client.SubmitAnswer(ctx, job.UserID, job.QuestionID, job.Answer)
			return err
		},
		logger,
		persist.Options{
			MaxAttempts: cfg.Persist.MaxAttempts,
			Backoff:     backoff(cfg),
			Size:        cfg.Persist.QueueSize,
			Timeout:     requestTimeout(cfg),
		},
	)
	queue.Start(ctx)
	defer queue.Close()

	var final map[string]assessment.Answer
	chat := app.New(cfg, userID, app.Deps{
		Client:  client,
		Queue:   queue,
		Store:   sessionStore,
		Logger:  logger,
		LocalID: localID,
		OnComplete: func(answers map[string]assessment.Answer) {
			final = answers
		},
	})

	finalModel, err := tui.Run(chat)
	if err != nil {
		return fmt.Errorf("running chat: %w", err)
	}

	if final != nil {
		fmt.Printf("Assessment complete: %d answers recorded.\n", len(final))
		if done, ok := finalModel.(*app.App); ok {
			for _, step := range done.NextSteps() {
				fmt.Println("  -", step)
			}
			if localID != "" {
				fmt.Printf("Saved locally as session %s (see 'pathway export %s').\n", localID, localID)
			}
		}
	}
	return nil
}

// Execute runs the root command. Called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func backoff(cfg *config.Config) time.Duration {
	return time.Duration(cfg.Persist.BackoffMs) * time.Millisecond
}

// requestTimeout bounds every individual backend request, including the
// background answer submissions.
func requestTimeout(cfg *config.Config) time.Duration {
	secs := cfg.Backend.TimeoutSeconds
	if secs <= 0 {
		secs = 15
	}
	return time.Duration(secs) * time.Second
}

func init() {
	rootCmd.PersistentFlags().StringVar(&userFlag, "user", "", "User id to run the assessment as")

	rootCmd.AddCommand(sessionsCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(configCmd)
}
