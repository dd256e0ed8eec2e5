package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/pathway-dev/pathway/internal/config"
)

var configWrite bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		workDir, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("getting current directory: %w", err)
		}

		cfg, err := config.ReadConfig(workDir)
		if err != nil {
			cfg = config.DefaultConfig(workDir)
		}

		if configWrite {
			if err := config.WriteConfig(workDir, cfg); err != nil {
				return err
			}
			fmt.Println("Wrote .pathway/config.yaml")
			return nil
		}

		data, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("marshalling config: %w", err)
		}
		fmt.Print(string(data))
		return nil
	},
}

func init() {
	configCmd.Flags().BoolVar(&configWrite, "write", false, "Write the effective config to .pathway/config.yaml")
}
