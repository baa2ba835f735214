package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	tt "github.com/boxlint/boxlint/internal/types"
	"github.com/boxlint/boxlint/lint"
)

// initCmd: boxlint init
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new linter configuration file",
	Run: func(cmd *cobra.Command, args []string) {
		if err := initConfigurationFile(cfgFile); err != nil {
			logger.Error("Error initializing config file", zap.Error(err))
			return
		}
		fmt.Printf("Configuration file created/updated: %s\n", cfgFile)
	},
}

func initConfigurationFile(configurationPath string) error {
	if configurationPath == "" {
		configurationPath = ".boxlint.yaml"
	}

	avoid := true
	config := lint.Config{
		Name: "boxlint",
		Rules: map[string]tt.ConfigRule{
			"boxed-return": {Severity: tt.SeverityInfo},
		},
		AvoidBreakingExportedAPI: &avoid,
	}

	d, err := yaml.Marshal(config)
	if err != nil {
		return err
	}

	if err := os.WriteFile(configurationPath, d, 0o644); err != nil {
		return err
	}

	return nil
}
