package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/inspirehep/refextract/internal/config"
)

var configForce bool

func init() {
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "Overwrite an existing config file")
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration",
	Long: `Show the configuration after defaults, the config file, .env and
REFEXTRACT_* environment variables have been applied.

Usage:
  refextract config          # Show the effective config
  refextract config path     # Print the config file location
  refextract config init     # Write a config file with the defaults

Environment variables follow the YAML keys, e.g. REFEXTRACT_SERVER_ADDR,
REFEXTRACT_FETCH_TIMEOUT, REFEXTRACT_PDF_MAX_PAGES, REFEXTRACT_KBS
(journals:/path/a.kb,books:/path/b.kb).`,
	Args: cobra.NoArgs,
	RunE: runConfig,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file location",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configFile()
		if humanOutput {
			fmt.Println(path)
			return nil
		}
		outputJSON(map[string]string{"path": path})
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with the default settings",
	Args:  cobra.NoArgs,
	RunE:  runConfigInit,
}

func configFile() string {
	if configPath != "" {
		return config.ExpandPath(configPath)
	}
	return config.GlobalConfigPath()
}

func runConfig(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()
	data, err := yaml.Marshal(cfg)
	if err != nil {
		exitWithError(ExitError, "encoding config: %v", err)
	}
	if humanOutput {
		fmt.Print(string(data))
		return nil
	}
	// Round trip through YAML so JSON keys and durations match the file.
	var m map[string]any
	if err := yaml.Unmarshal(data, &m); err != nil {
		exitWithError(ExitError, "encoding config: %v", err)
	}
	outputJSON(m)
	return nil
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := configFile()
	if _, err := os.Stat(path); err == nil && !configForce {
		exitWithError(ExitConfigError, "%s already exists (use --force to overwrite)", path)
	}
	if err := config.Default().Save(path); err != nil {
		exitWithError(ExitError, "%v", err)
	}
	if humanOutput {
		fmt.Printf("Wrote %s\n", path)
	} else {
		outputJSON(StatusResponse{Status: "created", Path: path})
	}
	return nil
}
