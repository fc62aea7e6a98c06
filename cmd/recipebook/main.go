// Command recipebook serves the recipe book API and offers a few
// maintenance commands against the same database.
//
//	@title			Recipe Book API
//	@version		1.0
//	@description	Recipes, drafts and editor sessions of the recipe book.
//	@BasePath		/api/v1
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/tbourn/go-recipe-book/internal/config"
	"github.com/tbourn/go-recipe-book/internal/sysutil"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

var (
	envFile string
	cfg     config.Config
)

var rootCmd = &cobra.Command{
	Use:           "recipebook",
	Short:         "Recipe book API server",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadEnv(envFile); err != nil {
			return err
		}
		var err error
		if cfg, err = config.Load(); err != nil {
			return fmt.Errorf("config: %w", err)
		}
		sysutil.SetupLogger(os.Stderr, cfg.LogLevel, cfg.LogPretty)
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the build version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), buildVersion())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Environment file loaded before configuration (missing files are ignored)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(shareCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("recipebook failed")
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadEnv reads path into the environment without overriding variables
// that are already set.
func loadEnv(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func buildVersion() string {
	return sysutil.FirstNonEmpty(os.Getenv("RECIPEBOOK_VERSION"), version)
}
