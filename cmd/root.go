/*
Copyright © 2025 Valentyn Solomko <valentyn.solomko@gmail.com>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/valpere/shapetran/internal/config"
)

var version = "0.1.0"

var (
	cfgFile string
	cfg     *config.Config
	logger  *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "shapetran",
	Short: "Layout-preserving machine translation",
	Long: `A CLI application that translates multi-line text with a single-line
translation model and restores the original line structure, blank lines
and indentation in the output.

Supported backends: Ollama (local model), OpenAI-compatible APIs,
Google Cloud Translation, echo (testing)

Use "shapetran translate --help" for translation options.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		cfg = loaded
		logger = newLogger(cfg.Verbose)
		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if logger == nil {
			logger = newLogger(false)
		}
		logger.Error("command failed", "error", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default ./shapetran.yaml or ~/.config/shapetran/shapetran.yaml)")
	rootCmd.PersistentFlags().String("db", config.DefaultDBPath, "Database path for translation memory, history and labels")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
