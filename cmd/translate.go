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
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/valpere/shapetran/internal/config"
	"github.com/valpere/shapetran/internal/detector"
	"github.com/valpere/shapetran/internal/languages"
	"github.com/valpere/shapetran/internal/orchestrator"
	"github.com/valpere/shapetran/internal/store"
	"github.com/valpere/shapetran/internal/translator"
	"github.com/valpere/shapetran/internal/validator"
)

var (
	inputFile  string
	outputFile string
	sourceLang string
	targetLang string
	modelName  string
	force      bool
	noCheck    bool
)

var translateCmd = &cobra.Command{
	Use:   "translate",
	Short: "Translate text and keep its line layout",
	Long: `Translate multi-line text with a single-line translation model.

The text is flattened into one line, sent to the backend as
"translate to <lang>: <text>", and the answer is cut back into the
original lines. Blank lines and leading indentation are kept.

Available backends:
  - ollama   Local model served by Ollama (default, pulled on first use)
  - openai   OpenAI or any compatible API such as OpenRouter (requires API key)
  - google   Google Cloud Translation (requires credentials)
  - echo     Returns the directive unchanged, for testing

Input is read from --input or stdin; output goes to --output or stdout.`,
	Example: `  shapetran translate -t zh -i notes.txt -o notes.zh.txt
  echo "Hello world." | shapetran translate -t ru --backend openai`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if inputFile != "" && inputFile == outputFile {
			return fmt.Errorf("input file and output file cannot be the same")
		}
		if _, err := languages.Lookup(targetLang); err != nil {
			return err
		}

		text, err := readInput(cmd.InOrStdin())
		if err != nil {
			return err
		}

		near, err := orchestrator.CheckLength(text, cfg.MaxInputLength)
		if err != nil {
			if !force {
				return fmt.Errorf("%w (use --force to translate the first %d characters)", err, cfg.MaxInputLength)
			}
			logger.Warn("input exceeds maximum length, translating a truncated copy", "error", err)
		} else if near {
			logger.Warn("input is close to the maximum length",
				"length", len([]rune(text)), "max", cfg.MaxInputLength)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		det := detector.New(languages.Codes()...)
		src := resolveSource(det, text)

		svc := cfg.Service(cfg.Backend)
		if cmd.Flags().Changed("model") {
			svc.Model = modelName
		}
		backend, err := translator.NewBackend(cfg.Backend, svc, src)
		if err != nil {
			return err
		}

		db, err := openStore(cfg.DBPath)
		if err != nil {
			return err
		}
		defer db.Close()

		opts := []orchestrator.Option{
			orchestrator.WithLogger(logger),
			orchestrator.WithLabelSource(db),
		}
		if !cfg.NoCache {
			memory, closeMemory := buildMemory(ctx, db)
			defer closeMemory()
			opts = append(opts, orchestrator.WithMemory(memory))
		}
		if !noCheck {
			opts = append(opts, orchestrator.WithChecker(validator.New(det)))
		}

		orch := orchestrator.New(backend, orchestrator.OrchestratorConfig{
			MaxInputLength: cfg.MaxInputLength,
			Timeout:        cfg.Timeout,
			SourceLang:     src,
		}, opts...)

		req := store.NewRequest(text, src, targetLang, backend.Name())
		if err := db.SaveRequest(ctx, req); err != nil {
			logger.Warn("failed to record request", "error", err)
		}

		task, err := orch.Submit(ctx, text, targetLang)
		if err != nil {
			saveOutcome(db, req.ID, orchestrator.Result{State: orchestrator.Failed, Err: err})
			return err
		}
		for p := range task.Progress() {
			logger.Debug("progress", "percent", p, "state", task.State().String())
		}
		result := task.Wait()
		saveOutcome(db, req.ID, result)

		for _, w := range result.Warnings {
			logger.Warn(w)
		}

		if result.State != orchestrator.Succeeded {
			fmt.Fprintln(cmd.ErrOrStderr(), result.Text)
			return result.Err
		}

		if err := writeOutput(cmd.OutOrStdout(), result.Text); err != nil {
			return err
		}

		logger.Info("translated",
			"source", src, "target", targetLang, "backend", result.Backend,
			"tier", result.Tier.String(), "cached", result.Cached,
			"latency", result.Latency.Round(time.Millisecond))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(translateCmd)

	translateCmd.Flags().StringVarP(&inputFile, "input", "i", "", "Input file to translate (default stdin)")
	translateCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file for translation (default stdout)")
	translateCmd.Flags().StringVarP(&sourceLang, "source", "s", "auto", "Source language code, or auto to detect")
	translateCmd.Flags().StringVarP(&targetLang, "target", "t", "", "Target language code (required)")

	translateCmd.Flags().String("backend", config.DefaultBackend, "Translation backend: "+strings.Join(translator.Backends, ", "))
	translateCmd.Flags().StringVarP(&modelName, "model", "m", "", "Model name for the selected backend")
	translateCmd.Flags().String("ollama-url", translator.DefaultOllamaURL, "Ollama base URL")
	translateCmd.Flags().String("openai-url", "", "OpenAI-compatible base URL (e.g. "+translator.DefaultOpenRouterURL+")")
	translateCmd.Flags().String("openai-key", "", "API key for the openai backend")
	translateCmd.Flags().StringP("credentials", "c", "", "Path to Google Cloud credentials")
	translateCmd.Flags().String("redis-url", "", "Redis URL for a shared translation memory")

	translateCmd.Flags().Int("max-length", config.DefaultMaxInputLength, "Maximum input length in characters (0 = unlimited)")
	translateCmd.Flags().Duration("timeout", 0, "Time limit for model loading and generation (0 = none)")
	translateCmd.Flags().Bool("no-cache", false, "Disable translation memory cache")
	translateCmd.Flags().BoolVar(&force, "force", false, "Translate a truncated copy of input over the maximum length")
	translateCmd.Flags().BoolVar(&noCheck, "no-check", false, "Skip the output language check")

	translateCmd.MarkFlagRequired("target")
}

func readInput(stdin io.Reader) (string, error) {
	var data []byte
	var err error
	if inputFile == "" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(inputFile)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return string(data), nil
}

func writeOutput(stdout io.Writer, text string) error {
	if outputFile == "" {
		if !strings.HasSuffix(text, "\n") {
			text += "\n"
		}
		_, err := io.WriteString(stdout, text)
		return err
	}
	if err := os.MkdirAll(filepath.Dir(outputFile), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(outputFile, []byte(text), 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}

// resolveSource returns the source language code, detecting it when the
// flag is "auto". An undetectable source stays "auto".
func resolveSource(det *detector.Detector, text string) string {
	if sourceLang != "auto" {
		return sourceLang
	}
	detected, ok := det.DetectISO(text)
	if !ok {
		logger.Debug("could not detect source language")
		return "auto"
	}
	logger.Debug("detected source language", "source", detected)
	if detected == targetLang {
		logger.Debug("source and target language are the same", "lang", detected)
	}
	return detected
}

func saveOutcome(db *store.Store, requestID string, r orchestrator.Result) {
	out := store.Outcome{
		RequestID: requestID,
		State:     r.State.String(),
		Tier:      r.Tier.String(),
		Truncated: r.Truncated,
		Cached:    r.Cached,
		Latency:   r.Latency,
	}
	if r.State == orchestrator.Succeeded {
		out.Text = r.Text
	}
	if r.Err != nil {
		out.Error = r.Err.Error()
	}
	// The request context may already be cancelled.
	if err := db.SaveOutcome(context.Background(), out); err != nil {
		logger.Warn("failed to record outcome", "error", err)
	}
}
