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
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/valpere/shapetran/internal/languages"
)

var labelsCmd = &cobra.Command{
	Use:   "labels",
	Short: "Manage structural label translations",
	Long: `Add, list, and delete structural label translations.

A line that gets no translated text of its own keeps its original
content, except for a leading label such as "Error:" or "Source:", which
is replaced with its translation. Each target language has a built-in
table; entries added here take precedence over it.`,
}

var labelsListTarget string

var labelsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored and built-in labels",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore(cfg.DBPath)
		if err != nil {
			return err
		}
		defer db.Close()

		entries, err := db.ListLabels(context.Background(), labelsListTarget)
		if err != nil {
			return fmt.Errorf("failed to list labels: %w", err)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTARGET LANG\tSOURCE LABEL\tTARGET LABEL")
		for _, e := range entries {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", e.ID, e.TargetLang, e.SourceLabel, e.TargetLabel)
		}
		for _, lang := range languages.All() {
			if labelsListTarget != "" && lang.Code != labelsListTarget {
				continue
			}
			for _, l := range lang.Labels {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", "(built-in)", lang.Code, l.Source, l.Target)
			}
		}
		return w.Flush()
	},
}

var labelsAddTarget string

var labelsAddCmd = &cobra.Command{
	Use:   "add <source-label> <target-label>",
	Short: "Add or update a label translation",
	Long: `Add a structural label translation for one target language.

Example:
  shapetran labels add "Note:" "注:" --target zh`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := languages.Lookup(labelsAddTarget); err != nil {
			return err
		}

		db, err := openStore(cfg.DBPath)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := db.AddLabel(context.Background(), labelsAddTarget, args[0], args[1]); err != nil {
			return fmt.Errorf("failed to add label: %w", err)
		}
		fmt.Printf("Added: [%s] %q -> %q\n", labelsAddTarget, args[0], args[1])
		return nil
	},
}

var labelsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a stored label by ID",
	Long:  `Delete a stored label by its ID (shown in "shapetran labels list").`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore(cfg.DBPath)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := db.DeleteLabel(context.Background(), args[0]); err != nil {
			return fmt.Errorf("failed to delete label: %w", err)
		}
		fmt.Printf("Deleted label: %s\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(labelsCmd)

	labelsListCmd.Flags().StringVarP(&labelsListTarget, "target", "t", "", "Filter by target language code (e.g. zh)")
	labelsAddCmd.Flags().StringVarP(&labelsAddTarget, "target", "t", "", "Target language code (required)")
	labelsAddCmd.MarkFlagRequired("target")

	labelsCmd.AddCommand(labelsListCmd)
	labelsCmd.AddCommand(labelsAddCmd)
	labelsCmd.AddCommand(labelsDeleteCmd)
}
