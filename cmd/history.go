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
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent translation requests",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore(cfg.DBPath)
		if err != nil {
			return err
		}
		defer db.Close()

		entries, err := db.History(context.Background(), historyLimit)
		if err != nil {
			return fmt.Errorf("failed to read history: %w", err)
		}

		if len(entries) == 0 {
			fmt.Println("No translation requests recorded.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "TIME\tSOURCE\tTARGET\tBACKEND\tSTATE\tTIER\tCACHED\tLATENCY\tTEXT")
		for _, e := range entries {
			state := e.State
			if e.Error != "" {
				state += ": " + snippet(e.Error, 30)
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%v\t%dms\t%s\n",
				e.Timestamp.Format("2006-01-02 15:04:05"), e.SourceLang, e.TargetLang, e.Backend,
				state, e.Tier, e.Cached, e.LatencyMs, snippet(e.SourceText, 40))
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Number of requests to show (0 = all)")
}
