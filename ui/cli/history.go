// Copyright (c) 2026 Hostwarden Team
// Hostwarden - GitHub SSH known_hosts synchronization
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/toeirei/hostwarden/buildvars"
	"github.com/toeirei/hostwarden/internal/core"
	"github.com/toeirei/hostwarden/internal/i18n"
)

var (
	historyLimit int
	historyKeep  int
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect the recorded sync history",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded sync runs, most recent first",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		if historyStore == nil {
			return errors.New(i18n.T("history.error_disabled"))
		}
		entries, err := historyStore.GetHistory(historyLimit)
		if err != nil {
			return fmt.Errorf("%s", i18n.T("history.error_read", err))
		}
		if len(entries) == 0 {
			fmt.Println(i18n.T("history.empty"))
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTIME\tORIGIN\tCHANGED\tADDED\tREMOVED\tPRESERVED\tVERSION")
		for _, e := range entries {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\t%d\t%d\t%s\n",
				e.ID,
				e.Timestamp.Local().Format("2006-01-02 15:04:05"),
				e.Origin,
				changedCell(e.Changed),
				e.Added, e.Removed, e.Preserved,
				e.Version,
			)
		}
		w.Flush()
		return nil
	},
}

func changedCell(changed bool) string {
	if changed {
		return "yes"
	}
	return "no"
}

var historyPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete old history entries, keeping the most recent N",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		if historyStore == nil {
			return errors.New(i18n.T("history.error_disabled"))
		}
		deleted, err := historyStore.PruneHistory(historyKeep)
		if err != nil {
			return fmt.Errorf("%s", i18n.T("history.error_prune", err))
		}
		fmt.Println(i18n.T("history.pruned", deleted, historyKeep))
		return nil
	},
}

var historyExportCmd = &cobra.Command{
	Use:   "export [output-file]",
	Short: "Export history and trust store as zstd-compressed JSON",
	Long: `Export writes the full sync history together with the current
known_hosts content as a zstd-compressed JSON document. With "-" as
the output file the archive goes to stdout; otherwise the file name
defaults to hostwarden-history-<date>.json.zst.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if historyStore == nil {
			return errors.New(i18n.T("history.error_disabled"))
		}

		opts := core.ExportOptions{
			TrustStorePath: appConfig.KnownHosts,
			Version:        buildvars.VersionOrDefault("dev"),
		}

		target := ""
		if len(args) == 1 {
			target = args[0]
		}
		if target == "-" {
			return core.RunExportCmd(cmd.Context(), historyStore, opts, os.Stdout)
		}
		if target == "" {
			target = fmt.Sprintf("hostwarden-history-%s.json.zst", time.Now().Format("2006-01-02"))
		} else if !strings.HasSuffix(target, ".zst") {
			target += ".zst"
		}

		f, err := os.Create(target)
		if err != nil {
			return fmt.Errorf("%s", i18n.T("history.error_export", err))
		}
		if err := core.RunExportCmd(cmd.Context(), historyStore, opts, f); err != nil {
			f.Close()
			return fmt.Errorf("%s", i18n.T("history.error_export", err))
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("%s", i18n.T("history.error_export", err))
		}
		fmt.Println(i18n.T("history.exported", target))
		return nil
	},
}

func init() {
	historyListCmd.Flags().IntVar(&historyLimit, "limit", 20, "maximum number of entries to show (0 shows all)")
	historyPruneCmd.Flags().IntVar(&historyKeep, "keep", 100, "number of most recent entries to keep")
	historyCmd.AddCommand(historyListCmd, historyPruneCmd, historyExportCmd)
}
