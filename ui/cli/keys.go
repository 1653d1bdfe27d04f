// Copyright (c) 2026 Hostwarden Team
// Hostwarden - GitHub SSH known_hosts synchronization
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/toeirei/hostwarden/internal/i18n"
	"github.com/toeirei/hostwarden/internal/knownhosts"
	"github.com/toeirei/hostwarden/internal/model"
	"github.com/toeirei/hostwarden/internal/sshkey"
)

var (
	copyKeys bool
	rawLines bool
)

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List the official GitHub SSH host keys",
	Long: `Keys shows the host keys GitHub publishes for its SSH endpoints,
with the SHA256 fingerprint of each key. With --lines the output is
the exact known_hosts block hostwarden manages; --copy puts that block
on the system clipboard.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		res := newResolver()
		keys, origin := res.Resolve(cmd.Context(), useFallback)
		if len(keys) == 0 {
			return errors.New(i18n.T("keys.error_none"))
		}

		if rawLines || copyKeys {
			block := knownhosts.Reconcile("", res.Domains(), keys).Content
			if copyKeys {
				if err := clipboard.WriteAll(block); err != nil {
					return fmt.Errorf("%s", i18n.T("keys.error_clipboard", err))
				}
				fmt.Println(i18n.T("keys.copied", len(res.Domains())*len(keys)))
			}
			if rawLines {
				fmt.Print(block)
			}
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "HOST\tALGORITHM\tFINGERPRINT\tORIGIN")
		for _, host := range res.Domains() {
			for _, k := range keys {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", host, k.Algorithm, fingerprintCell(k), origin)
			}
		}
		w.Flush()
		return nil
	},
}

// fingerprintCell returns the SHA256 fingerprint for the table, or a
// placeholder for key material that does not parse.
func fingerprintCell(k model.HostKey) string {
	fp, err := sshkey.Fingerprint(k.Algorithm, k.KeyData)
	if err != nil {
		return "(unparseable)"
	}
	return fp
}

func init() {
	keysCmd.Flags().BoolVar(&copyKeys, "copy", false, "copy the managed known_hosts block to the clipboard")
	keysCmd.Flags().BoolVar(&rawLines, "lines", false, "print raw known_hosts lines instead of a table")
}
