// Copyright (c) 2026 Hostwarden Team
// Hostwarden - GitHub SSH known_hosts synchronization
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"time"

	log "github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/toeirei/hostwarden/buildvars"
	"github.com/toeirei/hostwarden/internal/config"
	"github.com/toeirei/hostwarden/internal/core"
	"github.com/toeirei/hostwarden/internal/db"
	"github.com/toeirei/hostwarden/internal/i18n"
	"github.com/toeirei/hostwarden/internal/logging"
	"github.com/toeirei/hostwarden/internal/model"
	"github.com/toeirei/hostwarden/internal/source"
	"github.com/toeirei/hostwarden/internal/sshkey"
)

var (
	cfgFile         string
	verbose         bool
	showVersionFlag bool

	dryRun      bool
	useFallback bool
	withBackup  bool

	// appConfig holds the effective configuration assembled by
	// setupDefaultServices.
	appConfig config.Config

	// historyStore is the sync history handle. It stays nil when history
	// is disabled or the store could not be opened; every caller treats
	// nil as "no history".
	historyStore db.Store
)

// Execute builds the command tree and runs it. This is the entrypoint
// used by main.
func Execute() error {
	return NewRootCmd().Execute()
}

// NewRootCmd constructs the root command and wires up all subcommands.
// It is a constructor rather than a package var so tests can build
// fresh instances.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "hostwarden",
		Short: "Keep GitHub's SSH host keys in your known_hosts current",
		Long: `Hostwarden reconciles the GitHub entries of an OpenSSH known_hosts
file against the host keys GitHub publishes through its meta API.
Entries for other hosts are preserved byte for byte; the managed
entries are rewritten as one block and the file is replaced with an
atomic rename, so a crash can never leave it half-written.

Run without a subcommand, hostwarden performs a sync.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if showVersionFlag {
				fmt.Println(compositeVersion())
				os.Exit(0)
			}
			if verbose {
				logging.SetDebug(true)
				db.SetDebug(true)
			}
			if cmd.Name() == "version" {
				// Printing the version must not depend on config or the
				// history store being loadable.
				return nil
			}
			return setupDefaultServices(cmd, args)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSync(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is hostwarden.yaml in the user config dir)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose debug output")
	rootCmd.PersistentFlags().BoolVarP(&showVersionFlag, "version", "V", false, "print version information and exit")
	rootCmd.PersistentFlags().String("language", "", "output language (e.g. en, de)")
	rootCmd.PersistentFlags().String("known-hosts", "", "known_hosts file to operate on (default is ~/.ssh/known_hosts)")
	rootCmd.PersistentFlags().BoolVar(&useFallback, "use-fallback", false, "use the embedded key snapshot instead of querying the API")

	applySyncFlags(rootCmd)
	applySyncFlags(syncCmd)

	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(keysCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(versionCmd)

	return rootCmd
}

// applySyncFlags registers the flags shared by the root command and the
// sync subcommand. The lookup guard keeps repeated NewRootCmd calls
// (tests build several trees) from redefining flags on the shared
// subcommand instances, which would panic.
func applySyncFlags(cmd *cobra.Command) {
	if cmd.Flags().Lookup("dry-run") == nil {
		cmd.Flags().BoolVar(&dryRun, "dry-run", false, "show what would change without touching the file")
	}
	if cmd.Flags().Lookup("backup") == nil {
		cmd.Flags().BoolVar(&withBackup, "backup", false, "write a timestamped backup before modifying the file")
	}
}

// getConfigPathFromCli returns the config file path from the --config
// flag, or nil when the flag was not given.
func getConfigPathFromCli(cmd *cobra.Command) (*string, error) {
	if !cmd.Flags().Changed("config") {
		return nil, nil
	}
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("failed to read config flag: %w", err)
	}
	if fi, err := os.Stat(path); err != nil || fi.IsDir() {
		return nil, fmt.Errorf("config file %s is not a readable file", path)
	}
	return &path, nil
}

// setupDefaultServices loads the configuration, initializes
// localization and opens the sync history store. It runs for every
// command through PersistentPreRunE.
func setupDefaultServices(cmd *cobra.Command, _ []string) error {
	optionalConfigPath, err := getConfigPathFromCli(cmd)
	if err != nil {
		return err
	}

	defaults := map[string]any{
		"known_hosts":     config.DefaultKnownHostsPath(),
		"endpoint":        source.DefaultEndpoint,
		"timeout_seconds": int(source.DefaultTimeout / time.Second),
		"language":        "en",
		"history.enabled": true,
		"history.path":    config.DefaultHistoryPath(),
	}

	appConfig, err = config.LoadConfig[config.Config](cmd, defaults, optionalConfigPath)
	if err != nil {
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return fmt.Errorf("error loading config: %w", err)
		}
		// First run, or the file went missing. Persist the effective
		// defaults so the next invocation finds them; a failure here only
		// costs the persisted file, not the run.
		if writeErr := config.WriteConfigFile(&appConfig, false); writeErr != nil {
			log.Warnf("%s", i18n.T("config.warn_write", writeErr))
		}
	}

	// Values wiped out by an empty or partial config file fall back to
	// the defaults.
	if appConfig.KnownHosts == "" {
		appConfig.KnownHosts = defaults["known_hosts"].(string)
		viper.Set("known_hosts", appConfig.KnownHosts)
	}
	if appConfig.Endpoint == "" {
		appConfig.Endpoint = defaults["endpoint"].(string)
		viper.Set("endpoint", appConfig.Endpoint)
	}
	if appConfig.TimeoutSeconds <= 0 {
		appConfig.TimeoutSeconds = defaults["timeout_seconds"].(int)
		viper.Set("timeout_seconds", appConfig.TimeoutSeconds)
	}
	if appConfig.Language == "" {
		appConfig.Language = defaults["language"].(string)
		viper.Set("language", appConfig.Language)
	}
	if appConfig.History.Path == "" {
		appConfig.History.Path = defaults["history.path"].(string)
		viper.Set("history.path", appConfig.History.Path)
	}

	// The known-hosts flag name differs from its config key, so Viper
	// cannot bind it; apply it by hand.
	if cmd.Flags().Changed("known-hosts") {
		if path, ferr := cmd.Flags().GetString("known-hosts"); ferr == nil && path != "" {
			appConfig.KnownHosts = path
		}
	}

	i18n.Init(appConfig.Language)

	if appConfig.History.Enabled && historyStore == nil {
		if mkErr := os.MkdirAll(filepath.Dir(appConfig.History.Path), 0o755); mkErr != nil {
			log.Warnf("%s", i18n.T("history.warn_open", mkErr))
		} else if s, dbErr := db.New(appConfig.History.Path); dbErr != nil {
			// History is an amenity; a broken store must never block the
			// sync itself.
			log.Warnf("%s", i18n.T("history.warn_open", dbErr))
		} else {
			historyStore = s
		}
	}

	return nil
}

// newResolver builds the key resolver from the effective configuration.
func newResolver() *source.Resolver {
	return source.NewResolver(appConfig.Endpoint, time.Duration(appConfig.TimeoutSeconds)*time.Second)
}

// runSync executes the reconcile pipeline against the configured
// known_hosts file and renders the outcome.
func runSync(cmd *cobra.Command) error {
	report, err := core.RunSyncCmd(cmd.Context(), newResolver(), historyStore, core.SyncOptions{
		Path:        appConfig.KnownHosts,
		DryRun:      dryRun,
		UseFallback: useFallback,
		Backup:      withBackup,
		StyledDiff:  term.IsTerminal(int(os.Stdout.Fd())),
		Version:     buildvars.VersionOrDefault("dev"),
	})
	if err != nil {
		return errors.New(i18n.T("sync.error_run", err))
	}
	printSyncReport(report)
	return nil
}

func printSyncReport(r *model.SyncReport) {
	if r.Origin == model.OriginFallback {
		fmt.Println(i18n.T("sync.used_fallback"))
	}
	if r.DryRun {
		if !r.Changed {
			fmt.Println(i18n.T("sync.dry_run_clean", r.Path))
			return
		}
		fmt.Println(i18n.T("sync.dry_run_header", r.Path))
		fmt.Print(r.Diff)
		fmt.Println(i18n.T("sync.dry_run_summary", r.Added, r.Removed, r.Preserved))
		return
	}
	if !r.Changed {
		fmt.Println(i18n.T("sync.no_changes", r.Path))
		return
	}
	if r.BackupPath != "" {
		fmt.Println(i18n.T("sync.backup_written", r.BackupPath))
	}
	fmt.Println(i18n.T("sync.success", r.Path, r.Added, r.Removed, r.Preserved))
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Synchronize the known_hosts file with GitHub's published keys",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runSync(cmd)
	},
}

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check the known_hosts file against the published keys",
	Long: `Verify compares the GitHub entries of the known_hosts file with the
keys GitHub currently publishes, without modifying anything. The exit
code is 0 when every managed host carries exactly the published keys
and 1 otherwise.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		report, err := core.RunVerifyCmd(cmd.Context(), newResolver(), core.VerifyOptions{
			Path:        appConfig.KnownHosts,
			UseFallback: useFallback,
		})
		if err != nil {
			log.Fatalf("%s", i18n.T("verify.error_run", err))
		}
		printVerifyReport(report)
		if !report.InSync() {
			os.Exit(1)
		}
	},
}

func printVerifyReport(r *model.VerifyReport) {
	if r.Origin == model.OriginFallback {
		fmt.Println(i18n.T("verify.used_fallback"))
	}
	for _, h := range r.Hosts {
		if h.InSync() {
			fmt.Println(i18n.T("verify.host_ok", h.Host, h.Present))
			continue
		}
		fmt.Println(i18n.T("verify.host_drift", h.Host, h.Present, r.OfficialKeys))
		for _, k := range h.MissingKeys {
			fmt.Printf("    %s %s\n", i18n.T("verify.missing"), displayKey(k.Algorithm, k.KeyData))
		}
		for _, raw := range h.UnknownKeys {
			fmt.Printf("    %s %s\n", i18n.T("verify.unknown"), displayRawKey(raw))
		}
	}
	fmt.Println(r.Summary())
}

// displayKey renders a key as "algorithm SHA256:..." for terminal
// output, falling back to the raw material when it does not parse.
func displayKey(algorithm, keyData string) string {
	fp, err := sshkey.Fingerprint(algorithm, keyData)
	if err != nil {
		return algorithm + " " + keyData
	}
	return algorithm + " " + fp
}

func displayRawKey(raw string) string {
	fields := strings.Fields(raw)
	if len(fields) >= 2 {
		return displayKey(fields[0], fields[1])
	}
	return raw
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show detailed version information",
	Args:  cobra.NoArgs,
	Run: func(_ *cobra.Command, _ []string) {
		info, _ := debug.ReadBuildInfo()
		v, commit, date := resolveBuildVersion(info)
		fmt.Printf("hostwarden %s\n", v)
		if commit != "" && commit != "dev" && commit != v {
			fmt.Printf("  commit: %s\n", commit)
		}
		if date != "" {
			fmt.Printf("  built:  %s\n", date)
		}
	},
}

// compositeVersion renders the one-line version string used by -V.
func compositeVersion() string {
	info, _ := debug.ReadBuildInfo()
	v, commit, date := resolveBuildVersion(info)
	out := v
	if commit != "" && commit != "dev" && commit != v {
		out += " (" + commit + ")"
	}
	if date != "" {
		out += " built: " + date
	}
	return out
}

// resolveBuildVersion determines the version, commit and build date to
// display. Linker-injected values win; otherwise Go's embedded build
// info fills the gaps, so binaries installed with `go install` still
// report something meaningful.
func resolveBuildVersion(info *debug.BuildInfo) (string, string, string) {
	versionOut := buildvars.VersionOrDefault("dev")
	commitOut := buildvars.Commit
	dateOut := buildvars.Date

	if info == nil {
		return versionOut, commitOut, dateOut
	}

	if versionOut == "dev" {
		if mv := info.Main.Version; mv != "" && mv != "(devel)" {
			versionOut = mv
		} else {
			// Used as a library or via a wrapper module: look for our own
			// module among the dependencies.
			for _, dep := range info.Deps {
				if dep == nil || dep.Path != "github.com/toeirei/hostwarden" {
					continue
				}
				if dep.Version != "" && dep.Version != "(devel)" {
					versionOut = dep.Version
				}
				break
			}
		}
	}

	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			if commitOut == "" && s.Value != "" {
				commitOut = s.Value
			}
		case "vcs.time":
			if dateOut == "" {
				dateOut = s.Value
			}
		}
	}

	// Last resort: a commit hash identifies the build better than "dev".
	if versionOut == "dev" && commitOut != "" && commitOut != "dev" {
		versionOut = commitOut
	}

	return versionOut, commitOut, dateOut
}
