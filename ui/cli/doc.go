// Copyright (c) 2026 Hostwarden Team
// Hostwarden - GitHub SSH known_hosts synchronization
// This source code is licensed under the MIT license found in the LICENSE file.

// Package cli implements the Hostwarden command-line interface.
//
// The root command performs a sync of the configured known_hosts file;
// subcommands cover dry verification (verify), the published key
// listing (keys), the recorded run history (history) and version
// details (version). Every command goes through one configuration
// pipeline in PersistentPreRunE: command-line flags override
// environment variables, which override the config file, which
// overrides built-in defaults.
//
// User-facing messages are localized through the i18n package; table
// output uses text/tabwriter so columns stay aligned regardless of
// locale.
package cli
