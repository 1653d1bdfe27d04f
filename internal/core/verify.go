// Copyright (c) 2026 Hostwarden Team
// Hostwarden - GitHub SSH known_hosts synchronization
// This source code is licensed under the MIT license found in the LICENSE file.

package core

import (
	"context"
	"fmt"

	"github.com/toeirei/hostwarden/internal/knownhosts"
	"github.com/toeirei/hostwarden/internal/model"
)

// VerifyOptions control a verification run.
type VerifyOptions struct {
	// Path is the known_hosts file to check.
	Path string

	// UseFallback compares against the embedded key snapshot instead of
	// the live API, for air-gapped checks.
	UseFallback bool
}

// RunVerifyCmd compares the local known_hosts file against the official
// key set without modifying anything. Unlike sync, a live verification
// has no fallback: when the API cannot be reached there is nothing
// authoritative to compare against, and the error is returned.
func RunVerifyCmd(ctx context.Context, src KeySource, opts VerifyOptions) (*model.VerifyReport, error) {
	var keys []model.HostKey
	var origin model.KeyOrigin
	if opts.UseFallback {
		keys, origin = src.Resolve(ctx, true)
	} else {
		fetched, err := src.Fetch(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch published keys: %w", err)
		}
		keys, origin = fetched, model.OriginAPI
	}

	// A missing file verifies like an empty one: every official key is
	// missing for every domain.
	content, err := readTrustStore(opts.Path)
	if err != nil {
		return nil, err
	}

	official := make(map[model.HostKey]bool, len(keys))
	for _, k := range keys {
		official[k] = true
	}

	report := &model.VerifyReport{Origin: origin, OfficialKeys: len(keys)}
	for _, domain := range src.Domains() {
		local := knownhosts.HostKeys(content, domain)
		have := make(map[model.HostKey]bool, len(local))
		for _, k := range local {
			have[k] = true
		}

		hv := model.HostVerification{Host: domain}
		for _, k := range keys {
			if have[k] {
				hv.Present++
			} else {
				hv.MissingKeys = append(hv.MissingKeys, k)
			}
		}
		seen := make(map[model.HostKey]bool, len(local))
		for _, k := range local {
			if !official[k] && !seen[k] {
				seen[k] = true
				hv.UnknownKeys = append(hv.UnknownKeys, k.String())
			}
		}
		report.Hosts = append(report.Hosts, hv)
	}

	return report, nil
}
