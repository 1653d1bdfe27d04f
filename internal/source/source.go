// Copyright (c) 2026 Hostwarden Team
// Hostwarden - GitHub SSH known_hosts synchronization
// This source code is licensed under the MIT license found in the LICENSE file.

// Package source resolves the set of SSH host keys GitHub currently
// publishes. The primary source is the meta API; when it cannot be
// reached or returns garbage, resolution degrades to an embedded
// snapshot instead of failing.
package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/toeirei/hostwarden/buildvars"
	"github.com/toeirei/hostwarden/internal/i18n"
	"github.com/toeirei/hostwarden/internal/logging"
	"github.com/toeirei/hostwarden/internal/model"
	"github.com/toeirei/hostwarden/internal/sshkey"
)

// DefaultEndpoint is the GitHub meta API URL serving the published keys.
const DefaultEndpoint = "https://api.github.com/meta"

// DefaultTimeout bounds a single meta API request.
const DefaultTimeout = 10 * time.Second

// managedDomains are the hosts whose known_hosts lines hostwarden owns.
var managedDomains = []string{"github.com", "ssh.github.com"}

// userAgent identifies hostwarden to the GitHub API.
var userAgent = "Hostwarden/" + buildvars.VersionOrDefault("dev")

// ManagedDomains returns the hosts whose entries are managed, in the
// order their fresh lines are written.
func ManagedDomains() []string {
	out := make([]string, len(managedDomains))
	copy(out, managedDomains)
	return out
}

// Resolver fetches GitHub's published host keys.
type Resolver struct {
	endpoint string
	client   *http.Client
}

// NewResolver returns a Resolver for the given endpoint. An empty
// endpoint selects the GitHub meta API, a non-positive timeout the
// default request timeout.
func NewResolver(endpoint string, timeout time.Duration) *Resolver {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Resolver{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

// Domains lists the hosts the resolved keys apply to.
func (r *Resolver) Domains() []string {
	return ManagedDomains()
}

// Fetch performs one live request against the meta API and returns the
// published keys in canonical order. Unlike Resolve it reports failures
// to the caller instead of absorbing them.
func (r *Resolver) Fetch(ctx context.Context) ([]model.HostKey, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build meta API request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("meta API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("meta API returned status %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read meta API response: %w", err)
	}

	keys, err := parseMetaDocument(body)
	if err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return nil, fmt.Errorf("meta API response contained no usable ssh keys")
	}

	sortCanonical(keys)
	return keys, nil
}

// Resolve returns the official key set and where it came from. Any
// failure along the live path degrades to the embedded fallback snapshot
// with a warning; Resolve itself never fails. With preferFallback set
// the API is not contacted at all.
func (r *Resolver) Resolve(ctx context.Context, preferFallback bool) ([]model.HostKey, model.KeyOrigin) {
	if preferFallback {
		logging.Debugf("%s", i18n.T("source.debug_skip_api"))
		return FallbackKeys(), model.OriginFallback
	}

	keys, err := r.Fetch(ctx)
	if err != nil {
		logging.Warnf("%s", i18n.T("source.warn_fallback", err, FallbackSnapshotDate))
		return FallbackKeys(), model.OriginFallback
	}
	return keys, model.OriginAPI
}

// metaDocument is the subset of the meta API response we care about.
// The ssh_keys field has appeared both as a flat array of
// "algorithm material" strings and as an object grouping materials by
// algorithm name, so it is decoded leniently.
type metaDocument struct {
	SSHKeys json.RawMessage `json:"ssh_keys"`
}

func parseMetaDocument(data []byte) ([]model.HostKey, error) {
	var doc metaDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("meta API response is not valid JSON: %w", err)
	}
	if len(doc.SSHKeys) == 0 {
		return nil, fmt.Errorf("meta API response has no ssh_keys field")
	}

	var records []string
	if err := json.Unmarshal(doc.SSHKeys, &records); err == nil {
		return parseRecords(records), nil
	}

	var groups map[string][]string
	if err := json.Unmarshal(doc.SSHKeys, &groups); err == nil {
		for name, materials := range groups {
			tag := normalizeAlgorithm(name)
			if tag == "" {
				logging.Debugf("skipping unknown algorithm group %q", name)
				continue
			}
			for _, material := range materials {
				records = append(records, tag+" "+material)
			}
		}
		return parseRecords(records), nil
	}

	return nil, fmt.Errorf("ssh_keys field has an unsupported shape")
}

// parseRecords turns raw "algorithm material" records into validated
// host keys. Records that do not parse or whose material is corrupt are
// skipped with a warning; duplicates collapse.
func parseRecords(records []string) []model.HostKey {
	seen := make(map[model.HostKey]bool, len(records))
	keys := make([]model.HostKey, 0, len(records))
	for _, rec := range records {
		alg, data, _, err := sshkey.Parse(rec)
		if err != nil {
			logging.Warnf("%s", i18n.T("source.warn_bad_record", rec, err))
			continue
		}
		if err := sshkey.Validate(alg, data); err != nil {
			logging.Warnf("%s", i18n.T("source.warn_bad_record", rec, err))
			continue
		}
		k := model.HostKey{Algorithm: alg, KeyData: data}
		if seen[k] {
			continue
		}
		seen[k] = true
		keys = append(keys, k)
	}
	return keys
}

// normalizeAlgorithm maps an algorithm group name from the object form
// of ssh_keys to the SSH wire tag. Unknown names yield "".
func normalizeAlgorithm(name string) string {
	lower := strings.ToLower(name)
	if strings.HasPrefix(lower, "ssh-") || strings.HasPrefix(lower, "ecdsa-") {
		return lower
	}
	switch lower {
	case "rsa":
		return "ssh-rsa"
	case "ed25519":
		return "ssh-ed25519"
	case "ecdsa":
		return "ecdsa-sha2-nistp256"
	case "dsa", "dss":
		return "ssh-dss"
	}
	return ""
}

// algorithmRank orders the well-known GitHub algorithms ahead of
// anything else so output stays stable across runs.
func algorithmRank(alg string) int {
	switch alg {
	case "ssh-rsa":
		return 0
	case "ssh-ed25519":
		return 1
	case "ecdsa-sha2-nistp256":
		return 2
	}
	return 3
}

// sortCanonical sorts keys into the canonical deterministic order:
// ssh-rsa, ssh-ed25519, ecdsa-sha2-nistp256, then any remaining
// algorithms alphabetically.
func sortCanonical(keys []model.HostKey) {
	sort.SliceStable(keys, func(i, j int) bool {
		ri, rj := algorithmRank(keys[i].Algorithm), algorithmRank(keys[j].Algorithm)
		if ri != rj {
			return ri < rj
		}
		if keys[i].Algorithm != keys[j].Algorithm {
			return keys[i].Algorithm < keys[j].Algorithm
		}
		return keys[i].KeyData < keys[j].KeyData
	})
}
