// Copyright (c) 2026 Hostwarden Team
// Hostwarden - GitHub SSH known_hosts synchronization
// This source code is licensed under the MIT license found in the LICENSE file.

// Package knownhosts implements line-conservative editing of OpenSSH
// known_hosts content. Only lines that verifiably belong to a managed
// host are ever touched; everything else, including comments, blank
// lines and entries we cannot parse, is carried over byte for byte.
package knownhosts

import (
	"strings"

	"github.com/toeirei/hostwarden/internal/model"
)

// leadingToken returns the first token of a known_hosts line: everything
// up to the first comma, space or tab. Matching is anchored at the first
// byte, so indented, hashed or commented lines never yield a managed
// host name.
func leadingToken(line string) string {
	for i := 0; i < len(line); i++ {
		if line[i] == ',' || line[i] == ' ' || line[i] == '\t' {
			return line[:i]
		}
	}
	return line
}

// IsManagedLine reports whether the line's leading token exactly equals
// one of the managed host names. Substring or suffix matches do not
// count: "mygithub.com" is somebody else's host.
func IsManagedLine(line string, hosts []string) bool {
	token := leadingToken(line)
	if token == "" {
		return false
	}
	for _, h := range hosts {
		if token == h {
			return true
		}
	}
	return false
}

// Result describes the outcome of one reconciliation.
type Result struct {
	// Content is the complete new file content, ending in a newline
	// whenever any line is present.
	Content string

	// Preserved counts unmanaged lines carried over verbatim.
	Preserved int

	// Removed counts managed lines dropped from the old content.
	Removed int

	// Added counts fresh managed lines appended.
	Added int
}

// Reconcile rebuilds known_hosts content: unmanaged lines are kept in
// their original order, every old managed line is dropped, and one fresh
// line per host/key pair is appended. The result is independent of the
// old managed lines, so running Reconcile on its own output is a no-op.
func Reconcile(existing string, hosts []string, keys []model.HostKey) Result {
	var res Result

	lines := splitLines(existing)
	kept := make([]string, 0, len(lines)+len(hosts)*len(keys))
	for _, line := range lines {
		if IsManagedLine(line, hosts) {
			res.Removed++
			continue
		}
		kept = append(kept, line)
	}
	res.Preserved = len(kept)

	for _, host := range hosts {
		for _, key := range keys {
			kept = append(kept, key.Line(host))
			res.Added++
		}
	}

	if len(kept) == 0 {
		return res
	}
	res.Content = strings.Join(kept, "\n") + "\n"
	return res
}

// HostKeys extracts the key records for a single host from known_hosts
// content. Only lines whose leading token is exactly the host name are
// considered; lines too short to carry key material are skipped.
func HostKeys(content, host string) []model.HostKey {
	var keys []model.HostKey
	for _, line := range splitLines(content) {
		if leadingToken(line) != host {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 3 {
			continue
		}
		keys = append(keys, model.HostKey{Algorithm: fields[1], KeyData: fields[2]})
	}
	return keys
}

// splitLines splits file content into logical lines. A trailing newline
// terminates the last line instead of opening an empty one; interior
// blank lines survive.
func splitLines(content string) []string {
	if content == "" {
		return nil
	}
	lines := strings.Split(content, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
