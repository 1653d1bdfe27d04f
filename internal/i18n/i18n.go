// Copyright (c) 2026 Hostwarden Team
// Hostwarden - GitHub SSH known_hosts synchronization
// This source code is licensed under the MIT license found in the LICENSE file.

// package i18n provides internationalization and localization support for
// Hostwarden. It uses the go-i18n library to load and manage translation
// files, allowing all user-facing output to be displayed in multiple
// languages.
package i18n

import (
	"fmt"
	"io/fs"
	"sort"

	"embed"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// localeFS embeds the YAML translation files from the 'locales' directory
// into the application binary.
//
//go:embed locales/*.yaml
var localeFS embed.FS

// languageNames maps locale codes to their native display names.
var languageNames = map[string]string{
	"en": "English",
	"de": "Deutsch",
}

// bundle stores all the loaded translation messages from the locale files.
var bundle *i18n.Bundle

// localizer is used to translate messages into a specific language.
var localizer *i18n.Localizer

// lang is the currently active locale code.
var lang string

// Init initializes the i18n bundle and sets up the localizer for a specific
// language. It parses all embedded YAML files from the 'locales' directory.
func Init(code string) {
	bundle = i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("yaml", yaml.Unmarshal)

	files, _ := fs.ReadDir(localeFS, "locales")
	for _, f := range files {
		if f.IsDir() {
			continue
		}
		data, _ := localeFS.ReadFile("locales/" + f.Name())
		bundle.ParseMessageFileBytes(data, f.Name())
	}

	lang = code
	localizer = i18n.NewLocalizer(bundle, code)
}

// T translates a message by its ID. Extra arguments are applied with
// fmt-style formatting, so messages may carry printf verbs. If the i18n
// system has not been initialized, it defaults to English. If a translation
// for the given ID is not found, it returns the ID itself.
func T(messageID string, args ...any) string {
	if localizer == nil {
		Init("en")
	}
	msg, err := localizer.Localize(&i18n.LocalizeConfig{MessageID: messageID})
	if err != nil {
		// If the message ID is not found, go-i18n returns an error.
		// In this case, we return the message ID itself as a fallback.
		return messageID
	}
	if len(args) > 0 {
		return fmt.Sprintf(msg, args...)
	}
	return msg
}

// SetLang changes the active language of the localizer.
func SetLang(code string) {
	Init(code)
}

// GetLang returns the currently active locale code.
func GetLang() string {
	return lang
}

// GetAvailableLocales returns the locale codes shipped with the binary
// mapped to their display names.
func GetAvailableLocales() map[string]string {
	out := make(map[string]string, len(languageNames))
	for code, name := range languageNames {
		out[code] = name
	}
	return out
}

// SortedLocaleCodes returns the available locale codes in stable order,
// for help text and config validation messages.
func SortedLocaleCodes() []string {
	codes := make([]string, 0, len(languageNames))
	for code := range languageNames {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}
