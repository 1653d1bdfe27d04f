package main

import (
	"os"
	"path/filepath"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestFlattenYAMLAndLoadKeys(t *testing.T) {
	m := map[string]interface{}{
		"sync": map[string]interface{}{
			"success": "Updated %s",
			"arr":     []interface{}{"one", "two"},
		},
		"other": "v",
	}
	keys := make(map[string]struct{})
	flattenYAML("", m, keys)
	if _, ok := keys["sync.success"]; !ok {
		t.Fatalf("expected sync.success in keys")
	}
	if _, ok := keys["sync.arr[0]"]; !ok {
		t.Fatalf("expected sync.arr[0] in keys")
	}

	dir := t.TempDir()
	p := filepath.Join(dir, "test.yaml")
	data, _ := yaml.Marshal(m)
	if err := os.WriteFile(p, data, 0600); err != nil {
		t.Fatalf("write yaml: %v", err)
	}
	got, err := loadKeysFromLocale(p)
	if err != nil {
		t.Fatalf("loadKeysFromLocale failed: %v", err)
	}
	if _, ok := got["sync.success"]; !ok {
		t.Fatalf("expected loaded key sync.success")
	}
}

func TestFindUsedKeys(t *testing.T) {
	dir := t.TempDir()
	src := `package foo
func f(){
	_ = i18n.T("sync.no_changes")
	warn(i18n.T("history.warn_open", err))
}`
	if err := os.MkdirAll(filepath.Join(dir, "sub"), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	p := filepath.Join(dir, "sub", "a.go")
	if err := os.WriteFile(p, []byte(src), 0644); err != nil {
		t.Fatalf("write go: %v", err)
	}

	used, err := findUsedKeys(dir)
	if err != nil {
		t.Fatalf("findUsedKeys failed: %v", err)
	}
	for _, key := range []string{"sync.no_changes", "history.warn_open"} {
		if _, ok := used[key]; !ok {
			t.Fatalf("expected %s in used keys", key)
		}
	}
}

func TestFindUntranslatedStrings(t *testing.T) {
	dir := t.TempDir()
	// One genuinely suspicious literal surrounded by the shapes the
	// heuristics are meant to skip.
	src := `package foo
func f(){
	_ = i18n.T("sync.no_changes")
	foo("Visible message")
	bar("ok")
	fmt.Fprintln(w, "HOST\tALGORITHM\tFINGERPRINT\tORIGIN")
	viper.Set("known_hosts", path)
	t.Format("20060102-150405")
}`
	p := filepath.Join(dir, "a.go")
	if err := os.WriteFile(p, []byte(src), 0644); err != nil {
		t.Fatalf("write go: %v", err)
	}

	used, err := findUsedKeys(dir)
	if err != nil {
		t.Fatalf("findUsedKeys failed: %v", err)
	}
	all := map[string]struct{}{"sync.no_changes": {}}

	untranslated, err := findUntranslatedStrings(dir, used, all)
	if err != nil {
		t.Fatalf("findUntranslatedStrings failed: %v", err)
	}
	if _, ok := untranslated["Visible message"]; !ok {
		t.Fatalf("expected Visible message to be flagged as untranslated")
	}
	for literal := range untranslated {
		switch literal {
		case "HOST\\tALGORITHM\\tFINGERPRINT\\tORIGIN":
			t.Fatalf("tabwriter header should be skipped via the Fprintln blacklist")
		case "known_hosts":
			t.Fatalf("config key literal should be skipped as an identifier")
		case "20060102-150405":
			t.Fatalf("time layout literal should be skipped")
		}
	}
}
