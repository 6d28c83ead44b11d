package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestScoreCmdFlags(t *testing.T) {
	cmd := newScoreCmd(&rootOpts{})
	f := cmd.Flags()

	outputFmt, _ := f.GetString("output")
	if outputFmt != "text" {
		t.Errorf("default output = %q, want text", outputFmt)
	}
	ph, _ := f.GetFloat64("ph")
	if ph != 7.5 {
		t.Errorf("default ph = %v, want 7.5", ph)
	}

	for _, flag := range []string{"species", "variant", "output", "temperature", "ph", "salinity", "do", "bod", "turbidity"} {
		if f.Lookup(flag) == nil {
			t.Errorf("missing flag: %s", flag)
		}
	}
}

func TestSweepCmdFlags(t *testing.T) {
	cmd := newSweepCmd(&rootOpts{})
	f := cmd.Flags()

	limit, _ := f.GetInt("limit")
	if limit != 50 {
		t.Errorf("default limit = %d, want 50", limit)
	}
	for _, flag := range []string{"variant", "output", "limit", "quiet", "temperature"} {
		if f.Lookup(flag) == nil {
			t.Errorf("missing flag: %s", flag)
		}
	}
}

func TestFirstNonEmpty(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"a", "b", "c"}, "a"},
		{[]string{"", "b", "c"}, "b"},
		{[]string{"", "", "c"}, "c"},
		{[]string{"", "", ""}, ""},
	}

	for _, tt := range tests {
		got := firstNonEmpty(tt.args...)
		if got != tt.want {
			t.Errorf("firstNonEmpty(%v) = %q, want %q", tt.args, got, tt.want)
		}
	}
}

func TestParseUploads(t *testing.T) {
	got, err := parseUploads([]string{"models/primary/model.json=./out/model.json", "/data/species.csv=species.csv"})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].key != "models/primary/model.json" || got[1].key != "data/species.csv" {
		t.Errorf("unexpected uploads %+v", got)
	}

	for _, bad := range []string{"model.json", "=x", "key="} {
		if _, err := parseUploads([]string{bad}); err == nil {
			t.Errorf("parseUploads(%q) should fail", bad)
		}
	}
}

const cliCSV = `species,common_name,family
Oreochromis niloticus,Nile tilapia,Cichlidae
Anabas testudineus,Climbing perch,Anabantidae
`

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestSpeciesAndLakesCommands(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "data"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "data", "species.csv"), []byte(cliCSV), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := run(t, "species", "--artifacts", dir, "--log-level", "error")
	if err != nil {
		t.Fatalf("species: %v", err)
	}
	if out != "Anabas testudineus\nOreochromis niloticus\n" {
		t.Errorf("species output = %q", out)
	}

	out, err = run(t, "species", "Anabas testudineus", "--artifacts", dir, "--log-level", "error")
	if err != nil {
		t.Fatalf("species info: %v", err)
	}
	if !strings.Contains(out, `"common_name": "Climbing perch"`) {
		t.Errorf("species info output = %q", out)
	}

	out, err = run(t, "lakes", "--artifacts", dir, "--log-level", "error")
	if err != nil {
		t.Fatalf("lakes: %v", err)
	}
	if !strings.Contains(out, "Laguna de Bay") || !strings.Contains(out, "Bunot Lake") {
		t.Errorf("lakes output missing lakes: %q", out)
	}
}

func TestPublishCommand(t *testing.T) {
	dest := t.TempDir()
	local := filepath.Join(t.TempDir(), "model.json")
	if err := os.WriteFile(local, []byte(`{"learner":{}}`), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := run(t, "publish", "--artifacts", dest, "--log-level", "error", "models/primary/model.json="+local)
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if !strings.Contains(out, "Published models/primary/model.json") {
		t.Errorf("publish output = %q", out)
	}

	got, err := os.ReadFile(filepath.Join(dest, "models", "primary", "model.json"))
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != `{"learner":{}}` {
		t.Errorf("published content = %q", got)
	}
}
