package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/opendaylight/yangtools-sub038/binfmt"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv(EnvPrefix+"_CONFIG", "")
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
	v, err := cfg.Stream.WriterVersion()
	if err != nil {
		t.Fatal(err)
	}
	if v != binfmt.Potassium {
		t.Errorf("writer version %s, want %s", v, binfmt.Potassium)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "yangtools.yaml")
	doc := strings.Join([]string{
		"log:",
		"  level: debug",
		"  format: json",
		"  outputs: [stdout]",
		"stream:",
		"  version: magnesium",
		"codec:",
		"  cache_types:",
		"    - example.com/model.Top",
		"",
	}, "\n")
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("YANGTOOLS_LOG_LEVEL", "warn")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	want := Default()
	want.Log.Level = "warn"
	want.Log.Format = "json"
	want.Log.Outputs = []string{"stdout"}
	want.Stream.Version = "magnesium"
	want.Codec.CacheTypes = []string{"example.com/model.Top"}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadInvalid(t *testing.T) {
	for _, tc := range []struct {
		name string
		doc  string
		msg  string
	}{
		{"level", "log:\n  level: loud\n", "invalid log.level"},
		{"format", "log:\n  format: xml\n", "invalid log.format"},
		{"version", "stream:\n  version: sodium-sr1\n", "invalid stream.version"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "c.yaml")
			if err := os.WriteFile(path, []byte(tc.doc), 0o644); err != nil {
				t.Fatal(err)
			}
			_, err := Load(path)
			if err == nil || !strings.Contains(err.Error(), tc.msg) {
				t.Errorf("got %v, want error containing %q", err, tc.msg)
			}
		})
	}
}
