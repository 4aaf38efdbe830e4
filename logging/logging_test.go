package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/opendaylight/yangtools-sub038/config"
)

func TestNewFileOutput(t *testing.T) {
	for _, rotate := range []bool{false, true} {
		name := "plain"
		if rotate {
			name = "rotated"
		}
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "logs", "yt.log")
			cfg := config.Default().Log
			cfg.Format = "json"
			cfg.Outputs = []string{path}
			cfg.Rotation.Enable = rotate

			log, err := New(cfg)
			if err != nil {
				t.Fatal(err)
			}
			log.Debug("hidden")
			log.Info("codec built")
			_ = log.Sync()

			data, err := os.ReadFile(path)
			if err != nil {
				t.Fatal(err)
			}
			got := string(data)
			if !strings.Contains(got, `"msg":"codec built"`) {
				t.Errorf("missing info line in %q", got)
			}
			if strings.Contains(got, "hidden") {
				t.Errorf("debug line written at info level: %q", got)
			}
		})
	}
}

func TestNewInvalidLevel(t *testing.T) {
	cfg := config.Default().Log
	cfg.Level = "loud"
	if _, err := New(cfg); err == nil {
		t.Fatal("expected error")
	}
}

func TestNormalizeLevel(t *testing.T) {
	for in, want := range map[string]string{"": "info", "WARNING": "warn", " Debug ": "debug"} {
		if got := normalizeLevel(in); got != want {
			t.Errorf("normalizeLevel(%q) = %q, want %q", in, got, want)
		}
	}
}
