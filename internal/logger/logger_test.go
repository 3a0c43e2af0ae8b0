package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog/log"
)

func TestInitRejectsUnknownLevel(t *testing.T) {
	if err := Init(Config{Level: "loud"}); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}

func TestInitWritesToRotatedFile(t *testing.T) {
	dir := t.TempDir()
	if err := Init(Config{Level: "info", Format: "json", FileEnabled: true, FilePath: dir, ServiceName: "test"}); err != nil {
		t.Fatalf("Init: %v", err)
	}

	l := Component("suggestions")
	l.Info().Msg("hello")

	data, err := os.ReadFile(filepath.Join(dir, "stockinfo.log"))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if len(data) == 0 {
		t.Fatalf("expected log output in file")
	}

	// leave a quiet global logger for other tests in the binary
	_ = Init(Config{Level: "info"})
	log.Info().Msg("discarded")
}
