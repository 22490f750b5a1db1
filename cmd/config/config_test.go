package config

import (
	"os"
	"testing"

	"github.com/spf13/viper"

	"github.com/ceppelli/solana-gossip-tui/internal/testutil"
)

func TestLoadConfigDefault(t *testing.T) {
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd failed: %v", err)
	}
	defer os.Chdir(wd)
	viper.Reset()

	if err := os.Chdir(".."); err != nil {
		t.Fatalf("chdir failed: %v", err)
	}
	LoadConfig("")
	if AppConfig.Gossip.Entrypoint != "141.98.219.218:8000" {
		t.Fatalf("unexpected entrypoint: %s", AppConfig.Gossip.Entrypoint)
	}
}

func TestLoadConfigOverride(t *testing.T) {
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd failed: %v", err)
	}
	defer os.Chdir(wd)
	viper.Reset()

	if err := os.Chdir(".."); err != nil {
		t.Fatalf("chdir failed: %v", err)
	}
	LoadConfig("bootstrap")
	if AppConfig.Gossip.Entrypoint != "127.0.0.1:8001" {
		t.Fatalf("expected overridden entrypoint, got %s", AppConfig.Gossip.Entrypoint)
	}
	if AppConfig.Logging.Level != "debug" {
		t.Fatalf("expected overridden log level")
	}
}

func TestLoadConfigSandbox(t *testing.T) {
	sb, err := testutil.NewSandbox()
	if err != nil {
		t.Fatalf("NewSandbox failed: %v", err)
	}
	defer sb.Cleanup()

	if err := os.Mkdir(sb.Path("config"), 0700); err != nil {
		t.Fatalf("Mkdir failed: %v", err)
	}

	data := []byte("gossip:\n  entrypoint: 10.0.0.1:9000\n  shred_version: 7\n")
	if err := sb.WriteFile("config/default.yaml", data, 0600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd failed: %v", err)
	}
	defer os.Chdir(wd)
	viper.Reset()

	if err := os.Chdir(sb.Root); err != nil {
		t.Fatalf("chdir failed: %v", err)
	}
	LoadConfig("")

	if AppConfig.Gossip.Entrypoint != "10.0.0.1:9000" {
		t.Fatalf("expected entrypoint 10.0.0.1:9000, got %s", AppConfig.Gossip.Entrypoint)
	}
	if AppConfig.Gossip.ShredVersion != 7 {
		t.Fatalf("expected shred version 7, got %d", AppConfig.Gossip.ShredVersion)
	}
}
