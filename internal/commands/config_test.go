package commands

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/openxai/openxai-chat/internal/config"
)

func TestConfig_Show(t *testing.T) {
	env := newTestEnv(t)
	t.Setenv(config.EnvEndpoint, "https://chat.example/api/chat")
	env.cfg.RequestTimeout = 45

	if err := env.run("config"); err != nil {
		t.Fatalf("run: %v", err)
	}

	out := env.stdout.String()
	for _, want := range []string{
		"Configuration",
		"config.json",
		"https://chat.example/api/chat",
		"45s",
		"tokyonight",
		"monokai",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestConfig_ShowNoTimeout(t *testing.T) {
	env := newTestEnv(t)

	if err := env.run("config"); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(env.stdout.String(), "none") {
		t.Errorf("zero timeout should show as none:\n%s", env.stdout.String())
	}
}

func TestConfig_Init(t *testing.T) {
	env := newTestEnv(t)
	path, err := config.GetConfigPath()
	if err != nil {
		t.Fatal(err)
	}

	if err := env.run("config", "init"); err != nil {
		t.Fatalf("init: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config file not written: %v", err)
	}
	if !strings.Contains(env.stdout.String(), "Wrote "+path) {
		t.Errorf("stdout = %q", env.stdout.String())
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Endpoint != config.DefaultEndpoint {
		t.Errorf("Endpoint = %q", cfg.Endpoint)
	}

	if err := env.run("config", "init"); err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Errorf("second init err = %v, want already exists", err)
	}

	if err := os.WriteFile(path, []byte(`{"endpoint":"http://other/chat"}`), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := env.run("config", "init", "--force"); err != nil {
		t.Fatalf("init --force: %v", err)
	}
	cfg, _ = config.LoadConfig()
	if cfg.Endpoint != config.DefaultEndpoint {
		t.Errorf("--force did not overwrite, Endpoint = %q", cfg.Endpoint)
	}
	if filepath.Base(path) != "config.json" {
		t.Errorf("unexpected config path %q", path)
	}
}

func TestConfig_Themes(t *testing.T) {
	env := newTestEnv(t)

	if err := env.run("config", "themes"); err != nil {
		t.Fatalf("run: %v", err)
	}
	out := env.stdout.String()
	for _, want := range []string{"dark", "tokyo-night", "notty", "tokyonight", "catppuccin", "chalk"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
