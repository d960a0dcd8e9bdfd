package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"expenseminimizer/internal/config"
)

func TestLoadEnvFileMissingIsIgnored(t *testing.T) {
	if err := LoadEnvFile(filepath.Join(t.TempDir(), "nope.env")); err != nil {
		t.Errorf("expected nil for missing file, got %v", err)
	}
}

func TestLoadEnvFileSetsVariables(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("EXPENSEMINIMIZER_TEST_VAR=hello\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Unsetenv("EXPENSEMINIMIZER_TEST_VAR") })

	if err := LoadEnvFile(path); err != nil {
		t.Fatalf("LoadEnvFile: %v", err)
	}
	if got := os.Getenv("EXPENSEMINIMIZER_TEST_VAR"); got != "hello" {
		t.Errorf("EXPENSEMINIMIZER_TEST_VAR = %q", got)
	}
}

func TestSetupLoggerHonoursLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := SetupLogger("warn", "cli", &buf)
	logger.Info("hidden")
	logger.Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info line should be filtered: %s", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "component=cli") {
		t.Errorf("unexpected output: %s", out)
	}
}

func TestLoadAndValidateConfigRunsExtraChecks(t *testing.T) {
	t.Setenv("STORE_BACKEND", "memory")
	t.Setenv("OPENAI_API_KEY", "")

	if _, err := LoadAndValidateConfig(); err != nil {
		t.Fatalf("base config should validate: %v", err)
	}
	_, err := LoadAndValidateConfig((*config.Config).ValidateProxy)
	if err == nil || !strings.Contains(err.Error(), "OPENAI_API_KEY") {
		t.Errorf("expected missing key error, got %v", err)
	}
}

func TestGracefulShutdownStop(t *testing.T) {
	ctx, stop := GracefulShutdown(context.Background(), SetupLogger("error", "cli", &bytes.Buffer{}))
	stop()
	<-ctx.Done()
}
