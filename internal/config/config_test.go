package config

import (
	"errors"
	"fmt"
	"os"
	"testing"
)

var gateVars = []string{"SNOWFLAKE_ACCOUNT", "SNOWFLAKE_USER", "SNOWFLAKE_ROLE", "SNOWFLAKE_WAREHOUSE"}

func TestLoadGate_RequiredVarsMissing(t *testing.T) {
	for _, configVar := range gateVars {
		os.Setenv(configVar, "test-value")
	}
	for _, configVar := range gateVars {
		t.Run(configVar, func(t *testing.T) {
			os.Unsetenv(configVar)
			defer os.Setenv(configVar, "test-value")
			_, err := LoadGate()
			if err == nil {
				t.Fatal("expected error")
			}
			var missing *ErrMissingRequiredEnvVar
			if !errors.As(err, &missing) {
				t.Fatalf("expected ErrMissingRequiredEnvVar, got %s", err)
			}
			if missing.Name != configVar {
				t.Fatalf("expected error for %q, got %q", configVar, missing.Name)
			}
		})
	}
}

func TestLoadGate_ValidConfig(t *testing.T) {
	testValue := "test-value"
	for _, configVar := range gateVars {
		os.Setenv(configVar, testValue)
	}
	os.Unsetenv("SNOWFLAKE_PASSWORD")

	cfg, err := LoadGate()
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if cfg.Account != testValue || cfg.User != testValue || cfg.Role != testValue || cfg.Warehouse != testValue {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.Database != "EPL" {
		t.Fatalf("expected fixed database EPL, got %q", cfg.Database)
	}
	if cfg.Password != "" {
		t.Fatal("expected empty password when SNOWFLAKE_PASSWORD unset")
	}
}

var dispatcherVars = []string{"GITHUB_OWNER", "GITHUB_REPO", "GITHUB_PAT"}

func TestLoadDispatcher_RequiredVarsMissing(t *testing.T) {
	for _, configVar := range dispatcherVars {
		os.Setenv(configVar, "test-value")
	}
	for _, configVar := range dispatcherVars {
		t.Run(configVar, func(t *testing.T) {
			os.Unsetenv(configVar)
			defer os.Setenv(configVar, "test-value")
			_, err := LoadDispatcher()
			if err == nil {
				t.Fatal("expected error")
			}
			var varName string
			c, _ := fmt.Sscanf(
				err.Error(),
				"required environment variable %q is not set",
				&varName,
			)
			if c != 1 || varName != configVar {
				t.Fatalf("expected error naming %q, got %q", configVar, err)
			}
		})
	}
}

func TestLoadDispatcher_Defaults(t *testing.T) {
	for _, configVar := range dispatcherVars {
		os.Setenv(configVar, "test-value")
	}
	os.Unsetenv("PORT")
	os.Unsetenv("PATH_BEGINS")
	os.Unsetenv("PATH_ENDS")
	os.Unsetenv("GITHUB_API_BASE_URL")

	cfg, err := LoadDispatcher()
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if cfg.Port != "8080" {
		t.Fatalf("expected default port 8080, got %q", cfg.Port)
	}
	if cfg.PathBegins != "" || cfg.PathEnds != "" {
		t.Fatal("expected path filters to default to empty")
	}
	if cfg.APIBaseURL != "https://api.github.com" {
		t.Fatalf("unexpected API base URL: %q", cfg.APIBaseURL)
	}
}

func clearSplitterEnv() {
	for _, v := range []string{
		"EPL_STORAGE_SERVICE_URI", "EPL_STORAGE_ACCESS_KEY", "EPL_STORAGE_SECRET_KEY",
		"EPL_STORAGE", "EPL_STORAGE_CONTAINER", "ACCEPTED_SHEETS", "PORT",
	} {
		os.Unsetenv(v)
	}
}

func TestLoadSplitter_ServiceURI(t *testing.T) {
	clearSplitterEnv()
	os.Setenv("EPL_STORAGE_SERVICE_URI", "https://epldatastore01:9000")
	os.Setenv("EPL_STORAGE_ACCESS_KEY", "ak")
	os.Setenv("EPL_STORAGE_SECRET_KEY", "sk")
	defer clearSplitterEnv()

	cfg, err := LoadSplitter()
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if !cfg.UseSSL {
		t.Fatal("expected SSL for https service URI")
	}
	if got := cfg.Endpoint(); got != "epldatastore01:9000" {
		t.Fatalf("Endpoint() = %q", got)
	}
	if cfg.Container != "ingestion" {
		t.Fatalf("expected default container ingestion, got %q", cfg.Container)
	}
	if cfg.AcceptedSheets != nil {
		t.Fatalf("expected no accepted-sheets restriction, got %v", cfg.AcceptedSheets)
	}
}

func TestLoadSplitter_ServiceURIMissingCredentials(t *testing.T) {
	clearSplitterEnv()
	os.Setenv("EPL_STORAGE_SERVICE_URI", "https://epldatastore01:9000")
	defer clearSplitterEnv()

	if _, err := LoadSplitter(); err == nil {
		t.Fatal("expected error when access key missing")
	}
}

func TestLoadSplitter_ConnectionStringFallback(t *testing.T) {
	clearSplitterEnv()
	os.Setenv("EPL_STORAGE", "endpoint=http://localhost:9000;accessKey=ak;secretKey=sk;useSSL=false")
	defer clearSplitterEnv()

	cfg, err := LoadSplitter()
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if cfg.UseSSL {
		t.Fatal("expected SSL disabled")
	}
	if got := cfg.Endpoint(); got != "localhost:9000" {
		t.Fatalf("Endpoint() = %q", got)
	}
}

func TestLoadSplitter_NotConfigured(t *testing.T) {
	clearSplitterEnv()

	_, err := LoadSplitter()
	var notConfigured *ErrStorageNotConfigured
	if !errors.As(err, &notConfigured) {
		t.Fatalf("expected ErrStorageNotConfigured, got %v", err)
	}
}

func TestLoadSplitter_AcceptedSheets(t *testing.T) {
	clearSplitterEnv()
	os.Setenv("EPL_STORAGE", "endpoint=localhost:9000;accessKey=ak;secretKey=sk")
	os.Setenv("ACCEPTED_SHEETS", "Solution, Dispatch Plan")
	defer clearSplitterEnv()

	cfg, err := LoadSplitter()
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if len(cfg.AcceptedSheets) != 2 || cfg.AcceptedSheets[0] != "Solution" || cfg.AcceptedSheets[1] != "Dispatch Plan" {
		t.Fatalf("unexpected accepted sheets: %v", cfg.AcceptedSheets)
	}
}
