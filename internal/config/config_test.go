package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Helper function to reset pflag.CommandLine for testing
func resetFlags() {
	pflag.CommandLine = pflag.NewFlagSet(os.Args[0], pflag.ExitOnError)
	viper.Reset()
}

func clearEnvVars() {
	os.Unsetenv("FAPIAO_DIR")
	os.Unsetenv("FAPIAO_OUT")
	os.Unsetenv("FAPIAO_SAVETEXT")
	os.Unsetenv("FAPIAO_CLEAN")
	os.Unsetenv("FAPIAO_ERRORLOG")
	os.Unsetenv("FAPIAO_LOGLEVEL")
	os.Unsetenv("FAPIAO_MAXFILESIZE")
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.RootDir == "" {
		t.Error("DefaultConfig() RootDir should not be empty")
	}
	if cfg.LogLevel != DefaultLogLevel {
		t.Errorf("DefaultConfig() LogLevel = %v, want %v", cfg.LogLevel, DefaultLogLevel)
	}
	if cfg.MaxFileSize != DefaultMaxFileSize {
		t.Errorf("DefaultConfig() MaxFileSize = %v, want %v", cfg.MaxFileSize, DefaultMaxFileSize)
	}
	if cfg.SaveDebugText || cfg.CleanOutputs || cfg.ErrorLog {
		t.Error("DefaultConfig() behavior toggles should default to off")
	}
}

func TestLoadFromFlags_DefaultConfig(t *testing.T) {
	originalArgs := os.Args
	defer func() {
		os.Args = originalArgs
		resetFlags()
		clearEnvVars()
	}()

	os.Args = []string{"fapiao"}
	resetFlags()
	clearEnvVars()

	cfg, err := LoadFromFlags()
	if err != nil {
		t.Fatalf("LoadFromFlags() unexpected error: %v", err)
	}

	if cfg.LogLevel != "info" {
		t.Errorf("LoadFromFlags() LogLevel = %v, want info", cfg.LogLevel)
	}
	if cfg.OutputDir != cfg.RootDir {
		t.Errorf("LoadFromFlags() OutputDir = %v, want RootDir %v", cfg.OutputDir, cfg.RootDir)
	}
	if !filepath.IsAbs(cfg.RootDir) {
		t.Errorf("LoadFromFlags() RootDir = %v, want absolute path", cfg.RootDir)
	}
}

func TestLoadFromFlags_CustomFlags(t *testing.T) {
	originalArgs := os.Args
	defer func() {
		os.Args = originalArgs
		resetFlags()
		clearEnvVars()
	}()

	os.Args = []string{"fapiao", "--dir=/tmp/invoices", "--savetext", "--clean", "--loglevel=debug"}
	resetFlags()
	clearEnvVars()

	cfg, err := LoadFromFlags()
	if err != nil {
		t.Fatalf("LoadFromFlags() unexpected error: %v", err)
	}

	if cfg.RootDir != "/tmp/invoices" {
		t.Errorf("LoadFromFlags() RootDir = %v, want /tmp/invoices", cfg.RootDir)
	}
	if !cfg.SaveDebugText {
		t.Error("LoadFromFlags() SaveDebugText = false, want true")
	}
	if !cfg.CleanOutputs {
		t.Error("LoadFromFlags() CleanOutputs = false, want true")
	}
	if !cfg.IsDebug() {
		t.Error("LoadFromFlags() IsDebug() = false, want true")
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid defaults",
			mutate: func(c *Config) {},
		},
		{
			name:    "empty root dir",
			mutate:  func(c *Config) { c.RootDir = "" },
			wantErr: "cannot be empty",
		},
		{
			name:    "non-positive max file size",
			mutate:  func(c *Config) { c.MaxFileSize = 0 },
			wantErr: "must be positive",
		},
		{
			name:    "invalid log level",
			mutate:  func(c *Config) { c.LogLevel = "verbose" },
			wantErr: "invalid log level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_ArtifactPaths(t *testing.T) {
	cfg := &Config{OutputDir: "/out"}

	if got := cfg.FailedListPath(); got != filepath.Join("/out", FailedListName) {
		t.Errorf("FailedListPath() = %v", got)
	}
	if got := cfg.DuplicateReportPath(); got != filepath.Join("/out", DuplicateReportName) {
		t.Errorf("DuplicateReportPath() = %v", got)
	}
	if got := cfg.SpreadsheetPath(); got != filepath.Join("/out", SpreadsheetName) {
		t.Errorf("SpreadsheetPath() = %v", got)
	}
	if got := cfg.DebugTextDir(); got != filepath.Join("/out", DebugTextDirName) {
		t.Errorf("DebugTextDir() = %v", got)
	}
}
