package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// Default values
	DefaultLogLevel    = "info"
	DefaultMaxFileSize = 100 * 1024 * 1024 // 100MB

	// Fixed artifact names, created under the output directory
	QuarantineDirName   = "重复发票"
	DebugTextDirName    = "提取文本"
	FailedListName      = "提取失败清单.txt"
	DuplicateReportName = "重复发票清单.txt"
	SpreadsheetName     = "发票汇总.xlsx"
)

// Config holds all configuration for a batch extraction run.
type Config struct {
	// RootDir is the directory scanned for invoice PDFs.
	RootDir string
	// OutputDir receives artifacts (reports, spreadsheet, debug text).
	// Defaults to RootDir.
	OutputDir string

	// Behavior toggles
	SaveDebugText bool // persist each document's raw extracted text
	CleanOutputs  bool // remove previous artifacts before the run
	ErrorLog      bool // additionally write the log to a file in OutputDir
	ValidatePDF   bool // pdfcpu structural pre-check per file

	// Application configuration
	LogLevel    string
	MaxFileSize int64
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	currentDir, err := os.Getwd()
	if err != nil {
		currentDir = "."
	}
	return &Config{
		RootDir:     currentDir,
		LogLevel:    DefaultLogLevel,
		MaxFileSize: DefaultMaxFileSize,
	}
}

// LoadFromFlags parses command line flags and returns a configuration.
func LoadFromFlags() (*Config, error) {
	cfg := DefaultConfig()

	setupViperEnvironment(cfg)
	defineCommandLineFlags(cfg)
	bindFlagsToViper()
	setupUsageMessage()

	pflag.Parse()

	populateConfigFromViper(cfg)

	if cfg.RootDir != "" {
		if expandedPath, err := filepath.Abs(cfg.RootDir); err == nil {
			cfg.RootDir = expandedPath
		}
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = cfg.RootDir
	} else if expandedPath, err := filepath.Abs(cfg.OutputDir); err == nil {
		cfg.OutputDir = expandedPath
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// setupViperEnvironment configures viper with environment variables and defaults.
func setupViperEnvironment(cfg *Config) {
	viper.SetEnvPrefix("FAPIAO")
	viper.AutomaticEnv()

	viper.SetDefault("dir", cfg.RootDir)
	viper.SetDefault("out", cfg.OutputDir)
	viper.SetDefault("savetext", cfg.SaveDebugText)
	viper.SetDefault("clean", cfg.CleanOutputs)
	viper.SetDefault("errorlog", cfg.ErrorLog)
	viper.SetDefault("validate", cfg.ValidatePDF)
	viper.SetDefault("loglevel", cfg.LogLevel)
	viper.SetDefault("maxfilesize", cfg.MaxFileSize)
}

// defineCommandLineFlags sets up all command line flags.
func defineCommandLineFlags(cfg *Config) {
	pflag.String("dir", cfg.RootDir, "Directory containing invoice PDF files")
	pflag.String("out", cfg.OutputDir, "Output directory for reports and the spreadsheet (defaults to --dir)")
	pflag.Bool("savetext", cfg.SaveDebugText, "Save each document's raw extracted text for triage")
	pflag.Bool("clean", cfg.CleanOutputs, "Remove previous output artifacts before running")
	pflag.Bool("errorlog", cfg.ErrorLog, "Also write the run log to a file in the output directory")
	pflag.Bool("validate", cfg.ValidatePDF, "Run a relaxed structural validation on each PDF before extraction")
	pflag.String("loglevel", cfg.LogLevel, "Log level (debug, info, warn, error)")
	pflag.Int64("maxfilesize", cfg.MaxFileSize, "Maximum PDF file size in bytes")
}

// bindFlagsToViper binds command line flags to viper configuration.
func bindFlagsToViper() {
	_ = viper.BindPFlag("dir", pflag.Lookup("dir"))
	_ = viper.BindPFlag("out", pflag.Lookup("out"))
	_ = viper.BindPFlag("savetext", pflag.Lookup("savetext"))
	_ = viper.BindPFlag("clean", pflag.Lookup("clean"))
	_ = viper.BindPFlag("errorlog", pflag.Lookup("errorlog"))
	_ = viper.BindPFlag("validate", pflag.Lookup("validate"))
	_ = viper.BindPFlag("loglevel", pflag.Lookup("loglevel"))
	_ = viper.BindPFlag("maxfilesize", pflag.Lookup("maxfilesize"))
}

// setupUsageMessage configures the custom usage message.
func setupUsageMessage() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage of %s:\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nfapiao - batch extraction of Chinese VAT invoice PDFs\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		pflag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s --dir=/path/to/invoices                # scan and summarize\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --dir=/path/to/invoices --savetext     # keep raw text for triage\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --dir=/path/to/invoices --clean        # drop previous outputs first\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  FAPIAO_DIR          Invoice directory\n")
		fmt.Fprintf(os.Stderr, "  FAPIAO_OUT          Output directory\n")
		fmt.Fprintf(os.Stderr, "  FAPIAO_SAVETEXT     Save raw extracted text\n")
		fmt.Fprintf(os.Stderr, "  FAPIAO_CLEAN        Clean previous outputs\n")
		fmt.Fprintf(os.Stderr, "  FAPIAO_ERRORLOG     Write log file\n")
		fmt.Fprintf(os.Stderr, "  FAPIAO_LOGLEVEL     Log level\n")
		fmt.Fprintf(os.Stderr, "  FAPIAO_MAXFILESIZE  Maximum file size\n")
	}
}

// populateConfigFromViper fills the config struct with values from viper.
func populateConfigFromViper(cfg *Config) {
	cfg.RootDir = viper.GetString("dir")
	cfg.OutputDir = viper.GetString("out")
	cfg.SaveDebugText = viper.GetBool("savetext")
	cfg.CleanOutputs = viper.GetBool("clean")
	cfg.ErrorLog = viper.GetBool("errorlog")
	cfg.ValidatePDF = viper.GetBool("validate")
	cfg.LogLevel = viper.GetString("loglevel")
	cfg.MaxFileSize = viper.GetInt64("maxfilesize")
}

// Validate checks if the configuration is valid. Whether RootDir actually
// exists is deliberately left to the batch run, which reports a missing root
// as its one fatal error.
func (c *Config) Validate() error {
	if c.RootDir == "" {
		return errors.New("invoice directory cannot be empty")
	}
	if c.MaxFileSize <= 0 {
		return errors.New("maximum file size must be positive")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.LogLevel)
	}
	return nil
}

// IsDebug returns true if debug logging is enabled.
func (c *Config) IsDebug() bool {
	return c.LogLevel == "debug"
}

// FailedListPath returns where the failed-paths artifact is written.
func (c *Config) FailedListPath() string {
	return filepath.Join(c.OutputDir, FailedListName)
}

// DuplicateReportPath returns where the duplicate report is written.
func (c *Config) DuplicateReportPath() string {
	return filepath.Join(c.OutputDir, DuplicateReportName)
}

// SpreadsheetPath returns where the XLSX export is written.
func (c *Config) SpreadsheetPath() string {
	return filepath.Join(c.OutputDir, SpreadsheetName)
}

// DebugTextDir returns where raw extracted text is persisted.
func (c *Config) DebugTextDir() string {
	return filepath.Join(c.OutputDir, DebugTextDirName)
}

// String returns a string representation of the configuration.
func (c *Config) String() string {
	return fmt.Sprintf("Config{RootDir: %s, OutputDir: %s, SaveDebugText: %t, CleanOutputs: %t, ErrorLog: %t, LogLevel: %s, MaxFileSize: %d}",
		c.RootDir, c.OutputDir, c.SaveDebugText, c.CleanOutputs, c.ErrorLog, c.LogLevel, c.MaxFileSize)
}
