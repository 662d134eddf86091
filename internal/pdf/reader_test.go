package pdf

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewReader(t *testing.T) {
	r := NewReader(1024, false, nil)
	if r.maxFileSize != 1024 {
		t.Errorf("NewReader() maxFileSize = %v, want %v", r.maxFileSize, 1024)
	}
	if r.maxTextSize != 10*1024*1024 {
		t.Errorf("NewReader() maxTextSize = %v, want %v", r.maxTextSize, 10*1024*1024)
	}
	if r.logger == nil {
		t.Error("NewReader() logger should default when nil is passed")
	}
}

func TestReader_ReadFile_Validation(t *testing.T) {
	tempDir := t.TempDir()

	txtPath := filepath.Join(tempDir, "test.txt")
	if err := os.WriteFile(txtPath, []byte("This is not a PDF"), 0o644); err != nil {
		t.Fatalf("Failed to create test txt file: %v", err)
	}

	dirPath := filepath.Join(tempDir, "testdir")
	if err := os.Mkdir(dirPath, 0o755); err != nil {
		t.Fatalf("Failed to create test directory: %v", err)
	}

	largePath := filepath.Join(tempDir, "large.pdf")
	largeContent := make([]byte, 1024*1024+1)
	if err := os.WriteFile(largePath, largeContent, 0o644); err != nil {
		t.Fatalf("Failed to create large test file: %v", err)
	}

	brokenPath := filepath.Join(tempDir, "broken.pdf")
	if err := os.WriteFile(brokenPath, []byte("not actually pdf content"), 0o644); err != nil {
		t.Fatalf("Failed to create broken test file: %v", err)
	}

	tests := []struct {
		name    string
		path    string
		wantErr string
	}{
		{
			name:    "empty path",
			path:    "",
			wantErr: "path cannot be empty",
		},
		{
			name:    "nonexistent file",
			path:    filepath.Join(tempDir, "missing.pdf"),
			wantErr: "does not exist",
		},
		{
			name:    "directory instead of file",
			path:    dirPath,
			wantErr: "directory",
		},
		{
			name:    "wrong extension",
			path:    txtPath,
			wantErr: "not a PDF",
		},
		{
			name:    "file too large",
			path:    largePath,
			wantErr: "too large",
		},
		{
			name:    "unparseable content",
			path:    brokenPath,
			wantErr: "failed to open PDF",
		},
	}

	reader := NewReader(1024*1024, false, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := reader.ReadFile(tt.path)
			if err == nil {
				t.Fatalf("ReadFile(%q) expected error, got nil", tt.path)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("ReadFile(%q) error = %v, want containing %q", tt.path, err, tt.wantErr)
			}
		})
	}
}

func TestReader_ExtractText_PropagatesReadErrors(t *testing.T) {
	reader := NewReader(1024*1024, false, nil)
	if _, err := reader.ExtractText(filepath.Join(t.TempDir(), "missing.pdf")); err == nil {
		t.Error("ExtractText() expected error for missing file, got nil")
	}
}
