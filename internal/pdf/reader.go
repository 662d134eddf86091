package pdf

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// ReadResult holds the text recovered from one invoice PDF.
type ReadResult struct {
	Path     string
	NumPages int
	Pages    []string // one entry per page, empty where extraction failed
	Text     string   // all pages joined
	Size     int64
}

// Reader extracts per-page text from invoice PDFs. A page that fails to
// yield text contributes an empty string and is logged; only a file that
// cannot be opened at all is an error.
type Reader struct {
	maxFileSize int64
	maxTextSize int
	validate    bool
	logger      *slog.Logger
}

// NewReader creates a PDF reader. When validate is set, each file goes
// through a relaxed pdfcpu structural validation first; validation findings
// are logged but never block extraction.
func NewReader(maxFileSize int64, validate bool, logger *slog.Logger) *Reader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reader{
		maxFileSize: maxFileSize,
		maxTextSize: 10 * 1024 * 1024,
		validate:    validate,
		logger:      logger,
	}
}

// ExtractText returns the combined page text of the PDF at path.
func (r *Reader) ExtractText(path string) (string, error) {
	res, err := r.ReadFile(path)
	if err != nil {
		return "", err
	}
	return res.Text, nil
}

// ReadFile opens the PDF at path and extracts text page by page.
func (r *Reader) ReadFile(path string) (*ReadResult, error) {
	if path == "" {
		return nil, fmt.Errorf("path cannot be empty")
	}

	fileInfo, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("file does not exist: %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("cannot access file: %w", err)
	}
	if err := r.validateFile(path, fileInfo); err != nil {
		return nil, err
	}

	if r.validate {
		conf := model.NewDefaultConfiguration()
		conf.ValidationMode = model.ValidationRelaxed
		if err := api.ValidateFile(path, conf); err != nil {
			r.logger.Warn("pdf failed structural validation, extracting anyway",
				"path", path, "error", err)
		}
	}

	f, pdfReader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	result := &ReadResult{
		Path:     path,
		NumPages: pdfReader.NumPage(),
		Size:     fileInfo.Size(),
	}

	var builder strings.Builder
	total := 0
	for pageNum := 1; pageNum <= pdfReader.NumPage(); pageNum++ {
		content := r.pageText(pdfReader, pageNum)
		if content == "" {
			r.logger.Debug("page yielded no text", "path", path, "page", pageNum)
		}

		if total+len(content) > r.maxTextSize {
			content = content[:r.maxTextSize-total]
		}
		result.Pages = append(result.Pages, content)
		builder.WriteString(content)
		builder.WriteString("\n")
		total += len(content)
		if total >= r.maxTextSize {
			break
		}
	}

	result.Text = builder.String()
	return result, nil
}

// pageText extracts one page's text. ledongthuc/pdf panics on some malformed
// content streams, so the page boundary doubles as a recovery boundary.
func (r *Reader) pageText(pdfReader *pdf.Reader, pageNum int) (content string) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Warn("panic while extracting page text", "page", pageNum, "panic", rec)
			content = ""
		}
	}()

	page := pdfReader.Page(pageNum)
	if page.V.IsNull() {
		return ""
	}
	content, err := page.GetPlainText(nil)
	if err != nil {
		return ""
	}
	return content
}

// validateFile performs basic checks before any parsing is attempted.
func (r *Reader) validateFile(path string, fileInfo os.FileInfo) error {
	if fileInfo.IsDir() {
		return fmt.Errorf("path is a directory, not a file: %s", path)
	}
	if !strings.HasSuffix(strings.ToLower(path), ".pdf") {
		return fmt.Errorf("file is not a PDF: %s", path)
	}
	if fileInfo.Size() > r.maxFileSize {
		return fmt.Errorf("file too large: %d bytes (max: %d bytes)", fileInfo.Size(), r.maxFileSize)
	}
	return nil
}
