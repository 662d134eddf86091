package batch

import (
	"fmt"
	"os"
	"strings"
	"time"
)

const (
	reportTimeFormat = "2006-01-02 15:04:05"
	reportSeparator  = "----------------------------------------"
)

// WriteFailedList persists the paths that failed extraction, one absolute
// path per line under a timestamped header comment.
func WriteFailedList(path string, failedPaths []string) error {
	var b strings.Builder
	fmt.Fprintf(&b, "# 提取失败清单\n")
	fmt.Fprintf(&b, "# 生成时间: %s\n", time.Now().Format(reportTimeFormat))
	fmt.Fprintf(&b, "# 共 %d 个文件\n\n", len(failedPaths))
	for _, p := range failedPaths {
		b.WriteString(p)
		b.WriteString("\n")
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write failed list: %w", err)
	}
	return nil
}

// WriteDuplicateReport persists one block per duplicate: invoice number,
// duplicate path, original path, and where the file was moved (or that the
// move failed), each block closed by a dashed separator.
func WriteDuplicateReport(path, quarantineDir string, records []DuplicateRecord) error {
	var b strings.Builder
	fmt.Fprintf(&b, "# 重复发票清单\n")
	fmt.Fprintf(&b, "# 生成时间: %s\n", time.Now().Format(reportTimeFormat))
	fmt.Fprintf(&b, "# 共 %d 张重复发票\n", len(records))
	fmt.Fprintf(&b, "# 隔离目录: %s\n\n", quarantineDir)
	for _, r := range records {
		fmt.Fprintf(&b, "发票号码: %s\n", r.InvoiceNumber)
		fmt.Fprintf(&b, "重复文件: %s\n", r.Path)
		fmt.Fprintf(&b, "原始文件: %s\n", r.OriginalPath)
		if r.RelocatedPath != "" {
			fmt.Fprintf(&b, "已移动至: %s\n", r.RelocatedPath)
		} else {
			fmt.Fprintf(&b, "移动失败, 文件保留原位\n")
		}
		b.WriteString(reportSeparator)
		b.WriteString("\n")
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write duplicate report: %w", err)
	}
	return nil
}
