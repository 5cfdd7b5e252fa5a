package common

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"
)

// WriteCrashFile writes a crash report for an unrecovered panic into dir and
// returns its path. The report is echoed to stderr when the file cannot be written.
func WriteCrashFile(dir string, panicVal any, stackTrace string, now time.Time) (string, error) {
	var report bytes.Buffer

	report.WriteString("=== INTRINSIC CRASH REPORT ===\n")
	fmt.Fprintf(&report, "Time: %s\n", now.Format(time.RFC3339))
	fmt.Fprintf(&report, "Version: %s\n\n", GetFullVersion())

	report.WriteString("=== PANIC VALUE ===\n")
	fmt.Fprintf(&report, "%v\n\n", panicVal)

	report.WriteString("=== STACK TRACE ===\n")
	report.WriteString(stackTrace)
	report.WriteString("\n")

	report.WriteString("=== SYSTEM INFO ===\n")
	fmt.Fprintf(&report, "GOOS: %s\nGOARCH: %s\nGo: %s\n", runtime.GOOS, runtime.GOARCH, runtime.Version())
	report.WriteString("=== END CRASH REPORT ===\n")

	if err := os.MkdirAll(dir, 0755); err != nil {
		fmt.Fprint(os.Stderr, report.String())
		return "", fmt.Errorf("failed to create crash directory: %w", err)
	}

	crashPath := filepath.Join(dir, fmt.Sprintf("crash-%s.log", now.Format("2006-01-02T15-04-05")))
	if err := os.WriteFile(crashPath, report.Bytes(), 0644); err != nil {
		fmt.Fprint(os.Stderr, report.String())
		return "", fmt.Errorf("failed to write crash file: %w", err)
	}

	return crashPath, nil
}
