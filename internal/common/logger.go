package common

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/arbor/models"
)

// SetupLogger builds the arbor logger from [logging]. Console output is used
// when no output is configured so a misconfigured file writer never silences the run.
func SetupLogger(config *Config) arbor.ILogger {
	logger := arbor.NewLogger()

	timeFormat := config.Logging.TimeFormat
	if timeFormat == "" {
		timeFormat = "15:04:05"
	}

	hasFileOutput := false
	hasStdoutOutput := false
	for _, output := range config.Logging.Output {
		switch output {
		case "file":
			hasFileOutput = true
		case "stdout", "console":
			hasStdoutOutput = true
		}
	}

	if hasFileOutput && config.Logging.FilePath != "" {
		if err := os.MkdirAll(filepath.Dir(config.Logging.FilePath), 0755); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to create log directory: %v\n", err)
			hasStdoutOutput = true
		} else {
			logger = logger.WithFileWriter(models.WriterConfiguration{
				Type:       models.LogWriterTypeFile,
				FileName:   config.Logging.FilePath,
				TimeFormat: timeFormat,
				MaxSize:    10 * 1024 * 1024,
				MaxBackups: 3,
				TextOutput: true,
			})
		}
	}

	if hasStdoutOutput || !hasFileOutput {
		logger = logger.WithConsoleWriter(models.WriterConfiguration{
			Type:       models.LogWriterTypeConsole,
			TimeFormat: timeFormat,
			TextOutput: true,
		})
	}

	return logger.WithLevelFromString(config.Logging.Level)
}
