package pipeline

import (
	"bytes"
	"fmt"
	"log/slog"

	"github.com/spf13/viper"

	"github.com/HazeMiya/ai-2024/internal/config"
	"github.com/HazeMiya/ai-2024/internal/csvutil"
	"github.com/HazeMiya/ai-2024/internal/fileutil"
)

// Files holds the stage boundary file names.
type Files struct {
	Raw        string
	Filtered   string
	ISBN       string
	Wiki       string
	Classified string
	Geocoded   string
	JSON       string
}

// FilesFromConfig reads the files.* keys.
func FilesFromConfig() Files {
	return Files{
		Raw:        viper.GetString("files.raw"),
		Filtered:   viper.GetString("files.filtered"),
		ISBN:       viper.GetString("files.isbn"),
		Wiki:       viper.GetString("files.wiki"),
		Classified: viper.GetString("files.classified"),
		Geocoded:   viper.GetString("files.geocoded"),
		JSON:       viper.GetString("files.json"),
	}
}

// readStage loads a stage input; failures are StageInputErrors.
func readStage(path string) (*csvutil.Table, error) {
	t, err := csvutil.ReadFile(path)
	if err != nil {
		return nil, err
	}
	slog.Info("Read stage input", "file", path, "rows", t.Len())
	return t, nil
}

// writeStage writes a stage output unless it exists and overwriting is off.
func writeStage(path string, t *csvutil.Table) error {
	var buf bytes.Buffer
	if err := csvutil.Write(&buf, t); err != nil {
		return err
	}
	written, err := fileutil.WriteFileWithOverwrite(path, buf.Bytes(), 0644, config.OverwriteFiles)
	if err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if written {
		slog.Info("Wrote stage output", "file", path, "rows", t.Len())
	}
	return nil
}
