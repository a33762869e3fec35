package batch

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"heatmap_loader/internal/heatmap"
	"heatmap_loader/internal/storage"
)

// Orchestrator drives one batch: every partition, every slot file,
// decoded in deterministic order and streamed into the loader. File
// trouble stays file-local; a loader failure is fatal for the batch.
type Orchestrator struct {
	loader storage.Loader
	pipe   *heatmap.Pipeline
	log    *log.Logger
}

func NewOrchestrator(loader storage.Loader, pipe *heatmap.Pipeline, logger *log.Logger) *Orchestrator {
	return &Orchestrator{loader: loader, pipe: pipe, log: logger}
}

// Run processes every heatmap file under root and returns the number
// of records loaded. With cleanup enabled, source files are deleted
// only after the whole batch has loaded, so a failed batch never
// removes inputs; deletion failures log and continue.
func (o *Orchestrator) Run(ctx context.Context, root string, cleanup bool) (int, error) {
	info, err := os.Stat(root)
	if err != nil {
		o.log.Warn("directory does not exist", "dir", root)
		return 0, nil
	}
	if !info.IsDir() {
		o.log.Error("path is not a directory", "path", root)
		return 0, nil
	}

	dirs, err := partitions(root)
	if err != nil {
		return 0, fmt.Errorf("list partitions: %w", err)
	}

	total := 0
	var processed []string

	for _, dir := range dirs {
		o.log.Info("processing directory", "dir", dir)

		files, err := slotFiles(dir)
		if err != nil {
			o.log.Error("list files", "dir", dir, "err", err)
			continue
		}
		if len(files) == 0 {
			o.log.Warn("no valid data files found", "dir", dir)
			continue
		}

		for _, file := range files {
			records := o.pipe.ProcessFile(file)

			if len(records) > 0 {
				start := time.Now()
				if err := o.loader.AppendRows(ctx, records); err != nil {
					return total, fmt.Errorf("append rows from %s: %w", file, err)
				}
				o.log.Info("inserted records", "file", file,
					"records", len(records), "took", time.Since(start))
				total += len(records)
			}

			processed = append(processed, file)
		}
	}

	if cleanup && len(processed) > 0 {
		o.log.Info("cleaning up processed files", "count", len(processed))
		for _, file := range processed {
			if err := os.Remove(file); err != nil {
				o.log.Error("failed to delete file", "file", file, "err", err)
				continue
			}
			o.log.Debug("deleted file", "file", file)
		}
	}

	return total, nil
}
