package scan

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/hugr-lab/tablescan-go/encryption"
	"github.com/hugr-lab/tablescan-go/fileio"
	"github.com/hugr-lab/tablescan-go/task"
)

// FileTable maps file locations to decrypted input files. It is built once
// per unit of work and never modified.
type FileTable struct {
	files map[string]fileio.InputFile
}

// Len returns the number of resolved files.
func (t *FileTable) Len() int { return len(t.files) }

// Locations returns the resolved locations in sorted order.
func (t *FileTable) Locations() []string {
	locs := make([]string, 0, len(t.files))
	for loc := range t.files {
		locs = append(locs, loc)
	}
	sort.Strings(locs)
	return locs
}

// Lookup returns the file resolved for location.
func (t *FileTable) Lookup(location string) (fileio.InputFile, error) {
	f, ok := t.files[location]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrFileNotResolved, location)
	}
	return f, nil
}

// ForTask returns the primary data file of a file-backed task.
func (t *FileTable) ForTask(ft *task.FileScanTask) (fileio.InputFile, error) {
	if ft.IsDataTask() {
		return nil, fmt.Errorf("%w: data task has no backing file", ErrInvalidUsage)
	}
	return t.Lookup(ft.File.Path)
}

// ResolveFiles gathers the data and delete files of every task in unit,
// deduplicates them by location and decrypts them with exactly one
// DecryptBatch call. When two results share a location the first one is kept.
// A failed decryption fails the whole resolution.
func ResolveFiles(ctx context.Context, unit task.CombinedScanTask, io fileio.FileIO, mgr encryption.Manager, logger *slog.Logger) (*FileTable, error) {
	if logger == nil {
		logger = slog.Default()
	}

	seen := make(map[string]struct{})
	var batch []encryption.EncryptedInputFile
	add := func(location string, keyMetadata []byte) error {
		if _, ok := seen[location]; ok {
			return nil
		}
		seen[location] = struct{}{}
		in, err := io.NewInputFile(location)
		if err != nil {
			return withLocation(location, err)
		}
		batch = append(batch, encryption.EncryptedInputFile{File: in, KeyMetadata: keyMetadata})
		return nil
	}

	for i := range unit.Tasks {
		t := &unit.Tasks[i]
		if t.IsDataTask() {
			continue
		}
		if err := add(t.File.Path, t.File.KeyMetadata); err != nil {
			return nil, err
		}
		for _, d := range t.Deletes {
			if err := add(d.Path, d.KeyMetadata); err != nil {
				return nil, err
			}
		}
	}

	logger.Debug("Decrypting unit of work files", "tasks", len(unit.Tasks), "files", len(batch))
	decrypted, err := mgr.DecryptBatch(ctx, batch)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecryption, err)
	}
	if len(decrypted) != len(batch) {
		return nil, fmt.Errorf("%w: decrypted %d of %d files", ErrDecryption, len(decrypted), len(batch))
	}

	files := make(map[string]fileio.InputFile, len(decrypted))
	for _, f := range decrypted {
		if _, ok := files[f.Location()]; !ok {
			files[f.Location()] = f
		}
	}
	table := &FileTable{files: files}
	logger.Debug("Resolved unit of work files", "locations", table.Locations())
	return table, nil
}
