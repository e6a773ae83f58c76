// Package task models a unit of work: an ordered set of file-read tasks, each
// naming one primary data file, the delete files that apply to it and the
// row range to read.
package task

import "fmt"

// FileFormat is the physical format of a data or delete file.
type FileFormat string

const (
	FormatAvro    FileFormat = "avro"
	FormatParquet FileFormat = "parquet"
	FormatORC     FileFormat = "orc"
)

// DeleteContent identifies how a delete file addresses rows.
type DeleteContent int

const (
	PositionDeletes DeleteContent = iota + 1
	EqualityDeletes
)

func (c DeleteContent) String() string {
	switch c {
	case PositionDeletes:
		return "position"
	case EqualityDeletes:
		return "equality"
	}
	return fmt.Sprintf("content(%d)", int(c))
}

// DataFile is a physical file holding table rows.
type DataFile struct {
	Path          string     `msgpack:"path"`
	Format        FileFormat `msgpack:"format"`
	RecordCount   int64      `msgpack:"record_count"`
	FileSizeBytes int64      `msgpack:"file_size_bytes"`
	// KeyMetadata is the opaque blob the encryption manager needs to open
	// the file. Empty for plaintext files.
	KeyMetadata []byte `msgpack:"key_metadata,omitempty"`
}

// DeleteFile is a physical file holding row deletes for one or more data files.
type DeleteFile struct {
	Path             string        `msgpack:"path"`
	Format           FileFormat    `msgpack:"format"`
	Content          DeleteContent `msgpack:"content"`
	RecordCount      int64         `msgpack:"record_count"`
	KeyMetadata      []byte        `msgpack:"key_metadata,omitempty"`
	EqualityFieldIDs []int         `msgpack:"equality_ids,omitempty"`
}

// Kind distinguishes file-backed tasks from synthetic in-memory ones.
type Kind int

const (
	// KindFile tasks read a byte range of a physical data file.
	KindFile Kind = iota
	// KindData tasks carry their rows inline and have no backing file.
	KindData
)

// FileScanTask is one file-read task.
type FileScanTask struct {
	Kind    Kind         `msgpack:"kind"`
	File    DataFile     `msgpack:"file"`
	Deletes []DeleteFile `msgpack:"deletes,omitempty"`

	// Start and Length select the byte range of File to read. A zero Length
	// means the whole file.
	Start  int64 `msgpack:"start"`
	Length int64 `msgpack:"length"`

	// Rows holds the inline rows of a KindData task, one field-name keyed
	// map per row.
	Rows []map[string]any `msgpack:"rows,omitempty"`

	// ResidualFilter is the row filter that remains after file pruning,
	// opaque to the reader and passed through to openers.
	ResidualFilter []byte `msgpack:"residual,omitempty"`

	Properties map[string]string `msgpack:"props,omitempty"`
}

// IsDataTask reports whether t is a synthetic in-memory task.
func (t *FileScanTask) IsDataTask() bool {
	return t.Kind == KindData
}

// Locations returns the primary file location followed by every delete file
// location, in task order. Data tasks have none.
func (t *FileScanTask) Locations() []string {
	if t.IsDataTask() {
		return nil
	}
	locs := make([]string, 0, 1+len(t.Deletes))
	locs = append(locs, t.File.Path)
	for _, d := range t.Deletes {
		locs = append(locs, d.Path)
	}
	return locs
}

func (t *FileScanTask) String() string {
	if t.IsDataTask() {
		return fmt.Sprintf("data task (%d rows)", len(t.Rows))
	}
	return fmt.Sprintf("%s [%d, +%d) with %d deletes", t.File.Path, t.Start, t.Length, len(t.Deletes))
}

// NewFileTask returns a task that reads the whole of file.
func NewFileTask(file DataFile, deletes ...DeleteFile) FileScanTask {
	return FileScanTask{Kind: KindFile, File: file, Deletes: deletes, Length: file.FileSizeBytes}
}

// NewDataTask returns a synthetic task over inline rows.
func NewDataTask(rows ...map[string]any) FileScanTask {
	return FileScanTask{Kind: KindData, Rows: rows}
}

// CombinedScanTask is a unit of work: tasks read together, in order, by one
// reader.
type CombinedScanTask struct {
	Tasks []FileScanTask `msgpack:"tasks"`
}

// Combine bundles tasks into a unit of work.
func Combine(tasks ...FileScanTask) CombinedScanTask {
	return CombinedScanTask{Tasks: tasks}
}

// FileCount returns the number of file-backed tasks.
func (c CombinedScanTask) FileCount() int {
	n := 0
	for i := range c.Tasks {
		if !c.Tasks[i].IsDataTask() {
			n++
		}
	}
	return n
}
