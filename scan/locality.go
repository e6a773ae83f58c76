package scan

import "sync/atomic"

// FileBlock describes the byte range of the file currently being read.
type FileBlock struct {
	Location string
	Start    int64
	Length   int64
}

// BlockHolder is an advisory, process-wide record of the input file being
// read, for execution engines that expose it to user code.
type BlockHolder struct {
	cur atomic.Pointer[FileBlock]
}

// InputFileBlock is set by readers when a file-backed task is opened and
// cleared when the reader that set it is closed.
var InputFileBlock = &BlockHolder{}

// Set records the current block and returns it for a later Unset.
func (h *BlockHolder) Set(location string, start, length int64) *FileBlock {
	b := &FileBlock{Location: location, Start: start, Length: length}
	h.cur.Store(b)
	return b
}

// Unset clears the holder if it still carries b, the block returned by Set.
// A block set since by another reader is left in place.
func (h *BlockHolder) Unset(b *FileBlock) bool {
	if b == nil {
		return false
	}
	return h.cur.CompareAndSwap(b, nil)
}

// Get returns the current block and whether one is set.
func (h *BlockHolder) Get() (FileBlock, bool) {
	b := h.cur.Load()
	if b == nil {
		return FileBlock{}, false
	}
	return *b, true
}
