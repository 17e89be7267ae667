package lint

import "sort"

// LineIndex maps byte offsets to 1-based line and column numbers. It handles LF and
// CRLF line endings.
type LineIndex struct {
	starts []int
	size   int
}

// NewLineIndex builds the index for content.
func NewLineIndex(content []byte) *LineIndex {
	li := &LineIndex{starts: []int{0}, size: len(content)}
	for idx, char := range content {
		if char == '\n' {
			li.starts = append(li.starts, idx+1)
		}
	}
	return li
}

// Count returns the number of lines. Empty content has one empty line.
func (li *LineIndex) Count() int { return len(li.starts) }

// Position converts a byte offset to 1-based line and column numbers. Columns count
// bytes. Offsets past the end clamp to the end of content; negative offsets yield
// (0, 0).
func (li *LineIndex) Position(offset int) (line, col int) {
	if offset < 0 {
		return 0, 0
	}
	offset = min(offset, li.size)

	idx := sort.Search(len(li.starts), func(i int) bool {
		return li.starts[i] > offset
	}) - 1

	return idx + 1, offset - li.starts[idx] + 1
}

// LineContent returns the 1-based line without its line terminator, or nil when out
// of range.
func (li *LineIndex) LineContent(content []byte, line int) []byte {
	if line < 1 || line > len(li.starts) || len(content) != li.size {
		return nil
	}

	start := li.starts[line-1]
	end := li.size
	if line < len(li.starts) {
		end = li.starts[line] - 1
	}
	if end > start && content[end-1] == '\r' {
		end--
	}
	return content[start:end]
}
