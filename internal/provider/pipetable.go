package provider

import "strings"

// The read-proxy renders upstream pages as Markdown, so every flow and
// treasury feed arrives as a pipe-delimited pseudo-table. All five parsers
// share this one row tokenizer to keep the fragile part in a single place.

// pipeTableOptions controls which rows of a pipe table are accepted.
type pipeTableOptions struct {
	// minColumns rejects short rows (separator noise, captions).
	minColumns int
	// skipRow filters header rows by their already-split cells.
	skipRow func(cells []string) bool
	// stripRank drops a purely numeric leading cell (some feeds prepend a
	// rank column) and then re-applies minColumns-1.
	stripRank bool
}

// scanPipeRows returns the cell rows of every accepted pipe-delimited line
// in text. Cells are whitespace-trimmed; lines not starting with a pipe are
// ignored.
func scanPipeRows(text string, opts pipeTableOptions) [][]string {
	var rows [][]string
	for _, line := range strings.Split(text, "\n") {
		if !strings.HasPrefix(line, "|") {
			continue
		}
		cells := splitPipeCells(line)
		if len(cells) < opts.minColumns {
			continue
		}
		if opts.skipRow != nil && opts.skipRow(cells) {
			continue
		}
		if opts.stripRank && isAllDigits(cells[0]) {
			cells = cells[1:]
			if len(cells) < opts.minColumns-1 {
				continue
			}
		}
		rows = append(rows, cells)
	}
	return rows
}

func splitPipeCells(line string) []string {
	line = strings.TrimRight(line, "\r")
	line = strings.Trim(line, "|")
	parts := strings.Split(line, "|")
	cells := make([]string, len(parts))
	for i, p := range parts {
		cells[i] = strings.TrimSpace(p)
	}
	return cells
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
