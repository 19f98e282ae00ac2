package provider

import "testing"

func TestScanPipeRows(t *testing.T) {
	text := "Some preamble\n" +
		"| Ticker | Name | Holdings |\n" +
		"|---|---|---|\n" +
		"| MSTR | Strategy | 640,000 |\n" +
		"  | INDENTED | row | skipped |\n" +
		"| SHORT | row |\n" +
		"no pipes here\n"

	rows := scanPipeRows(text, pipeTableOptions{
		minColumns: 3,
		skipRow:    func(c []string) bool { return c[0] == "Ticker" },
	})
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d: %v", len(rows), rows)
	}
	if rows[1][0] != "MSTR" || rows[1][2] != "640,000" {
		t.Fatalf("unexpected cells: %v", rows[1])
	}
	// The separator line survives the header predicate; dropping it is the
	// column decoder's job, same as the upstream behaviour.
	if rows[0][0] != "---" {
		t.Fatalf("expected separator row kept, got %v", rows[0])
	}
}

func TestScanPipeRowsStripRank(t *testing.T) {
	text := "| 1 | Forward Industries | Holding Co | +2% | 6,822,000 SOL | $1.4b | 1.2% | link |\n" +
		"| Upexi | Holding Co | - | 2,018,419 SOL | $0.4b | 0.4% | link | extra |\n"

	rows := scanPipeRows(text, pipeTableOptions{minColumns: 8, stripRank: true})
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0][0] != "Forward Industries" {
		t.Fatalf("rank column should be stripped, got %v", rows[0])
	}
	if rows[1][0] != "Upexi" {
		t.Fatalf("row without rank should be untouched, got %v", rows[1])
	}
}

func TestIsAllDigits(t *testing.T) {
	tests := map[string]bool{"1": true, "42": true, "": false, "1a": false, "-1": false, "1.5": false}
	for input, expected := range tests {
		if got := isAllDigits(input); got != expected {
			t.Fatalf("%q: expected %v, got %v", input, expected, got)
		}
	}
}
