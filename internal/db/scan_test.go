package db

import (
	"strings"
	"testing"
)

// countingRow records how many destinations a scan helper binds so the
// column lists and scan targets can't drift apart.
type countingRow struct {
	bound int
}

func (r *countingRow) Scan(dest ...interface{}) error {
	r.bound = len(dest)
	return nil
}

func columnCount(columns string) int {
	return len(strings.Split(columns, ","))
}

func TestAssetScanMatchesColumns(t *testing.T) {
	row := &countingRow{}
	if _, err := scanAsset(row); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if want := columnCount(assetColumns); row.bound != want {
		t.Errorf("asset scan binds %d targets for %d columns", row.bound, want)
	}
}

func TestJobScanMatchesColumns(t *testing.T) {
	row := &countingRow{}
	if _, err := scanJob(row); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if want := columnCount(jobColumns); row.bound != want {
		t.Errorf("job scan binds %d targets for %d columns", row.bound, want)
	}
}
