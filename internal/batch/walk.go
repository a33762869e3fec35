// Package batch walks a date-partitioned tree of heatmap files and
// streams every decoded record into a storage sink.
package batch

import (
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"
)

// maxSlot is the highest half-hour index in a day (23:30 UTC).
const maxSlot = 47

// isDateDir reports whether name is a YYYY-MM-DD partition name.
func isDateDir(name string) bool {
	if len(name) != 10 {
		return false
	}
	_, err := time.Parse("2006-01-02", name)
	return err == nil
}

// slotNumber parses a half-hour slot basename: decimal digits only,
// value in [0, 47]. Leading zeros are accepted ("07" names slot 7).
func slotNumber(name string) (int, bool) {
	if name == "" {
		return 0, false
	}
	for _, c := range name {
		if c < '0' || c > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(name)
	if err != nil || n > maxSlot {
		return 0, false
	}
	return n, true
}

// partitions lists the date partitions under root in lexicographic
// order, which is chronological for ISO dates. A root with no date
// children is itself the single partition.
func partitions(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}

	var dirs []string
	for _, e := range entries {
		if e.IsDir() && isDateDir(e.Name()) {
			dirs = append(dirs, filepath.Join(root, e.Name()))
		}
	}
	if len(dirs) == 0 {
		return []string{root}, nil
	}
	sort.Strings(dirs)
	return dirs, nil
}

// slotFiles lists the half-hour files in one partition, ascending by
// slot number. Anything that is not a whole file named 0-47 is
// ignored.
func slotFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	type slot struct {
		n    int
		path string
	}
	var slots []slot
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if n, ok := slotNumber(e.Name()); ok {
			slots = append(slots, slot{n: n, path: filepath.Join(dir, e.Name())})
		}
	}
	sort.Slice(slots, func(i, j int) bool { return slots[i].n < slots[j].n })

	files := make([]string, len(slots))
	for i, s := range slots {
		files[i] = s.path
	}
	return files, nil
}
