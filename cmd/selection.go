package main

import (
	"fmt"
	"path"
	"strconv"
	"strings"

	"github.com/olegkotsar/yomins-upload/logger"
	"github.com/olegkotsar/yomins-upload/model"
)

// selection is how the user picks files from a scan on the command line
type selection struct {
	all     bool
	globs   []string
	indexes string
}

// parseIndexes turns "1,3,5-7" into 0-based positions. Positions are 1-based
// as printed by scan and must be within 1..n.
func parseIndexes(s string, n int) ([]int, error) {
	var out []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		lo, hi := part, part
		if a, b, ok := strings.Cut(part, "-"); ok {
			lo, hi = a, b
		}

		from, err := strconv.Atoi(strings.TrimSpace(lo))
		if err != nil {
			return nil, fmt.Errorf("invalid index %q", part)
		}
		to, err := strconv.Atoi(strings.TrimSpace(hi))
		if err != nil {
			return nil, fmt.Errorf("invalid index %q", part)
		}
		if from > to {
			return nil, fmt.Errorf("invalid range %q", part)
		}
		if from < 1 || to > n {
			return nil, fmt.Errorf("index %q out of range 1..%d", part, n)
		}

		for i := from; i <= to; i++ {
			out = append(out, i-1)
		}
	}
	return out, nil
}

// matchGlob matches pattern against the relative path and the base name
func matchGlob(pattern string, e model.FileEntry) bool {
	if ok, _ := path.Match(pattern, e.RelPath); ok {
		return true
	}
	ok, _ := path.Match(pattern, e.Name)
	return ok
}

// applySelection marks entries of the batch. Selections add up, nothing is deselected.
func applySelection(batch *model.Batch, sel selection, log logger.Logger) error {
	if sel.all {
		if err := batch.SetAllSelected(true); err != nil {
			return err
		}
	}

	for _, pattern := range sel.globs {
		if _, err := path.Match(pattern, ""); err != nil {
			return fmt.Errorf("invalid pattern %q: %w", pattern, err)
		}
		matched, err := batch.SelectWhere(func(e model.FileEntry) bool {
			return matchGlob(pattern, e)
		})
		if err != nil {
			return err
		}
		if matched == 0 {
			log.Warn("Pattern %q matched no files", pattern)
		}
	}

	if sel.indexes != "" {
		indexes, err := parseIndexes(sel.indexes, batch.Len())
		if err != nil {
			return err
		}
		for _, i := range indexes {
			if err := batch.Select(i, true); err != nil {
				return err
			}
		}
	}
	return nil
}
