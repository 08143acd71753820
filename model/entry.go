package model

import "fmt"

// FileEntry is one file produced by a scan
type FileEntry struct {
	Name     string  `json:"name"`
	SizeMB   float64 `json:"size_mb"`
	Size     int64   `json:"size"`
	FullPath string  `json:"full_path"`
	RelPath  string  `json:"rel_path"` // slash separated, relative to the scan root
	Selected bool    `json:"selected"`
}

// NewFileEntry builds an unselected entry
func NewFileEntry(name, fullPath, relPath string, size int64) FileEntry {
	return FileEntry{
		Name:     name,
		SizeMB:   BytesToMegabytes(size),
		Size:     size,
		FullPath: fullPath,
		RelPath:  relPath,
	}
}

// BytesToMegabytes converts a byte count to megabytes (bytes / 1024 / 1024)
func BytesToMegabytes(size int64) float64 {
	return float64(size) / 1024 / 1024
}

// Toggle flips the selection flag of a single entry
func (e *FileEntry) Toggle() {
	e.Selected = !e.Selected
}

func (e FileEntry) String() string {
	return fmt.Sprintf("%s (%.2f MB)", e.RelPath, e.SizeMB)
}

// SetAllSelected sets the selection flag uniformly across the batch
func SetAllSelected(entries []FileEntry, value bool) {
	for i := range entries {
		entries[i].Selected = value
	}
}

// SelectedEntries returns the selected subset, preserving the original order
func SelectedEntries(entries []FileEntry) []FileEntry {
	selected := make([]FileEntry, 0, len(entries))
	for _, e := range entries {
		if e.Selected {
			selected = append(selected, e)
		}
	}
	return selected
}
