package scrollkeeper

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/trviph/collection"
)

type fileInfo struct {
	filePath string
	size     int
	modtime  time.Time
}

// List the files matching any of the given glob patterns, ordered from the
// oldest to the most recently modified, along with their total size in bytes.
// The file at the exclude path is never listed, so that the current log file
// is not mistaken for an archive. An entry that cannot be read, for example
// one deleted between globbing and listing, is reported and skipped.
func getArchives(exclude string, report func(error), patterns ...string) (*collection.List[*fileInfo], int, error) {
	minHeap, err := collection.NewHeap(func(current, other *fileInfo) bool {
		return current.modtime.Before(other.modtime)
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get heap, caused by %w", err)
	}

	// Patterns may overlap, list each match only once.
	seen := make(map[string]bool)
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to get archives, caused by %w", err)
		}
		for _, match := range matches {
			if match == exclude || seen[match] {
				continue
			}
			seen[match] = true
			info, err := getFileInfo(match)
			if err != nil {
				report(fmt.Errorf("failed to list archive %s, caused by %w", match, err))
				continue
			}
			minHeap.Push(info)
		}
	}

	l := collection.NewList[*fileInfo]()
	totalSize := 0
	for !minHeap.IsEmpty() {
		oldest, err := minHeap.Pop()
		if err != nil {
			return nil, 0, fmt.Errorf("failed to get file info, caused by %w", err)
		}
		l.Append(oldest)
		totalSize += oldest.size
	}
	return l, totalSize, nil
}

func getFileInfo(filePath string) (*fileInfo, error) {
	stat, err := os.Stat(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed get file stat, caused by %w", err)
	}
	return &fileInfo{
		filePath: filePath,
		modtime:  stat.ModTime(),
		size:     int(stat.Size()),
	}, nil
}
