package scrollkeeper

import (
	"fmt"
	"os"
)

// Delete the oldest archives until the [WithMaxFiles] and [WithMaxTotalSize]
// budgets are both satisfied, and report how many were deleted. An archive
// that fails to delete is reported and dropped from bookkeeping, so that one
// stuck file cannot hold up the deletion of the others. Callers must hold mu.
func (k *Keeper) prune() int {
	if k.maxFiles <= 0 && k.maxTotalSize <= 0 {
		return 0
	}

	over := func() bool {
		if k.maxFiles > 0 && k.archives.Length() > k.maxFiles {
			return true
		}
		return k.maxTotalSize > 0 && k.archivesSize > k.maxTotalSize
	}

	pruned := 0
	for k.archives.Length() > 0 && over() {
		oldest, err := k.archives.Dequeue()
		if err != nil {
			k.report(fmt.Errorf("failed to get the oldest archive, caused by %w", err))
			return pruned
		}
		k.archivesSize -= oldest.size
		if err := os.Remove(oldest.filePath); err != nil && !os.IsNotExist(err) {
			k.report(fmt.Errorf("failed to remove archive %s, caused by %w", oldest.filePath, err))
			continue
		}
		pruned++
	}
	return pruned
}
