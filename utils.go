package scrollkeeper

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Overridable in tests to control rotation timing and archive names.
var now = time.Now

// Get default name for the [Keeper], derived from the running executable.
func defaultKeeperName() string {
	if len(os.Args) > 0 && len(os.Args[0]) > 0 {
		return fmt.Sprintf("scrollkeeper-%s", filepath.Base(os.Args[0]))
	}
	return "scrollkeeper"
}

// Turn a user provided name into something safe to embed in a file name,
// by joining whitespace separated words with a single dash.
func slug(name string) string {
	return strings.Join(strings.Fields(name), "-")
}
