package scrollkeeper

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
)

// Suffix appended to the name of compressed archives.
const gzipSuffix = ".gz"

// Compress the archive at src into a sibling file with a [gzipSuffix] and
// remove the original. Returns the path of the compressed archive. If
// compressing fails the original archive is left untouched.
func gzipArchive(src string, mode os.FileMode, level int) (string, error) {
	in, err := os.Open(src)
	if err != nil {
		return "", fmt.Errorf("failed to open archive, caused by %w", err)
	}
	defer in.Close()

	dst := src + gzipSuffix
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, mode)
	if err != nil {
		return "", fmt.Errorf("failed to create compressed archive, caused by %w", err)
	}

	zw, err := gzip.NewWriterLevel(out, level)
	if err != nil {
		out.Close()
		os.Remove(dst)
		return "", fmt.Errorf("failed to create gzip writer, caused by %w", err)
	}
	if _, err := io.Copy(zw, in); err != nil {
		zw.Close()
		out.Close()
		os.Remove(dst)
		return "", fmt.Errorf("failed to compress archive, caused by %w", err)
	}
	if err := zw.Close(); err != nil {
		out.Close()
		os.Remove(dst)
		return "", fmt.Errorf("failed to flush compressed archive, caused by %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(dst)
		return "", fmt.Errorf("failed to close compressed archive, caused by %w", err)
	}

	if err := os.Remove(src); err != nil {
		os.Remove(dst)
		return "", fmt.Errorf("failed to remove archive after compressing, caused by %w", err)
	}
	return dst, nil
}
