package scrollkeeper

import (
	"compress/gzip"
	"fmt"
	"os"
	"text/template"
	"time"
)

// An Opt is a function that mutates a [Keeper]'s attributes.
// An Opt should return the mutated Keeper or return an error if it fails to mutate the Keeper.
// An Opt should be used together with [New].
type Opt func(*Keeper) (*Keeper, error)

// The folder where the current log file is stored.
// The folder must already exist, [New] will not create it.
// It will be kept at its previous value if the path is empty.
// The default value is [os.TempDir].
func WithFolder(path string) Opt {
	return func(k *Keeper) (*Keeper, error) {
		if len(path) > 0 {
			k.folder = path
		}
		return k, nil
	}
}

// The folder where archives are stored.
// The folder must already exist, [New] will not create it.
// The default value is empty, meaning archives are stored
// next to the current log file in [WithFolder].
func WithArchiveFolder(path string) Opt {
	return func(k *Keeper) (*Keeper, error) {
		k.archiveFolder = path
		return k, nil
	}
}

// The name of the Keeper.
// Whitespace is replaced with dashes so that the name is safe
// to use in file names.
// It will be set to the default value if the name is empty.
// The default value is scrollkeeper-<the executable name and extension>.
func WithName(name string) Opt {
	return func(k *Keeper) (*Keeper, error) {
		if len(name) > 0 {
			k.name = slug(name)
		}
		return k, nil
	}
}

// The extension of the output log file.
// It should include a dot prefix and can be empty.
// The default value is ".log".
func WithExtension(extension string) Opt {
	return func(k *Keeper) (*Keeper, error) {
		k.extension = extension
		return k, nil
	}
}

// Set the timestamp layout for the {{ .time }} part of archive names.
// The default value is [DefaultTimeLayout], or [DefaultDailyTimeLayout]
// when used after [WithDailyRotation].
//
// The layout must be a valid Go time layout, since this package uses
// [time.Time.Format] it will not return an error if the layout is invalid,
// instead it will use whatever the layout renders as.
// It should include sub-second precision in order to avoid name conflicts
// between rotations that happen close together.
// See more about Go time layouts at [time package constants].
//
// [time package constants]: https://pkg.go.dev/time#pkg-constants
func WithTimeLayout(layout string) Opt {
	return func(k *Keeper) (*Keeper, error) {
		k.timeLayout = layout
		return k, nil
	}
}

// Set the layout for archive names, as a Go [text/template].
// The template may refer to {{ .time }}, the rotation timestamp rendered
// with [WithTimeLayout]; {{ .name }}, the Keeper name; and {{ .extension }},
// the log file extension. Returns an error if the layout fails to parse.
// The default value is [DefaultArchiveNameLayout].
//
// Note that a layout rendering the same name as the current log file, for
// example one that leaves out {{ .time }}, makes every rotation fail; the
// Keeper refuses to archive a file onto its own path and keeps appending.
func WithArchiveNameLayout(layout string) Opt {
	return func(k *Keeper) (*Keeper, error) {
		tmpl, err := template.New("archive").Parse(layout)
		if err != nil {
			return nil, fmt.Errorf("failed to parse archive name layout, caused by %w", err)
		}
		k.archiveNameLayout = tmpl
		return k, nil
	}
}

// Maximum size in bytes per log file.
// Keeper will rotate the log file on the first write that brings its size
// up to or over this value.
// Setting this value to zero or negative will disable this feature.
// The default value is 15 [Mb].
func WithMaxSize(size int) Opt {
	return func(k *Keeper) (*Keeper, error) {
		k.maxSize = size
		return k, nil
	}
}

// Maximum duration a log file may keep collecting messages.
// Keeper will rotate the log file on the first write after it has been
// collecting for this long, even if it is still under [WithMaxSize].
// Setting this value to zero or negative will disable this feature.
// The default value is zero.
func WithMaxInterval(d time.Duration) Opt {
	return func(k *Keeper) (*Keeper, error) {
		k.maxInterval = d
		return k, nil
	}
}

// Rotate by calendar day instead of by the [WithMaxSize] and
// [WithMaxInterval] thresholds. The log file is rotated on the first write
// of a new day, so each archive holds the messages of a single day.
// This also switches the timestamp layout to [DefaultDailyTimeLayout];
// use [WithTimeLayout] after this option to override it.
//
// Note that with the daily timestamp layout, rotating more than once in
// the same day, for example by calling [Keeper.Rotate], produces the same
// archive name and replaces the earlier archive.
func WithDailyRotation() Opt {
	return func(k *Keeper) (*Keeper, error) {
		k.mode = rotateDaily
		k.timeLayout = DefaultDailyTimeLayout
		return k, nil
	}
}

// Maximum number of archives to keep.
// After each rotation Keeper deletes the oldest archives until at most
// this many remain.
// Setting this value to zero or negative will disable this feature.
// The default value is zero.
func WithMaxFiles(n int) Opt {
	return func(k *Keeper) (*Keeper, error) {
		k.maxFiles = n
		return k, nil
	}
}

// Maximum total size in bytes of all archives combined.
// After each rotation Keeper deletes the oldest archives until the ones
// remaining fit within this budget.
// Setting this value to zero or negative will disable this feature.
// The default value is zero.
func WithMaxTotalSize(size int) Opt {
	return func(k *Keeper) (*Keeper, error) {
		k.maxTotalSize = size
		return k, nil
	}
}

// Archive the content of a pre-existing log file during [New] instead of
// appending to it, so that the Keeper always starts with an empty log file.
// By default Keeper appends to whatever the previous run left behind.
func WithFreshStart() Opt {
	return func(k *Keeper) (*Keeper, error) {
		k.appendOnOpen = false
		return k, nil
	}
}

// A marker line written to the log file by [New] when it appends to a
// pre-existing log file, making the boundary between runs visible.
// A newline is added if the marker does not already end with one.
// The default value is empty, meaning no marker is written.
func WithAppendMarker(marker string) Opt {
	return func(k *Keeper) (*Keeper, error) {
		k.appendMarker = marker
		return k, nil
	}
}

// The permission bits for log files and archives created by the Keeper.
// Returns an error if the mode contains anything but permission bits.
// It will be kept at its previous value if the mode is zero.
// The default value is [DefaultFileMode].
func WithFileMode(mode os.FileMode) Opt {
	return func(k *Keeper) (*Keeper, error) {
		if mode&^os.FileMode(0o777) != 0 {
			return nil, fmt.Errorf("invalid file mode %v, only permission bits are allowed", mode)
		}
		if mode != 0 {
			k.fileMode = mode
		}
		return k, nil
	}
}

// Compress archives with gzip after rotating.
// Archives get a ".gz" suffix appended to their name.
func WithGzip() Opt {
	return func(k *Keeper) (*Keeper, error) {
		k.gzip = true
		return k, nil
	}
}

// Compress archives with gzip after rotating, at the given compression
// level. Returns an error if the level is not valid for [compress/gzip].
// The default level is [gzip.DefaultCompression].
func WithGzipLevel(level int) Opt {
	return func(k *Keeper) (*Keeper, error) {
		if level < gzip.HuffmanOnly || level > gzip.BestCompression {
			return nil, fmt.Errorf("invalid gzip compression level %d", level)
		}
		k.gzip = true
		k.gzipLevel = level
		return k, nil
	}
}

// Rotate on a schedule given as a cron expression, such as "0 0 * * *" to
// rotate at midnight, in addition to the configured rotation policy.
// The expression is validated by [New].
// The default value is empty, meaning no scheduled rotations.
// See the [cron documentation] for the expression format.
//
// [cron documentation]: https://pkg.go.dev/github.com/robfig/cron/v3
func WithCron(format string) Opt {
	return func(k *Keeper) (*Keeper, error) {
		k.cronFormat = format
		return k, nil
	}
}

// A function called with failures that must not interrupt writing, such as
// a failed rotation or a failed archive cleanup. The function must not
// write back into the same Keeper.
// The default value is nil, meaning failures are printed to [os.Stderr].
func WithOnError(fn func(error)) Opt {
	return func(k *Keeper) (*Keeper, error) {
		k.onError = fn
		return k, nil
	}
}
