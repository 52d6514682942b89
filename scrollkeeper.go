package scrollkeeper

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"text/template"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/trviph/collection"
)

// Default configuration values used by [New].
const (
	// The default timestamp layout for archive names. It keeps the full
	// date and time down to nanoseconds, so that archives created close
	// together still get distinct names.
	DefaultTimeLayout = "2006-01-02-15-04-05.000000000-0700"

	// The timestamp layout applied by [WithDailyRotation],
	// one archive name per calendar day.
	DefaultDailyTimeLayout = "2006-01-02"

	// The default archive name layout. It puts the timestamp first,
	// so that archives sort by rotation time.
	DefaultArchiveNameLayout = "{{ .time }}-{{ .name }}{{ .extension }}"

	// The default permission bits for log files and archives.
	DefaultFileMode os.FileMode = 0o644
)

// A [Keeper] is a log file manager that appends log messages to the current
// log file, archives the file under a timestamped name when it is due for
// rotation, and deletes the oldest archives to stay within the configured
// retention budgets.
// Use [New] to create a new Keeper.
type Keeper struct {
	// See [WithFolder] for documentation.
	folder string
	// See [WithArchiveFolder] for documentation.
	archiveFolder string
	// See [WithName] for documentation.
	name string
	// See [WithExtension] for documentation.
	extension string
	// See [WithTimeLayout] for documentation.
	timeLayout string
	// See [WithArchiveNameLayout] for documentation.
	archiveNameLayout *template.Template
	// See [WithDailyRotation], [WithMaxSize], and [WithMaxInterval] for documentation.
	mode        rotationMode
	maxSize     int
	maxInterval time.Duration
	// See [WithMaxFiles] for documentation.
	maxFiles int
	// See [WithMaxTotalSize] for documentation.
	maxTotalSize int
	// See [WithFreshStart] for documentation.
	appendOnOpen bool
	// See [WithAppendMarker] for documentation.
	appendMarker string
	// See [WithFileMode] for documentation.
	fileMode os.FileMode
	// See [WithGzip] and [WithGzipLevel] for documentation.
	gzip      bool
	gzipLevel int
	// See [WithCron] for documentation.
	cronFormat string
	// See [WithOnError] for documentation.
	onError func(error)

	cronScheduler *cron.Cron
	cronEntryID   cron.EntryID

	mu          sync.Mutex
	currentFile *os.File
	// Size in bytes of the current log file.
	currentSize int
	// When the current log file started collecting messages.
	since time.Time

	// Known archives, oldest first, and their total size in bytes.
	// Only maintained when a retention budget is configured.
	archives     *collection.List[*fileInfo]
	archivesSize int
}

// Make sure that Keeper implements the [io.WriteCloser] interface,
// so that it can be used with the [log] package.
var _ io.WriteCloser = (*Keeper)(nil)

// A Rotation describes what a completed rotation did.
type Rotation struct {
	// The path the rotated log file was archived at,
	// or empty if there was nothing to rotate.
	Archive string
	// The number of old archives deleted to stay
	// within the retention budgets.
	Pruned int
}

// Create a new [Keeper] with the provided options, or a Keeper with the
// default configuration if no option is provided.
// See [Opt] for all available options.
//
// If a Keeper with the same name is already registered, that Keeper is
// reconfigured with the provided options and returned instead, so that two
// Keepers never write to the same log file.
//
// If the log file left behind by a previous run is already due for rotation
// under the configured policy, it is rotated before this function returns.
//
// Example usage:
//
//		import "github.com/trviph/scrollkeeper"
//
//		func main() {
//			keeper, err := scrollkeeper.New(
//				scrollkeeper.WithName("Scrollkeeper Example"),
//				scrollkeeper.WithMaxSize(12 * scrollkeeper.Kb),
//	 	)
//		}
func New(opts ...Opt) (*Keeper, error) {
	candidate := new(Keeper)
	if err := candidate.applyOpts(opts...); err != nil {
		return nil, fmt.Errorf("failed to create new keeper, caused by %w", err)
	}

	keeper, fresh := register(candidate.name, candidate)
	keeper.mu.Lock()
	defer keeper.mu.Unlock()

	// Loaded an already running Keeper with the same name,
	// bring it up to date with this configuration instead.
	if !fresh {
		if err := keeper.applyOpts(opts...); err != nil {
			return nil, fmt.Errorf("failed to create new keeper, caused by %w", err)
		}
	}

	if err := keeper.setup(); err != nil {
		if fresh {
			deregister(keeper.name)
		}
		return nil, fmt.Errorf("failed to create new keeper, caused by %w", err)
	}
	return keeper, nil
}

// Apply the default options followed by the provided ones. This only
// mutates configuration fields, [Keeper.setup] acts on them afterwards.
func (k *Keeper) applyOpts(opts ...Opt) error {
	// Reset the toggles that have no dedicated reset option, so that
	// reconfiguring a registered Keeper starts from the same defaults
	// as a brand new one.
	k.mode = rotateByThreshold
	k.appendOnOpen = true
	k.appendMarker = ""
	k.gzip = false
	k.gzipLevel = gzip.DefaultCompression

	defaultOpts := []Opt{
		WithFolder(os.TempDir()),
		WithArchiveFolder(""),
		WithName(defaultKeeperName()),
		WithExtension(".log"),
		WithTimeLayout(DefaultTimeLayout),
		WithArchiveNameLayout(DefaultArchiveNameLayout),
		WithMaxSize(15 * Mb),
		WithMaxInterval(0),
		WithMaxFiles(0),
		WithMaxTotalSize(0),
		WithFileMode(DefaultFileMode),
		WithCron(""),
		WithOnError(nil),
	}

	var err error
	for _, opt := range append(defaultOpts, opts...) {
		k, err = opt(k)
		if err != nil {
			return fmt.Errorf("failed to apply option, caused by %w", err)
		}
	}
	return nil
}

// Bring the Keeper in sync with its configuration: open the current log
// file, take stock of the existing archives, schedule cron rotations, and
// rotate right away if the configuration asks for a fresh start or the
// pre-existing file is already due. Callers must hold mu.
func (k *Keeper) setup() error {
	if k.archiveFolder == "" {
		k.archiveFolder = k.folder
	}
	if _, err := os.Stat(k.archiveFolder); err != nil {
		return fmt.Errorf("failed to use archive folder %s, caused by %w", k.archiveFolder, err)
	}

	// Swap in the (re)opened current log file.
	if k.currentFile != nil {
		_ = k.currentFile.Close()
	}
	file, err := k.getCurrentFile()
	if err != nil {
		return fmt.Errorf("failed to open current log file, caused by %w", err)
	}
	k.currentFile = file
	k.currentSize = 0
	k.since = now()

	// A file left behind by a previous run keeps its original age,
	// so that the rotation policy can judge it.
	preexisting := false
	if stat, err := file.Stat(); err != nil {
		k.report(fmt.Errorf("failed to get current log file stat, caused by %w", err))
	} else if stat.Size() > 0 {
		preexisting = true
		k.currentSize = int(stat.Size())
		k.since = stat.ModTime()
	}

	if k.maxFiles > 0 || k.maxTotalSize > 0 {
		if err := k.loadArchives(); err != nil {
			return fmt.Errorf("failed to take stock of archives, caused by %w", err)
		}
	}

	if err := k.setupCron(); err != nil {
		return fmt.Errorf("failed to setup cron, caused by %w", err)
	}

	if preexisting && (!k.appendOnOpen || k.shouldRotate(now())) {
		if _, err := k.rotate(); err != nil {
			k.report(fmt.Errorf("failed to rotate pre-existing log file, caused by %w", err))
		}
	} else if preexisting && k.appendMarker != "" {
		if err := k.writeMarker(); err != nil {
			k.report(err)
		}
	}
	return nil
}

// Take stock of the archives already in the archive folder, oldest first.
// Callers must hold mu.
func (k *Keeper) loadArchives() error {
	pattern, err := k.getArchiveGlobPattern()
	if err != nil {
		return fmt.Errorf("failed to get archive pattern, caused by %w", err)
	}
	archives, totalSize, err := getArchives(k.getCurrentFilePath(), k.report, pattern, pattern+gzipSuffix)
	if err != nil {
		return err
	}
	k.archives = archives
	k.archivesSize = totalSize
	return nil
}

// Replace the previous cron schedule, if any, with the configured one.
// Callers must hold mu.
func (k *Keeper) setupCron() error {
	if k.cronScheduler != nil {
		k.cronScheduler.Remove(k.cronEntryID)
		k.cronScheduler.Stop()
		k.cronScheduler = nil
	}
	if len(k.cronFormat) == 0 {
		return nil
	}

	scheduler := cron.New()
	entryID, err := scheduler.AddFunc(k.cronFormat, func() {
		if _, err := k.Rotate(); err != nil {
			k.report(fmt.Errorf("failed to rotate on schedule, caused by %w", err))
		}
	})
	if err != nil {
		return fmt.Errorf("failed to parse cron format, caused by %w", err)
	}
	k.cronScheduler = scheduler
	k.cronEntryID = entryID
	go k.cronScheduler.Run()
	return nil
}

// Get the current log file descriptor.
func (k *Keeper) getCurrentFile() (*os.File, error) {
	return os.OpenFile(k.getCurrentFilePath(), os.O_APPEND|os.O_CREATE|os.O_WRONLY, k.fileMode)
}

// Get the path to the current log file.
func (k *Keeper) getCurrentFilePath() string {
	return filepath.Join(k.folder, fmt.Sprintf("%s%s", k.name, k.extension))
}

// Write the msg to the current log file, then rotate the file if the write
// brought it over the rotation thresholds, so that the message that
// triggered a rotation is the last message of the archive.
// A failed rotation never fails the write, the message is already safely on
// disk when rotation starts; the failure is reported through [WithOnError]
// and rotation is retried on a later write.
func (k *Keeper) Write(msg []byte) (int, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	n, err := k.currentFile.Write(msg)
	k.currentSize += n
	if err != nil {
		return n, err
	}

	if k.shouldRotate(now()) {
		if _, err := k.rotate(); err != nil {
			k.report(fmt.Errorf("failed to rotate log file, caused by %w", err))
		}
	}
	return n, nil
}

// Rotate the current log file and close the Keeper.
// Any subsequent writes after this will cause an error.
func (k *Keeper) Close() error {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.cronScheduler != nil {
		k.cronScheduler.Remove(k.cronEntryID)
		k.cronScheduler.Stop()
		k.cronScheduler = nil
	}
	if _, err := k.rotate(); err != nil {
		return fmt.Errorf("failed to rotate file, caused by %w", err)
	}
	deregister(k.name)
	return k.currentFile.Close()
}

// Rotate to a new file immediately without waiting for the rotation
// conditions to be met, and report what was done. Rotating an empty
// current log file does nothing.
func (k *Keeper) Rotate() (Rotation, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.rotate()
}

// Archive the current log file, create a new log file in its place, and
// enforce the retention budgets. Callers must hold mu.
func (k *Keeper) rotate() (Rotation, error) {
	// Nothing worth archiving.
	if k.currentSize <= 0 {
		return Rotation{}, nil
	}

	archiveName, err := k.newArchiveName()
	if err != nil {
		return Rotation{}, fmt.Errorf("failed to get new archive name, caused by %w", err)
	}
	// A rendered name equal to the current log file path would track the
	// live log file as an archive and expose it to pruning.
	if archiveName == k.getCurrentFilePath() {
		return Rotation{}, fmt.Errorf("archive name %s collides with the current log file", archiveName)
	}

	// Seal and rename the old file
	if err := k.currentFile.Close(); err != nil {
		return Rotation{}, fmt.Errorf("failed to close log file, caused by %w", err)
	}
	if err := os.Rename(k.getCurrentFilePath(), archiveName); err != nil {
		// The log file is still in place, reopen it and keep appending to
		// it; rotation will be due again on a later write.
		file, openErr := k.getCurrentFile()
		if openErr != nil {
			return Rotation{}, fmt.Errorf("failed to reopen log file, caused by %w", openErr)
		}
		k.currentFile = file
		return Rotation{}, fmt.Errorf("failed to archive log file, caused by %w", err)
	}

	// Create a new file
	file, err := k.getCurrentFile()
	if err != nil {
		return Rotation{}, err
	}
	k.currentFile = file
	k.currentSize = 0
	k.since = now()

	// Compress the archive
	if k.gzip {
		compressed, err := gzipArchive(archiveName, k.fileMode, k.gzipLevel)
		if err != nil {
			// Keep the uncompressed archive.
			k.report(err)
		} else {
			archiveName = compressed
		}
	}

	rotation := Rotation{Archive: archiveName}

	// Remove oldest archives
	if k.maxFiles > 0 || k.maxTotalSize > 0 {
		info, err := getFileInfo(archiveName)
		if err != nil {
			k.report(fmt.Errorf("failed to track archive %s, caused by %w", archiveName, err))
			return rotation, nil
		}
		k.archives.Append(info)
		k.archivesSize += info.size
		rotation.Pruned = k.prune()
	}
	return rotation, nil
}

// Write the configured marker to the current log file, making the boundary
// between the previous run and this one visible. Callers must hold mu.
func (k *Keeper) writeMarker() error {
	marker := k.appendMarker
	if !strings.HasSuffix(marker, "\n") {
		marker += "\n"
	}
	n, err := k.currentFile.WriteString(marker)
	k.currentSize += n
	if err != nil {
		return fmt.Errorf("failed to write append marker, caused by %w", err)
	}
	return nil
}

func (k *Keeper) newArchiveName() (string, error) {
	var buff bytes.Buffer
	err := k.archiveNameLayout.Execute(
		&buff,
		map[string]any{
			"time":      k.archiveSuffix(),
			"name":      k.name,
			"extension": k.extension,
		},
	)
	if err != nil {
		return "", fmt.Errorf("failed to execute template, caused by %w", err)
	}
	return filepath.Join(k.archiveFolder, buff.String()), nil
}

// The timestamp part of an archive name. Daily archives are named after the
// day their content started on, others after the moment of rotation.
func (k *Keeper) archiveSuffix() string {
	if k.mode == rotateDaily {
		return k.since.Format(k.timeLayout)
	}
	return now().Format(k.timeLayout)
}

func (k *Keeper) getArchiveGlobPattern() (string, error) {
	var buff bytes.Buffer
	err := k.archiveNameLayout.Execute(
		&buff,
		map[string]any{
			"time":      "*",
			"name":      k.name,
			"extension": k.extension,
		},
	)
	if err != nil {
		return "", fmt.Errorf("failed to execute template, caused by %w", err)
	}
	return filepath.Join(k.archiveFolder, buff.String()), nil
}

// Report a failure that must not interrupt writing, such as a failed
// rotation or a failed archive cleanup.
func (k *Keeper) report(err error) {
	if err == nil {
		return
	}
	if k.onError != nil {
		k.onError(err)
		return
	}
	fmt.Fprintf(os.Stderr, "scrollkeeper: %v\n", err)
}
