// Scrollkeeper is a Go package that manages log rotation.
//
// Note that Scrollkeeper is not a full-blown logging package. It only receives logging messages and manages them in files and should be used as such.
// It should play nicely together with the standard [log], [log/slog] packages, or any packages that follow the standard structure, like [Logrus].
//
// The core of Scrollkeeper is the [Keeper] struct, which implements the [io.WriteCloser] interface.
// A [Keeper] with the same name should be safe to use in multiple goroutines in the same process,
// but not safe when using on multiple processes.
//
// # The Keeper Struct
//
// Keeper is a log manager that writes logs to files and rotates them.
// To create a Keeper, use the [New] function. For example, the following code will create a Keeper with the default configuration:
//
//	import (
//		"log"
//
//		"github.com/trviph/scrollkeeper"
//	)
//
//	func main() {
//		keeper, err := scrollkeeper.New()
//		if err != nil {
//			// Handle error
//		}
//		// Instrument standard log with Scrollkeeper
//		logger := log.New(keeper, "[INFO] ", log.Lmsgprefix|log.LstdFlags)
//
//		// Every time we write to the logger, Scrollkeeper will write the message to a file and handle it as per configuration
//		logger.Printf("this is a log message")
//	}
//
// # Configure the Keeper
//
// This package provides some configurations for the [Keeper].
// These configurations come in the form of WithXxx functions that follow the Go Options pattern.
// You should take a look at [Opt] and the WithXxx functions in the Go package reference for documentation on these configurations.
// An example of how to use these functions:
//
//	import (
//		"log"
//
//		"github.com/trviph/scrollkeeper"
//	)
//
//	func main() {
//		keeper, err := scrollkeeper.New(
//			// Setting the name for the Keeper, this may affect how files will be named
//			scrollkeeper.WithName("Example"),
//			// Setting the maximum size of 100 MegaBytes, if a log file reaches this it will be rotated
//			scrollkeeper.WithMaxSize(100*scrollkeeper.MB),
//			// Keep at most fourteen archives
//			scrollkeeper.WithMaxFiles(14),
//		)
//		if err != nil {
//			// Handle error
//		}
//		// Instrument standard log with Scrollkeeper
//		logger := log.New(keeper, "[INFO] ", log.Lmsgprefix|log.LstdFlags)
//
//		// Every time we write to the logger, Scrollkeeper will write the message to a file and handle it as per configuration
//		logger.Printf("this is a log message")
//	}
//
// # How Does This Work
//
// When creating a Keeper, it first looks into the folder containing logs, defined using the [WithFolder] option, and into the archive folder, defined using the [WithArchiveFolder] option. It will throw an error if a folder does not yet exist, so make sure the folders exist, and have appropriate permissions.
//
// The Keeper will then scan the archive folder for any related logs.
// There are two kinds of log stored, the first kind is the current log, which the Keeper is writing to, the name of the current log depends on [WithName] and [WithExtension] options.
// If the Keeper finds an existing current log, it will reuse that log, if not it will create a new one.
// An existing current log that is already due for rotation, for example one left behind on an earlier day when rotating daily, is rotated right away; use [WithFreshStart] to always rotate it, or [WithAppendMarker] to mark where the previous run ends.
// The second kind is the archived log, which the Keeper is keeping track of, the name of archives depends on [WithName], [WithExtension], [WithTimeLayout], and [WithArchiveNameLayout].
// Since the Keeper depends on the file name to determine which file to manage, be aware that changing any of the mentioned options will cause the logs from the previous execution to become orphaned and not managed by the Keeper.
//
// Every time the [Keeper.Write] is invoked, the Keeper will first write the message to the current log and then check if the log should be rotated, so the message that triggers a rotation is the last message of the archive it produces.
//
// A rotation will happen if the current log size reaches the max size, configured by using the [WithMaxSize] option, or if the log has been collecting messages for longer than the max interval, configured by using the [WithMaxInterval] option.
// Alternatively the Keeper can rotate once per calendar day, see the [WithDailyRotation] option.
// During a rotation, the Keeper archives the current log by closing and renaming it based on the name template configured by using [WithArchiveNameLayout] and then opens a new log to replace the archived one. Archives can be compressed with [WithGzip].
// Afterwards if the number of archives exceeds the maximum number of allowed files, configured by [WithMaxFiles], or their combined size exceeds [WithMaxTotalSize], the Keeper will keep deleting the oldest archives based on their last modified time until the remaining archives fit the budgets.
// A rotation that fails, for example because the archive folder was removed, never fails the write that triggered it; the Keeper reports the failure through [WithOnError], keeps appending to the current log, and tries again on a later write.
//
// You can also rotate the current log manually by using [Keeper.Rotate] or [Keeper.Close], the difference between these two functions is that after [Keeper.Rotate], you can continue to use the Keeper as it rotates the current log but keeps it open for further writing.
// [Keeper.Close] will rotate and close the current log preventing any subsequent call from writing more messages into it.
//
// The Keeper can rotate log based on cron schedule, see [WithCron] option for more info.
//
// [Logrus]: https://github.com/sirupsen/logrus
package scrollkeeper
