package scrollkeeper

// Sizes in bytes
const (
	// Kibibytes
	Kb int = 1_024
	// Kilobytes
	KB int = 1_000
	// Mebibytes
	Mb int = 1_048_576
	// Megabytes
	MB int = 1_000_000
	// Gibibytes
	Gb int = 1_073_741_824
	// Gigabytes
	GB int = 1_000_000_000
)
