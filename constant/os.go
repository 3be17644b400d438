package constant

// Platform identifiers for runtime.GOOS comparisons. The dependency check
// picks the mpv install hint with them.
const (
	Windows = "windows"
	Darwin  = "darwin"
	Linux   = "linux"
	Android = "android"
)
