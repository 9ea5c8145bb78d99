package constants

// Version information (injected at build time)
var (
	// Version is set through -ldflags.
	Version = "dev"

	// BuildTime is set through -ldflags.
	BuildTime = "unknown"

	// GitCommit is set through -ldflags.
	GitCommit = "unknown"
)

// ServiceName identifies the service in traces and logs.
const ServiceName = "learnify-go"

// GetFullVersion returns version, commit and build time in one line.
func GetFullVersion() string {
	return Version + " (" + GitCommit + ") built at " + BuildTime
}
