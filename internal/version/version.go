package version

import "fmt"

// Build information set by ldflags
var (
	Version = "dev"     // -X github.com/dob9601/jointhedots/internal/version.Version={{.Version}}
	Commit  = "unknown" // -X github.com/dob9601/jointhedots/internal/version.Commit={{.Commit}}
	Date    = "unknown" // -X github.com/dob9601/jointhedots/internal/version.Date={{.Date}}
)

// Info returns the multi-line version banner
func Info() string {
	return fmt.Sprintf("jtd version %s\n  commit: %s\n  built:  %s\n", Version, Commit, Date)
}
