package version

import "fmt"

// these values are set at build time via ldflags
var (
	Version   = "dev"
	GitCommit = "n/a"
	BuildDate = "n/a"
)

var FullVersion = fmt.Sprintf("%s (%s) %s", Version, GitCommit, BuildDate)
