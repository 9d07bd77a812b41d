// Package buildinfo holds build-time metadata injected via -ldflags.
package buildinfo

// Version is the semantic version or tag for this build.
// Inject via: -X github.com/mferrari98/cont-portal/internal/buildinfo.Version=...
var Version = ""

// Commit is the git commit SHA for this build.
// Inject via: -X github.com/mferrari98/cont-portal/internal/buildinfo.Commit=...
var Commit = ""

// BuildDate is the RFC3339 build timestamp.
// Inject via: -X github.com/mferrari98/cont-portal/internal/buildinfo.BuildDate=...
var BuildDate = ""

// Release renders the identifier reported to error tracking and the
// service banner: the version when set, otherwise the commit, otherwise
// "dev".
func Release() string {
	switch {
	case Version != "":
		return Version
	case Commit != "":
		return Commit
	default:
		return "dev"
	}
}
