package version

// Version is overridden at build time with -ldflags "-X github.com/bnema/hnglance/internal/version.Version=...".
var Version = "dev"

func UserAgent() string {
	return "hnglance/" + Version
}
