package briefing

// Version is the release version, set at build time with
// -ldflags "-X github.com/phdev/briefing.Version=v1.2.3".
var Version = "dev"
