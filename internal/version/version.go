package version

// Version is the current release, overridden at build time via
// -ldflags "-X linklift/internal/version.Version=...".
var Version = "0.3.0"
