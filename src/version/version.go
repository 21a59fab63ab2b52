package version

// Version is the ocm release version. Overridden at build time via
// -ldflags "-X openclaw-manager/src/version.Version=...".
var Version = "0.1.0-dev"
