package version

// Version is stamped at build time via -ldflags "-X teemixer/internal/version.Version=...".
var Version = "dev"
