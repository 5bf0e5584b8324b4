// Package version exposes the build version of the service.
package version

// Version is overridden at build time with
// -ldflags "-X github.com/ndewijer/Investment-Planner-Backend/internal/version.Version=1.2.3".
var Version = "dev"
