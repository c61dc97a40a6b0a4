// Package version holds build metadata, overridden at link time:
//
//	go build -ldflags "-X shellm/internal/version.AppVersion=v1.2.3"
package version

// AppVersion is the released version of shellm.
var AppVersion = "dev"
