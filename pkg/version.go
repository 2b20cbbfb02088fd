// Package comparasub holds application-wide metadata.
package comparasub

var (
	// Version is the application version. It is set during build time
	// from the latest git tag.
	Version = "v0.1.0"

	// Build is the timestamp of the build, set during build time.
	Build = "n/a"
)
