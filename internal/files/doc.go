// Package files locates listings exports on disk.
//
// A configured source may name a file or a directory. Discovery resolves a
// directory to its most recently modified CSV or XLSX export, skipping
// Office lock files, so a dashboard pointed at a drop folder picks up the
// latest snapshot on start.
//
// Example usage:
//
//	discovery := files.NewDiscovery("/srv/staypulse", logger)
//	path, err := discovery.Resolve("data")
package files
