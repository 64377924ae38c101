// Package version provides build and version information.
package version

// Version is the current application version.
const Version = "0.2.0"

// Milestones:
// 0.2.0 - HTTP API, Prometheus metrics, cron refresh into the JSON store, scan browser TUI
// 0.1.0 - Initial release: visibility scans, approach classification, meteor showers, headless report
