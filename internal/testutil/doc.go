// Package testutil provides fluent builders shared by package tests. The
// builders keep test setup terse while applying sensible defaults, so
// individual tests chain only the telemetry fields they care about.
package testutil
