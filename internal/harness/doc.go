// Package harness runs YAML scenarios against the domain stores and
// records the physical storage operations they cause.
//
// A scenario lists store actions, clock advances and session reopens, then
// asserts on the resulting trace of backend writes and removes and on the
// records left in storage. Each run uses a fresh in-memory backend, a fake
// clock starting at 2024-01-01T00:00:00Z and sequential ids, so traces are
// reproducible and can be compared against golden files.
//
// Example scenario:
//
//	name: settings_burst
//	description: two settings changes inside one window cost one write
//	steps:
//	  - do: settings.theme
//	    arg: dark
//	  - do: settings.sidebar
//	  - advance: 300ms
//	assertions:
//	  - type: write_count
//	    key: app-settings
//	    count: 1
package harness
