// Package catalog holds the fixed set of operating systems the console can
// simulate.
//
// The built-in catalog has three entries (windows10, windows11, android).
// It can be replaced at startup from a YAML or TOML file:
//
//	systems:
//	  - id: windows10
//	    name: Windows 10
//	    version: Pro 22H2
//	    icon: "🪟"
//	    color: bg-blue-600
//	    default_url: https://www.google.com
//
// A Catalog never changes after construction.
package catalog
