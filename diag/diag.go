// Package diag provides the minimal debug-tracing surface the writer and
// document facade use when CAPY_DEBUG_PDF is set.
package diag

import "fmt"

// Enabled gates Print/Printf output. The document facade sets this once
// at construction time based on the CAPY_DEBUG_PDF environment variable.
var Enabled bool

// Print writes args space-separated followed by a newline when Enabled is
// true.
func Print(args ...any) {
	if !Enabled {
		return
	}
	fmt.Println(args...)
}

// Printf writes a formatted trace line when Enabled is true.
func Printf(format string, args ...any) {
	if !Enabled {
		return
	}
	fmt.Printf(format+"\n", args...)
}
