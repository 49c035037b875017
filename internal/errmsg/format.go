// Package errmsg provides consistent error formatting for user-facing messages.
package errmsg

import "fmt"

// Op represents an operation that can fail.
type Op string

// Operation constants - grouped by domain.
const (
	// Session operations
	OpSessionStart   Op = "start playback"
	OpSessionSuspend Op = "suspend playback"
	OpSourceSwitch   Op = "switch source"
	OpSourceSelect   Op = "select source"

	// Catalog operations
	OpCatalogBuild  Op = "build catalog"
	OpCatalogReload Op = "reload catalog"

	// Configuration
	OpConfigLoad  Op = "load configuration"
	OpConfigWrite Op = "write configuration"
	OpConfigWatch Op = "watch configuration"

	// Persistence
	OpStateOpen Op = "open state store"
	OpStateLoad Op = "load saved state"
	OpStateSave Op = "save state"

	// Initialization
	OpLogInit    Op = "initialize logging"
	OpInitialize Op = "initialize application"
)

// Format creates a user-friendly error message.
func Format(op Op, err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Failed to %s: %v", op, err)
}

// FormatWith creates an error message with additional context.
func FormatWith(op Op, context string, err error) string {
	if err == nil {
		return ""
	}
	if context == "" {
		return Format(op, err)
	}
	return fmt.Sprintf("Failed to %s '%s': %v", op, context, err)
}
