// Package keymap defines key bindings and action dispatch for the application.
package keymap

// Action represents a user-triggerable action.
type Action string

const (
	ActionQuit        Action = "quit"
	ActionHelp        Action = "help"
	ActionMoveUp      Action = "move_up"
	ActionMoveDown    Action = "move_down"
	ActionJumpStart   Action = "jump_start"
	ActionJumpEnd     Action = "jump_end"
	ActionSelect      Action = "select"       // enter - switch to the source under the cursor
	ActionPauseResume Action = "pause_resume" // p - host pause / resume
)
