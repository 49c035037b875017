package keymap

// Binding describes a single key binding.
type Binding struct {
	Keys        []string
	Action      Action
	Description string
}

// All contains all key bindings, in help order.
var All = []Binding{
	{[]string{"k", "up"}, ActionMoveUp, "Move up"},
	{[]string{"j", "down"}, ActionMoveDown, "Move down"},
	{[]string{"g", "home"}, ActionJumpStart, "First source"},
	{[]string{"G", "end"}, ActionJumpEnd, "Last source"},
	{[]string{"enter"}, ActionSelect, "Play source"},
	{[]string{"p", "space"}, ActionPauseResume, "Pause / resume"},
	{[]string{"?"}, ActionHelp, "Toggle help"},
	{[]string{"q", "ctrl+c"}, ActionQuit, "Quit"},
}
