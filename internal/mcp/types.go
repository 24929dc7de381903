package mcp

import "github.com/1broseidon/multibox/internal/ipc"

// NoInput is the input for tools that take no arguments.
type NoInput struct{}

// StatusOutput is the output for the get_status tool.
type StatusOutput struct {
	Status ipc.StatusData `json:"status"`
}

// SetModeInput is the input for the set_mode tool.
type SetModeInput struct {
	Mode string `json:"mode" jsonschema:"Routing mode: group, all_group or mirror_all"`
}

// ApplyPresetInput is the input for the apply_preset tool.
type ApplyPresetInput struct {
	Preset int `json:"preset" jsonschema:"Layout preset number, 1 to 4"`
}

// ListPresetsOutput is the output for the list_presets tool.
type ListPresetsOutput struct {
	Presets    []ipc.PresetInfo `json:"presets"`
	LastPreset int              `json:"last_preset"`
}

// PriorityOutput is the output for the toggle_layout_priority tool.
type PriorityOutput struct {
	LayoutPriority string `json:"layout_priority"`
}

// AutoFindOutput is the output for the auto_find tool.
type AutoFindOutput struct {
	Assigned int `json:"assigned"`
}

// GroupInput is the input for select_group and remove_group.
type GroupInput struct {
	Group int `json:"group" jsonschema:"Group number, starting at 1"`
}

// GroupOutput is the output for the add_group tool.
type GroupOutput struct {
	Group int `json:"group"`
}

// ResultOutput acknowledges a command.
type ResultOutput struct {
	OK      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
}
