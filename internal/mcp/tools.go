package mcp

import (
	"context"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

func (s *Server) handleGetStatus(_ context.Context, _ *mcpsdk.CallToolRequest, _ NoInput) (*mcpsdk.CallToolResult, StatusOutput, error) {
	st, err := s.client.GetStatus()
	if err != nil {
		return nil, StatusOutput{}, err
	}
	return nil, StatusOutput{Status: *st}, nil
}

func (s *Server) handleSetMode(_ context.Context, _ *mcpsdk.CallToolRequest, args SetModeInput) (*mcpsdk.CallToolResult, ResultOutput, error) {
	if args.Mode == "" {
		return nil, ResultOutput{}, fmt.Errorf("mode is required")
	}
	if err := s.client.SetMode(args.Mode); err != nil {
		return nil, ResultOutput{}, err
	}
	return nil, ResultOutput{OK: true, Message: "mode set to " + args.Mode}, nil
}

func (s *Server) handleActivate(_ context.Context, _ *mcpsdk.CallToolRequest, _ NoInput) (*mcpsdk.CallToolResult, ResultOutput, error) {
	if err := s.client.Activate(); err != nil {
		return nil, ResultOutput{}, err
	}
	return nil, ResultOutput{OK: true}, nil
}

func (s *Server) handleRelease(_ context.Context, _ *mcpsdk.CallToolRequest, _ NoInput) (*mcpsdk.CallToolResult, ResultOutput, error) {
	if err := s.client.Release(); err != nil {
		return nil, ResultOutput{}, err
	}
	return nil, ResultOutput{OK: true}, nil
}

func (s *Server) handleApplyPreset(_ context.Context, _ *mcpsdk.CallToolRequest, args ApplyPresetInput) (*mcpsdk.CallToolResult, ResultOutput, error) {
	if args.Preset < 1 || args.Preset > 4 {
		return nil, ResultOutput{}, fmt.Errorf("preset must be between 1 and 4, got %d", args.Preset)
	}
	if err := s.client.ApplyPreset(args.Preset); err != nil {
		return nil, ResultOutput{}, err
	}
	return nil, ResultOutput{OK: true, Message: fmt.Sprintf("applied preset %d", args.Preset)}, nil
}

func (s *Server) handleListPresets(_ context.Context, _ *mcpsdk.CallToolRequest, _ NoInput) (*mcpsdk.CallToolResult, ListPresetsOutput, error) {
	data, err := s.client.ListPresets()
	if err != nil {
		return nil, ListPresetsOutput{}, err
	}
	return nil, ListPresetsOutput{Presets: data.Presets, LastPreset: data.LastPreset}, nil
}

func (s *Server) handleTogglePriority(_ context.Context, _ *mcpsdk.CallToolRequest, _ NoInput) (*mcpsdk.CallToolResult, PriorityOutput, error) {
	p, err := s.client.TogglePriority()
	if err != nil {
		return nil, PriorityOutput{}, err
	}
	return nil, PriorityOutput{LayoutPriority: p}, nil
}

func (s *Server) handleAutoFind(_ context.Context, _ *mcpsdk.CallToolRequest, _ NoInput) (*mcpsdk.CallToolResult, AutoFindOutput, error) {
	n, err := s.client.AutoFind()
	if err != nil {
		return nil, AutoFindOutput{}, err
	}
	return nil, AutoFindOutput{Assigned: n}, nil
}

func (s *Server) handleSelectGroup(_ context.Context, _ *mcpsdk.CallToolRequest, args GroupInput) (*mcpsdk.CallToolResult, ResultOutput, error) {
	if args.Group < 1 {
		return nil, ResultOutput{}, fmt.Errorf("group must be >= 1, got %d", args.Group)
	}
	if err := s.client.SelectGroup(args.Group); err != nil {
		return nil, ResultOutput{}, err
	}
	return nil, ResultOutput{OK: true, Message: fmt.Sprintf("group %d selected", args.Group)}, nil
}

func (s *Server) handleAddGroup(_ context.Context, _ *mcpsdk.CallToolRequest, _ NoInput) (*mcpsdk.CallToolResult, GroupOutput, error) {
	n, err := s.client.AddGroup()
	if err != nil {
		return nil, GroupOutput{}, err
	}
	return nil, GroupOutput{Group: n}, nil
}

func (s *Server) handleRemoveGroup(_ context.Context, _ *mcpsdk.CallToolRequest, args GroupInput) (*mcpsdk.CallToolResult, ResultOutput, error) {
	if args.Group < 1 {
		return nil, ResultOutput{}, fmt.Errorf("group must be >= 1, got %d", args.Group)
	}
	if err := s.client.RemoveGroup(args.Group); err != nil {
		return nil, ResultOutput{}, err
	}
	return nil, ResultOutput{OK: true, Message: fmt.Sprintf("group %d removed", args.Group)}, nil
}
