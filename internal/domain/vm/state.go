package vm

import (
	"github.com/GriffinCanCode/VMConsole/internal/infrastructure/config"
	"github.com/GriffinCanCode/VMConsole/internal/shared/types"
)

// State is the complete controller state. Transitions build a new State
// from the previous one; side effects are applied afterwards.
type State struct {
	Mode       string
	OS         types.OSOption
	VM         types.VMState
	BrowserURL string
	Session    *types.Session
	Stats      types.Stats
	Display    types.Display
	Document   string
	HasToken   bool
}

// Active reports whether the VM is running and unpaused.
func (s State) Active() bool {
	return s.VM == types.StateActive
}

// DeriveControls computes which console controls are enabled.
func DeriveControls(state types.VMState, mode string, hasToken bool) types.Controls {
	running := state != types.StateInactive
	active := state == types.StateActive

	label := "Pause"
	if state == types.StatePaused {
		label = "Resume"
	}

	return types.Controls{
		SelectOS:   true,
		PowerOn:    state == types.StateInactive && (mode != config.ModeRemote || hasToken),
		PowerOff:   running,
		Restart:    running,
		Pause:      running,
		PauseLabel: label,
		FullScreen: active,
		URLInput:   active,
		Go:         active,
	}
}

// Indicators returns the status dot for every OS id.
func Indicators(ids []string, selected string, state types.VMState) map[string]types.Indicator {
	out := make(map[string]types.Indicator, len(ids))
	for _, osID := range ids {
		ind := types.IndicatorIdle
		if osID == selected {
			switch state {
			case types.StateActive:
				ind = types.IndicatorActive
			case types.StatePaused:
				ind = types.IndicatorPaused
			}
		}
		out[osID] = ind
	}
	return out
}

// displayFor derives the display flags for a state; content fields are kept.
func displayFor(d types.Display, state types.VMState) types.Display {
	switch state {
	case types.StateInactive:
		return types.Display{Kind: types.DisplayBlank, Revision: d.Revision}
	case types.StatePaused:
		d.Dimmed = true
		d.Interactive = false
	default:
		d.Dimmed = false
		d.Interactive = true
	}
	return d
}
