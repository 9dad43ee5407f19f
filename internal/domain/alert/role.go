package alert

import (
	"errors"
	"fmt"
)

// Role is the mode the device is currently operating in.
type Role uint8

const (
	// Target advertises and can be driven into alert by a peer.
	Target Role = iota
	// Locating scans for peers and pushes the selected severity to them.
	Locating
	// Cancelling pushes None to the peers alerted while locating.
	Cancelling
)

var (
	// ErrUnknownRole is returned by Validate when the role holds an unexpected value.
	ErrUnknownRole = errors.New("unknown role")
	// ErrUnknownSeverity is returned when a severity name cannot be parsed.
	ErrUnknownSeverity = errors.New("unknown severity")
)

// String returns a lowercase name of the role.
func (r Role) String() string {
	switch r {
	case Target:
		return "target"
	case Locating:
		return "locating"
	case Cancelling:
		return "cancelling"
	default:
		return fmt.Sprintf("role(%d)", uint8(r))
	}
}

// Action is the side effect the caller must apply after a transition.
type Action uint8

const (
	// ActionNone means nothing changed.
	ActionNone Action = iota
	// ActionClearAlert asks the target to reset its local alert.
	ActionClearAlert
	// ActionStartLocate asks the locator to clear its ledger and start locating.
	ActionStartLocate
	// ActionStartCancel asks the locator to start its cancel budget.
	ActionStartCancel
)

// String returns a readable name of the action.
func (a Action) String() string {
	switch a {
	case ActionNone:
		return "none"
	case ActionClearAlert:
		return "clear-alert"
	case ActionStartLocate:
		return "start-locate"
	case ActionStartCancel:
		return "start-cancel"
	default:
		return fmt.Sprintf("action(%d)", uint8(a))
	}
}

// Release holds the button-release edges seen during one scheduler pass.
type Release struct {
	// High is true when the high button was released.
	High bool
	// Mild is true when the mild button was released.
	Mild bool
}

// Any reports whether at least one button was released.
func (r Release) Any() bool {
	return r.High || r.Mild
}

// RoleState is the current mode of the device.
// While locating or cancelling Severity is the level pushed to peers; while
// targeting it is None.
type RoleState struct {
	// Role is the active role.
	Role Role
	// Severity is the level selected when locating started.
	Severity Severity
}

// NewRoleState returns the boot state.
func NewRoleState() RoleState {
	return RoleState{
		Role:     Target,
		Severity: None,
	}
}

// OnRelease applies button-release edges and returns the side effect to perform.
// localAlert is the current value of the device's own alert attribute and
// connected reports whether a central is connected to this device.
func (s *RoleState) OnRelease(rel Release, localAlert Severity, connected bool) Action {
	if !rel.Any() {
		return ActionNone
	}

	switch s.Role {
	case Target:
		if localAlert.Active() {
			return ActionClearAlert
		}

		// A connected single-radio target cannot switch to the central role.
		if connected {
			return ActionNone
		}

		s.Role = Locating
		if rel.High {
			s.Severity = High
		} else {
			s.Severity = Mild
		}

		return ActionStartLocate
	case Locating:
		s.Role = Cancelling

		return ActionStartCancel
	default:
		return ActionNone
	}
}

// Complete finishes a cancel cycle and returns to Target.
// It reports false when the device was not cancelling.
func (s *RoleState) Complete() bool {
	if s.Role != Cancelling {
		return false
	}

	s.Reset()

	return true
}

// Reset unconditionally returns to the boot state.
func (s *RoleState) Reset() {
	*s = NewRoleState()
}

// Validate reports an error for role values outside the state machine.
func (s *RoleState) Validate() error {
	switch s.Role {
	case Target, Locating, Cancelling:
		return nil
	default:
		return fmt.Errorf("validate %s: %w", s.Role, ErrUnknownRole)
	}
}

// Peering reports whether the device is locating or cancelling.
func (s *RoleState) Peering() bool {
	return s.Role == Locating || s.Role == Cancelling
}

// PushSeverity returns the value written to peers in the current role.
func (s *RoleState) PushSeverity() Severity {
	if s.Role == Locating {
		return s.Severity
	}

	return None
}

// String renders the state for logs.
func (s RoleState) String() string {
	if s.Role == Target {
		return s.Role.String()
	}

	return fmt.Sprintf("%s(%s)", s.Role, s.Severity)
}
