// Package protocol defines the intent-action vocabulary the decision
// engine emits and the turn engine consumes. Actions are advisory: the
// engine describes what it wants done this turn and the turn engine is the
// single writer that applies it.
package protocol

// Action is one turn's intent. At most one field group is set; the zero
// Action is an explicit no-op (wait).
type Action struct {
	// DX/DY is the legacy movement delta emitted by AutoExplore.
	DX *int `json:"dx,omitempty"`
	DY *int `json:"dy,omitempty"`

	// Move is the BotBrain movement/attack delta. Stepping onto a hostile
	// resolves as an attack.
	Move *[2]int `json:"move,omitempty"`

	Pickup bool `json:"pickup,omitempty"`

	// InventoryIndex selects an item to use by its position in the
	// alphabetically-sorted inventory listing.
	InventoryIndex *int `json:"inventory_index,omitempty"`

	TakeStairs       bool `json:"take_stairs,omitempty"`
	StartAutoExplore bool `json:"start_auto_explore,omitempty"`

	// BotAbortRun tells the outer harness to terminate the automated run.
	BotAbortRun bool `json:"bot_abort_run,omitempty"`
}

func Step(dx, dy int) *Action { return &Action{DX: &dx, DY: &dy} }

func Move(dx, dy int) *Action { return &Action{Move: &[2]int{dx, dy}} }

func PickupAction() *Action { return &Action{Pickup: true} }

func UseInventory(index int) *Action { return &Action{InventoryIndex: &index} }

func TakeStairsAction() *Action { return &Action{TakeStairs: true} }

func StartAutoExploreAction() *Action { return &Action{StartAutoExplore: true} }

func AbortRun() *Action { return &Action{BotAbortRun: true} }

func Noop() *Action { return &Action{} }

// IsNoop reports whether the action carries no intent at all.
func (a *Action) IsNoop() bool {
	if a == nil {
		return true
	}
	return a.DX == nil && a.DY == nil && a.Move == nil &&
		!a.Pickup && a.InventoryIndex == nil &&
		!a.TakeStairs && !a.StartAutoExplore && !a.BotAbortRun
}

// Delta returns the movement delta regardless of which movement form is
// set. ok is false for non-movement actions.
func (a *Action) Delta() (dx, dy int, ok bool) {
	if a == nil {
		return 0, 0, false
	}
	if a.Move != nil {
		return a.Move[0], a.Move[1], true
	}
	if a.DX != nil && a.DY != nil {
		return *a.DX, *a.DY, true
	}
	return 0, 0, false
}

// Kind returns a short tag for logging.
func (a *Action) Kind() string {
	switch {
	case a == nil:
		return "none"
	case a.Move != nil:
		return "move"
	case a.DX != nil || a.DY != nil:
		return "step"
	case a.Pickup:
		return "pickup"
	case a.InventoryIndex != nil:
		return "use_item"
	case a.TakeStairs:
		return "take_stairs"
	case a.StartAutoExplore:
		return "start_auto_explore"
	case a.BotAbortRun:
		return "bot_abort_run"
	default:
		return "wait"
	}
}
