package replay

import "fmt"

// TimePoint identifies when an action happens. Frame is the only variant any
// decoder produces today.
type TimePoint interface {
	timePoint()
}

// Frame is an absolute, zero-based frame index.
type Frame uint64

// Seconds is a wall-clock offset from the start of the replay. No decoder
// produces it and the slc3 encoder drops it.
type Seconds float64

func (Frame) timePoint()   {}
func (Seconds) timePoint() {}

// PlayerButton is a game input button.
type PlayerButton uint8

const (
	ButtonJump PlayerButton = iota + 1
	ButtonLeft
	ButtonRight
)

func (b PlayerButton) String() string {
	switch b {
	case ButtonJump:
		return "jump"
	case ButtonLeft:
		return "left"
	case ButtonRight:
		return "right"
	}
	return fmt.Sprintf("PlayerButton(%d)", uint8(b))
}

// ButtonFromCode maps the packed 2-bit button code shared by slc1 and slc2
// (1 jump, 2 left, 3 right) to a PlayerButton.
func ButtonFromCode(code uint8) (PlayerButton, error) {
	switch code {
	case 1, 2, 3:
		return PlayerButton(code), nil
	}
	return 0, fmt.Errorf("invalid button code %d", code)
}

// RestartType distinguishes level resets.
type RestartType uint8

const (
	RestartTypeRestart RestartType = iota
	RestartTypeFull
	RestartTypeDeath
)

func (t RestartType) String() string {
	switch t {
	case RestartTypeRestart:
		return "restart"
	case RestartTypeFull:
		return "restart_full"
	case RestartTypeDeath:
		return "death"
	}
	return fmt.Sprintf("RestartType(%d)", uint8(t))
}

// Action is one of Player, Restart, TPS or Empty.
type Action interface {
	action()
}

// Player is a button press or release for player 1 or player 2.
type Player struct {
	Button  PlayerButton
	Hold    bool
	Player2 bool
}

// Restart resets the level. Seed is the RNG seed active at that moment, when
// the source format records one.
type Restart struct {
	Type RestartType
	Seed *uint64
}

// SeedOr returns the carried seed, or fallback when there is none.
func (r Restart) SeedOr(fallback uint64) uint64 {
	if r.Seed == nil {
		return fallback
	}
	return *r.Seed
}

// TPS changes the simulation rate.
type TPS struct {
	TPS float64
}

// Empty is a no-op placeholder for reserved action codes.
type Empty struct{}

func (Player) action()  {}
func (Restart) action() {}
func (TPS) action()     {}
func (Empty) action()   {}

// Position is reserved for spatial data. No decoder fills it.
type Position struct {
	X, Y float64
}

// TimedAction is an action at a point in time.
type TimedAction struct {
	Time     TimePoint
	Action   Action
	Position *Position
}

// At builds a frame-timed action with no position.
func At(frame uint64, action Action) TimedAction {
	return TimedAction{Time: Frame(frame), Action: action}
}

// Uint64 returns a pointer to v, for optional seeds.
func Uint64(v uint64) *uint64 {
	return &v
}
