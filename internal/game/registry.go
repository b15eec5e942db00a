package game

import (
	"fmt"
	"strings"
)

// Kind identifies one of the built-in games.
type Kind int

const (
	HappySteps Kind = iota + 1
	Squats
	ReachHold
	SideLeanBalance
	OverheadReachBubbles
	ReactionTime
	VirtualDrums
	StepInBox
	PoseMatch
	AirDrawing
)

var kindIDs = map[Kind]string{
	HappySteps:           "happy_steps",
	Squats:               "squats",
	ReachHold:            "reach_hold",
	SideLeanBalance:      "side_lean_balance",
	OverheadReachBubbles: "overhead_reach_bubbles",
	ReactionTime:         "reaction_time_challenge",
	VirtualDrums:         "virtual_drums",
	StepInBox:            "step_in_box",
	PoseMatch:            "pose_match",
	AirDrawing:           "air_drawing",
}

// String returns the stable game id.
func (k Kind) String() string {
	if id, ok := kindIDs[k]; ok {
		return id
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ParseKind resolves a game id.
func ParseKind(id string) (Kind, error) {
	id = strings.TrimSpace(strings.ToLower(id))
	for k, v := range kindIDs {
		if v == id {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, id)
}

// MarshalText encodes the kind as its id.
func (k Kind) MarshalText() ([]byte, error) {
	if _, ok := kindIDs[k]; !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownKind, int(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind from its id.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

var registry = map[Kind]func() Game{
	HappySteps:           func() Game { return Erase[StepsState](Steps{}) },
	Squats:               func() Game { return Erase[SquatState](Squat{}) },
	ReachHold:            func() Game { return Erase[HoldState](Hold{}) },
	SideLeanBalance:      func() Game { return Erase[LeanState](Lean{}) },
	OverheadReachBubbles: func() Game { return Erase[BubblesState](Bubbles{}) },
	ReactionTime:         func() Game { return Erase[ReactionState](Reaction{}) },
	VirtualDrums:         func() Game { return Erase[DrumsState](Drums{}) },
	StepInBox:            func() Game { return Erase[BoxState](Box{}) },
	PoseMatch:            func() Game { return Erase[PoseMatchState](Poses{}) },
	AirDrawing:           func() Game { return Erase[DrawingState](Drawing{}) },
}

// New returns the game for a kind.
func New(k Kind) (Game, error) {
	ctor, ok := registry[k]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownKind, int(k))
	}
	return ctor(), nil
}

// Kinds returns every registered kind in declaration order.
func Kinds() []Kind {
	kinds := make([]Kind, 0, len(registry))
	for k := HappySteps; k <= AirDrawing; k++ {
		if _, ok := registry[k]; ok {
			kinds = append(kinds, k)
		}
	}
	return kinds
}

// All returns one instance of every game in declaration order.
func All() []Game {
	games := make([]Game, 0, len(registry))
	for _, k := range Kinds() {
		games = append(games, registry[k]())
	}
	return games
}
