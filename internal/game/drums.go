package game

import (
	"fmt"
	"slices"
	"time"

	"github.com/ayusman/bodyplay/internal/calibration"
	"github.com/ayusman/bodyplay/internal/geometry"
	"github.com/ayusman/bodyplay/internal/pose"
)

// Drum tuning.
const (
	drumMinVisibility  = 0.5
	drumHandRadius     = 0.06
	drumCooldown       = 300 * time.Millisecond
	drumAnimation      = 300 * time.Millisecond
	drumSequenceAfter  = 5 * time.Second
	drumSequencePoints = 15
	drumSequenceBonus  = 50
	drumOffBeatPoints  = 5
	drumFreePoints     = 10
	drumElbowOffset    = 0.1
	drumRhythmWindow   = 8
)

// Pad is a drum pad. Pads are fixed for the whole game.
type Pad struct {
	ID       string     `json:"id"`
	Label    string     `json:"label"`
	Sound    string     `json:"sound"`
	Position pose.Point `json:"position"`
	Radius   float64    `json:"radius"`
	Color    int        `json:"color"`
}

var drumPads = [...]Pad{
	{"left_high", "Left High", "snare", pose.Point{X: 0.25, Y: 0.3}, 0.1, 0},
	{"left_low", "Left Low", "tom", pose.Point{X: 0.25, Y: 0.6}, 0.1, 1},
	{"right_high", "Right High", "cymbal", pose.Point{X: 0.75, Y: 0.3}, 0.1, 2},
	{"right_low", "Right Low", "kick", pose.Point{X: 0.75, Y: 0.6}, 0.1, 3},
	{"center", "Center", "crash", pose.Point{X: 0.5, Y: 0.45}, 0.12, 4},
}

const (
	padLeftHigh = iota
	padLeftLow
	padRightHigh
	padRightLow
	padCenter
	numPads
)

// The first sequence is drawn from the first four patterns, later ones from
// all five.
var drumPatterns = [][]int{
	{padLeftHigh, padRightHigh, padLeftHigh, padRightHigh},
	{padLeftLow, padRightLow, padCenter, padCenter},
	{padLeftHigh, padCenter, padRightHigh, padCenter},
	{padLeftLow, padLeftHigh, padRightLow, padRightHigh},
	{padCenter, padLeftHigh, padCenter, padRightHigh},
}

// HitAnimation marks a pad flash for the renderer.
type HitAnimation struct {
	Pad      int        `json:"pad"`
	Position pose.Point `json:"position"`
	Started  time.Time  `json:"-"`
}

// DrumsState is the virtual drums state. Count is the total number of hits.
type DrumsState struct {
	Status
	Hits       [numPads]int       `json:"hitsPerPad"`
	LastHit    [numPads]time.Time `json:"-"`
	Sequence   []int              `json:"sequence"`
	Beat       int                `json:"beat"`
	Streak     int                `json:"sequenceScore"`
	Completed  int                `json:"-"`
	InSequence int                `json:"-"`
	Animations []HitAnimation     `json:"animations"`
	HitTimes   []time.Time        `json:"-"`
	Rhythm     int                `json:"rhythm"`
	Started    time.Time          `json:"-"`
	PrevLeft   pose.Point         `json:"-"`
	PrevRight  pose.Point         `json:"-"`
	HasPrev    bool               `json:"-"`
	LeftWrist  pose.Point         `json:"leftWrist"`
	RightWrist pose.Point         `json:"rightWrist"`
}

// Drums is the virtual drum kit.
type Drums struct{}

func (Drums) Info() Info {
	return Info{
		Kind:         VirtualDrums,
		Name:         "Virtual Drums",
		Instructions: "Hit the drum pads with downward strikes! Follow the beat sequence for bonus points.",
		Duration:     60 * time.Second,
		Profile:      calibration.UpperBody,
		CountLabel:   "Hits",
	}
}

func (Drums) Initial() DrumsState {
	return DrumsState{
		Status:     Status{Feedback: "Hit the drums!"},
		LeftWrist:  pose.Point{X: 0.3, Y: 0.5},
		RightWrist: pose.Point{X: 0.7, Y: 0.5},
	}
}

// striking reports whether a wrist is moving down. Without a previous
// position the wrist is compared to a point just above its elbow.
func striking(wrist, prev pose.Point, hasPrev bool, elbow pose.Landmark) bool {
	if hasPrev {
		return wrist.Y-prev.Y > 0
	}
	return wrist.Y-(elbow.Y-drumElbowOffset) > 0
}

func (Drums) Update(t Tick, s DrumsState) DrumsState {
	s.ScoreDelta = 0
	lm := t.Landmarks
	if !lm.Complete() || !lm.Visible(drumMinVisibility, pose.LeftWrist, pose.RightWrist) {
		s.Feedback = "Make sure your hands are visible!"
		return s
	}

	now := t.Now
	if s.Started.IsZero() {
		s.Started = now
	}
	if now.Sub(s.Started) > drumSequenceAfter && len(s.Sequence) == 0 {
		s.Sequence = drumPatterns[t.IntN(len(drumPatterns)-1)]
		s.Beat, s.Streak = 0, 0
	}

	lw, rw := lm[pose.LeftWrist].Point(), lm[pose.RightWrist].Point()
	leftDown := striking(lw, s.PrevLeft, s.HasPrev, lm[pose.LeftElbow])
	rightDown := striking(rw, s.PrevRight, s.HasPrev, lm[pose.RightElbow])

	anims := slices.Clip(s.Animations)
	hit := false
	for i, pad := range drumPads {
		if !s.LastHit[i].IsZero() && now.Sub(s.LastHit[i]) < drumCooldown {
			continue
		}

		hand := ""
		switch {
		case leftDown && geometry.Touches(lw, drumHandRadius, pad.Position, pad.Radius):
			hand = "Left"
		case rightDown && geometry.Touches(rw, drumHandRadius, pad.Position, pad.Radius):
			hand = "Right"
		default:
			continue
		}

		hit = true
		s.Count++
		s.Hits[i]++
		s.LastHit[i] = now
		s.HitTimes = append(slices.Clip(s.HitTimes), now)
		if len(s.HitTimes) > drumRhythmWindow {
			s.HitTimes = s.HitTimes[len(s.HitTimes)-drumRhythmWindow:]
		}
		anims = append(anims, HitAnimation{Pad: i, Position: pad.Position, Started: now})

		switch {
		case len(s.Sequence) > 0 && s.Sequence[s.Beat] == i:
			s.ScoreDelta += drumSequencePoints
			s.Streak++
			s.Beat++
			s.InSequence++
			s.Feedback = fmt.Sprintf("Perfect! %s - %d/%d", pad.Label, s.Streak, len(s.Sequence))
			if s.Beat >= len(s.Sequence) {
				s.ScoreDelta += drumSequenceBonus
				s.Completed++
				s.Feedback = "Sequence Complete! +50 Bonus!"
				s.Sequence = drumPatterns[t.IntN(len(drumPatterns))]
				s.Beat, s.Streak = 0, 0
			}
		case len(s.Sequence) > 0:
			s.ScoreDelta += drumOffBeatPoints
			s.Feedback = fmt.Sprintf("%s hand hit %s! (Not in sequence)", hand, pad.Label)
		default:
			s.ScoreDelta += drumFreePoints
			s.Feedback = fmt.Sprintf("%s hand hit %s! +10", hand, pad.Label)
		}
	}

	live := make([]HitAnimation, 0, len(anims))
	for _, a := range anims {
		if now.Sub(a.Started) < drumAnimation {
			live = append(live, a)
		}
	}
	s.Animations = live

	if !hit {
		if len(s.Sequence) > 0 {
			next := drumPads[s.Sequence[s.Beat]]
			s.Feedback = fmt.Sprintf("Next: %s (%d/%d)", next.Label, s.Beat+1, len(s.Sequence))
		} else {
			s.Feedback = "Free play! Hit any drum!"
		}
	}

	times := make([]float64, len(s.HitTimes))
	for i, ht := range s.HitTimes {
		times[i] = ms(ht.Sub(s.Started))
	}
	s.Rhythm = geometry.IntervalConsistency(times)

	s.PrevLeft, s.PrevRight, s.HasPrev = lw, rw, true
	s.LeftWrist, s.RightWrist = lw, rw
	return s
}

// DrumsRender is the renderer payload for the drum kit.
type DrumsRender struct {
	Pads       []Pad          `json:"drumPads"`
	Hits       [numPads]int   `json:"hitsPerPad"`
	Total      int            `json:"totalHits"`
	Sequence   []string       `json:"beatSequence"`
	Beat       int            `json:"currentBeatIndex"`
	Streak     int            `json:"sequenceScore"`
	Animations []HitAnimation `json:"hitAnimations"`
	LeftWrist  pose.Point     `json:"leftWrist"`
	RightWrist pose.Point     `json:"rightWrist"`
	Rhythm     int            `json:"rhythmConsistency"`
}

func (Drums) Render(s DrumsState) any {
	seq := make([]string, len(s.Sequence))
	for i, p := range s.Sequence {
		seq[i] = drumPads[p].ID
	}
	return DrumsRender{
		Pads:       slices.Clone(drumPads[:]),
		Hits:       s.Hits,
		Total:      s.Count,
		Sequence:   seq,
		Beat:       s.Beat,
		Streak:     s.Streak,
		Animations: s.Animations,
		LeftWrist:  s.LeftWrist,
		RightWrist: s.RightWrist,
		Rhythm:     s.Rhythm,
	}
}

func (Drums) Summarize(s DrumsState) Summary {
	perPad := make(map[string]int, numPads)
	for i, n := range s.Hits {
		perPad[drumPads[i].ID] = n
	}
	return Summary{
		Accuracy: ratio(s.InSequence, s.Count),
		Metadata: map[string]any{
			"totalHits":          s.Count,
			"hitsPerPad":         perPad,
			"sequencesCompleted": s.Completed,
			"rhythmConsistency":  s.Rhythm,
		},
	}
}
