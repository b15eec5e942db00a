package pose

import (
	"encoding/json"
	"fmt"
	"time"
)

// Recording is a captured sequence of pose frames used for replay and tests.
type Recording struct {
	Name   string
	FPS    float64
	Frames []RecordedFrame
}

// RecordedFrame is one frame of a Recording. Landmarks is nil when no body
// was detected at that instant.
type RecordedFrame struct {
	Offset    time.Duration
	Landmarks Frame
}

// Duration returns the offset of the last frame.
func (r *Recording) Duration() time.Duration {
	if len(r.Frames) == 0 {
		return 0
	}
	return r.Frames[len(r.Frames)-1].Offset
}

type jsonRecording struct {
	Name   string      `json:"name"`
	FPS    float64     `json:"fps"`
	Frames []jsonFrame `json:"frames"`
}

// jsonFrame stores only the landmarks that matter as [x, y, visibility]
// triples keyed by landmark name. Unlisted landmarks are invisible.
type jsonFrame struct {
	OffsetMs  int64                 `json:"t"`
	Landmarks map[string][3]float64 `json:"landmarks"`
}

// ParseRecording decodes a JSON recording.
func ParseRecording(data []byte) (*Recording, error) {
	var raw jsonRecording
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse recording: %w", err)
	}
	if raw.FPS <= 0 {
		return nil, fmt.Errorf("parse recording %q: fps must be positive", raw.Name)
	}

	rec := &Recording{
		Name:   raw.Name,
		FPS:    raw.FPS,
		Frames: make([]RecordedFrame, 0, len(raw.Frames)),
	}
	for i, f := range raw.Frames {
		frame := RecordedFrame{Offset: time.Duration(f.OffsetMs) * time.Millisecond}
		if f.Landmarks != nil {
			frame.Landmarks = make(Frame, NumLandmarks)
			for name, v := range f.Landmarks {
				idx, ok := LandmarkIndex(name)
				if !ok {
					return nil, fmt.Errorf("parse recording %q: frame %d: unknown landmark %q", raw.Name, i, name)
				}
				frame.Landmarks[idx] = Landmark{X: v[0], Y: v[1], Visibility: v[2]}
			}
		}
		rec.Frames = append(rec.Frames, frame)
	}
	return rec, nil
}

// Player replays a Recording against wall-clock offsets.
type Player struct {
	rec   *Recording
	start time.Time
	loop  bool
}

// NewPlayer creates a Player that starts at the given instant.
func NewPlayer(rec *Recording, start time.Time, loop bool) *Player {
	return &Player{rec: rec, start: start, loop: loop}
}

// FrameAt returns the last recorded frame at or before now.
func (p *Player) FrameAt(now time.Time) Frame {
	if len(p.rec.Frames) == 0 {
		return nil
	}
	offset := now.Sub(p.start)
	if offset < 0 {
		return nil
	}
	if total := p.rec.Duration(); p.loop && total > 0 {
		offset %= total
	}

	var current Frame
	for _, f := range p.rec.Frames {
		if f.Offset > offset {
			break
		}
		current = f.Landmarks
	}
	return current
}
