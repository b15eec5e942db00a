package app

import (
	"bytes"
	"log"
	"time"

	"gocv.io/x/gocv"
)

// pipelineState carries the idle/active mode between frames.
type pipelineState struct {
	active     bool
	lastMotion time.Time
}

// fps returns the capture rate for the current mode.
func (s *pipelineState) fps() int {
	if s.active {
		return ActiveFPS
	}
	return IdleFPS
}

// runPipeline is the capture loop. It reads frames at IdleFPS until motion is
// seen, then at ActiveFPS until IdleTimeoutMs passes without motion. A running
// game keeps the pipeline active.
func (a *App) runPipeline(stop <-chan struct{}) {
	st := &pipelineState{lastMotion: time.Now()}
	rate := st.fps()

	ticker := time.NewTicker(time.Second / time.Duration(rate))
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case now := <-ticker.C:
			if !a.IsEnabled() {
				continue
			}

			a.step(st, now)

			if r := st.fps(); r != rate {
				rate = r
				a.mu.RLock()
				a.camera.SetFPS(rate)
				a.mu.RUnlock()
				ticker.Reset(time.Second / time.Duration(rate))
			}
		}
	}
}

// step processes one camera frame: it publishes the JPEG for the stream,
// updates the motion mode and publishes the detected pose. Poses are only
// detected in active mode; idle frames clear the pose slot.
func (a *App) step(st *pipelineState, now time.Time) {
	a.mu.RLock()
	cam, det := a.camera, a.detector
	a.mu.RUnlock()

	frame, err := cam.ReadFrame()
	if err != nil {
		log.Printf("Error reading frame: %v", err)
		return
	}
	defer frame.Close()

	if buf, err := gocv.IMEncode(gocv.JPEGFileExt, *frame); err == nil {
		a.jpegs.Publish(bytes.Clone(buf.GetBytes()))
		buf.Close()
	}

	m := a.motion.Detect(frame)
	switch {
	case m.Detected || a.gameActive():
		st.lastMotion = now
		if !st.active {
			st.active = true
			log.Println("Switched to active mode")
		}
	case st.active && now.Sub(st.lastMotion) > time.Duration(IdleTimeoutMs)*time.Millisecond:
		st.active = false
		a.frames.Publish(nil)
		log.Println("Switched to idle mode")
	}

	if !st.active || det == nil {
		return
	}

	landmarks, err := det.Detect(frame)
	if err != nil {
		log.Printf("Error detecting pose: %v", err)
		a.frames.Publish(nil)
		return
	}
	a.frames.Publish(landmarks)
}
