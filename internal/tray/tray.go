// Package tray provides the system tray menu for bodyplay.
package tray

import (
	"fmt"
	"sync"

	"github.com/getlantern/systray"

	"github.com/ayusman/bodyplay/internal/engine"
	"github.com/ayusman/bodyplay/internal/game"
)

// Tray is the system tray menu.
type Tray struct {
	onToggle    func(enabled bool)
	onDashboard func()
	onStopGame  func()
	onQuit      func()
	enabled     bool
	mu          sync.RWMutex

	// Menu items stored for later updates
	menuToggle     *systray.MenuItem
	menuLastResult *systray.MenuItem
}

// New creates a new Tray instance with tracking enabled.
func New() *Tray {
	return &Tray{
		enabled: true,
	}
}

// OnToggle sets the callback run when tracking is switched on or off.
func (t *Tray) OnToggle(fn func(enabled bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onToggle = fn
}

// OnDashboard sets the callback run when the dashboard item is clicked.
func (t *Tray) OnDashboard(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onDashboard = fn
}

// OnStopGame sets the callback run when the stop game item is clicked.
func (t *Tray) OnStopGame(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onStopGame = fn
}

// OnQuit sets the callback run when the quit item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray. It blocks until systray.Quit is called.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

func (t *Tray) onReady() {
	systray.SetTitle("Bodyplay")
	systray.SetTooltip("Bodyplay motion games")

	t.mu.Lock()
	t.menuToggle = systray.AddMenuItem(toggleTitle(t.enabled), "Toggle body tracking")
	systray.AddSeparator()

	t.menuLastResult = systray.AddMenuItem(resultTitle(nil), "Last finished game")
	t.menuLastResult.Disable()
	t.mu.Unlock()
	systray.AddSeparator()

	menuDashboard := systray.AddMenuItem("Open Dashboard...", "Open the dashboard in the browser")
	menuStop := systray.AddMenuItem("Stop Game", "Abandon the current game")
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit Bodyplay")

	go func() {
		for {
			select {
			case <-t.menuToggle.ClickedCh:
				t.handleToggle()
			case <-menuDashboard.ClickedCh:
				t.call(&t.onDashboard)
			case <-menuStop.ClickedCh:
				t.call(&t.onStopGame)
			case <-menuQuit.ClickedCh:
				t.call(&t.onQuit)
				systray.Quit()
				return
			}
		}
	}()
}

func (t *Tray) onExit() {}

func (t *Tray) handleToggle() {
	t.mu.Lock()
	t.enabled = !t.enabled
	enabled := t.enabled
	t.menuToggle.SetTitle(toggleTitle(enabled))
	callback := t.onToggle
	t.mu.Unlock()

	// Call the callback outside the lock to prevent deadlocks
	if callback != nil {
		callback(enabled)
	}
}

func (t *Tray) call(fn *func()) {
	t.mu.RLock()
	callback := *fn
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

// SetLastResult shows r in the menu.
func (t *Tray) SetLastResult(r engine.Result) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.menuLastResult != nil {
		t.menuLastResult.SetTitle(resultTitle(&r))
	}
}

// IsEnabled returns whether tracking is enabled.
func (t *Tray) IsEnabled() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.enabled
}

func toggleTitle(enabled bool) string {
	if enabled {
		return "● Tracking"
	}
	return "○ Paused"
}

func resultTitle(r *engine.Result) string {
	if r == nil {
		return "Last: none"
	}
	name := r.GameType.String()
	if g, err := game.New(r.GameType); err == nil {
		name = g.Info().Name
	}
	return fmt.Sprintf("Last: %s, %d pts", name, r.Score)
}
