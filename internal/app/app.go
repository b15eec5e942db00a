// Package app wires the camera pipeline, the pose detector and the game
// engine together and reports finished attempts.
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/ayusman/bodyplay/internal/capture"
	"github.com/ayusman/bodyplay/internal/detector"
	"github.com/ayusman/bodyplay/internal/engine"
	"github.com/ayusman/bodyplay/internal/game"
	"github.com/ayusman/bodyplay/internal/plugin"
	"github.com/ayusman/bodyplay/internal/pose"
	"github.com/ayusman/bodyplay/internal/store"
)

// Pipeline timing constants.
const (
	// IdleFPS is the frame rate when no motion is detected.
	IdleFPS = 5
	// ActiveFPS is the frame rate while there is motion or a game is running.
	ActiveFPS = 15
	// IdleTimeoutMs is the time in milliseconds to wait before switching back to idle mode.
	IdleTimeoutMs = 2000
	// GameFPS is the default engine tick rate.
	GameFPS = 30
)

// Config holds configuration options for the application.
type Config struct {
	Store     *store.Store
	PluginDir string
	Camera    capture.Config
	Motion    capture.MotionConfig
	Detector  detector.Config
	Engine    engine.Config
	GameFPS   int
}

// DefaultConfig returns the default application configuration.
func DefaultConfig() Config {
	return Config{
		Camera:   capture.DefaultConfig(),
		Motion:   capture.DefaultMotionConfig(),
		Detector: detector.DefaultConfig(),
		Engine:   engine.DefaultConfig(),
		GameFPS:  GameFPS,
	}
}

// ResultPublisher is implemented by publishers that also want final results.
type ResultPublisher interface {
	PublishResult(r engine.Result)
}

// App owns the capture pipeline and at most one running game.
type App struct {
	config     Config
	camera     capture.Camera
	motion     *capture.MotionDetector
	detector   detector.Detector
	frames     *capture.Slot[pose.Frame]
	jpegs      *capture.Slot[[]byte]
	pluginMgr  *plugin.Manager
	pluginExec *plugin.Executor
	plugins    *plugin.Reporter

	// startMu serializes replacing the current game.
	startMu sync.Mutex

	mu           sync.RWMutex
	enabled      bool
	stopCh       chan struct{}
	pipelineDone chan struct{}
	publisher    engine.Publisher
	onSessionEnd func(engine.Result)
	game         *engine.Engine
	cancelGame   context.CancelFunc
	gameDone     chan struct{}
	lastResult   *engine.Result
}

// New creates a new App instance with the given configuration.
func New(config Config) *App {
	def := DefaultConfig()
	if config.GameFPS <= 0 {
		config.GameFPS = def.GameFPS
	}
	// An unset engine config gets the defaults.
	if config.Engine.PublishInterval == 0 && config.Engine.Blend == 0 {
		config.Engine = def.Engine
	}

	a := &App{
		config:     config,
		camera:     capture.NewCamera(config.Camera),
		motion:     capture.NewMotionDetector(config.Motion),
		frames:     capture.NewSlot[pose.Frame](),
		jpegs:      capture.NewSlot[[]byte](),
		pluginMgr:  plugin.NewManager(config.PluginDir),
		pluginExec: plugin.NewExecutor(plugin.DefaultTimeout),
	}
	a.plugins = plugin.NewReporter(a.pluginMgr, a.pluginExec)

	// Try MediaPipe first, fall back to mock detector
	if mp, err := detector.NewMediaPipeDetector(config.Detector); err == nil {
		a.detector = mp
		log.Println("Using MediaPipe pose detection")
	} else {
		log.Printf("MediaPipe not available (%v), using mock detector", err)
		a.detector = detector.NewMockDetector()
	}

	return a
}

// SetEnabled enables or disables pose tracking.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.enabled = enabled
	if !enabled {
		a.frames.Publish(nil)
	}
}

// IsEnabled returns whether pose tracking is currently enabled.
func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// SetCamera replaces the camera. It must be called before Start.
func (a *App) SetCamera(c capture.Camera) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.camera = c
}

// SetDetector sets the pose detector implementation to use.
func (a *App) SetDetector(d detector.Detector) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.detector = d
}

// SetPublisher sets the receiver of engine snapshots. Publishers that
// implement ResultPublisher also receive final results.
func (a *App) SetPublisher(p engine.Publisher) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.publisher = p
}

// OnSessionEnd registers a callback run after every finished attempt.
func (a *App) OnSessionEnd(fn func(engine.Result)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onSessionEnd = fn
}

// DiscoverPlugins scans the plugin directory and loads available plugins.
func (a *App) DiscoverPlugins() error {
	return a.pluginMgr.Discover()
}

// Start opens the camera and begins the capture pipeline.
func (a *App) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopCh != nil {
		return nil
	}

	if err := a.camera.Open(); err != nil {
		return err
	}
	a.camera.SetFPS(IdleFPS)

	a.stopCh = make(chan struct{})
	a.pipelineDone = make(chan struct{})
	go func(stop <-chan struct{}, done chan<- struct{}) {
		defer close(done)
		a.runPipeline(stop)
	}(a.stopCh, a.pipelineDone)

	log.Println("Capture pipeline started")
	return nil
}

// Stop ends any running game, halts the pipeline and releases resources.
func (a *App) Stop() {
	a.startMu.Lock()
	a.stopGame()
	a.startMu.Unlock()

	a.mu.Lock()
	done := a.pipelineDone
	if a.stopCh != nil {
		close(a.stopCh)
		a.stopCh = nil
		a.pipelineDone = nil
	}
	a.mu.Unlock()

	// The pipeline takes a.mu for every frame, so wait without holding it.
	if done != nil {
		<-done
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.camera.Close(); err != nil {
		log.Printf("Error closing camera: %v", err)
	}

	a.motion.Close()

	if a.detector != nil {
		if err := a.detector.Close(); err != nil {
			log.Printf("Error closing detector: %v", err)
		}
	}

	a.frames.Reset()
	log.Println("Capture pipeline stopped")
}

// Running reports whether the capture pipeline is running.
func (a *App) Running() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.stopCh != nil
}

// Frames returns the slot holding the latest detected pose.
func (a *App) Frames() *capture.Slot[pose.Frame] {
	return a.frames
}

// JPEGs returns the slot holding the latest encoded camera frame.
func (a *App) JPEGs() *capture.Slot[[]byte] {
	return a.jpegs
}

// PluginManager returns the plugin manager.
func (a *App) PluginManager() *plugin.Manager {
	return a.pluginMgr
}

// Detector returns the pose detector.
func (a *App) Detector() detector.Detector {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.detector
}

// LastResult returns the result of the most recently finished attempt.
func (a *App) LastResult() (engine.Result, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.lastResult == nil {
		return engine.Result{}, false
	}
	return *a.lastResult, true
}

// StartGame abandons any attempt in progress and starts kind. Engine methods
// are never called with a.mu held since starting the engine opens the
// pipeline. Concurrent calls leave exactly one engine running.
func (a *App) StartGame(kind game.Kind) (engine.Snapshot, error) {
	g, err := game.New(kind)
	if err != nil {
		return engine.Snapshot{}, err
	}

	e := engine.New(g, gameSource{a}, a.config.Engine)
	e.SetPublisher(engine.PublisherFunc(a.publish))
	e.SetReporter(engine.ReporterFunc(a.report))

	a.startMu.Lock()
	defer a.startMu.Unlock()

	a.stopGame()
	a.frames.Reset()

	if err := e.Start(); err != nil {
		e.Stop()
		a.mu.Lock()
		a.game = nil
		a.mu.Unlock()
		return engine.Snapshot{}, fmt.Errorf("start %s: %w", kind, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	a.mu.Lock()
	a.game = e
	a.cancelGame = cancel
	a.gameDone = done
	a.mu.Unlock()

	go func() {
		defer close(done)
		defer cancel()
		if err := e.Run(ctx, engine.NewFrameTicker(a.config.GameFPS)); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("Game loop for %s ended: %v", kind, err)
		}
	}()

	return e.Snapshot(), nil
}

// StopGame abandons the attempt in progress without reporting it. It returns
// engine.ErrNotRunning when nothing is calibrating or running.
func (a *App) StopGame() error {
	a.startMu.Lock()
	defer a.startMu.Unlock()

	a.mu.RLock()
	e := a.game
	a.mu.RUnlock()

	if e == nil {
		return engine.ErrNotRunning
	}
	if p := e.Phase(); p != engine.PhaseCalibrating && p != engine.PhaseRunning {
		return engine.ErrNotRunning
	}

	a.stopGame()
	a.publish(e.Snapshot())
	log.Printf("Stopped %s", e.Game().Info().Name)
	return nil
}

// Snapshot returns the state of the current or last game. It returns false
// if no game was started.
func (a *App) Snapshot() (engine.Snapshot, bool) {
	a.mu.RLock()
	e := a.game
	a.mu.RUnlock()

	if e == nil {
		return engine.Snapshot{}, false
	}
	return e.Snapshot(), true
}

// gameActive reports whether a game is calibrating or running.
func (a *App) gameActive() bool {
	a.mu.RLock()
	e := a.game
	a.mu.RUnlock()

	if e == nil {
		return false
	}
	p := e.Phase()
	return p == engine.PhaseCalibrating || p == engine.PhaseRunning
}

// stopGame stops the current engine and waits for its loop to return, so no
// snapshot from the old attempt is published afterwards.
func (a *App) stopGame() {
	a.mu.Lock()
	e, cancel, done := a.game, a.cancelGame, a.gameDone
	a.cancelGame, a.gameDone = nil, nil
	a.mu.Unlock()

	if e != nil {
		e.Stop()
	}
	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

func (a *App) publish(s engine.Snapshot) {
	a.mu.RLock()
	p := a.publisher
	a.mu.RUnlock()

	if p != nil {
		p.Publish(s)
	}
}

// report saves the result, hands it to plugins and notifies listeners. Only
// the store can fail the report; plugins run in the background.
func (a *App) report(ctx context.Context, res engine.Result) error {
	var err error
	if a.config.Store != nil {
		if serr := store.NewReporter(a.config.Store).Report(ctx, res); serr != nil {
			err = fmt.Errorf("save session: %w", serr)
		}
	}
	a.plugins.Report(ctx, res)

	a.mu.Lock()
	a.lastResult = &res
	pub, cb := a.publisher, a.onSessionEnd
	a.mu.Unlock()

	if rp, ok := pub.(ResultPublisher); ok {
		rp.PublishResult(res)
	}
	if cb != nil {
		cb(res)
	}
	return err
}

// gameSource feeds the latest detected pose to the engine and starts the
// pipeline when an attempt begins.
type gameSource struct {
	a *App
}

func (s gameSource) Latest() pose.Frame {
	return s.a.frames.Latest()
}

func (s gameSource) Open() error {
	s.a.SetEnabled(true)
	return s.a.Start()
}
