package plugin

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"github.com/ayusman/bodyplay/internal/engine"
)

// Reporter fans finished results out to every plugin subscribed to
// session.completed. Report returns immediately; plugins run in the
// background and their failures are only logged.
type Reporter struct {
	manager  *Manager
	executor *Executor
	wg       sync.WaitGroup
}

// NewReporter creates a Reporter.
func NewReporter(m *Manager, e *Executor) *Reporter {
	return &Reporter{manager: m, executor: e}
}

// Report implements engine.Reporter.
func (r *Reporter) Report(_ context.Context, res engine.Result) error {
	payload, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}

	for _, p := range r.manager.Subscribers(EventSessionCompleted) {
		req := &Request{
			Event:   EventSessionCompleted,
			Config:  p.Manifest.Config,
			Payload: payload,
		}

		r.wg.Add(1)
		go func(p *Plugin) {
			defer r.wg.Done()

			// The engine's context ends when Report returns.
			resp, err := r.executor.Execute(context.Background(), p, req)
			switch {
			case err != nil:
				log.Printf("Plugin %s: %v", p.Manifest.Name, err)
			case !resp.Success:
				log.Printf("Plugin %s reported failure: %s", p.Manifest.Name, resp.Error)
			}
		}(p)
	}
	return nil
}

// Wait blocks until every plugin started so far has finished.
func (r *Reporter) Wait() {
	r.wg.Wait()
}
