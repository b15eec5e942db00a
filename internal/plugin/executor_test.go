package plugin

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

func scriptPlugin(t *testing.T, script string) *Plugin {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("skipping test on Windows")
	}

	dir := writePlugin(t, t.TempDir(), "test-plugin", "", script)
	return &Plugin{
		Manifest:   Manifest{Name: "test-plugin", Executable: "run.sh", Events: []string{EventSessionCompleted}},
		Path:       dir,
		Executable: filepath.Join(dir, "run.sh"),
	}
}

func TestExecutor_Execute(t *testing.T) {
	p := scriptPlugin(t, "#!/bin/sh\necho '{\"success\":true,\"data\":{\"message\":\"hello world\"}}'\n")

	resp, err := NewExecutor(5*time.Second).Execute(context.Background(), p, &Request{Event: EventSessionCompleted})
	if err != nil {
		t.Fatalf("Execute() failed: %v", err)
	}
	if !resp.Success || resp.Error != "" {
		t.Errorf("unexpected response: %+v", resp)
	}

	var data map[string]any
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		t.Fatalf("failed to unmarshal response data: %v", err)
	}
	if data["message"] != "hello world" {
		t.Errorf("message = %v", data["message"])
	}
}

func TestExecutor_Execute_ReadsStdin(t *testing.T) {
	p := scriptPlugin(t, "#!/bin/sh\nINPUT=$(cat)\necho \"{\\\"success\\\":true,\\\"data\\\":$INPUT}\"\n")

	req := &Request{
		Event:   EventSessionCompleted,
		Config:  json.RawMessage(`{"file":"log.jsonl"}`),
		Payload: json.RawMessage(`{"gameType":"squats","score":15}`),
	}
	resp, err := NewExecutor(0).Execute(context.Background(), p, req)
	if err != nil {
		t.Fatalf("Execute() failed: %v", err)
	}

	var echoed Request
	if err := json.Unmarshal(resp.Data, &echoed); err != nil {
		t.Fatalf("failed to unmarshal echoed request: %v", err)
	}
	if echoed.Event != EventSessionCompleted {
		t.Errorf("event = %q", echoed.Event)
	}
	if string(echoed.Payload) != `{"gameType":"squats","score":15}` {
		t.Errorf("payload = %s", echoed.Payload)
	}
	if string(echoed.Config) != `{"file":"log.jsonl"}` {
		t.Errorf("config = %s", echoed.Config)
	}
}

func TestExecutor_Execute_Failures(t *testing.T) {
	tests := []struct {
		name    string
		script  string
		wantErr string
	}{
		{
			name:    "non-zero exit with stderr",
			script:  "#!/bin/sh\necho boom >&2\nexit 3\n",
			wantErr: "stderr: boom",
		},
		{
			name:    "invalid json",
			script:  "#!/bin/sh\necho not-json\n",
			wantErr: "failed to parse plugin response",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := scriptPlugin(t, tt.script)
			_, err := NewExecutor(5*time.Second).Execute(context.Background(), p, &Request{})
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestExecutor_Execute_Timeout(t *testing.T) {
	p := scriptPlugin(t, "#!/bin/sh\nexec sleep 5\n")

	start := time.Now()
	_, err := NewExecutor(100*time.Millisecond).Execute(context.Background(), p, &Request{})
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
	if time.Since(start) > 3*time.Second {
		t.Error("timeout was not enforced")
	}
}
