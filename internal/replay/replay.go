// Package replay embeds recorded pose sessions used for demos and tests.
package replay

import (
	"embed"
	"fmt"
	"path"
	"strings"

	"github.com/ayusman/bodyplay/internal/pose"
)

//go:embed recordings/*.json
var recordingsFS embed.FS

// LoadRecording loads a recording by name, without the .json extension.
func LoadRecording(name string) (*pose.Recording, error) {
	data, err := recordingsFS.ReadFile(path.Join("recordings", name+".json"))
	if err != nil {
		return nil, fmt.Errorf("load recording %s: %w", name, err)
	}

	rec, err := pose.ParseRecording(data)
	if err != nil {
		return nil, fmt.Errorf("load recording %s: %w", name, err)
	}
	return rec, nil
}

// Recordings lists the names of the embedded recordings.
func Recordings() ([]string, error) {
	entries, err := recordingsFS.ReadDir("recordings")
	if err != nil {
		return nil, err
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), ".json"))
	}
	return names, nil
}
