package testsupport

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

// WriteFile writes content to the target path, creating parent directories.
func WriteFile(t testing.TB, path, content string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// WriteTranscript drops a minimal transcript JSON fixture and returns its path.
func WriteTranscript(t testing.TB, dir, meetingID, text string) string {
	t.Helper()

	payload, err := json.Marshal(map[string]string{
		"meeting_id": meetingID,
		"timestamp":  "2026-08-01T12:00:00Z",
		"transcript": text,
	})
	if err != nil {
		t.Fatalf("marshal transcript: %v", err)
	}
	path := filepath.Join(dir, meetingID+".json")
	WriteFile(t, path, string(payload))
	return path
}
