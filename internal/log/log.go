package log

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

type entry struct {
	TS     string         `json:"ts"`
	Level  string         `json:"level"`
	RunID  string         `json:"run_id,omitempty"`
	Cmd    string         `json:"cmd,omitempty"`
	Action string         `json:"action,omitempty"`
	Err    string         `json:"err,omitempty"`
	Fields map[string]any `json:"fields,omitempty"`
}

var (
	mu    sync.RWMutex
	runID string
	cmd   string
)

// StartRun tags every following entry with a fresh run id and the command
// name, and returns the id.
func StartRun(command string) string {
	id := uuid.NewString()
	mu.Lock()
	runID, cmd = id, command
	mu.Unlock()
	return id
}

// RunID is the id set by StartRun, or "" before any run.
func RunID() string {
	mu.RLock()
	defer mu.RUnlock()
	return runID
}

func write(level, action string, err error, fields map[string]any) {
	mu.RLock()
	e := entry{TS: time.Now().UTC().Format(time.RFC3339), Level: level, RunID: runID, Cmd: cmd, Action: action, Fields: fields}
	mu.RUnlock()
	if err != nil {
		e.Err = err.Error()
	}
	b, _ := json.Marshal(e)
	log.Println(string(b))
}

func Info(action string, fields map[string]any)  { write("info", action, nil, fields) }
func Audit(action string, fields map[string]any) { write("audit", action, nil, fields) }
func Warn(action string, fields map[string]any)  { write("warn", action, nil, fields) }
func Error(action string, err error, fields map[string]any) {
	write("error", action, err, fields)
}
