package tui

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// DebugLevel represents the importance of a debug message
type DebugLevel string

const (
	DebugLevelInfo    DebugLevel = "info"
	DebugLevelSuccess DebugLevel = "success"
	DebugLevelWarning DebugLevel = "warning"
	DebugLevelError   DebugLevel = "error"
)

// Class returns the element class the painter uses for messages of level l
func (l DebugLevel) Class() string {
	switch l {
	case DebugLevelError:
		return "error"
	case DebugLevelWarning, DebugLevelSuccess:
		return "accent"
	}
	return "muted"
}

// DebugMessage is one line of the debug log
type DebugMessage struct {
	Timestamp time.Time
	Type      string
	Content   string
	Level     DebugLevel
}

// DebugLog keeps the most recent log lines for the in-app debug panel. It is
// an io.Writer so it can sit behind a log.Logger; writes may come from any
// goroutine.
type DebugLog struct {
	mu          sync.Mutex
	messages    []DebugMessage
	maxMessages int
	visible     bool
	now         func() time.Time
}

// NewDebugLog creates a debug log holding up to max messages
func NewDebugLog(max int) *DebugLog {
	if max <= 0 {
		max = 50
	}
	return &DebugLog{
		maxMessages: max,
		now:         time.Now,
	}
}

// AddMessage adds a new debug message
func (dl *DebugLog) AddMessage(msgType, content string, level DebugLevel) {
	dl.mu.Lock()
	defer dl.mu.Unlock()

	dl.messages = append(dl.messages, DebugMessage{
		Timestamp: dl.now(),
		Type:      msgType,
		Content:   content,
		Level:     level,
	})

	// Keep only the last maxMessages
	if len(dl.messages) > dl.maxMessages {
		dl.messages = dl.messages[len(dl.messages)-dl.maxMessages:]
	}
}

// AddError adds an error message
func (dl *DebugLog) AddError(msgType string, err error) {
	dl.AddMessage(msgType, err.Error(), DebugLevelError)
}

// Write records each line of p. A line of the form "type: content" is split
// at the first colon; the level is taken from a leading "error", "warning"
// or "ok" word in the type. A log.LstdFlags date prefix is dropped.
func (dl *DebugLog) Write(p []byte) (int, error) {
	for _, line := range strings.Split(strings.TrimRight(string(p), "\n"), "\n") {
		if line == "" {
			continue
		}
		if len(line) > len(logStamp) {
			if _, err := time.Parse(logStamp, line[:len(logStamp)]); err == nil {
				line = strings.TrimLeft(line[len(logStamp):], " ")
			}
		}
		typ, content := "LOG", line
		if i := strings.Index(line, ": "); i > 0 && !strings.Contains(line[:i], " ") {
			typ, content = strings.ToUpper(line[:i]), line[i+2:]
		}
		dl.AddMessage(typ, content, levelOf(typ))
	}
	return len(p), nil
}

const logStamp = "2006/01/02 15:04:05"

func levelOf(typ string) DebugLevel {
	switch t := strings.ToLower(typ); {
	case strings.HasPrefix(t, "error"), strings.HasPrefix(t, "im"), strings.HasPrefix(t, "panic"):
		return DebugLevelError
	case strings.HasPrefix(t, "warn"):
		return DebugLevelWarning
	case strings.HasPrefix(t, "ok"), strings.HasPrefix(t, "saved"):
		return DebugLevelSuccess
	}
	return DebugLevelInfo
}

// Messages returns up to n of the most recent messages, oldest first
func (dl *DebugLog) Messages(n int) []DebugMessage {
	dl.mu.Lock()
	defer dl.mu.Unlock()
	if n <= 0 || n > len(dl.messages) {
		n = len(dl.messages)
	}
	return append([]DebugMessage(nil), dl.messages[len(dl.messages)-n:]...)
}

// Toggle toggles the visibility of the debug panel
func (dl *DebugLog) Toggle() {
	dl.mu.Lock()
	dl.visible = !dl.visible
	dl.mu.Unlock()
}

// IsVisible returns whether the debug panel is visible
func (dl *DebugLog) IsVisible() bool {
	dl.mu.Lock()
	defer dl.mu.Unlock()
	return dl.visible
}

// Stamp formats the message time as shown in the panel
func (msg DebugMessage) Stamp() string {
	return "[" + msg.Timestamp.Format("15:04:05") + "]"
}

// String formats msg as "[15:04:05] TYPE: content"
func (msg DebugMessage) String() string {
	return fmt.Sprintf("%s %s: %s", msg.Stamp(), msg.Type, msg.Content)
}
