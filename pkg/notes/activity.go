package notes

import (
	"fmt"
	"time"
)

// Activity is a span of time spent on a note. An open activity has a zero
// End.
type Activity struct {
	NoteID string    `json:"note"`
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
}

// Open reports whether the activity is still running.
func (a Activity) Open() bool { return a.End.IsZero() }

// Duration returns the length of the activity, measured to now if open.
func (a Activity) Duration(now time.Time) time.Duration {
	end := a.End
	if a.Open() {
		end = now
	}
	return max(end.Sub(a.Start), 0)
}

// StartActivity closes the running activity, if any, and starts one on id.
// Starting the note that is already running does nothing.
func (t *Tree) StartActivity(id string, now time.Time) error {
	if id == t.Root {
		return ErrRoot
	}
	if _, err := t.Get(id); err != nil {
		return err
	}
	if cur := t.Current(); cur != nil && cur.NoteID == id {
		return nil
	}
	t.StopActivity(now)
	t.Activities = append(t.Activities, Activity{NoteID: id, Start: now})
	return nil
}

// StopActivity closes the running activity.
func (t *Tree) StopActivity(now time.Time) {
	if cur := t.Current(); cur != nil {
		cur.End = now
	}
}

// Current returns the running activity, or nil.
func (t *Tree) Current() *Activity {
	if len(t.Activities) == 0 {
		return nil
	}
	a := &t.Activities[len(t.Activities)-1]
	if !a.Open() {
		return nil
	}
	return a
}

// Durations totals the time spent on each note.
func (t *Tree) Durations(now time.Time) map[string]time.Duration {
	out := map[string]time.Duration{}
	for _, a := range t.Activities {
		out[a.NoteID] += a.Duration(now)
	}
	return out
}

// Total returns the time spent on id and all its descendants.
func (t *Tree) Total(id string, durations map[string]time.Duration) time.Duration {
	n, ok := t.Notes[id]
	if !ok {
		return 0
	}
	d := durations[id]
	for _, c := range n.Children {
		d += t.Total(c, durations)
	}
	return d
}

// FormatDuration renders d compactly: "1h05m", "12m", "40s".
func FormatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	switch {
	case d >= time.Hour:
		return fmt.Sprintf("%dh%02dm", int(d.Hours()), int(d.Minutes())%60)
	case d >= time.Minute:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	default:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
}
