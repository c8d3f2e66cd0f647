package alerting

import (
	"fmt"
	"strings"
	"time"

	"custody-tracker/internal/model"
)

// DefaultPreviewSize events listed individually in a digest
const DefaultPreviewSize = 20

// Digest rendered notification for one batch of fired events
type Digest struct {
	Subject   string
	Text      string
	Total     int
	Previewed int
}

// DigestOptions presentation settings
type DigestOptions struct {
	SubjectPrefix string
	PreviewSize   int
	// Location used to print event times; UTC when nil
	Location *time.Location
}

// BuildDigest renders events, already ordered by time, into one message body.
// Only the first PreviewSize events are listed; the total always counts all of them.
func BuildDigest(events []model.Event, opts DigestOptions) Digest {
	size := opts.PreviewSize
	if size <= 0 {
		size = DefaultPreviewSize
	}
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}

	total := len(events)
	shown := events
	if len(shown) > size {
		shown = shown[:size]
	}

	noun := "alerts"
	if total == 1 {
		noun = "alert"
	}
	subject := fmt.Sprintf("%d %s fired: events in the next 7 days", total, noun)
	if opts.SubjectPrefix != "" {
		subject = opts.SubjectPrefix + " " + subject
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d event(s) are scheduled within the next 7 days.\n\n", total)
	for i := range shown {
		b.WriteString(digestLine(&shown[i], loc))
		b.WriteByte('\n')
	}
	if rest := total - len(shown); rest > 0 {
		fmt.Fprintf(&b, "\n... and %d more. Open the active alerts list for the full view.\n", rest)
	}

	return Digest{
		Subject:   subject,
		Text:      b.String(),
		Total:     total,
		Previewed: len(shown),
	}
}

func digestLine(ev *model.Event, loc *time.Location) string {
	parts := []string{
		ev.EventAt.In(loc).Format("2006-01-02 15:04 MST"),
		ev.Category.Label(),
	}
	if ev.Process != nil {
		if ev.Process.Person != nil {
			parts = append(parts, ev.Process.Person.FullName)
		}
		parts = append(parts, "process "+ev.Process.ProcessNumber)
	}
	if ev.Description != nil && *ev.Description != "" {
		parts = append(parts, *ev.Description)
	}
	return "- " + strings.Join(parts, " | ")
}
