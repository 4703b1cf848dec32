package tools

import (
	"fmt"
	"strings"

	"ou-videos-mcp/internal/video"
)

// Format renders records as a numbered list for display to the client.
func Format(records []video.Record, description string) string {
	var b strings.Builder
	noun := "videos"
	if len(records) == 1 {
		noun = "video"
	}
	fmt.Fprintf(&b, "Found %d %s %s", len(records), noun, description)
	if len(records) == 0 {
		b.WriteString(".")
		return b.String()
	}
	b.WriteString(":\n")
	for i, r := range records {
		fmt.Fprintf(&b, "\n%d. %s\n", i+1, r.Title)
		if r.ChannelTitle != "" {
			fmt.Fprintf(&b, "   Channel: %s\n", r.ChannelTitle)
		}
		if !r.PublishedDate.IsZero() {
			fmt.Fprintf(&b, "   Published: %s\n", r.PublishedDate.UTC().Format("2006-01-02"))
		}
		if r.Sport != "" {
			fmt.Fprintf(&b, "   Sport: %s\n", r.Sport)
		}
		if r.Views > 0 {
			fmt.Fprintf(&b, "   Views: %d\n", r.Views)
		}
		if r.Duration != "" {
			fmt.Fprintf(&b, "   Duration: %s\n", r.Duration)
		}
		if r.URL != "" {
			fmt.Fprintf(&b, "   URL: %s\n", r.URL)
		}
	}
	return b.String()
}
