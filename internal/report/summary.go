package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"feedsync/internal/models"
	"feedsync/pkg/metadata"
)

const hashPrefixLen = 12

// Summary is everything the report prints about one run.
type Summary struct {
	Source      string
	Manifest    models.Manifest
	Artifacts   []metadata.Artifact
	Locate      func(name string) string
	Duration    time.Duration
	FeedBytes   int64
	InvalidURLs int
}

// Render returns the Markdown summary of a run.
func Render(s Summary) string {
	var sb strings.Builder

	sb.WriteString("## Feed sync summary\n\n")
	fmt.Fprintf(&sb, "- Source: %s\n", s.Source)
	fmt.Fprintf(&sb, "- Feed size: %s\n", FormatMB(s.FeedBytes))
	fmt.Fprintf(&sb, "- Products: %d\n", s.Manifest.TotalProducts)
	fmt.Fprintf(&sb, "- Invalid URLs kept as is: %d\n", s.InvalidURLs)
	fmt.Fprintf(&sb, "- Duration: %s\n\n", s.Duration.Round(time.Millisecond))

	categoryRows := make([][]string, 0, len(s.Manifest.Categories))
	for _, c := range s.Manifest.Categories {
		categoryRows = append(categoryRows, []string{c.Name, strconv.Itoa(c.Count), c.File})
	}

	sb.WriteString(strings.Join(Table([]string{"Category", "Products", "File"}, categoryRows), "\n"))
	sb.WriteString("\n\n")

	artifactRows := make([][]string, 0, len(s.Artifacts))
	for _, a := range s.Artifacts {
		location := a.Name
		if s.Locate != nil {
			location = s.Locate(a.Name)
		}

		artifactRows = append(artifactRows, []string{location, strconv.Itoa(a.Products), strconv.Itoa(a.Bytes), a.ShortHash(hashPrefixLen)})
	}

	sb.WriteString(strings.Join(Table([]string{"Artifact", "Products", "Bytes", "SHA-256"}, artifactRows), "\n"))
	sb.WriteString("\n")

	return sb.String()
}

// Print writes the rendered summary to w.
func Print(w io.Writer, s Summary) error {
	_, err := io.WriteString(w, Render(s))

	return err
}

// FormatMB renders a byte count in megabytes with two decimals.
func FormatMB(n int64) string {
	return fmt.Sprintf("%.2f MB", float64(n)/1024/1024)
}
