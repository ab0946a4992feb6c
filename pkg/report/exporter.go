package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"scanagram/pkg/logger"
)

// Exporter writes reports to disk in one or more formats
type Exporter struct {
	outputDir string
	logger    logger.Logger
}

// NewExporter creates an exporter writing into outputDir
func NewExporter(outputDir string, log logger.Logger) *Exporter {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Exporter{
		outputDir: outputDir,
		logger:    log,
	}
}

// ExportJSON writes the report as JSON and returns the file path
func (e *Exporter) ExportJSON(r *Report) (string, error) {
	path := e.reportPath(r, "json")

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal report: %w", err)
	}

	if err := e.writeAtomic(path, data); err != nil {
		return "", err
	}

	e.logger.InfoWithFields("JSON report saved", map[string]interface{}{
		"path":     path,
		"username": r.TargetUsername,
	})
	return path, nil
}

// ExportMarkdown writes the report as Markdown and returns the file path
func (e *Exporter) ExportMarkdown(r *Report) (string, error) {
	path := e.reportPath(r, "md")

	if err := e.writeAtomic(path, []byte(renderMarkdown(r))); err != nil {
		return "", err
	}

	e.logger.InfoWithFields("Markdown report saved", map[string]interface{}{
		"path":     path,
		"username": r.TargetUsername,
	})
	return path, nil
}

// ExportBoth writes JSON and Markdown concurrently and returns both paths
func (e *Exporter) ExportBoth(r *Report) (jsonPath, markdownPath string, err error) {
	var g errgroup.Group

	g.Go(func() error {
		var err error
		jsonPath, err = e.ExportJSON(r)
		return err
	})
	g.Go(func() error {
		var err error
		markdownPath, err = e.ExportMarkdown(r)
		return err
	})

	if err := g.Wait(); err != nil {
		return "", "", err
	}
	return jsonPath, markdownPath, nil
}

// reportPath builds the timestamped output path for a report file
func (e *Exporter) reportPath(r *Report, extension string) string {
	timestamp := r.Metadata.Timestamp
	if timestamp.IsZero() {
		timestamp = time.Now()
	}
	filename := fmt.Sprintf("instagram_%s_%s.%s",
		r.TargetUsername, timestamp.Format("20060102_150405"), extension)
	return filepath.Join(e.outputDir, filename)
}

// writeAtomic writes data through a temp file and renames it into place
func (e *Exporter) writeAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to finalize report: %w", err)
	}
	return nil
}

// renderMarkdown builds the Markdown rendition of a report
func renderMarkdown(r *Report) string {
	var b strings.Builder

	b.WriteString("# Instagram Profile Report\n\n")
	fmt.Fprintf(&b, "**Target:** @%s\n\n", r.TargetUsername)
	fmt.Fprintf(&b, "**Generated:** %s\n\n", r.Metadata.Timestamp.Format(time.RFC3339))
	b.WriteString("---\n\n")

	p := r.Profile
	b.WriteString("## Profile Information\n\n")
	fmt.Fprintf(&b, "- **Full Name:** %s\n", p.FullName)
	fmt.Fprintf(&b, "- **Bio:** %s\n", valueOr(truncate(p.Biography, 200), "N/A"))
	fmt.Fprintf(&b, "- **Followers:** %d\n", p.Followers)
	fmt.Fprintf(&b, "- **Following:** %d\n", p.Following)
	fmt.Fprintf(&b, "- **Posts:** %d\n", p.PostsCount)
	fmt.Fprintf(&b, "- **Verified:** %s\n", yesNo(p.IsVerified))
	fmt.Fprintf(&b, "- **Private:** %s\n", yesNo(p.IsPrivate))
	fmt.Fprintf(&b, "- **Business:** %s\n\n", yesNo(p.IsBusiness))

	if r.Engagement.TotalAnalyzed > 0 {
		e := r.Engagement
		b.WriteString("## Engagement Statistics\n\n")
		fmt.Fprintf(&b, "- **Posts Analyzed:** %d\n", e.TotalAnalyzed)
		fmt.Fprintf(&b, "- **Average Likes:** %.1f\n", e.AvgLikes)
		fmt.Fprintf(&b, "- **Average Comments:** %.1f\n", e.AvgComments)
		fmt.Fprintf(&b, "- **Engagement Rate:** %.3f%%\n\n", e.EngagementRate)

		if len(e.TopPosts) > 0 {
			b.WriteString("### Top Performing Posts\n\n")
			for i, post := range e.TopPosts {
				fmt.Fprintf(&b, "%d. [%d engagement](%s)\n", i+1, post.Engagement, post.URL)
			}
			b.WriteString("\n")
		}
	}

	if len(r.Temporal.HourDistribution) > 0 {
		t := r.Temporal
		b.WriteString("## Temporal Analysis\n\n")
		fmt.Fprintf(&b, "- **Peak Hour:** %d:00\n", t.PeakPostingHour)
		if t.AvgPostIntervalHours != nil {
			fmt.Fprintf(&b, "- **Avg Post Interval:** %.1f hours\n", *t.AvgPostIntervalHours)
		}
		b.WriteString("\n")
	}

	if tags := r.TopHashtags(10); len(tags) > 0 {
		b.WriteString("## Top Hashtags\n\n")
		for _, tag := range tags {
			fmt.Fprintf(&b, "- #%s: %d times\n", tag.Tag, tag.Count)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Investigation Metadata\n\n")
	m := r.Metadata
	fmt.Fprintf(&b, "- **Duration:** %.1fs\n", m.DurationSeconds)
	fmt.Fprintf(&b, "- **API Requests:** %d/%d\n", m.RateLimitStats.RequestsInLastHour, m.RateLimitStats.Limit)
	fmt.Fprintf(&b, "- **Utilization:** %.1f%%\n\n", m.RateLimitStats.UtilizationPercent)

	b.WriteString("---\n\n")
	b.WriteString("*This report is for educational and research purposes only. Respect privacy laws and Instagram's Terms of Service.*\n")

	return b.String()
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

func valueOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
