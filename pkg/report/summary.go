package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	summaryCyan   = lipgloss.Color("#00FFFF")
	summaryGreen  = lipgloss.Color("#39FF14")
	summaryYellow = lipgloss.Color("#FFFF00")
	summaryBlue   = lipgloss.Color("#00BFFF")
	dimGray       = lipgloss.Color("#B0B0B0")

	summaryBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(summaryCyan).
			Padding(0, 2).
			Align(lipgloss.Center).
			Width(58)

	usernameStyle = lipgloss.NewStyle().
			Bold(true)

	fullNameStyle = lipgloss.NewStyle().
			Foreground(dimGray)

	labelStyle = lipgloss.NewStyle().
			Bold(true)

	followersStyle = lipgloss.NewStyle().
			Foreground(summaryGreen)

	followingStyle = lipgloss.NewStyle().
			Foreground(summaryBlue)

	postsStyle = lipgloss.NewStyle().
			Foreground(summaryYellow)

	badgeStyle = lipgloss.NewStyle().
			Foreground(summaryBlue).
			Bold(true)

	rateStyle = lipgloss.NewStyle().
			Foreground(summaryGreen)

	ruleStyle = lipgloss.NewStyle().
			Foreground(summaryCyan)
)

// Summary renders a styled console summary of the report
func Summary(r *Report) string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(summaryBoxStyle.Render("INSTAGRAM PROFILE REPORT"))
	b.WriteString("\n\n")

	p := r.Profile
	b.WriteString(usernameStyle.Render("@" + p.Username))
	b.WriteString("\n")
	if p.FullName != "" {
		b.WriteString(fullNameStyle.Render(p.FullName))
		b.WriteString("\n")
	}

	bio := truncate(p.Biography, 150)
	if bio == "" {
		bio = "No bio"
	}
	b.WriteString("\n" + bio + "\n\n")

	fmt.Fprintf(&b, "%s %s  |  %s %s  |  %s %s\n",
		labelStyle.Render("Followers:"), followersStyle.Render(fmt.Sprintf("%d", p.Followers)),
		labelStyle.Render("Following:"), followingStyle.Render(fmt.Sprintf("%d", p.Following)),
		labelStyle.Render("Posts:"), postsStyle.Render(fmt.Sprintf("%d", p.PostsCount)))

	var badges []string
	if p.IsVerified {
		badges = append(badges, badgeStyle.Render("Verified"))
	}
	if p.IsPrivate {
		badges = append(badges, badgeStyle.Foreground(summaryYellow).Render("Private"))
	}
	if p.IsBusiness {
		badges = append(badges, badgeStyle.Render("Business"))
	}
	if len(badges) > 0 {
		b.WriteString("\n" + strings.Join(badges, " | ") + "\n")
	}

	if r.Engagement.TotalAnalyzed > 0 {
		e := r.Engagement
		b.WriteString("\n" + labelStyle.Render("Engagement:") + "\n")
		fmt.Fprintf(&b, "  Avg Likes: %.0f  |  Avg Comments: %.0f\n", e.AvgLikes, e.AvgComments)
		fmt.Fprintf(&b, "  Engagement Rate: %s\n", rateStyle.Render(fmt.Sprintf("%.3f%%", e.EngagementRate)))
	}

	if tags := r.TopHashtags(5); len(tags) > 0 {
		b.WriteString("\n" + labelStyle.Render("Top Hashtags:") + "\n  ")
		names := make([]string, 0, len(tags))
		for _, tag := range tags {
			names = append(names, "#"+tag.Tag)
		}
		b.WriteString(strings.Join(names, ", "))
		b.WriteString("\n")
	}

	b.WriteString("\n" + ruleStyle.Render(strings.Repeat("─", 60)) + "\n")

	return b.String()
}

// PrintSummary writes the styled summary to stdout
func PrintSummary(r *Report) {
	fmt.Print(Summary(r))
}
