package analyzer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scanagram/pkg/report"
)

func post(shortcode string, likes, comments int, ts time.Time) report.PostMetadata {
	return report.PostMetadata{
		Shortcode: shortcode,
		URL:       "https://www.instagram.com/p/" + shortcode + "/",
		Likes:     likes,
		Comments:  comments,
		Timestamp: ts,
	}
}

func TestCalculateEngagement(t *testing.T) {
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	posts := []report.PostMetadata{
		post("A", 100, 10, base),
		post("B", 200, 20, base),
		post("C", 300, 30, base),
	}
	profile := report.ProfileMetadata{Followers: 10000}

	stats := CalculateEngagement(posts, profile)

	assert.Equal(t, 3, stats.TotalAnalyzed)
	assert.Equal(t, 600, stats.TotalLikes)
	assert.Equal(t, 60, stats.TotalComments)
	assert.Equal(t, 200.0, stats.AvgLikes)
	assert.Equal(t, 20.0, stats.AvgComments)
	// ((600+60)/3)/10000*100 = 2.2
	assert.Equal(t, 2.2, stats.EngagementRate)

	require.Len(t, stats.TopPosts, 3)
	assert.Equal(t, 330, stats.TopPosts[0].Engagement)
	assert.Equal(t, 110, stats.TopPosts[2].Engagement)
}

func TestCalculateEngagementTopFiveCap(t *testing.T) {
	base := time.Now()
	var posts []report.PostMetadata
	for i := 0; i < 8; i++ {
		posts = append(posts, post("P", i*10, 0, base))
	}

	stats := CalculateEngagement(posts, report.ProfileMetadata{Followers: 100})
	require.Len(t, stats.TopPosts, 5)
	assert.Equal(t, 70, stats.TopPosts[0].Engagement)
}

func TestCalculateEngagementEmpty(t *testing.T) {
	stats := CalculateEngagement(nil, report.ProfileMetadata{Followers: 100})
	assert.Zero(t, stats.TotalAnalyzed)
	assert.Empty(t, stats.TopPosts)
}

func TestCalculateEngagementZeroFollowers(t *testing.T) {
	posts := []report.PostMetadata{post("A", 10, 1, time.Now())}
	stats := CalculateEngagement(posts, report.ProfileMetadata{Followers: 0})
	assert.Zero(t, stats.EngagementRate)
}

func TestAnalyzeTemporal(t *testing.T) {
	posts := []report.PostMetadata{
		post("A", 0, 0, time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)),  // Monday 09:00
		post("B", 0, 0, time.Date(2026, 1, 6, 18, 0, 0, 0, time.UTC)), // Tuesday 18:00
		post("C", 0, 0, time.Date(2026, 1, 7, 18, 0, 0, 0, time.UTC)), // Wednesday 18:00
	}

	stats := AnalyzeTemporal(posts)

	assert.Equal(t, 18, stats.PeakPostingHour)
	assert.Equal(t, 2, stats.HourDistribution[18])
	assert.Equal(t, 1, stats.HourDistribution[9])
	assert.Equal(t, 0, stats.HourDistribution[3])
	assert.Equal(t, 1, stats.DayDistribution["Monday"])
	assert.Equal(t, 1, stats.DayDistribution["Tuesday"])

	// Two intervals of 33h and 24h average to 28.5h
	require.NotNil(t, stats.AvgPostIntervalHours)
	assert.Equal(t, 28.5, *stats.AvgPostIntervalHours)
}

func TestAnalyzeTemporalHandlesUnsortedInput(t *testing.T) {
	posts := []report.PostMetadata{
		post("B", 0, 0, time.Date(2026, 1, 3, 0, 0, 0, 0, time.UTC)),
		post("A", 0, 0, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)),
		post("C", 0, 0, time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)),
	}

	stats := AnalyzeTemporal(posts)
	require.NotNil(t, stats.AvgPostIntervalHours)
	assert.Equal(t, 48.0, *stats.AvgPostIntervalHours)
}

func TestAnalyzeTemporalSinglePost(t *testing.T) {
	stats := AnalyzeTemporal([]report.PostMetadata{post("A", 0, 0, time.Now())})
	assert.Nil(t, stats.AvgPostIntervalHours)
}

func TestAnalyzeTemporalEmpty(t *testing.T) {
	stats := AnalyzeTemporal(nil)
	assert.Empty(t, stats.HourDistribution)
	assert.Nil(t, stats.AvgPostIntervalHours)
}

func TestAssessRisk(t *testing.T) {
	profile := report.ProfileMetadata{
		Followers: 5000,
		Following: 100,
		IsPrivate: true,
	}
	posts := []report.PostMetadata{
		{Location: &report.LocationMetadata{Name: "Reykjavik"}},
		{},
		{Location: &report.LocationMetadata{Name: "Oslo"}},
	}
	engagement := report.EngagementStats{EngagementRate: 1.234}

	risk := AssessRisk(profile, posts, engagement)

	assert.True(t, risk.IsPrivate)
	assert.Equal(t, 50.0, risk.FollowerFollowingRatio)
	assert.Equal(t, 1.234, risk.AvgEngagementRate)
	assert.Equal(t, 2, risk.PostsWithLocation)
}

func TestAssessRiskZeroFollowing(t *testing.T) {
	risk := AssessRisk(report.ProfileMetadata{Followers: 100, Following: 0}, nil, report.EngagementStats{})
	assert.Equal(t, 100.0, risk.FollowerFollowingRatio)
}
