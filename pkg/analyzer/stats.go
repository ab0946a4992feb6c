package analyzer

import (
	"math"
	"sort"

	"scanagram/pkg/report"
)

const topPostCount = 5

// CalculateEngagement derives like/comment statistics from analyzed posts.
// The engagement rate is the average per-post engagement relative to the
// follower count, as a percentage.
func CalculateEngagement(posts []report.PostMetadata, profile report.ProfileMetadata) report.EngagementStats {
	if len(posts) == 0 {
		return report.EngagementStats{}
	}

	var totalLikes, totalComments int
	for _, p := range posts {
		totalLikes += p.Likes
		totalComments += p.Comments
	}

	n := float64(len(posts))
	stats := report.EngagementStats{
		TotalAnalyzed: len(posts),
		TotalLikes:    totalLikes,
		TotalComments: totalComments,
		AvgLikes:      round2(float64(totalLikes) / n),
		AvgComments:   round2(float64(totalComments) / n),
	}

	if profile.Followers > 0 {
		rate := (float64(totalLikes+totalComments) / n) / float64(profile.Followers) * 100
		stats.EngagementRate = round3(rate)
	}

	ranked := make([]report.PostMetadata, len(posts))
	copy(ranked, posts)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Likes+ranked[i].Comments > ranked[j].Likes+ranked[j].Comments
	})
	if len(ranked) > topPostCount {
		ranked = ranked[:topPostCount]
	}

	for _, p := range ranked {
		stats.TopPosts = append(stats.TopPosts, report.TopPost{
			URL:        p.URL,
			Likes:      p.Likes,
			Comments:   p.Comments,
			Engagement: p.Likes + p.Comments,
		})
	}

	return stats
}

// AnalyzeTemporal derives posting-time patterns from analyzed posts
func AnalyzeTemporal(posts []report.PostMetadata) report.TemporalStats {
	if len(posts) == 0 {
		return report.TemporalStats{}
	}

	hourDistribution := make(map[int]int, 24)
	for h := 0; h < 24; h++ {
		hourDistribution[h] = 0
	}
	dayDistribution := make(map[string]int)

	for _, p := range posts {
		ts := p.Timestamp.UTC()
		hourDistribution[ts.Hour()]++
		dayDistribution[ts.Weekday().String()]++
	}

	peakHour := 0
	for h := 1; h < 24; h++ {
		if hourDistribution[h] > hourDistribution[peakHour] {
			peakHour = h
		}
	}

	stats := report.TemporalStats{
		PeakPostingHour:  peakHour,
		HourDistribution: hourDistribution,
		DayDistribution:  dayDistribution,
	}

	if len(posts) > 1 {
		chronological := make([]report.PostMetadata, len(posts))
		copy(chronological, posts)
		sort.Slice(chronological, func(i, j int) bool {
			return chronological[i].Timestamp.Before(chronological[j].Timestamp)
		})

		var totalHours float64
		for i := 1; i < len(chronological); i++ {
			totalHours += chronological[i].Timestamp.Sub(chronological[i-1].Timestamp).Hours()
		}
		avg := round2(totalHours / float64(len(chronological)-1))
		stats.AvgPostIntervalHours = &avg
	}

	return stats
}

// AssessRisk derives exposure indicators from the profile and posts
func AssessRisk(profile report.ProfileMetadata, posts []report.PostMetadata, engagement report.EngagementStats) report.RiskIndicators {
	following := profile.Following
	if following < 1 {
		following = 1
	}

	withLocation := 0
	for _, p := range posts {
		if p.Location != nil {
			withLocation++
		}
	}

	return report.RiskIndicators{
		IsPrivate:              profile.IsPrivate,
		IsVerified:             profile.IsVerified,
		FollowerFollowingRatio: round2(float64(profile.Followers) / float64(following)),
		AvgEngagementRate:      engagement.EngagementRate,
		PostsWithLocation:      withLocation,
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
