package report

import (
	"regexp"
	"sort"
	"time"

	"scanagram/pkg/instagram"
	"scanagram/pkg/ratelimit"
)

// ProfileMetadata is the profile section of a report
type ProfileMetadata struct {
	Username         string `json:"username"`
	FullName         string `json:"full_name"`
	Biography        string `json:"biography"`
	ExternalURL      string `json:"external_url,omitempty"`
	Followers        int    `json:"followers"`
	Following        int    `json:"following"`
	PostsCount       int    `json:"posts_count"`
	IsPrivate        bool   `json:"is_private"`
	IsVerified       bool   `json:"is_verified"`
	IsBusiness       bool   `json:"is_business"`
	BusinessCategory string `json:"business_category,omitempty"`
	ProfilePicURL    string `json:"profile_pic_url"`
	UserID           string `json:"user_id"`
}

// LocationMetadata is a post's location, when the author shared one
type LocationMetadata struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug,omitempty"`
}

// PostMetadata is one analyzed post
type PostMetadata struct {
	Shortcode   string            `json:"shortcode"`
	URL         string            `json:"url"`
	Caption     string            `json:"caption,omitempty"`
	Likes       int               `json:"likes"`
	Comments    int               `json:"comments"`
	Timestamp   time.Time         `json:"timestamp"`
	IsVideo     bool              `json:"is_video"`
	Typename    string            `json:"typename"`
	Location    *LocationMetadata `json:"location,omitempty"`
	TaggedUsers []string          `json:"tagged_users"`
	Hashtags    []string          `json:"hashtags"`
}

// TopPost is a top-performing post in the engagement section
type TopPost struct {
	URL        string `json:"url"`
	Likes      int    `json:"likes"`
	Comments   int    `json:"comments"`
	Engagement int    `json:"engagement"`
}

// EngagementStats summarizes likes and comments across analyzed posts
type EngagementStats struct {
	TotalAnalyzed  int       `json:"total_analyzed"`
	TotalLikes     int       `json:"total_likes"`
	TotalComments  int       `json:"total_comments"`
	AvgLikes       float64   `json:"avg_likes"`
	AvgComments    float64   `json:"avg_comments"`
	EngagementRate float64   `json:"engagement_rate"`
	TopPosts       []TopPost `json:"top_posts,omitempty"`
}

// TemporalStats captures when the account tends to post
type TemporalStats struct {
	PeakPostingHour      int            `json:"peak_posting_hour"`
	HourDistribution     map[int]int    `json:"hour_distribution"`
	DayDistribution      map[string]int `json:"day_distribution"`
	AvgPostIntervalHours *float64       `json:"avg_post_interval_hours"`
}

// RiskIndicators flags exposure signals on the profile
type RiskIndicators struct {
	IsPrivate              bool    `json:"is_private"`
	IsVerified             bool    `json:"is_verified"`
	FollowerFollowingRatio float64 `json:"follower_following_ratio"`
	AvgEngagementRate      float64 `json:"avg_engagement_rate"`
	PostsWithLocation      int     `json:"posts_with_location"`
}

// RunMetadata records how the investigation itself went
type RunMetadata struct {
	Timestamp       time.Time       `json:"timestamp"`
	DurationSeconds float64         `json:"duration_seconds"`
	RateLimitStats  ratelimit.Stats `json:"rate_limit_stats"`
	PostsAnalyzed   int             `json:"posts_analyzed"`
	MaxPostsLimit   int             `json:"max_posts_limit"`
}

// Report is the complete output of one investigation
type Report struct {
	TargetUsername string          `json:"target_username"`
	Profile        ProfileMetadata `json:"profile"`
	Posts          []PostMetadata  `json:"posts"`
	Engagement     EngagementStats `json:"engagement_stats"`
	Temporal       TemporalStats   `json:"temporal_analysis"`
	Risk           RiskIndicators  `json:"risk_indicators"`
	Metadata       RunMetadata     `json:"investigation_metadata"`
}

const maxCaptionLength = 500

var hashtagPattern = regexp.MustCompile(`#(\w+)`)

// ExtractHashtags pulls hashtag names (without the #) out of a caption
func ExtractHashtags(caption string) []string {
	matches := hashtagPattern.FindAllStringSubmatch(caption, -1)
	hashtags := make([]string, 0, len(matches))
	for _, match := range matches {
		hashtags = append(hashtags, match[1])
	}
	return hashtags
}

// ProfileFromUser converts an API user into report metadata
func ProfileFromUser(user *instagram.User) ProfileMetadata {
	meta := ProfileMetadata{
		Username:      user.Username,
		FullName:      user.FullName,
		Biography:     user.Biography,
		ExternalURL:   user.ExternalURL,
		Followers:     user.EdgeFollowedBy.Count,
		Following:     user.EdgeFollow.Count,
		PostsCount:    user.EdgeOwnerToTimelineMedia.Count,
		IsPrivate:     user.IsPrivate,
		IsVerified:    user.IsVerified,
		IsBusiness:    user.IsBusinessAccount,
		ProfilePicURL: user.ProfilePicURL,
		UserID:        user.ID,
	}
	if user.IsBusinessAccount {
		meta.BusinessCategory = user.CategoryName
	}
	return meta
}

// PostFromNode converts an API media node into report metadata
func PostFromNode(node *instagram.Node) PostMetadata {
	caption := node.Caption()
	if runes := []rune(caption); len(runes) > maxCaptionLength {
		caption = string(runes[:maxCaptionLength])
	}

	post := PostMetadata{
		Shortcode:   node.Shortcode,
		URL:         instagram.GetPostURL(node.Shortcode),
		Caption:     caption,
		Likes:       node.Likes(),
		Comments:    node.Comments(),
		Timestamp:   node.TakenAt(),
		IsVideo:     node.IsVideo,
		Typename:    node.Typename,
		TaggedUsers: node.TaggedUsernames(),
		Hashtags:    ExtractHashtags(node.Caption()),
	}

	if node.Location != nil {
		post.Location = &LocationMetadata{
			ID:   node.Location.ID,
			Name: node.Location.Name,
			Slug: node.Location.Slug,
		}
	}

	return post
}

// TopHashtags returns the most used hashtags across posts, most frequent
// first, ties broken alphabetically.
func (r *Report) TopHashtags(limit int) []HashtagCount {
	counts := make(map[string]int)
	for _, post := range r.Posts {
		for _, tag := range post.Hashtags {
			counts[tag]++
		}
	}

	result := make([]HashtagCount, 0, len(counts))
	for tag, count := range counts {
		result = append(result, HashtagCount{Tag: tag, Count: count})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].Tag < result[j].Tag
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result
}

// HashtagCount is a hashtag with its usage count
type HashtagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}
