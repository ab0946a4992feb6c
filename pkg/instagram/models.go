package instagram

import "time"

// ProfileResponse is the payload of the web profile info endpoint
type ProfileResponse struct {
	RequiresToLogin bool   `json:"requires_to_login"`
	Data            Data   `json:"data"`
	Status          string `json:"status"`
}

// MediaResponse is the payload of the media GraphQL query
type MediaResponse struct {
	Data   Data   `json:"data"`
	Status string `json:"status"`
}

type Data struct {
	User User `json:"user"`
}

// User carries the profile metadata the analyzer extracts
type User struct {
	ID                       string        `json:"id"`
	Username                 string        `json:"username"`
	FullName                 string        `json:"full_name"`
	Biography                string        `json:"biography"`
	ExternalURL              string        `json:"external_url"`
	EdgeFollowedBy           Count         `json:"edge_followed_by"`
	EdgeFollow               Count         `json:"edge_follow"`
	IsPrivate                bool          `json:"is_private"`
	IsVerified               bool          `json:"is_verified"`
	IsBusinessAccount        bool          `json:"is_business_account"`
	CategoryName             string        `json:"category_name"`
	ProfilePicURL            string        `json:"profile_pic_url_hd"`
	EdgeOwnerToTimelineMedia TimelineMedia `json:"edge_owner_to_timeline_media"`
}

// Count wraps Instagram's {"count": n} objects
type Count struct {
	Count int `json:"count"`
}

type TimelineMedia struct {
	Count    int      `json:"count"`
	PageInfo PageInfo `json:"page_info"`
	Edges    []Edge   `json:"edges"`
}

type PageInfo struct {
	HasNextPage bool   `json:"has_next_page"`
	EndCursor   string `json:"end_cursor"`
}

type Edge struct {
	Node Node `json:"node"`
}

// Node is a single post in the user's timeline
type Node struct {
	ID                    string       `json:"id"`
	Typename              string       `json:"__typename"`
	Shortcode             string       `json:"shortcode"`
	DisplayURL            string       `json:"display_url"`
	IsVideo               bool         `json:"is_video"`
	TakenAtTimestamp      int64        `json:"taken_at_timestamp"`
	EdgeLikedBy           Count        `json:"edge_liked_by"`
	EdgeMediaPreviewLike  Count        `json:"edge_media_preview_like"`
	EdgeMediaToComment    Count        `json:"edge_media_to_comment"`
	EdgeMediaToCaption    CaptionEdges `json:"edge_media_to_caption"`
	EdgeMediaToTaggedUser TaggedEdges  `json:"edge_media_to_tagged_user"`
	Location              *Location    `json:"location"`
}

type CaptionEdges struct {
	Edges []CaptionEdge `json:"edges"`
}

type CaptionEdge struct {
	Node CaptionNode `json:"node"`
}

type CaptionNode struct {
	Text string `json:"text"`
}

type TaggedEdges struct {
	Edges []TaggedEdge `json:"edges"`
}

type TaggedEdge struct {
	Node TaggedNode `json:"node"`
}

type TaggedNode struct {
	User TaggedUser `json:"user"`
}

type TaggedUser struct {
	Username string `json:"username"`
}

// Location is the place attached to a post, when any
type Location struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Caption returns the post's caption text, or "" when there is none
func (n *Node) Caption() string {
	if len(n.EdgeMediaToCaption.Edges) == 0 {
		return ""
	}
	return n.EdgeMediaToCaption.Edges[0].Node.Text
}

// Likes returns the like count, falling back to the preview-like count when
// the owner hides exact numbers
func (n *Node) Likes() int {
	if n.EdgeLikedBy.Count > 0 {
		return n.EdgeLikedBy.Count
	}
	return n.EdgeMediaPreviewLike.Count
}

// Comments returns the comment count
func (n *Node) Comments() int {
	return n.EdgeMediaToComment.Count
}

// TakenAt returns the post timestamp in UTC
func (n *Node) TakenAt() time.Time {
	return time.Unix(n.TakenAtTimestamp, 0).UTC()
}

// TaggedUsernames returns the usernames tagged in the post
func (n *Node) TaggedUsernames() []string {
	if len(n.EdgeMediaToTaggedUser.Edges) == 0 {
		return nil
	}
	users := make([]string, 0, len(n.EdgeMediaToTaggedUser.Edges))
	for _, edge := range n.EdgeMediaToTaggedUser.Edges {
		if edge.Node.User.Username != "" {
			users = append(users, edge.Node.User.Username)
		}
	}
	return users
}
