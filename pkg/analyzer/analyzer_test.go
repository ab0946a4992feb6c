package analyzer

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scanagram/pkg/checkpoint"
	"scanagram/pkg/clock"
	"scanagram/pkg/config"
	"scanagram/pkg/errors"
	"scanagram/pkg/instagram"
	"scanagram/pkg/retry"
)

// mockClient serves canned pages keyed by pagination cursor
type mockClient struct {
	profile      *instagram.User
	pages        map[string]*instagram.TimelineMedia
	profileErrs  []error
	mediaErrs    []error
	profileCalls int
	mediaCalls   int
}

func (m *mockClient) FetchProfile(username string) (*instagram.User, error) {
	m.profileCalls++
	if len(m.profileErrs) > 0 {
		err := m.profileErrs[0]
		m.profileErrs = m.profileErrs[1:]
		return nil, err
	}
	return m.profile, nil
}

func (m *mockClient) FetchMedia(userID string, after string, limit int) (*instagram.TimelineMedia, error) {
	m.mediaCalls++
	if len(m.mediaErrs) > 0 {
		err := m.mediaErrs[0]
		m.mediaErrs = m.mediaErrs[1:]
		return nil, err
	}
	page, ok := m.pages[after]
	if !ok {
		return &instagram.TimelineMedia{}, nil
	}
	return page, nil
}

func testUser() *instagram.User {
	user := &instagram.User{
		ID:       "12345",
		Username: "testuser",
		FullName: "Test User",
	}
	user.EdgeFollowedBy.Count = 10000
	user.EdgeFollow.Count = 200
	user.EdgeOwnerToTimelineMedia.Count = 4
	return user
}

func mediaPage(cursor string, hasNext bool, nodes ...instagram.Node) *instagram.TimelineMedia {
	page := &instagram.TimelineMedia{Count: len(nodes)}
	page.PageInfo.HasNextPage = hasNext
	page.PageInfo.EndCursor = cursor
	for _, n := range nodes {
		page.Edges = append(page.Edges, instagram.Edge{Node: n})
	}
	return page
}

func postNode(shortcode string, likes, comments int, takenAt int64) instagram.Node {
	node := instagram.Node{
		Shortcode:        shortcode,
		TakenAtTimestamp: takenAt,
	}
	node.EdgeLikedBy.Count = likes
	node.EdgeMediaToComment.Count = comments
	return node
}

func fastRetryConfig() *retry.Config {
	rc := retry.DefaultConfig()
	rc.Backoff = &retry.ConstantBackoff{Delay: time.Millisecond}
	return rc
}

func newTestAnalyzer(t *testing.T, client Client) (*Analyzer, *clock.Fake) {
	t.Helper()

	fake := clock.NewFake(time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC))
	cfg := config.DefaultConfig()

	a := New(client, cfg,
		WithClock(fake),
		WithCheckpointDir(t.TempDir()),
		WithRetryConfig(fastRetryConfig()),
	)
	return a, fake
}

func TestInvestigateHappyPath(t *testing.T) {
	base := time.Date(2026, 1, 1, 18, 0, 0, 0, time.UTC).Unix()
	client := &mockClient{
		profile: testUser(),
		pages: map[string]*instagram.TimelineMedia{
			"": mediaPage("CURSOR1", true,
				postNode("AAA", 100, 10, base),
				postNode("BBB", 200, 20, base+1800)),
			"CURSOR1": mediaPage("", false,
				postNode("CCC", 50, 5, base-7200),
				postNode("DDD", 25, 2, base-10800)),
		},
	}

	a, _ := newTestAnalyzer(t, client)

	r, err := a.Investigate(context.Background(), "@testuser", Options{MaxPosts: 10})
	require.NoError(t, err)

	assert.Equal(t, "testuser", r.TargetUsername)
	assert.Equal(t, "12345", r.Profile.UserID)
	assert.Len(t, r.Posts, 4)
	assert.Equal(t, 4, r.Engagement.TotalAnalyzed)
	assert.Equal(t, 375, r.Engagement.TotalLikes)
	assert.Equal(t, 18, r.Temporal.PeakPostingHour)

	// One profile fetch and two media pages, all recorded
	assert.Equal(t, 1, client.profileCalls)
	assert.Equal(t, 2, client.mediaCalls)
	assert.Equal(t, 3, r.Metadata.RateLimitStats.TotalRequests)
}

func TestInvestigateRespectsMaxPosts(t *testing.T) {
	base := time.Now().Unix()
	client := &mockClient{
		profile: testUser(),
		pages: map[string]*instagram.TimelineMedia{
			"": mediaPage("CURSOR1", true,
				postNode("AAA", 1, 0, base),
				postNode("BBB", 2, 0, base-60),
				postNode("CCC", 3, 0, base-120)),
		},
	}

	a, _ := newTestAnalyzer(t, client)

	r, err := a.Investigate(context.Background(), "testuser", Options{MaxPosts: 2})
	require.NoError(t, err)

	assert.Len(t, r.Posts, 2)
	assert.Equal(t, 2, r.Metadata.MaxPostsLimit)
	assert.Equal(t, 1, client.mediaCalls)
}

func TestInvestigateRetriesTransientErrors(t *testing.T) {
	client := &mockClient{
		profile: testUser(),
		profileErrs: []error{
			errors.New(errors.ErrorTypeNetwork, 0, "connection reset"),
		},
		pages: map[string]*instagram.TimelineMedia{
			"": mediaPage("", false, postNode("AAA", 1, 0, time.Now().Unix())),
		},
	}

	a, _ := newTestAnalyzer(t, client)

	r, err := a.Investigate(context.Background(), "testuser", Options{})
	require.NoError(t, err)

	assert.Equal(t, 2, client.profileCalls)
	assert.Len(t, r.Posts, 1)
}

func TestInvestigateStopsOnNonRetryableError(t *testing.T) {
	client := &mockClient{
		profileErrs: []error{
			errors.New(errors.ErrorTypeNotFound, 404, "profile does not exist"),
		},
	}

	a, _ := newTestAnalyzer(t, client)

	_, err := a.Investigate(context.Background(), "ghost", Options{})
	require.Error(t, err)

	var igErr *errors.Error
	require.ErrorAs(t, err, &igErr)
	assert.Equal(t, errors.ErrorTypeNotFound, igErr.Type)
	assert.Equal(t, 1, client.profileCalls)
}

func TestInvestigateExhaustsRetries(t *testing.T) {
	var errs []error
	for i := 0; i < 5; i++ {
		errs = append(errs, errors.New(errors.ErrorTypeServerError, 502, "upstream sad"))
	}
	client := &mockClient{profileErrs: errs}

	a, _ := newTestAnalyzer(t, client)

	_, err := a.Investigate(context.Background(), "testuser", Options{})
	require.Error(t, err)
	assert.True(t, retry.IsExhausted(err))
	assert.Equal(t, 3, client.profileCalls)
}

func TestInvestigateResumesFromCheckpoint(t *testing.T) {
	checkpointDir := t.TempDir()

	mgr, err := checkpoint.NewManagerInDir(checkpointDir, "testuser")
	require.NoError(t, err)
	cp, err := mgr.Create("testuser", "12345")
	require.NoError(t, err)
	require.NoError(t, mgr.RecordPage(cp,
		[]instagram.Node{postNode("OLD1", 10, 1, time.Now().Unix())},
		"CURSOR1", true))

	client := &mockClient{
		profile: testUser(),
		pages: map[string]*instagram.TimelineMedia{
			"CURSOR1": mediaPage("", false, postNode("NEW1", 20, 2, time.Now().Unix())),
		},
	}

	fake := clock.NewFake(time.Now())
	a := New(client, config.DefaultConfig(),
		WithClock(fake),
		WithCheckpointDir(checkpointDir),
		WithRetryConfig(fastRetryConfig()),
	)

	r, err := a.Investigate(context.Background(), "testuser", Options{Resume: true, MaxPosts: 10})
	require.NoError(t, err)

	require.Len(t, r.Posts, 2)
	assert.Equal(t, "OLD1", r.Posts[0].Shortcode)
	assert.Equal(t, "NEW1", r.Posts[1].Shortcode)
	// Only the unfetched page was requested
	assert.Equal(t, 1, client.mediaCalls)
	// Checkpoint is cleared after a completed run
	assert.False(t, mgr.Exists())
}

func TestInvestigateRefusesStaleCheckpointWithoutFlags(t *testing.T) {
	checkpointDir := t.TempDir()

	mgr, err := checkpoint.NewManagerInDir(checkpointDir, "testuser")
	require.NoError(t, err)
	_, err = mgr.Create("testuser", "12345")
	require.NoError(t, err)

	client := &mockClient{profile: testUser()}
	fake := clock.NewFake(time.Now())
	a := New(client, config.DefaultConfig(),
		WithClock(fake),
		WithCheckpointDir(checkpointDir),
		WithRetryConfig(fastRetryConfig()),
	)

	_, err = a.Investigate(context.Background(), "testuser", Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--resume")
	assert.Equal(t, 0, client.profileCalls)
}

func TestInvestigateForceRestartDiscardsCheckpoint(t *testing.T) {
	checkpointDir := t.TempDir()

	mgr, err := checkpoint.NewManagerInDir(checkpointDir, "testuser")
	require.NoError(t, err)
	cp, err := mgr.Create("testuser", "12345")
	require.NoError(t, err)
	require.NoError(t, mgr.RecordPage(cp,
		[]instagram.Node{postNode("STALE", 1, 0, time.Now().Unix())},
		"CURSOR1", true))

	client := &mockClient{
		profile: testUser(),
		pages: map[string]*instagram.TimelineMedia{
			"": mediaPage("", false, postNode("FRESH", 5, 1, time.Now().Unix())),
		},
	}

	fake := clock.NewFake(time.Now())
	a := New(client, config.DefaultConfig(),
		WithClock(fake),
		WithCheckpointDir(checkpointDir),
		WithRetryConfig(fastRetryConfig()),
	)

	r, err := a.Investigate(context.Background(), "testuser", Options{ForceRestart: true, MaxPosts: 10})
	require.NoError(t, err)

	require.Len(t, r.Posts, 1)
	assert.Equal(t, "FRESH", r.Posts[0].Shortcode)
}

func TestInvestigateContextCancellation(t *testing.T) {
	client := &mockClient{
		profile: testUser(),
		pages: map[string]*instagram.TimelineMedia{
			"": mediaPage("CURSOR1", true, postNode("AAA", 1, 0, time.Now().Unix())),
		},
	}

	a, _ := newTestAnalyzer(t, client)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := a.Investigate(ctx, "testuser", Options{MaxPosts: 10})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestInvestigatePrivateProfileSkipsPosts(t *testing.T) {
	user := testUser()
	user.IsPrivate = true
	client := &mockClient{profile: user}

	a, _ := newTestAnalyzer(t, client)

	r, err := a.Investigate(context.Background(), "testuser", Options{MaxPosts: 10})
	require.NoError(t, err)

	assert.Empty(t, r.Posts)
	assert.True(t, r.Risk.IsPrivate)
	assert.Equal(t, 0, client.mediaCalls)
}

func TestGovernorPacesRequests(t *testing.T) {
	base := time.Now().Unix()
	pages := map[string]*instagram.TimelineMedia{}
	cursor := ""
	for i := 0; i < 5; i++ {
		next := fmt.Sprintf("C%d", i+1)
		hasNext := i < 4
		if !hasNext {
			next = ""
		}
		pages[cursor] = mediaPage(next, hasNext, postNode(fmt.Sprintf("P%d", i), 1, 0, base-int64(i)*60))
		cursor = fmt.Sprintf("C%d", i+1)
	}
	client := &mockClient{profile: testUser(), pages: pages}

	a, fake := newTestAnalyzer(t, client)

	_, err := a.Investigate(context.Background(), "testuser", Options{MaxPosts: 5})
	require.NoError(t, err)

	// Six requests went through the governor; spacing and humanize delays
	// accumulate on the fake clock instead of wall time.
	assert.Equal(t, 6, client.profileCalls+client.mediaCalls)
	assert.Greater(t, fake.TotalSlept(), time.Duration(0))
}

func TestNewWithoutOptionsUsesRealClock(t *testing.T) {
	client := &mockClient{
		profile: testUser(),
		pages: map[string]*instagram.TimelineMedia{
			"": mediaPage("", false,
				postNode("AAA", 100, 10, time.Date(2026, 1, 1, 18, 0, 0, 0, time.UTC).Unix())),
		},
	}

	// No clock override: the analyzer must fall back to the system clock
	// and still satisfy the governor's Clock dependency. Timing knobs are
	// dialed down so the run finishes without meaningful sleeps.
	cfg := config.DefaultConfig()
	cfg.RateLimit.MinDelay = time.Millisecond
	cfg.Stealth.RandomizeTiming = false

	a := New(client, cfg, WithCheckpointDir(t.TempDir()))
	require.NotNil(t, a.Governor())

	r, err := a.Investigate(context.Background(), "testuser", Options{MaxPosts: 1})
	require.NoError(t, err)
	assert.Len(t, r.Posts, 1)
	assert.False(t, r.Metadata.Timestamp.IsZero())
}
