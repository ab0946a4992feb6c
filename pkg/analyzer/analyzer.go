package analyzer

import (
	"context"
	"fmt"
	"time"

	"scanagram/pkg/checkpoint"
	"scanagram/pkg/clock"
	"scanagram/pkg/config"
	"scanagram/pkg/instagram"
	"scanagram/pkg/logger"
	"scanagram/pkg/ratelimit"
	"scanagram/pkg/report"
	"scanagram/pkg/retry"
	"scanagram/pkg/ui"
)

// Client is the slice of the Instagram API the analyzer needs
type Client interface {
	FetchProfile(username string) (*instagram.User, error)
	FetchMedia(userID string, after string, limit int) (*instagram.TimelineMedia, error)
}

// Options controls a single investigation run
type Options struct {
	MaxPosts     int
	Resume       bool
	ForceRestart bool
}

// Analyzer orchestrates an investigation: profile fetch, paged post
// collection under the request governor, and statistics derivation.
type Analyzer struct {
	client        Client
	governor      *ratelimit.Governor
	retryCfg      *retry.Config
	cfg           *config.Config
	clock         clock.Clock
	logger        logger.Logger
	checkpointDir string
}

// Option customizes an Analyzer
type Option func(*Analyzer)

// WithClock overrides the time source (used by tests)
func WithClock(c clock.Clock) Option {
	return func(a *Analyzer) { a.clock = c }
}

// WithCheckpointDir stores checkpoints under an explicit directory
func WithCheckpointDir(dir string) Option {
	return func(a *Analyzer) { a.checkpointDir = dir }
}

// WithRetryConfig overrides the retry policy
func WithRetryConfig(rc *retry.Config) Option {
	return func(a *Analyzer) { a.retryCfg = rc }
}

// New creates an Analyzer from the application config
func New(client Client, cfg *config.Config, opts ...Option) *Analyzer {
	log := logger.GetLogger()

	a := &Analyzer{
		client: client,
		cfg:    cfg,
		clock:  clock.NewSystem(),
		logger: log,
	}
	for _, opt := range opts {
		opt(a)
	}

	a.governor = ratelimit.NewGovernor(ratelimit.Config{
		RequestsPerHour: cfg.RateLimit.RequestsPerHour,
		MinDelay:        cfg.RateLimit.MinDelay,
		BurstLimit:      cfg.RateLimit.BurstLimit,
		Cooldown:        cfg.RateLimit.CooldownAfterBurst,
		Humanize:        cfg.Stealth.RandomizeTiming,
		OnWait: func(reason ratelimit.WaitReason, wait time.Duration) {
			logger.LogGovernorWait(string(reason), wait)
			ui.WaitNotice(reason, wait)
		},
	}, a.clock)

	if a.retryCfg == nil {
		backoff := &retry.ExponentialBackoff{
			BaseDelay:      cfg.Retry.BaseDelay,
			MaxDelay:       cfg.Retry.MaxDelay,
			Base:           cfg.Retry.ExponentialBase,
			JitterFraction: cfg.Retry.JitterFraction,
		}
		rc := retry.DefaultConfig()
		rc.MaxAttempts = cfg.Retry.MaxAttempts
		rc.Backoff = backoff
		rc.Logger = log
		a.retryCfg = rc
	}

	return a
}

// Governor exposes the request governor, mainly so callers can snapshot
// its stats for the report.
func (a *Analyzer) Governor() *ratelimit.Governor {
	return a.governor
}

// Investigate runs the full pipeline against one username
func (a *Analyzer) Investigate(ctx context.Context, username string, opts Options) (*report.Report, error) {
	username = instagram.SanitizeUsername(username)
	start := a.clock.Now()

	maxPosts := opts.MaxPosts
	if maxPosts <= 0 {
		maxPosts = a.cfg.Limits.MaxPosts
	}

	a.logger.InfoWithFields("Starting investigation", map[string]interface{}{
		"username":  username,
		"max_posts": maxPosts,
		"resume":    opts.Resume,
	})

	checkpointMgr, err := a.newCheckpointManager(username)
	if err != nil {
		return nil, fmt.Errorf("failed to create checkpoint manager: %w", err)
	}

	cp, err := a.resolveCheckpoint(checkpointMgr, opts)
	if err != nil {
		return nil, err
	}

	profile, err := a.fetchProfile(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch profile: %w", err)
	}

	if cp == nil {
		cp, err = checkpointMgr.Create(username, profile.ID)
		if err != nil {
			a.logger.WithError(err).Warn("Failed to create checkpoint, continuing without persistence")
			cp = &checkpoint.Checkpoint{Username: username, UserID: profile.ID, HasNextPage: true}
			checkpointMgr = nil
		}
	}

	if profile.IsPrivate && len(cp.Posts) == 0 {
		a.logger.WarnWithFields("Profile is private, posts unavailable", map[string]interface{}{
			"username": username,
		})
	} else if err := a.collectPosts(ctx, profile, cp, checkpointMgr, maxPosts); err != nil {
		return nil, err
	}

	r := a.buildReport(username, profile, cp.Posts, maxPosts, start)

	if checkpointMgr != nil {
		if err := checkpointMgr.Delete(); err != nil {
			a.logger.WithError(err).Warn("Failed to clear checkpoint")
		}
	}

	a.logger.InfoWithFields("Investigation complete", map[string]interface{}{
		"username":       username,
		"posts_analyzed": len(r.Posts),
		"duration":       a.clock.Now().Sub(start),
	})

	return r, nil
}

// newCheckpointManager respects the configured checkpoint directory override
func (a *Analyzer) newCheckpointManager(username string) (*checkpoint.Manager, error) {
	if a.checkpointDir != "" {
		return checkpoint.NewManagerInDir(a.checkpointDir, username)
	}
	return checkpoint.NewManager(username)
}

// resolveCheckpoint applies the resume and force-restart flags
func (a *Analyzer) resolveCheckpoint(mgr *checkpoint.Manager, opts Options) (*checkpoint.Checkpoint, error) {
	if !mgr.Exists() {
		return nil, nil
	}

	if opts.ForceRestart {
		if err := mgr.Delete(); err != nil {
			a.logger.WithError(err).Warn("Failed to delete existing checkpoint")
		}
		ui.PrintInfo("Force restart", "Ignoring existing checkpoint")
		return nil, nil
	}

	if opts.Resume {
		cp, err := mgr.Load()
		if err != nil {
			return nil, fmt.Errorf("failed to load checkpoint: %w", err)
		}
		if cp != nil {
			ui.PrintInfo("Resuming from checkpoint", fmt.Sprintf("%d posts collected", len(cp.Posts)))
		}
		return cp, nil
	}

	return nil, fmt.Errorf("checkpoint exists - use --resume to continue or --force-restart to start fresh")
}

// fetchProfile fetches the profile through the governor and retry policy
func (a *Analyzer) fetchProfile(ctx context.Context, username string) (*instagram.User, error) {
	rc := a.retryConfigWithContext(ctx)

	return retry.DoWithResult(func() (*instagram.User, error) {
		a.governor.Admit()
		user, err := a.client.FetchProfile(username)
		if err != nil {
			return nil, err
		}
		a.governor.Record()
		return user, nil
	}, rc)
}

// collectPosts pages through the timeline until maxPosts are gathered or
// the account runs out, checkpointing after every page.
func (a *Analyzer) collectPosts(ctx context.Context, profile *instagram.User, cp *checkpoint.Checkpoint, mgr *checkpoint.Manager, maxPosts int) error {
	rc := a.retryConfigWithContext(ctx)
	tracker := ui.NewStatusTracker(maxPosts)
	tracker.AddFetched(len(cp.Posts))

	for cp.HasNextPage && len(cp.Posts) < maxPosts {
		if err := ctx.Err(); err != nil {
			return err
		}

		remaining := maxPosts - len(cp.Posts)
		cursor := cp.EndCursor

		media, err := retry.DoWithResult(func() (*instagram.TimelineMedia, error) {
			a.governor.Admit()
			page, err := a.client.FetchMedia(profile.ID, cursor, remaining)
			if err != nil {
				return nil, err
			}
			a.governor.Record()
			return page, nil
		}, rc)
		if err != nil {
			return fmt.Errorf("failed to fetch media page: %w", err)
		}

		nodes := make([]instagram.Node, 0, len(media.Edges))
		for _, edge := range media.Edges {
			nodes = append(nodes, edge.Node)
		}
		if len(nodes) > remaining {
			nodes = nodes[:remaining]
		}

		hasNext := media.PageInfo.HasNextPage && len(media.Edges) > 0
		if mgr != nil {
			if err := mgr.RecordPage(cp, nodes, media.PageInfo.EndCursor, hasNext); err != nil {
				a.logger.WithError(err).Warn("Failed to save checkpoint")
			}
		} else {
			cp.Posts = append(cp.Posts, nodes...)
			cp.EndCursor = media.PageInfo.EndCursor
			cp.HasNextPage = hasNext
			cp.PagesFetched++
		}

		tracker.AddFetched(len(nodes))
		tracker.PrintProgress()
		logger.LogAnalysisProgress(profile.Username, len(cp.Posts), maxPosts)

		if len(media.Edges) == 0 {
			break
		}
	}

	return nil
}

// retryConfigWithContext copies the retry policy with the run's context
func (a *Analyzer) retryConfigWithContext(ctx context.Context) *retry.Config {
	rc := *a.retryCfg
	rc.Context = ctx
	return &rc
}

// buildReport assembles the final report from collected data
func (a *Analyzer) buildReport(username string, profile *instagram.User, nodes []instagram.Node, maxPosts int, start time.Time) *report.Report {
	posts := make([]report.PostMetadata, 0, len(nodes))
	for i := range nodes {
		posts = append(posts, report.PostFromNode(&nodes[i]))
	}

	profileMeta := report.ProfileFromUser(profile)
	engagement := CalculateEngagement(posts, profileMeta)
	temporal := AnalyzeTemporal(posts)
	risk := AssessRisk(profileMeta, posts, engagement)

	now := a.clock.Now()
	return &report.Report{
		TargetUsername: username,
		Profile:        profileMeta,
		Posts:          posts,
		Engagement:     engagement,
		Temporal:       temporal,
		Risk:           risk,
		Metadata: report.RunMetadata{
			Timestamp:       now,
			DurationSeconds: now.Sub(start).Seconds(),
			RateLimitStats:  a.governor.Stats(),
			PostsAnalyzed:   len(posts),
			MaxPostsLimit:   maxPosts,
		},
	}
}
