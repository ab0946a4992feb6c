package ui

import (
	"fmt"
	"strings"
	"time"

	"scanagram/pkg/ratelimit"
)

const (
	ProgressBar   = "█"
	ProgressEmpty = "░"
)

// StatusTracker keeps track of fetch progress during an investigation
type StatusTracker struct {
	TotalFetched int
	Target       int
	StartTime    time.Time
}

// NewStatusTracker creates a tracker aiming for target posts
func NewStatusTracker(target int) *StatusTracker {
	if target <= 0 {
		target = 1
	}
	return &StatusTracker{
		Target:    target,
		StartTime: time.Now(),
	}
}

// AddFetched records newly fetched posts
func (st *StatusTracker) AddFetched(n int) {
	st.TotalFetched += n
}

// GetProgress returns a formatted progress bar toward the target
func (st *StatusTracker) GetProgress() string {
	const width = 20
	progress := float64(st.TotalFetched) / float64(st.Target)
	if progress > 1 {
		progress = 1
	}
	filled := int(progress * float64(width))

	bar := strings.Repeat(ProgressBar, filled) +
		strings.Repeat(ProgressEmpty, width-filled)

	return fmt.Sprintf("[%s] %d/%d", bar, st.TotalFetched, st.Target)
}

// GetElapsedTime returns the elapsed time since tracking started
func (st *StatusTracker) GetElapsedTime() time.Duration {
	return time.Since(st.StartTime)
}

// PrintProgress prints the current fetch status on one line
func (st *StatusTracker) PrintProgress() {
	if quiet {
		return
	}
	fmt.Printf("\r%s %s | elapsed %s",
		Green("[FETCHED]"),
		st.GetProgress(),
		st.GetElapsedTime().Round(time.Second))
}

// WaitNotice prints why the request pacer is holding back and for how long.
// It is shaped to plug straight into ratelimit.Config.OnWait.
func WaitNotice(reason ratelimit.WaitReason, wait time.Duration) {
	if quiet {
		return
	}

	switch reason {
	case ratelimit.WaitCooldown, ratelimit.WaitBurst:
		fmt.Printf("\n%s %s\n",
			Red("[COOLDOWN]"),
			Yellow(fmt.Sprintf("backing off for %s", wait.Round(time.Second))))
	case ratelimit.WaitQuota:
		fmt.Printf("\n%s %s\n",
			Magenta("[QUOTA]"),
			Yellow(fmt.Sprintf("hourly budget spent, waiting %s", wait.Round(time.Second))))
	case ratelimit.WaitSpacing, ratelimit.WaitHumanize:
		// Short pacing pauses happen on every request; keep them off the screen.
	default:
		fmt.Printf("\n%s %s\n", Dim("[WAIT]"), Dim(wait.Round(time.Second).String()))
	}
}
