// Package analyzer runs the investigation pipeline.
//
// An investigation fetches the target's profile, pages through the post
// timeline, and derives engagement, temporal, and risk statistics. Every
// outbound request passes through the request governor before it is sent
// and is recorded after it succeeds, and transient failures are retried
// with exponential backoff. Collected pages are checkpointed so an
// interrupted run can resume without refetching.
package analyzer
