// Package retry provides exponential backoff and retry orchestration for
// remote API calls.
//
// The orchestrator runs an operation for up to MaxAttempts attempts. Errors
// are classified through the RetryIf predicate: transient failures sleep a
// backoff delay and retry, non-retryable failures (authentication required,
// profile not found, private profile) propagate on first occurrence, and a
// spent attempt budget is reported as an ExhaustedError so callers can tell
// "gave up after N attempts" apart from "request is fundamentally disallowed".
//
// Usage:
//
//	profile, err := retry.DoWithResult(func() (*instagram.Profile, error) {
//	    return client.FetchProfile(username)
//	}, retry.DefaultConfig())
//	if retry.IsExhausted(err) {
//	    // all attempts failed with transient errors
//	}
package retry
