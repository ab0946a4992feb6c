// Package ratelimit implements the client-side request governor that paces
// all remote Instagram calls.
//
// The governor combines four strategies:
//
//   - Rolling-window quota: no trailing hour ever contains more than the
//     configured number of requests (default 180).
//   - Minimum spacing: consecutive requests are at least MinDelay apart,
//     with jitter applied to the enforced wait.
//   - Burst protection: too many admissions inside a 10 second window
//     trigger a cooldown during which all admission is blocked.
//   - Humanization: an optional random delay added to every admission.
//
// Usage:
//
//	gov := ratelimit.NewGovernor(ratelimit.DefaultConfig(), nil)
//
//	gov.Admit()          // may block for seconds to minutes
//	err := doRequest()   // the actual remote call
//	if err == nil {
//	    gov.Record()     // register consumption on success only
//	}
//
// Admit never fails; backpressure is expressed purely as blocking time. The
// clock is injected so the window and burst logic can be tested against a
// simulated clock.
package ratelimit
