// Package instagram provides a client for Instagram's public web API.
//
// This package includes:
//   - A configurable HTTP client with browser-profile headers
//   - Type-safe models for profile and timeline media responses
//   - Helper functions for constructing API endpoints
//
// Failures are returned as typed errors from pkg/errors so callers can
// decide which ones are worth retrying.
//
// Example usage:
//
//	client := instagram.NewClient(30*time.Second, log)
//
//	profile, err := client.FetchProfile("username")
//	if err != nil {
//	    var igErr *errors.Error
//	    if stderrors.As(err, &igErr) && igErr.Type == errors.ErrorTypeAuth {
//	        // prompt for a session cookie
//	    }
//	    return err
//	}
//
//	media, err := client.FetchMedia(profile.ID, "", 12)
package instagram
