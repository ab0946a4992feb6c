// Package checkpoint provides functionality for saving and resuming investigations.
//
// An investigation spends rate-limit budget on every fetched page, so the
// checkpoint keeps the pages already collected along with the pagination
// cursor. After a network failure, a cooldown, or a manual stop, the next
// run picks up where the last one left off instead of refetching.
//
// Checkpoints are stored in platform-specific data directories:
//   - Linux: ~/.local/share/scanagram/checkpoints/
//   - macOS: ~/Library/Application Support/scanagram/checkpoints/
//   - Windows: %APPDATA%/scanagram/checkpoints/
//
// Files are saved atomically to prevent corruption and include versioning
// for future compatibility.
package checkpoint
