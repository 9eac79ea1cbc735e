// Package services holds the client workflows behind the CLI: the session
// and quota coordinator, spreadsheet generation, document autofill, the
// template gallery, the auth flow and local shortcut lists.
//
// Each workflow owns its transient state behind a mutex, rejects a second
// concurrent invocation of the same action with ErrBusy, and exposes a
// Snapshot for rendering. Workflows share only the QuotaCoordinator.
package services
