// Package repositories implements SQLite persistence for client-side state.
//
// Key Implementations:
//   - [SettingsRepository] : key/value settings table
//   - [CookieStore] : the single cookie slot sent with backend requests, stored under [CookieKey]
//   - [HistoryRepository] : downloads started from this client, keyed by backend task id
//
// The schema lives in the shared package's embedded migrations and is applied by [shared.OpenDatabase].
package repositories
