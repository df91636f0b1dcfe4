// Package services implements the HTTP client for the media download backend.
//
// # Backend Interface
//
// [Backend] lists every operation the CLI and TUI need; [APIService] implements it over HTTP.
// Consumers that only need a slice of it (pollers, the library controller) declare their own smaller interfaces.
//
// # Cookies
//
// The backend passes a cookie string to its extractor so age-restricted or private media can be fetched.
// [APIService.WithCookies] attaches a [CookieSource]; its value is sent with info, download and batch requests.
//
// # Error Handling
//
// Non-2xx responses become a [BackendError] carrying the status code and the backend's {error} message.
// BackendError unwraps to [shared.ErrAPIRequest].
// Other failures use sentinels from the shared package:
//   - [shared.ErrTaskNotFound] : GET /api/progress returned 404
//   - [shared.ErrFileNotFound] : DELETE /api/delete-file returned 404
//   - [shared.ErrDecodeResponse] : body was not the expected JSON
//
// # Raw Requests
//
// Get, Post and Delete return an [APIResponse] without status checks, used by the "api" command to inspect endpoints.
package services
