// Package player drives audio playback of library files.
//
// [Controller] owns the play queue and its cursor: PlayTrack replaces the queue, Next and Previous wrap around,
// and a track that ends on its own advances to the next one. Previous restarts the current track instead of
// moving back once it has played past the restart threshold (3 seconds by default).
//
// Audio output goes through the [Element] interface. [ExecElement] implements it with an external player
// process (mpv by default).
package player
