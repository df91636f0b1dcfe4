// Package models defines the data exchanged with the download backend and the records persisted locally.
//
// The package contains two categories of types:
//
// 1. Backend payloads: JSON shapes returned by the backend HTTP API
//   - [Task] : a single download/conversion job polled by id until it reaches a terminal [Status]
//   - [QueueItem] : a task as listed by the batch queue, collected in a [QueueResponse]
//   - [FileInfo] : an audio file available in the library
//   - [MediaInfo] : video or playlist metadata returned before a download starts
//
// 2. Persistent entities: sqlite-backed records
//   - [HistoryEntry] : a download started from this client
//
// [Status] and [DownloadType] are shared by every payload.
package models
