// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI has four views, switched with tab or 1-4:
//  1. [DownloadView] : Fetch video/playlist info, start a download and watch its progress
//  2. [QueueView] : Watch the backend queue, add URLs in bulk, remove, play or save items
//  3. [LibraryView] : Browse downloaded files, play them, select, delete and zip
//  4. [SettingsView] : Save or clear the cookies sent with backend requests
//
// A player bar below the active view shows the track loaded in the [player.Controller].
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Task, queue and player notifications flow through the buffered [Channels] filled by [tasks.ChannelListener];
// bulk library operations report progress over a per-operation channel, the same non-blocking way.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, y/n, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
