// Package tui is the interactive front-end of broadcom-downloader.
//
// The screen asks for a manifest path, runs the download pipeline and shows
// the current file, overall progress and the tail of the pipeline log.
// Pipeline events reach the Bubble Tea program through Run, which forwards
// them with Program.Send.
package tui
