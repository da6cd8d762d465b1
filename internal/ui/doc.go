// Package ui implements the interactive capture dashboard using bubbletea's
// Elm architecture.
//
// The [Model] follows the standard Init/Update/View pattern. It drains the
// capture loop's event channel, showing the current activity label, sample
// count, the last track the backend started, and the most recent recoverable
// error. Pressing q or ctrl+c stops the loop before the program exits, so
// quitting the dashboard never leaves a sampling goroutine behind.
package ui
