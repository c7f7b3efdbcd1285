// Package pipeline runs a subtitle fetch over a batch of videos.
//
// Run fingerprints every input in parallel, skips videos that already have
// subtitles, logs in to the catalog once, and then handles each remaining
// video in order: the hash and descriptive requests are issued and their
// results pooled, a Selector picks one candidate, and the chosen subtitle is
// written atomically beside the video. A failed login aborts the run. Every
// other failure is confined to the video it happened on and recorded in the
// Summary and, when configured, the decision history.
package pipeline
