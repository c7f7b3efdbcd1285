// Package history keeps a SQLite log of per-video fetch decisions.
//
// Every fetch run records one Decision per video with the run ID, the
// outcome, and the chosen subtitle when there was one. The history command
// lists recent rows. LastForFingerprint lets callers see what happened the
// previous time the same content was processed, even after a rename.
package history
