// Package services defines the error markers and context helpers shared by
// the catalog client, downloader, and batch pipeline.
//
// Key responsibilities:
//   - Context helpers that stamp run identifiers, video paths, and stage
//     names for logging.
//   - Structured error markers plus the Wrap helper, and Kind, which maps a
//     failure to the short label stored in the decision history.
package services
