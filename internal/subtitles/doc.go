// Package subtitles models subtitle candidates returned by the catalog and
// the files they are downloaded into.
//
// Candidate records arrive as loosely typed structs; FromRecord maps them to
// a fixed shape with explicit defaults so downstream matching never has to
// guard against missing or oddly typed keys. File handles the transfer:
// download, single-member gzip decoding, and an atomic write into the
// destination folder under a per-destination lock.
package subtitles
