// Package textutil provides the text normalization and similarity measures
// used when comparing subtitle titles against video metadata, plus filename
// sanitization for destination folders.
//
// Ratio reproduces Python's difflib.SequenceMatcher.ratio over characters,
// which the catalog tooling has historically used as its similarity cutoff.
// NameSimilarity is a Jaro-Winkler score shown alongside candidates for
// manual selection only.
package textutil
