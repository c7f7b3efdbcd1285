// Package opensubtitles talks to the OpenSubtitles XML-RPC catalog.
//
// Client issues raw LogIn, SearchSubtitles, and LogOut calls. Session layers
// the token lifecycle on top as a small state machine with explicit retry
// budgets, and converts search results into subtitles.Candidate values.
package opensubtitles
