// Package language maps subtitle language names and ISO codes onto the
// 3-letter sublanguageid values the OpenSubtitles catalog accepts.
package language
