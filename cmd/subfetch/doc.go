// Command subfetch downloads subtitles for video files from OpenSubtitles.
//
// "subfetch fetch <path>..." fingerprints each video, searches the catalog
// by hash and by series/episode, picks a subtitle (interactively when
// attached to a terminal), and saves it beside the video. Supporting
// commands print fingerprints, list languages, show decision history, and
// check configuration.
package main
