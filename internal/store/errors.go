package store

import "errors"

// Sentinel errors returned by Store implementations. Callers distinguish
// these with errors.Is; for HTTP-facing status mapping, wrap them in
// internal/errors rather than maintaining a second error taxonomy here.
var (
	ErrBookNotFound          = errors.New("book not found")
	ErrBookExists            = errors.New("book already exists")
	ErrBookmarkNotFound      = errors.New("bookmark not found")
	ErrPlaybackStateNotFound = errors.New("playback state not found")
	ErrPlaylistNotFound      = errors.New("playlist not found")
	ErrPlaylistExists        = errors.New("playlist already exists")
)
