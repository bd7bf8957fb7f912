package domain

import "time"

// SleepTimer records an in-progress sleep-timer countdown for a book.
type SleepTimer struct {
	EndsAt       time.Time `json:"ends_at"`
	FadeOutMs    int64     `json:"fade_out_ms"`
	EndOfChapter bool      `json:"end_of_chapter"`
}

// PlaybackState is the single materialized play-state row for a book.
// At most one row exists per book id; it is lazily created on first play and
// destroyed when its book is hard-deleted.
type PlaybackState struct {
	BookID          string      `json:"book_id"`
	PositionMs      int64       `json:"position_ms"`
	Speed           float64     `json:"speed"` // 0.5 <= s <= 3.0
	PitchCorrection bool        `json:"pitch_correction"`
	Volume          int         `json:"volume"` // 0-100
	Playing         bool        `json:"playing"`
	EQPreset        string      `json:"eq_preset,omitempty"`
	SleepTimer      *SleepTimer `json:"sleep_timer,omitempty"`
	SkipSilence     bool        `json:"skip_silence"`
	VolumeBoost     bool        `json:"volume_boost"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// NewPlaybackState returns a zero-value state for a book, applying the
// player defaults from configuration (player.default_volume, default_speed).
func NewPlaybackState(bookID string, defaultVolume int, defaultSpeed float64) *PlaybackState {
	return &PlaybackState{
		BookID:    bookID,
		Speed:     defaultSpeed,
		Volume:    defaultVolume,
		UpdatedAt: time.Now(),
	}
}

// Seek moves the playback position, clamping to [0, durationMs] when
// durationMs is known (durationMs <= 0 means unknown/unclamped).
func (s *PlaybackState) Seek(positionMs, durationMs int64) {
	if positionMs < 0 {
		positionMs = 0
	}
	if durationMs > 0 && positionMs > durationMs {
		positionMs = durationMs
	}
	s.PositionMs = positionMs
	s.UpdatedAt = time.Now()
}

// SetSpeed sets the playback speed, clamped to the valid [0.5, 3.0] range.
func (s *PlaybackState) SetSpeed(speed float64) {
	switch {
	case speed < 0.5:
		speed = 0.5
	case speed > 3.0:
		speed = 3.0
	}
	s.Speed = speed
	s.UpdatedAt = time.Now()
}

// SetVolume sets playback volume, clamped to [0, 100].
func (s *PlaybackState) SetVolume(volume int) {
	switch {
	case volume < 0:
		volume = 0
	case volume > 100:
		volume = 100
	}
	s.Volume = volume
	s.UpdatedAt = time.Now()
}

// Touch marks the state as updated now, without changing any field. Called
// by the player's periodic position-persistence tick (player.auto_save_interval)
// even when the position itself hasn't moved, e.g. a pause/resume toggle.
func (s *PlaybackState) Touch() {
	s.UpdatedAt = time.Now()
}
