package download

import storageerrors "github.com/DrTomLLC/StoryStream/internal/errors"

// ErrValidatorMismatch is returned internally when a resumed download's
// ETag/Last-Modified no longer matches the remote resource, forcing a
// restart from zero per spec.md §4.5 step 1.
var ErrValidatorMismatch = storageerrors.Permanent("download: validator mismatch, resource changed")

// ErrNotFound is returned by Manager.Get/Pause/Resume/Cancel for an unknown
// task id.
var ErrNotFound = storageerrors.NotFound("download: task not found")

// ErrChecksumMismatch is returned when a completed download's blake2b hash
// doesn't match DownloadTask.ExpectedChecksum.
var ErrChecksumMismatch = storageerrors.Corrupted("download: checksum mismatch")
