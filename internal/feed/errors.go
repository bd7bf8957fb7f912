package feed

import (
	domainerrors "github.com/DrTomLLC/StoryStream/internal/errors"
)

// InvalidXML wraps a malformed-XML decode failure.
func InvalidXML(err error) error {
	return domainerrors.Wrap(err, domainerrors.CodeValidation, "invalid xml")
}

// ErrUnsupportedFormat is returned when the root element is neither
// <rss> nor <feed>.
var ErrUnsupportedFormat = domainerrors.Unsupported("unsupported feed format")

// MissingField is returned when a required structural field (the feed or
// an item's title) is absent.
func MissingField(name string) error {
	return domainerrors.Validation("missing required field: " + name)
}
