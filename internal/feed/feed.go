// Package feed parses RSS 2.0 and Atom 1.0 podcast/audiobook feeds into a
// single format-agnostic Feed value (spec.md §4.2). Parsing is a true
// single-pass walk over encoding/xml.Decoder.Token() - the feed is never
// loaded into a DOM.
package feed

import "time"

// Kind identifies which syndication format a Feed was parsed from.
type Kind string

const (
	KindRSS  Kind = "rss"
	KindAtom Kind = "atom"
)

// Feed is the format-agnostic result of parsing an RSS or Atom document.
type Feed struct {
	Kind     Kind
	Title    string
	Subtitle string // channel/description (RSS) or feed/subtitle (Atom)
	Link     string
	Language string // RSS only; empty for Atom
	Items    []Item
}

// Item is one entry in a feed, normalized across RSS <item> and Atom <entry>.
type Item struct {
	Title       string
	Description string // RSS <description> or Atom <summary>
	Link        string
	PublishedAt time.Time // zero value if the date was missing or unparseable
	HasDate     bool      // true iff PublishedAt was parsed from the feed
	Author      string
	GUID        string // RSS <guid> or Atom <id>
	Enclosure   *Enclosure
}

// Enclosure is a feed item's attached media reference.
type Enclosure struct {
	URL    string
	Type   string
	Length int64
}

// AudioItems returns the subset of items whose enclosure MIME type starts
// with "audio/".
func (f *Feed) AudioItems() []Item {
	var out []Item
	for _, item := range f.Items {
		if item.Enclosure != nil && hasAudioPrefix(item.Enclosure.Type) {
			out = append(out, item)
		}
	}
	return out
}

func hasAudioPrefix(mimeType string) bool {
	return len(mimeType) >= 6 && mimeType[:6] == "audio/"
}

// AudioURL returns the item's enclosure URL, or "" if it has none.
func (i Item) AudioURL() string {
	if i.Enclosure == nil {
		return ""
	}
	return i.Enclosure.URL
}
