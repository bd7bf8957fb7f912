package feed

import (
	"encoding/xml"
	"io"
	"net/mail"
	"strings"
	"time"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
)

// Parse reads a UTF-8 RSS 2.0 or Atom 1.0 document and returns its Feed.
// Parsing is a single pass over the token stream; only one item/entry's
// subtree is ever materialized at a time.
func Parse(r io.Reader) (*Feed, error) {
	dec := xml.NewDecoder(r)

	for {
		tok, err := dec.Token()
		if err != nil {
			if err == io.EOF {
				return nil, ErrUnsupportedFormat
			}
			return nil, InvalidXML(err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		switch start.Name.Local {
		case "rss":
			return parseRSS(dec)
		case "feed":
			return parseAtom(dec)
		default:
			return nil, ErrUnsupportedFormat
		}
	}
}

type rssEnclosure struct {
	URL    string `xml:"url,attr"`
	Type   string `xml:"type,attr"`
	Length int64  `xml:"length,attr"`
}

type rssItem struct {
	Title       string        `xml:"title"`
	Description string        `xml:"description"`
	Link        string        `xml:"link"`
	PubDate     string        `xml:"pubDate"`
	Author      string        `xml:"author"`
	GUID        string        `xml:"guid"`
	Enclosure   *rssEnclosure `xml:"enclosure"`
}

func parseRSS(dec *xml.Decoder) (*Feed, error) {
	feed := &Feed{Kind: KindRSS}
	var titleSeen bool

	depth := 0
	for {
		tok, err := dec.Token()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, InvalidXML(err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			switch t.Name.Local {
			case "title":
				if depth == 2 { // channel > title
					text, err := decodeCharData(dec)
					if err != nil {
						return nil, InvalidXML(err)
					}
					feed.Title = text
					titleSeen = true
					depth-- // decodeCharData consumed the matching EndElement
				}
			case "description":
				if depth == 2 {
					text, err := decodeCharData(dec)
					if err != nil {
						return nil, InvalidXML(err)
					}
					feed.Subtitle = text
					depth--
				}
			case "link":
				if depth == 2 {
					text, err := decodeCharData(dec)
					if err != nil {
						return nil, InvalidXML(err)
					}
					feed.Link = text
					depth--
				}
			case "language":
				if depth == 2 {
					text, err := decodeCharData(dec)
					if err != nil {
						return nil, InvalidXML(err)
					}
					feed.Language = text
					depth--
				}
			case "item":
				var raw rssItem
				if err := dec.DecodeElement(&raw, &t); err != nil {
					return nil, InvalidXML(err)
				}
				depth-- // DecodeElement consumed through the matching EndElement
				if raw.Title == "" {
					return nil, MissingField("title")
				}
				item := Item{
					Title:       raw.Title,
					Description: sanitizeHTML(raw.Description),
					Link:        raw.Link,
					Author:      raw.Author,
					GUID:        raw.GUID,
				}
				if t, ok := parseRFC2822(raw.PubDate); ok {
					item.PublishedAt = t
					item.HasDate = true
				}
				if raw.Enclosure != nil {
					item.Enclosure = &Enclosure{
						URL:    raw.Enclosure.URL,
						Type:   raw.Enclosure.Type,
						Length: raw.Enclosure.Length,
					}
				}
				feed.Items = append(feed.Items, item)
			}
		case xml.EndElement:
			depth--
		}
	}

	if !titleSeen {
		return nil, MissingField("title")
	}
	return feed, nil
}

// atomLink captures one Atom <link> element. An entry can carry several -
// typically one with rel="alternate" (or no rel, which defaults to
// "alternate") and, for podcasts, one with rel="enclosure" - so all of them
// are decoded into a slice and resolved by rel afterward.
type atomLink struct {
	Rel    string `xml:"rel,attr"`
	Href   string `xml:"href,attr"`
	Type   string `xml:"type,attr"`
	Length int64  `xml:"length,attr"`
}

func (l atomLink) isAlternate() bool {
	return l.Rel == "" || l.Rel == "alternate"
}

type atomAuthor struct {
	Name string `xml:"name"`
}

type atomEntry struct {
	Title     string     `xml:"title"`
	Summary   string     `xml:"summary"`
	Links     []atomLink `xml:"link"`
	ID        string     `xml:"id"`
	Published string     `xml:"published"`
	Author    atomAuthor `xml:"author"`
}

func parseAtom(dec *xml.Decoder) (*Feed, error) {
	feed := &Feed{Kind: KindAtom}
	var titleSeen bool

	depth := 0
	for {
		tok, err := dec.Token()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, InvalidXML(err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			switch t.Name.Local {
			case "title":
				if depth == 1 { // feed > title
					text, err := decodeCharData(dec)
					if err != nil {
						return nil, InvalidXML(err)
					}
					feed.Title = text
					titleSeen = true
					depth-- // decodeCharData consumed the matching EndElement
				}
			case "subtitle":
				if depth == 1 {
					text, err := decodeCharData(dec)
					if err != nil {
						return nil, InvalidXML(err)
					}
					feed.Subtitle = text
					depth--
				}
			case "link":
				if depth == 1 {
					for _, attr := range t.Attr {
						if attr.Name.Local == "href" {
							feed.Link = attr.Value
						}
					}
				}
			case "entry":
				var raw atomEntry
				if err := dec.DecodeElement(&raw, &t); err != nil {
					return nil, InvalidXML(err)
				}
				depth--
				if raw.Title == "" {
					return nil, MissingField("title")
				}
				item := Item{
					Title:       raw.Title,
					Description: sanitizeHTML(raw.Summary),
					Author:      raw.Author.Name,
					GUID:        raw.ID,
				}
				for _, l := range raw.Links {
					if l.isAlternate() && item.Link == "" {
						item.Link = l.Href
					}
					if l.Rel == "enclosure" {
						item.Enclosure = &Enclosure{URL: l.Href, Type: l.Type, Length: l.Length}
					}
				}
				if t, ok := parseRFC3339(raw.Published); ok {
					item.PublishedAt = t
					item.HasDate = true
				}
				feed.Items = append(feed.Items, item)
			}
		case xml.EndElement:
			depth--
		}
	}

	if !titleSeen {
		return nil, MissingField("title")
	}
	return feed, nil
}

// decodeCharData reads character data up to the matching end element for
// the start element just consumed by the caller.
func decodeCharData(dec *xml.Decoder) (string, error) {
	var sb strings.Builder
	for {
		tok, err := dec.Token()
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.CharData:
			sb.Write(t)
		case xml.EndElement:
			return strings.TrimSpace(sb.String()), nil
		}
	}
}

func parseRFC2822(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	if t, err := mail.ParseDate(raw); err == nil {
		return t, true
	}
	return time.Time{}, false
}

func parseRFC3339(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// sanitizeHTML strips feed-supplied HTML down to plain-ish text via
// html-to-markdown; descriptions/summaries are frequently raw HTML in the
// wild. Falls back to the raw input if conversion fails, since a feed item
// missing its description entirely is worse than an unconverted one.
func sanitizeHTML(raw string) string {
	if raw == "" {
		return ""
	}
	converted, err := htmltomarkdown.ConvertString(raw)
	if err != nil {
		return raw
	}
	return strings.TrimSpace(converted)
}
