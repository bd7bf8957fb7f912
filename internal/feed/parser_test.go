package feed

import (
	"strings"
	"testing"
)

const sampleRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
<title>Test &amp; Stories</title>
<description>A podcast feed</description>
<link>https://example.com</link>
<language>en-us</language>
<item>
<title>Episode One</title>
<description><![CDATA[<p>Episode <b>one</b> notes</p>]]></description>
<link>https://example.com/ep1</link>
<pubDate>Mon, 02 Jan 2006 15:04:05 -0700</pubDate>
<author>narrator@example.com</author>
<guid>ep-1</guid>
<enclosure url="https://example.com/ep1.mp3" type="audio/mpeg" length="123456"/>
</item>
<item>
<title>Show Notes PDF</title>
<description>Not audio</description>
<link>https://example.com/notes</link>
<enclosure url="https://example.com/notes.pdf" type="text/html" length="1000"/>
</item>
</channel>
</rss>`

const sampleAtom = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
<title>Atom Feed</title>
<subtitle>An atom feed</subtitle>
<link href="https://example.com" rel="alternate"/>
<entry>
<title>Atom Entry One</title>
<summary>entry notes</summary>
<link href="https://example.com/entry1" rel="alternate"/>
<link href="https://example.com/entry1.mp3" type="audio/mpeg" rel="enclosure" length="2000"/>
<id>entry-1</id>
<published>2006-01-02T15:04:05Z</published>
<author><name>An Author</name></author>
</entry>
</feed>`

func TestParseRSS(t *testing.T) {
	f, err := Parse(strings.NewReader(sampleRSS))
	if err != nil {
		t.Fatalf("parse rss: %v", err)
	}
	if f.Kind != KindRSS {
		t.Errorf("expected KindRSS, got %v", f.Kind)
	}
	if f.Title != "Test & Stories" {
		t.Errorf("expected entity-decoded title, got %q", f.Title)
	}
	if f.Language != "en-us" {
		t.Errorf("expected language en-us, got %q", f.Language)
	}
	if len(f.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(f.Items))
	}

	first := f.Items[0]
	if first.Title != "Episode One" {
		t.Errorf("unexpected title: %q", first.Title)
	}
	if first.GUID != "ep-1" {
		t.Errorf("unexpected guid: %q", first.GUID)
	}
	if !first.HasDate {
		t.Error("expected pubDate to parse")
	}
	if first.AudioURL() != "https://example.com/ep1.mp3" {
		t.Errorf("unexpected audio url: %q", first.AudioURL())
	}
	if !strings.Contains(first.Description, "one") {
		t.Errorf("expected sanitized description to retain text, got %q", first.Description)
	}
}

func TestParseRSS_AudioItemsFiltersNonAudioEnclosures(t *testing.T) {
	f, err := Parse(strings.NewReader(sampleRSS))
	if err != nil {
		t.Fatalf("parse rss: %v", err)
	}
	audio := f.AudioItems()
	if len(audio) != 1 {
		t.Fatalf("expected 1 audio item, got %d", len(audio))
	}
	if audio[0].Title != "Episode One" {
		t.Errorf("unexpected audio item: %q", audio[0].Title)
	}
}

func TestParseAtom(t *testing.T) {
	f, err := Parse(strings.NewReader(sampleAtom))
	if err != nil {
		t.Fatalf("parse atom: %v", err)
	}
	if f.Kind != KindAtom {
		t.Errorf("expected KindAtom, got %v", f.Kind)
	}
	if f.Title != "Atom Feed" || f.Subtitle != "An atom feed" {
		t.Errorf("unexpected feed header: %+v", f)
	}
	if f.Link != "https://example.com" {
		t.Errorf("unexpected feed link: %q", f.Link)
	}
	if len(f.Items) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(f.Items))
	}

	entry := f.Items[0]
	if entry.Link != "https://example.com/entry1" {
		t.Errorf("unexpected alternate link: %q", entry.Link)
	}
	if entry.AudioURL() != "https://example.com/entry1.mp3" {
		t.Errorf("unexpected enclosure link: %q", entry.AudioURL())
	}
	if entry.Author != "An Author" {
		t.Errorf("unexpected author: %q", entry.Author)
	}
	if !entry.HasDate {
		t.Error("expected published date to parse")
	}
}

func TestParse_UnsupportedFormat(t *testing.T) {
	_, err := Parse(strings.NewReader(`<html><body>not a feed</body></html>`))
	if err != ErrUnsupportedFormat {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestParse_InvalidXML(t *testing.T) {
	_, err := Parse(strings.NewReader(`<rss><channel><title>unterminated`))
	if err == nil {
		t.Error("expected an error for truncated xml")
	}
}

func TestParse_MissingFeedTitle(t *testing.T) {
	_, err := Parse(strings.NewReader(`<rss><channel><description>no title</description></channel></rss>`))
	if err == nil {
		t.Error("expected a missing-field error when the feed has no title")
	}
}

func TestParse_MissingItemTitle(t *testing.T) {
	doc := `<rss><channel><title>Feed</title><item><description>no title</description></item></channel></rss>`
	_, err := Parse(strings.NewReader(doc))
	if err == nil {
		t.Error("expected a missing-field error when an item has no title")
	}
}

func TestParse_MalformedDateDoesNotAbortParse(t *testing.T) {
	doc := `<rss><channel><title>Feed</title><item><title>Ep</title><pubDate>not a date</pubDate></item></channel></rss>`
	f, err := Parse(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("expected malformed dates to not abort the parse: %v", err)
	}
	if f.Items[0].HasDate {
		t.Error("expected HasDate false for an unparseable date")
	}
}
