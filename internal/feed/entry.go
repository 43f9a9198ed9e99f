package feed

import (
	"strconv"
	"time"

	"github.com/mmcdole/gofeed"
)

// Entry is one parsed feed item with every field explicitly optional.
// Zero values mean "absent"; consumers must default accordingly.
type Entry struct {
	Title      string
	Summary    string // summary/description, may contain HTML
	Content    string // full content block, may contain HTML
	Link       string
	Published  *time.Time
	Categories []string

	Thumbnail  string       // dedicated thumbnail attachment, if any
	Media      []Attachment // media:content attachments
	Enclosures []Attachment
}

// Attachment is a media reference carried by an entry. Width and Height
// are zero when the feed does not declare them.
type Attachment struct {
	URL    string
	Type   string
	Width  int
	Height int
}

// entryFromItem flattens a gofeed item, including its Media RSS
// extensions, into an Entry.
func entryFromItem(item *gofeed.Item) Entry {
	e := Entry{
		Title:      item.Title,
		Summary:    item.Description,
		Content:    item.Content,
		Link:       item.Link,
		Categories: item.Categories,
	}

	if item.PublishedParsed != nil {
		e.Published = item.PublishedParsed
	} else if item.UpdatedParsed != nil {
		e.Published = item.UpdatedParsed
	}

	// media:thumbnail is the feed's dedicated thumbnail and takes priority;
	// gofeed synthesizes item.Image from media:content, enclosures or inline
	// imgs, which belong to the later resolution strategies.
	if media, ok := item.Extensions["media"]; ok {
		for _, t := range media["thumbnail"] {
			if u := t.Attrs["url"]; u != "" {
				e.Thumbnail = u
				break
			}
		}
		for _, c := range media["content"] {
			if c.Attrs["url"] == "" {
				continue
			}
			e.Media = append(e.Media, Attachment{
				URL:    c.Attrs["url"],
				Type:   c.Attrs["type"],
				Width:  atoiOrZero(c.Attrs["width"]),
				Height: atoiOrZero(c.Attrs["height"]),
			})
		}
	}

	if e.Thumbnail == "" && item.Image != nil {
		e.Thumbnail = item.Image.URL
	}

	for _, enc := range item.Enclosures {
		if enc == nil || enc.URL == "" {
			continue
		}
		e.Enclosures = append(e.Enclosures, Attachment{
			URL:  enc.URL,
			Type: enc.Type,
		})
	}

	return e
}

func atoiOrZero(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
