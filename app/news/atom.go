package news

import (
	"cmp"
	"encoding/xml"
	"fmt"
	"strings"
)

type atomDocument struct {
	Title    string      `xml:"title"`
	Subtitle string      `xml:"subtitle"`
	Entries  []atomEntry `xml:"entry"`
}

type atomEntry struct {
	Title      string         `xml:"title"`
	Links      []atomLink     `xml:"link"`
	Summary    string         `xml:"summary"`
	Content    string         `xml:"content"`
	Author     atomAuthor     `xml:"author"`
	Categories []atomCategory `xml:"category"`
	Updated    string         `xml:"updated"`
	Published  string         `xml:"published"`
}

type atomLink struct {
	Href string `xml:"href,attr"`
}

type atomAuthor struct {
	Name string `xml:"name"`
}

type atomCategory struct {
	Term string `xml:"term,attr"`
}

func (p *Parser) parseAtom(xmlText string, feed Feed) (*FeedInfo, []Article, error) {
	var doc atomDocument

	decoder := xml.NewDecoder(strings.NewReader(xmlText))
	decoder.CharsetReader = charsetReader
	if err := decoder.Decode(&doc); err != nil {
		return nil, nil, fmt.Errorf("failed to decode Atom document: %w", err)
	}

	info := &FeedInfo{
		Title:       StripHTML(doc.Title),
		Description: StripHTML(doc.Subtitle),
	}

	source := cmp.Or(info.Title, feed.URL)

	now := p.now()
	articles := make([]Article, 0, min(len(doc.Entries), p.maxArticles))
	for _, entry := range doc.Entries {
		if len(articles) >= p.maxArticles {
			break
		}

		title := StripHTML(entry.Title)

		var link string
		if len(entry.Links) > 0 {
			link = strings.TrimSpace(entry.Links[0].Href)
		}
		if title == "" || link == "" {
			continue
		}

		// summary is preferred over full content for the description
		description := StripHTML(cmp.Or(entry.Summary, entry.Content))

		var category string
		if len(entry.Categories) > 0 {
			category = strings.TrimSpace(entry.Categories[0].Term)
		}

		articles = append(articles, Article{
			ID:            ArticleID(title, link),
			Title:         title,
			Description:   description,
			Link:          link,
			Source:        source,
			Author:        strings.TrimSpace(entry.Author.Name),
			Category:      category,
			PublishedDate: ParseDate(cmp.Or(entry.Updated, entry.Published)),
			CachedAt:      now,
		})
	}

	return info, articles, nil
}
