package news

import (
	"cmp"
	"encoding/xml"
	"fmt"
	"strings"
)

// rssDocument covers both RSS 2.0 (<rss><channel><item>) and RSS 1.0/RDF,
// where items are siblings of the channel under the root element.
type rssDocument struct {
	Channel rssChannel `xml:"channel"`
	Items   []rssItem  `xml:"item"`
}

type rssChannel struct {
	Title       string    `xml:"title"`
	Description string    `xml:"description"`
	Items       []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description"`
	Author      string `xml:"author"`
	Category    string `xml:"category"`
	PubDate     string `xml:"pubDate"`
	Date        string `xml:"date"` // dc:date, common in RSS 1.0
}

func (p *Parser) parseRSS(xmlText string, feed Feed) (*FeedInfo, []Article, error) {
	var doc rssDocument

	decoder := xml.NewDecoder(strings.NewReader(xmlText))
	decoder.CharsetReader = charsetReader
	if err := decoder.Decode(&doc); err != nil {
		return nil, nil, fmt.Errorf("failed to decode RSS document: %w", err)
	}

	info := &FeedInfo{
		Title:       StripHTML(doc.Channel.Title),
		Description: StripHTML(doc.Channel.Description),
	}

	source := cmp.Or(info.Title, feed.URL)

	items := doc.Channel.Items
	if len(items) == 0 {
		items = doc.Items
	}

	now := p.now()
	articles := make([]Article, 0, min(len(items), p.maxArticles))
	for _, item := range items {
		if len(articles) >= p.maxArticles {
			break
		}

		title := StripHTML(item.Title)
		link := strings.TrimSpace(item.Link)
		if title == "" || link == "" {
			continue
		}

		articles = append(articles, Article{
			ID:            ArticleID(title, link),
			Title:         title,
			Description:   StripHTML(item.Description),
			Link:          link,
			Source:        source,
			Author:        strings.TrimSpace(item.Author),
			Category:      strings.TrimSpace(item.Category),
			PublishedDate: ParseDate(cmp.Or(item.PubDate, item.Date)),
			CachedAt:      now,
		})
	}

	return info, articles, nil
}
