package news

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"time"

	"golang.org/x/text/encoding/htmlindex"
)

const (
	DefaultMaxArticlesPerFeed = 50
	MinArticlesPerFeed        = 1
	MaxArticlesPerFeed        = 200
)

type parseFunc func(*Parser, string, Feed) (*FeedInfo, []Article, error)

// Parsers are selected by detected feed type through a dispatch table; each
// parse function is state-free and independently testable.
var parserDispatch = map[FeedType]parseFunc{
	FeedTypeRSS20:  (*Parser).parseRSS,
	FeedTypeRSS10:  (*Parser).parseRSS,
	FeedTypeAtom10: (*Parser).parseAtom,
}

// Parser turns raw feed XML into normalized articles, capped per feed.
type Parser struct {
	maxArticles int
	now         func() time.Time
}

func NewParser(maxArticles int) *Parser {
	if maxArticles < MinArticlesPerFeed {
		maxArticles = MinArticlesPerFeed
	}
	if maxArticles > MaxArticlesPerFeed {
		maxArticles = MaxArticlesPerFeed
	}

	return &Parser{
		maxArticles: maxArticles,
		now:         time.Now,
	}
}

// Run parses xmlText according to feedType. An unrecognized type or a
// document the decoder rejects yields a nil article list and an error; a
// well-formed feed with no items yields an empty list and no error, so the
// caller can tell the two apart.
func (p *Parser) Run(xmlText string, feed Feed, feedType FeedType) (*FeedInfo, []Article, error) {
	parse, ok := parserDispatch[feedType]
	if !ok {
		return nil, nil, fmt.Errorf("unrecognized feed type for %s", feed.URL)
	}
	return parse(p, xmlText, feed)
}

// ArticleID derives the stable article identity from title+link. Two articles
// with the same title and link are the same entity regardless of feed origin.
func ArticleID(title, link string) string {
	hash := sha256.Sum256([]byte(title + link))
	return hex.EncodeToString(hash[:])
}

// charsetReader lets the XML decoder handle feeds that declare a non-UTF-8
// encoding in their prolog.
func charsetReader(label string, input io.Reader) (io.Reader, error) {
	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, fmt.Errorf("unsupported charset %q: %w", label, err)
	}
	return enc.NewDecoder().Reader(input), nil
}
