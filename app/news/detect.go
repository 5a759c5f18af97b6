package news

import (
	"strings"
)

const atomNamespace = "http://www.w3.org/2005/Atom"

// DetectFeedType classifies raw XML text by lightweight substring signatures.
// This is a heuristic, not a validating parser: a misclassified document
// simply parses to zero articles downstream.
func DetectFeedType(xmlText string) FeedType {
	if idx := strings.Index(xmlText, "<rss"); idx >= 0 {
		tag := xmlText[idx:]
		if end := strings.Index(tag, ">"); end >= 0 {
			tag = tag[:end]
		}
		if strings.Contains(tag, `version="2.0"`) || strings.Contains(tag, `version='2.0'`) {
			return FeedTypeRSS20
		}
		return FeedTypeRSS10
	}

	if idx := strings.Index(xmlText, "<feed"); idx >= 0 {
		if strings.Contains(xmlText, atomNamespace) {
			return FeedTypeAtom10
		}
	}

	return FeedTypeUnknown
}
