package news

// Dedupe collapses repeated articles by ID, keeping the first occurrence and
// preserving input order. Because feeds are iterated in registry insertion
// order, the outcome is deterministic for a fixed registry state.
func Dedupe(articles []Article) []Article {
	seen := make(map[string]struct{}, len(articles))
	result := make([]Article, 0, len(articles))

	for _, article := range articles {
		if _, ok := seen[article.ID]; ok {
			continue
		}
		seen[article.ID] = struct{}{}
		result = append(result, article)
	}

	return result
}
