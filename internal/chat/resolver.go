package chat

import (
	"context"
	"regexp"
	"strings"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"
)

// CatalogNames supplies the candidate medicine names for resolution.
type CatalogNames interface {
	ListNames(ctx context.Context) ([]string, error)
}

// stopwords are filler tokens stripped from a medicine phrase before
// matching, alongside standalone numbers.
var stopwords = map[string]bool{
	"i":      true,
	"need":   true,
	"want":   true,
	"give":   true,
	"me":     true,
	"please": true,
}

var numberToken = regexp.MustCompile(`^\d+$`)

// CleanPhrase isolates the medicine name: lowercases, drops standalone
// numeric tokens and the stopword set.
func CleanPhrase(phrase string) string {
	var kept []string
	for _, token := range strings.Fields(strings.ToLower(phrase)) {
		if numberToken.MatchString(token) || stopwords[token] {
			continue
		}
		kept = append(kept, token)
	}
	return strings.Join(kept, " ")
}

// Resolver fuzzy-matches a cleaned phrase against the catalog. A match is
// accepted only above the confidence threshold (0-100 scale).
type Resolver struct {
	catalog   CatalogNames
	threshold int
}

func NewResolver(catalog CatalogNames, threshold int) *Resolver {
	if threshold <= 0 {
		threshold = 75
	}
	return &Resolver{catalog: catalog, threshold: threshold}
}

// Resolve returns the best-scoring catalog name, or ok=false when the
// catalog is empty or no candidate clears the threshold. Ties keep the
// first name in catalog order, so results are stable across calls.
func (r *Resolver) Resolve(ctx context.Context, phrase string) (string, bool, error) {
	phrase = strings.TrimSpace(phrase)
	if phrase == "" {
		return "", false, nil
	}

	names, err := r.catalog.ListNames(ctx)
	if err != nil {
		return "", false, err
	}
	if len(names) == 0 {
		return "", false, nil
	}

	bestName, bestScore := "", -1
	for _, name := range names {
		score := fuzzy.WRatio(phrase, name)
		if score > bestScore {
			bestName, bestScore = name, score
		}
	}

	if bestScore <= r.threshold {
		return "", false, nil
	}
	return bestName, true, nil
}
