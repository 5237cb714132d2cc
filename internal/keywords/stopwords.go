package keywords

// French and English function words that never make useful stock-media queries.
var stopWords = buildSet(
	// fr
	"le", "la", "les", "un", "une", "des", "de", "du", "au", "aux",
	"et", "ou", "mais", "donc", "car", "ni", "que", "qui", "quoi",
	"ce", "cette", "ces", "mon", "ma", "mes", "ton", "ta", "tes",
	"son", "sa", "ses", "notre", "votre", "leur", "leurs",
	"je", "tu", "il", "elle", "nous", "vous", "ils", "elles", "on",
	"ne", "pas", "plus", "jamais", "rien", "tout", "tous", "toute",
	"est", "sont", "être", "avoir", "fait", "faire", "dit", "dire",
	"dans", "sur", "sous", "avec", "sans", "pour", "par", "entre",
	"très", "bien", "aussi", "comme", "même", "encore", "déjà",
	"ici", "là", "alors", "puis", "après", "avant", "quand",
	"comment", "pourquoi", "où", "si", "oui", "non",
	// en
	"the", "a", "an", "is", "are", "was", "were", "be", "been",
	"have", "has", "had", "do", "does", "did", "will", "would",
	"could", "should", "may", "might", "must", "shall",
	"i", "you", "he", "she", "it", "we", "they", "me", "him",
	"her", "us", "them", "my", "your", "his", "its", "our", "their",
	"this", "that", "these", "those", "what", "which", "who",
	"in", "on", "at", "to", "for", "with", "from", "by", "about",
	"and", "or", "but", "not", "no", "so", "if", "then",
	"very", "just", "also", "how", "when", "where", "why",
)

func buildSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// IsStopWord reports whether the lowercased word is filtered out.
func IsStopWord(word string) bool {
	_, ok := stopWords[word]
	return ok
}
