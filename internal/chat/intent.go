package chat

import (
	"regexp"
	"strconv"
	"strings"
)

// Intent is the classified purpose of a user message. It is a closed set:
// the orchestrator switches over the three variants and nothing else.
type Intent interface {
	isIntent()
}

// RecommendIntent asks for suggestions against a symptom.
type RecommendIntent struct {
	Symptom string
}

// OrderIntent asks to buy a medicine. Quantity 0 and DosageFrequency 0
// mean the value was not present in the message.
type OrderIntent struct {
	Medicine        string
	Quantity        int
	DosageFrequency float64
}

// UnknownIntent is returned for anything the classifier will not guess at.
type UnknownIntent struct{}

func (RecommendIntent) isIntent() {}
func (OrderIntent) isIntent()     {}
func (UnknownIntent) isIntent()   {}

// dosageMap translates spoken dosage phrases into doses per day.
var dosageMap = map[string]float64{
	"once daily":   1,
	"twice daily":  2,
	"thrice daily": 3,
}

var (
	quantityPattern = regexp.MustCompile(`\b(\d+)\b`)

	recommendMarkers = []string{
		"recommend",
		"suggest",
		"what should i take",
		"what can i take",
		"something for",
		"i'm tired",
		"i am tired",
		"i feel",
		"i have",
	}

	orderMarkers = []string{
		"order",
		"buy",
		"purchase",
		"i need",
		"i want",
		"get me",
		"give me",
	}

	// Tokens removed from the medicine phrase before resolution; the
	// numeric quantity is stripped separately.
	orderVerbs = map[string]bool{
		"order":    true,
		"buy":      true,
		"purchase": true,
		"get":      true,
		"units":    true,
		"unit":     true,
		"of":       true,
		"some":     true,
		"a":        true,
		"to":       true,
		"would":    true,
		"like":     true,
	}
)

// Classifier extracts a structured intent from raw text using keyword
// rules. It never guesses: text matching neither flow is UnknownIntent.
type Classifier struct{}

func NewClassifier() *Classifier {
	return &Classifier{}
}

func (c *Classifier) Classify(message string) Intent {
	text := strings.ToLower(strings.TrimSpace(message))
	if text == "" {
		return UnknownIntent{}
	}

	if marker, ok := matchMarker(text, recommendMarkers); ok {
		return RecommendIntent{Symptom: extractSymptom(text, marker)}
	}

	if _, ok := matchMarker(text, orderMarkers); ok {
		quantity := extractQuantity(text)
		dosage, remainder := extractDosage(text)
		return OrderIntent{
			Medicine:        extractMedicinePhrase(remainder),
			Quantity:        quantity,
			DosageFrequency: dosage,
		}
	}

	return UnknownIntent{}
}

func matchMarker(text string, markers []string) (string, bool) {
	for _, m := range markers {
		if strings.Contains(text, m) {
			return m, true
		}
	}
	return "", false
}

// extractSymptom pulls the symptom phrase out of recommend-style text.
// "something for a headache" → "a headache"; "I'm tired" → "tired".
func extractSymptom(text, marker string) string {
	if idx := strings.LastIndex(text, " for "); idx >= 0 {
		return strings.Trim(text[idx+len(" for "):], " .!?")
	}

	switch marker {
	case "i'm tired", "i am tired":
		return "tired"
	case "i feel", "i have":
		rest := text[strings.Index(text, marker)+len(marker):]
		return strings.Trim(rest, " .!?")
	}

	return strings.Trim(strings.NewReplacer(
		"recommend", "", "suggest", "",
		"what should i take", "", "what can i take", "",
	).Replace(text), " .!?")
}

func extractQuantity(text string) int {
	m := quantityPattern.FindString(text)
	if m == "" {
		return 0
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0
	}
	return n
}

// extractDosage finds a dosage phrase, returning its doses/day and the
// text with the phrase removed.
func extractDosage(text string) (float64, string) {
	for phrase, perDay := range dosageMap {
		if strings.Contains(text, phrase) {
			return perDay, strings.ReplaceAll(text, phrase, " ")
		}
	}
	return 0, text
}

// extractMedicinePhrase drops ordering verbs so the remaining tokens are
// mostly the medicine name; final cleanup happens before fuzzy matching.
func extractMedicinePhrase(text string) string {
	var kept []string
	for _, token := range strings.Fields(text) {
		if orderVerbs[strings.Trim(token, ".,!?")] {
			continue
		}
		kept = append(kept, strings.Trim(token, ".,!?"))
	}
	return strings.Join(kept, " ")
}
