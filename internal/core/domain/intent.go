package domain

import "strings"

// IntentOther is the bucket for messages matching no keyword set.
const IntentOther = "other"

// intentKeywords maps each intent bucket to its trigger keywords.
// Buckets are evaluated in a fixed order so classification is deterministic.
var intentKeywords = []struct {
	intent   string
	keywords []string
}{
	{"billing", []string{"invoice", "price", "pricing", "bill", "payment"}},
	{"deployment", []string{"deploy", "docker", "kubernetes", "cloud", "server"}},
	{"usage", []string{"use", "run", "setup", "install", "configure", "start"}},
	{"support", []string{"help", "issue", "bug", "error", "broken"}},
}

// CategorizeIntent maps a raw message to a coarse intent bucket via keyword
// heuristics. Only the bucket label ever reaches analytics; the raw message
// is discarded.
func CategorizeIntent(message string) string {
	normalized := strings.ToLower(message)
	for _, set := range intentKeywords {
		for _, keyword := range set.keywords {
			if strings.Contains(normalized, keyword) {
				return set.intent
			}
		}
	}
	return IntentOther
}
