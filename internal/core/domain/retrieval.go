package domain

import "time"

// RetrievalStatus distinguishes a clean retrieval from one degraded by an
// index or embedding failure. Degradation is surfaced to operators, never
// through the answer text.
type RetrievalStatus string

const (
	RetrievalOK       RetrievalStatus = "ok"
	RetrievalDegraded RetrievalStatus = "degraded"
)

// IndexMatch is a raw hit returned by the vector index collaborator.
// Score is normalized cosine similarity in [0,1].
type IndexMatch struct {
	Content  string            `json:"content"`
	Metadata map[string]string `json:"metadata"`
	Score    float64           `json:"score"`
}

// Source returns the attribution name for the match, preferring the filename
// recorded at ingestion.
func (m IndexMatch) Source() string {
	if name := m.Metadata["filename"]; name != "" {
		return name
	}
	if name := m.Metadata["source"]; name != "" {
		return name
	}
	return "faq"
}

// RetrievedMatch is a threshold-surviving match with its final rank.
// Transient, produced per query, never persisted.
type RetrievedMatch struct {
	Content string  `json:"content"`
	Source  string  `json:"source"`
	Score   float64 `json:"score"`
	Rank    int     `json:"rank"`
}

// RetrievalResult is the ordered outcome of one retrieval call.
type RetrievalResult struct {
	TenantID string           `json:"tenant_id"`
	Matches  []RetrievedMatch `json:"matches"`
	Took     time.Duration    `json:"took"`
	Status   RetrievalStatus  `json:"status"`
}

// Empty reports whether no match survived threshold filtering.
func (r *RetrievalResult) Empty() bool {
	return r == nil || len(r.Matches) == 0
}

// AnswerSource tells the request-handling layer how the answer was produced.
type AnswerSource string

const (
	AnswerSourceFallback AnswerSource = "fallback"
	AnswerSourceContext  AnswerSource = "context"
)

// FallbackDecision is the outcome of the fallback policy.
type FallbackDecision struct {
	UsedFallback bool     `json:"used_fallback"`
	Answer       string   `json:"answer"`  // fallback text, or empty when proceeding with generation
	Sources      []string `json:"sources"` // distinct filenames in rank order; empty on fallback
}

// AnswerRequest is the inbound question from the request-handling layer.
type AnswerRequest struct {
	UserID   string `json:"user_id,omitempty"`
	TenantID string `json:"tenant_id,omitempty"`
	Message  string `json:"message"`
}

// AnswerResult is the structured result handed back to the request layer.
type AnswerResult struct {
	TenantID     string       `json:"tenant_id"`
	UserID       string       `json:"user_id,omitempty"`
	Answer       string       `json:"answer"`
	AnswerSource AnswerSource `json:"answer_source"`
	Sources      []string     `json:"sources"`
	FallbackUsed bool         `json:"fallback_used"`
	LatencyMS    float64      `json:"latency_ms"`
	Degraded     bool         `json:"degraded,omitempty"`
}
