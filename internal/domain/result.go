package domain

// Upload is the raw payload of a single multipart file upload. It lives for
// the duration of one request and is never persisted except by enrollment.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// EmotionResult is the outcome of an emotion classification. Dominant is
// always a key of Scores holding the maximal value; ties are broken by the
// analyzer's own ordering and are not re-derived here.
type EmotionResult struct {
	Dominant string             `json:"dominant_emotion"`
	Scores   map[string]float64 `json:"emotion_scores"`
}

// Candidate is one ranked identity returned by the analyzer, ascending by
// distance (0 = identical).
type Candidate struct {
	Label    string
	Distance float64
}

// Match is a candidate that passed the distance threshold, converted to a
// display confidence. Confidence is 1 - distance and is intentionally not
// clamped: distances above 1 yield negative confidences.
type Match struct {
	Identity   string  `json:"identity"`
	Confidence float64 `json:"confidence"`
}

// MatchSet is the full recognition outcome for one probe image.
type MatchSet struct {
	Matches []Match `json:"results"`
	Message string  `json:"message"`
}

// FilterCandidates keeps candidates with distance <= threshold and converts
// them to matches, preserving the analyzer's ascending-distance order.
func FilterCandidates(candidates []Candidate, threshold float64) []Match {
	matches := make([]Match, 0, len(candidates))
	for _, c := range candidates {
		if c.Distance > threshold {
			continue
		}
		matches = append(matches, Match{
			Identity:   c.Label,
			Confidence: 1 - c.Distance,
		})
	}
	return matches
}
