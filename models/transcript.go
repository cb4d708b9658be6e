package models

// Segment is a time-bounded span of transcript text. Start and End are
// offsets in seconds from the beginning of the media.
type Segment struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// TranscriptResult bundles the full transcript text with its timed segments.
// Segments are ordered by Start ascending.
type TranscriptResult struct {
	Text     string    `json:"text"`
	Segments []Segment `json:"segments"`
}
