package youtube

import "regexp"

// Video ids are exactly 11 characters from [A-Za-z0-9_-]. The first
// pattern covers the common URL shapes, the second catches watch URLs
// where other query parameters precede v=.
var idPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:youtube\.com/(?:watch\?v=|embed/|v/|shorts/)|youtu\.be/)([A-Za-z0-9_-]{11})`),
	regexp.MustCompile(`youtube\.com/watch\?.*v=([A-Za-z0-9_-]{11})`),
}

var bareID = regexp.MustCompile(`^[A-Za-z0-9]{11}$`)

// ExtractVideoID extracts the canonical 11-character video id from any of
// the accepted YouTube URL shapes, or from a bare id. Returns "" when the
// input is not recognizable as a YouTube video reference.
func ExtractVideoID(urlOrID string) string {
	for _, pattern := range idPatterns {
		if m := pattern.FindStringSubmatch(urlOrID); m != nil {
			return m[1]
		}
	}

	// The input may already be a video id.
	if bareID.MatchString(urlOrID) {
		return urlOrID
	}

	return ""
}
