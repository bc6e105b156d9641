package analysis

import (
	"regexp"
	"strconv"
	"strings"
)

// sponsorMarker identifies sponsor segments that must not leak into the
// analysis text
const sponsorMarker = "vaneck"

var timestampPattern = regexp.MustCompile(`\((\d{1,2}):(\d{2})\)`)

// ValidateTimestamps reports whether every (M:SS) timestamp reference in the
// analysis text falls within the video duration
func ValidateTimestamps(analysisText string, durationSeconds int) bool {
	for _, match := range timestampPattern.FindAllStringSubmatch(analysisText, -1) {
		minutes, _ := strconv.Atoi(match[1])
		seconds, _ := strconv.Atoi(match[2])
		if minutes*60+seconds > durationSeconds {
			return false
		}
	}
	return true
}

// SponsorExcluded reports whether the sponsor marker is absent from the
// analysis text
func SponsorExcluded(analysisText string) bool {
	return !strings.Contains(strings.ToLower(analysisText), sponsorMarker)
}
