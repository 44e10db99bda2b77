package transcript

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/seanblong/podsearch/pkg/models"
)

// headerRe matches a speaker turn header like "Lenny Rachitsky (00:04:35):".
// The whole line must be the header; turn text follows on subsequent lines.
var headerRe = regexp.MustCompile(`^([^(]+)\s*\((\d{1,2}:\d{2}:\d{2})\):\s*$`)

// ParseTimestamp converts "H:MM:SS"/"HH:MM:SS" or "MM:SS" to seconds.
// Anything else yields 0 rather than an error; a bad timestamp should not
// sink a whole transcript.
func ParseTimestamp(ts string) int {
	parts := strings.Split(ts, ":")
	nums := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return 0
		}
		nums = append(nums, n)
	}
	switch len(nums) {
	case 3:
		return nums[0]*3600 + nums[1]*60 + nums[2]
	case 2:
		return nums[0]*60 + nums[1]
	}
	return 0
}

// ParseTurns scans a transcript body (front matter already stripped) into
// ordered speaker turns. It is a two-state scanner: seeking a header line,
// then accumulating body lines until the next header. Markdown headings and
// horizontal rules inside a body are skipped. Turns whose accumulated text
// trims to empty are dropped.
func ParseTurns(body string) []models.SpeakerTurn {
	var turns []models.SpeakerTurn
	var current *models.SpeakerTurn
	var text []string

	flush := func() {
		if current == nil {
			return
		}
		current.Text = strings.TrimSpace(strings.Join(text, " "))
		if current.Text != "" {
			turns = append(turns, *current)
		}
	}

	for _, line := range strings.Split(body, "\n") {
		if m := headerRe.FindStringSubmatch(line); m != nil {
			flush()
			current = &models.SpeakerTurn{
				Speaker:          strings.TrimSpace(m[1]),
				Timestamp:        m[2],
				TimestampSeconds: ParseTimestamp(m[2]),
			}
			text = text[:0]
			continue
		}
		if current == nil || strings.TrimSpace(line) == "" {
			continue
		}
		if strings.HasPrefix(line, "#") || strings.HasPrefix(line, "---") {
			continue
		}
		text = append(text, strings.TrimSpace(line))
	}
	flush()

	return turns
}
