package lyrics

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// [MM:SS.CC]text, CC is hundredths. text stops at a carriage return.
var timestampPattern = regexp.MustCompile(`\[(\d{2}):(\d{2})\.(\d{2})\]([^\r]*)`)

// time is seconds from track start
type Line struct {
	Time float64
	Text string
}

// untimed and empty lines are dropped, the result is never nil
func Parse(raw string) []Line {
	rows := strings.Split(raw, "\n")
	result := make([]Line, 0, len(rows))

	for _, row := range rows {
		line, ok := parseLine(row)
		if !ok {
			continue
		}
		result = append(result, line)
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Time < result[j].Time
	})

	return result
}

func parseLine(row string) (Line, bool) {
	match := timestampPattern.FindStringSubmatch(row)
	if match == nil {
		return Line{}, false
	}

	text := strings.TrimSpace(match[4])
	if text == "" {
		return Line{}, false
	}

	// two-digit groups always fit, errors are impossible after the match
	minutes, _ := strconv.Atoi(match[1])
	seconds, _ := strconv.Atoi(match[2])
	hundredths, _ := strconv.Atoi(match[3])

	return Line{
		Time: float64(minutes)*60 + float64(seconds) + float64(hundredths)/100,
		Text: text,
	}, true
}

// Locate returns the last line at or before position+offset, or -1.
func Locate(lines []Line, position float64, offset float64) int {
	effective := position + offset
	if math.IsNaN(effective) || math.IsInf(effective, 0) {
		return -1
	}

	return sort.Search(len(lines), func(i int) bool {
		return lines[i].Time > effective
	}) - 1
}

func FormatTimestamp(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		seconds = 0
	}
	total := int64(math.Round(seconds * 100))
	minutes := total / 6000
	secs := (total / 100) % 60
	hundredths := total % 100
	return fmt.Sprintf("[%02d:%02d.%02d]", minutes, secs, hundredths)
}

func FormatOffset(offset float64) string {
	// accumulated steps leave float noise like 5.55e-17
	offset = math.Round(offset*10) / 10
	if offset == 0 {
		return "0.0s"
	}
	return fmt.Sprintf("%+.1fs", offset)
}
