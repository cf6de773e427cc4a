package record

import (
	"regexp"
	"strconv"
)

// linePattern matches "<seq>, /<seat>/ <bpm> <timestamp>.;" with any trailing content.
var linePattern = regexp.MustCompile(`^(\d+),\s*/(\d+)/\s+(\d+)\s+(\d+)\.;`)

// ParseLine extracts a Sample from one log line. The leading sequence number is
// ignored. It reports false for any line that does not match or whose numeric
// fields do not fit their types.
func ParseLine(line string) (Sample, bool) {
	m := linePattern.FindStringSubmatch(line)
	if m == nil {
		return Sample{}, false
	}

	seatID := m[2]
	if _, err := strconv.ParseInt(seatID, 10, 64); err != nil {
		return Sample{}, false
	}
	bpm, err := strconv.Atoi(m[3])
	if err != nil {
		return Sample{}, false
	}
	ts, err := strconv.ParseInt(m[4], 10, 64)
	if err != nil {
		return Sample{}, false
	}

	return Sample{SeatID: seatID, BPM: bpm, TimestampMs: ts}, true
}
