package thoughtlog

import (
	"bufio"
	"os"
	"strings"

	"github.com/AdarshSingh-ASR/WebSentinel/internal/models"
)

// Load parses a thought log back into Thought records. Only ACTION,
// OBSERVATION and DECISION lines are returned; summary blocks and other
// categories are skipped. A missing file yields an empty slice, not an
// error, since a run may legitimately produce no thoughts.
func Load(path string) ([]models.Thought, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	var thoughts []models.Thought

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if !strings.Contains(line, "] ACTION:") &&
			!strings.Contains(line, "] OBSERVATION:") &&
			!strings.Contains(line, "] DECISION:") {
			continue
		}

		ts, rest, ok := strings.Cut(line, "] ")
		if !ok || !strings.HasPrefix(ts, "[") {
			continue
		}
		thoughtType, message, ok := strings.Cut(rest, ": ")
		if !ok {
			continue
		}

		thoughts = append(thoughts, models.Thought{
			Timestamp: strings.TrimPrefix(ts, "["),
			Type:      strings.ToLower(thoughtType),
			Message:   message,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return thoughts, nil
}
