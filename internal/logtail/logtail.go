package logtail

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Read returns at most maxLines from the end of the file at path. A
// non-positive maxLines reads the whole file. A missing file reads as empty.
func Read(path string, maxLines int) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if maxLines <= 0 {
		var lines []string
		for scanner.Scan() {
			lines = append(lines, scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read log: %w", err)
		}
		return lines, nil
	}

	ring := make([]string, maxLines)
	count := 0
	idx := 0
	for scanner.Scan() {
		ring[idx] = scanner.Text()
		idx = (idx + 1) % maxLines
		if count < maxLines {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}

	lines := make([]string, count)
	if count == maxLines {
		for i := range count {
			lines[i] = ring[(idx+i)%maxLines]
		}
	} else {
		copy(lines, ring[:count])
	}
	return lines, nil
}

// Attr is one key=value pair of a record.
type Attr struct {
	Key   string
	Value string
}

// Entry is a parsed text-handler record.
type Entry struct {
	Time    string
	Level   string
	Message string
	Attrs   []Attr
	// Raw holds the original line when it was not a key=value record.
	Raw string
}

// Parse splits a slog text record into its parts. Lines that do not start
// with time= or level= come back with only Raw set.
func Parse(line string) Entry {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "time=") && !strings.HasPrefix(trimmed, "level=") {
		return Entry{Raw: line}
	}
	var e Entry
	for _, a := range splitPairs(trimmed) {
		switch a.Key {
		case "time":
			e.Time = a.Value
		case "level":
			e.Level = a.Value
		case "msg":
			e.Message = a.Value
		default:
			e.Attrs = append(e.Attrs, a)
		}
	}
	return e
}

func splitPairs(s string) []Attr {
	var out []Attr
	for len(s) > 0 {
		s = strings.TrimLeft(s, " ")
		eq := strings.IndexByte(s, '=')
		if eq <= 0 {
			break
		}
		key := s[:eq]
		s = s[eq+1:]

		var value string
		if strings.HasPrefix(s, `"`) {
			end := closingQuote(s)
			raw := s[:end]
			if unq, err := strconv.Unquote(raw); err == nil {
				value = unq
			} else {
				value = strings.Trim(raw, `"`)
			}
			s = s[end:]
		} else {
			sp := strings.IndexByte(s, ' ')
			if sp < 0 {
				sp = len(s)
			}
			value = s[:sp]
			s = s[sp:]
		}
		out = append(out, Attr{Key: key, Value: value})
	}
	return out
}

// closingQuote returns the index just past the quoted string starting at s[0].
func closingQuote(s string) int {
	for i := 1; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '"':
			return i + 1
		}
	}
	return len(s)
}
