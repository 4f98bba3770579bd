package logtail

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
)

// Read returns at most maxLines from the end of the file at path. maxLines
// <= 0 returns every line. A missing file yields no lines and no error.
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
		for i := 0; i < count; i++ {
			lines[i] = ring[(idx+i)%maxLines]
		}
	} else {
		copy(lines, ring[:count])
	}
	return lines, nil
}

// Entry is one decoded line of the JSON log.
type Entry struct {
	Time    string         `json:"time,omitempty" yaml:"time,omitempty"`
	Level   string         `json:"level,omitempty" yaml:"level,omitempty"`
	Logger  string         `json:"logger,omitempty" yaml:"logger,omitempty"`
	Message string         `json:"msg,omitempty" yaml:"msg,omitempty"`
	Fields  map[string]any `json:"fields,omitempty" yaml:"fields,omitempty"`
	// Raw holds lines that are not JSON objects.
	Raw string `json:"raw,omitempty" yaml:"raw,omitempty"`
}

// reserved keys are lifted out of Fields.
var reserved = map[string]struct{}{
	"time": {}, "level": {}, "logger": {}, "msg": {}, "caller": {}, "stacktrace": {},
}

// Parse decodes one log line. Lines that are not JSON objects are kept
// verbatim in Raw.
func Parse(line string) Entry {
	var obj map[string]any
	if err := json.Unmarshal([]byte(line), &obj); err != nil {
		return Entry{Raw: line}
	}
	e := Entry{
		Time:    stringField(obj, "time"),
		Level:   stringField(obj, "level"),
		Logger:  stringField(obj, "logger"),
		Message: stringField(obj, "msg"),
	}
	for k, v := range obj {
		if _, skip := reserved[k]; skip {
			continue
		}
		if e.Fields == nil {
			e.Fields = make(map[string]any)
		}
		e.Fields[k] = v
	}
	return e
}

func stringField(obj map[string]any, key string) string {
	s, _ := obj[key].(string)
	return s
}

var levelRank = map[string]int{
	"debug": 0, "info": 1, "warn": 2, "error": 3, "dpanic": 4, "panic": 5, "fatal": 6,
}

// AtLeast reports whether e is at or above level. Raw lines and unknown
// levels always pass.
func (e Entry) AtLeast(level string) bool {
	want, ok := levelRank[strings.ToLower(level)]
	if !ok || e.Raw != "" {
		return true
	}
	have, ok := levelRank[strings.ToLower(e.Level)]
	return !ok || have >= want
}

// Format renders e on one line: time, level, logger, message, then the
// remaining fields sorted by key.
func (e Entry) Format() string {
	if e.Raw != "" {
		return e.Raw
	}
	var b strings.Builder
	if e.Time != "" {
		b.WriteString(e.Time)
		b.WriteString(" ")
	}
	fmt.Fprintf(&b, "%-5s", strings.ToUpper(e.Level))
	if e.Logger != "" {
		b.WriteString(" [")
		b.WriteString(e.Logger)
		b.WriteString("]")
	}
	b.WriteString(" ")
	b.WriteString(e.Message)

	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, e.Fields[k])
	}
	return b.String()
}
