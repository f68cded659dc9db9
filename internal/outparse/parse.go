package outparse

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultLabel names a number with no text before it.
const DefaultLabel = "value"

// labelCutset is trimmed from both ends of a label.
const labelCutset = " \t\v\f:=,;|"

// Metric is one extracted label and its value.
type Metric struct {
	Label string
	Value float64
}

// Format renders the value with the fewest digits that round-trip.
func (m Metric) Format() string {
	return strconv.FormatFloat(m.Value, 'f', -1, 64)
}

// Metrics holds extracted values ordered by when each label was last
// written.
type Metrics struct {
	entries []Metric
}

// Parse extracts every labelled number from text.
func Parse(text string) *Metrics {
	m := &Metrics{}
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if i := strings.LastIndexByte(line, '\r'); i >= 0 {
			line = line[i+1:]
		}
		m.scanLine(line)
	}
	return m
}

func (m *Metrics) scanLine(line string) {
	labelStart := 0
	i := 0
	for i < len(line) {
		start, end, ok := numberAt(line, i)
		if !ok {
			_, size := utf8.DecodeRuneInString(line[i:])
			i += size
			continue
		}
		value, err := strconv.ParseFloat(line[start:end], 64)
		if err != nil {
			i = end
			continue
		}
		label := strings.Trim(line[labelStart:start], labelCutset)
		if label == "" {
			label = DefaultLabel
		}
		m.set(label, value)
		labelStart, i = end, end
	}
}

// numberAt reports whether a number token starts at i: an optional sign,
// then digits with at most one decimal point, or a point followed by
// digits. The character before the token must not be a letter or digit.
func numberAt(line string, i int) (start, end int, ok bool) {
	if precededByAlnum(line, i) {
		return 0, 0, false
	}
	j := i
	if line[j] == '+' || line[j] == '-' {
		j++
	}
	if j >= len(line) {
		return 0, 0, false
	}
	digitsFrom := j
	switch {
	case isDigit(line[j]):
	case line[j] == '.' && j+1 < len(line) && isDigit(line[j+1]):
	default:
		return 0, 0, false
	}

	seenDot := false
	for j < len(line) {
		c := line[j]
		if isDigit(c) {
			j++
			continue
		}
		if c == '.' && !seenDot && j+1 < len(line) && isDigit(line[j+1]) {
			seenDot = true
			j++
			continue
		}
		break
	}
	if j == digitsFrom {
		return 0, 0, false
	}
	return i, j, true
}

func precededByAlnum(line string, i int) bool {
	if i == 0 {
		return false
	}
	r, _ := utf8.DecodeLastRuneInString(line[:i])
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func (m *Metrics) set(label string, value float64) {
	for i, e := range m.entries {
		if e.Label == label {
			m.entries = append(m.entries[:i], m.entries[i+1:]...)
			break
		}
	}
	m.entries = append(m.entries, Metric{Label: label, Value: value})
}

// Len returns the number of distinct labels.
func (m *Metrics) Len() int { return len(m.entries) }

// All returns the metrics, least recently written first.
func (m *Metrics) All() []Metric {
	return append([]Metric(nil), m.entries...)
}

// Filter keeps the labels that contain any of names. An empty names list
// keeps everything.
func (m *Metrics) Filter(names []string) *Metrics {
	if len(names) == 0 {
		return &Metrics{entries: m.All()}
	}
	out := &Metrics{}
	for _, e := range m.entries {
		if matchesAny(e.Label, names) {
			out.entries = append(out.entries, e)
		}
	}
	return out
}

// Missing returns the names no label contains, in the order given.
func (m *Metrics) Missing(names []string) []string {
	var missing []string
	for _, name := range names {
		if _, ok := m.Lookup(name); !ok {
			missing = append(missing, name)
		}
	}
	return missing
}

// Lookup returns the most recently written metric whose label contains
// name.
func (m *Metrics) Lookup(name string) (Metric, bool) {
	for i := len(m.entries) - 1; i >= 0; i-- {
		if strings.Contains(m.entries[i].Label, name) {
			return m.entries[i], true
		}
	}
	return Metric{}, false
}

func matchesAny(label string, names []string) bool {
	for _, n := range names {
		if strings.Contains(label, n) {
			return true
		}
	}
	return false
}
