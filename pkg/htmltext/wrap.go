package htmltext

import (
	"strings"
	"unicode/utf8"
)

// wrap breaks every line of body longer than width at spaces. Continuation
// lines repeat the quote prefix and align under list item text.
func wrap(body string, width int) string {
	lines := strings.Split(body, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		out = append(out, wrapLine(line, width)...)
	}
	return strings.Join(out, "\n")
}

func wrapLine(line string, width int) []string {
	if utf8.RuneCountInString(line) <= width {
		return []string{line}
	}

	lead, rest := splitLead(line)
	words := strings.Fields(rest)
	if len(words) == 0 {
		return []string{line}
	}

	cont := strings.Repeat(" ", utf8.RuneCountInString(lead))
	if strings.HasPrefix(lead, ">") {
		cont = quotePrefix(lead)
	}

	var (
		result []string
		cur    strings.Builder
	)
	cur.WriteString(lead)
	curLen := utf8.RuneCountInString(lead)
	empty := true

	for _, word := range words {
		wl := utf8.RuneCountInString(word)
		if !empty && curLen+1+wl > width {
			result = append(result, cur.String())
			cur.Reset()
			cur.WriteString(cont)
			curLen = utf8.RuneCountInString(cont)
			empty = true
		}
		if !empty {
			cur.WriteByte(' ')
			curLen++
		}
		cur.WriteString(word)
		curLen += wl
		empty = false
	}
	return append(result, cur.String())
}

// splitLead separates quote markers, indentation and a list marker from the
// text of a line.
func splitLead(line string) (lead, rest string) {
	i := 0
	for strings.HasPrefix(line[i:], "> ") {
		i += 2
	}
	for i < len(line) && line[i] == ' ' {
		i++
	}
	if strings.HasPrefix(line[i:], "* ") {
		i += 2
	} else if j := orderedMarker(line[i:]); j > 0 {
		i += j
	}
	return line[:i], line[i:]
}

// orderedMarker returns the length of a leading "n. " marker, or 0.
func orderedMarker(s string) int {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == 0 || !strings.HasPrefix(s[i:], ". ") {
		return 0
	}
	return i + 2
}

func quotePrefix(lead string) string {
	i := 0
	for strings.HasPrefix(lead[i:], "> ") {
		i += 2
	}
	return lead[:i] + strings.Repeat(" ", len(lead)-i)
}
