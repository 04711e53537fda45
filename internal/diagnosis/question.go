// Package diagnosis runs the bounded multiple-choice questioning flow and
// persists the generated questions and the user's answers.
package diagnosis

import (
	"regexp"
	"strings"
)

// Option is one multiple-choice answer with its EHR terminology tag.
type Option struct {
	Label       string // A, B, C, or D
	Text        string
	Terminology string
}

// Question is a parsed multiple-choice question.
type Question struct {
	Text    string
	Options []Option
}

var optionLineRE = regexp.MustCompile(`^([A-D])\.\s*(.+)$`)

// ParseQuestion splits a generated reply into question text and exactly four
// labeled options. ok is false when the reply does not follow the expected
// shape, in which case the raw reply is still shown to the user but nothing
// is persisted.
func ParseQuestion(raw string) (Question, bool) {
	var q Question
	var textParts []string

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		m := optionLineRE.FindStringSubmatch(line)
		if m == nil {
			if len(q.Options) == 0 {
				textParts = append(textParts, line)
			}
			continue
		}

		body := strings.TrimSpace(m[2])
		opt := Option{Label: m[1], Text: body}
		if open := strings.LastIndex(body, "("); open >= 0 && strings.HasSuffix(body, ")") {
			opt.Terminology = strings.TrimSpace(body[open+1 : len(body)-1])
			opt.Text = strings.TrimSpace(body[:open])
		}
		q.Options = append(q.Options, opt)
	}

	q.Text = strings.Join(textParts, " ")
	if q.Text == "" || len(q.Options) != 4 {
		return Question{}, false
	}
	return q, true
}

var answerRE = regexp.MustCompile(`(?i)^(?:option\s+)?([a-d])[.)]?$`)

// ParseAnswer recognizes a bare option choice like "A", "b." or "option C".
func ParseAnswer(text string) (string, bool) {
	m := answerRE.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil {
		return "", false
	}
	return strings.ToUpper(m[1]), true
}
