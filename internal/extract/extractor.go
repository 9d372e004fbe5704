// Package extract turns the authoring document's paragraphs into
// question records. The document convention is loose: a question is any
// non-empty paragraph that is not an option line, option lines start
// with "a)".."d)", and the correct option is written in bold.
package extract

import (
	"regexp"
	"strings"

	"agilequiz/internal/domain/entities"
)

var optionLinePattern = regexp.MustCompile(`^([a-d])\)\s*(.*)$`)

// Questions parses paragraphs into question records using a single
// line-oriented pass:
//
//   - empty paragraphs are skipped;
//   - a paragraph matching "a)".."d)" appends an option to the question
//     in progress; a bold first run marks that option's letter as the
//     provisional correct answer (if several options are bold, the last
//     one wins);
//   - any other paragraph closes the question in progress and starts a
//     new one.
//
// Records may carry fewer than four options or an empty correct letter
// when the document is malformed; downstream consumers pad and warn
// instead of failing, so a human can fix the document later.
func Questions(paragraphs []entities.Paragraph) []entities.Question {
	var (
		questions []entities.Question
		current   *entities.Question
	)

	for _, p := range paragraphs {
		text := p.Text()
		if text == "" {
			continue
		}

		m := optionLinePattern.FindStringSubmatch(text)
		if m == nil {
			// Question-start line: close the in-progress question first.
			if current != nil {
				questions = append(questions, *current)
			}
			current = &entities.Question{Statement: text}
			continue
		}

		if current == nil {
			// Option line before any question line; nothing to attach
			// it to, so drop it.
			continue
		}

		current.Options = append(current.Options, strings.TrimSpace(m[2]))
		if p.LeadingBold() {
			current.CorrectLetter = m[1]
		}
	}

	if current != nil {
		questions = append(questions, *current)
	}

	return questions
}
