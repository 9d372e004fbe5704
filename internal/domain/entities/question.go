package entities

import "strings"

// OptionCount is the canonical number of answer options per question.
const OptionCount = 4

// Question is one multiple-choice question as stored in the question
// repository. Options are in the canonical source order; CorrectLetter
// ("a".."d") indexes into that order, never into a shuffled presentation
// order. An empty CorrectLetter means the correct answer is unknown
// (e.g. the source document never marked one).
type Question struct {
	Statement     string   // question text
	Options       []string // answer options in source order
	CorrectLetter string   // "a".."d", or "" when unknown
}

// CorrectIndex returns the 0-based index of the correct option in the
// canonical order, or -1 when the correct answer is unknown.
func (q Question) CorrectIndex() int {
	if len(q.CorrectLetter) != 1 {
		return -1
	}
	idx := int(q.CorrectLetter[0] - 'a')
	if idx < 0 || idx >= len(q.Options) {
		return -1
	}
	return idx
}

// CorrectOption returns the text of the correct option, or "" when the
// correct answer is unknown.
func (q Question) CorrectOption() string {
	idx := q.CorrectIndex()
	if idx < 0 {
		return ""
	}
	return q.Options[idx]
}

// Row encodes the question as the 6-cell repository row:
// statement, option a..d, correct letter. Missing options become empty
// cells so the row width is always 6.
func (q Question) Row() []string {
	row := make([]string, 0, OptionCount+2)
	row = append(row, q.Statement)
	for i := 0; i < OptionCount; i++ {
		if i < len(q.Options) {
			row = append(row, q.Options[i])
		} else {
			row = append(row, "")
		}
	}
	return append(row, q.CorrectLetter)
}

// QuestionFromRow decodes a 6-cell repository row into a Question.
// Shorter rows are tolerated; missing cells read as empty strings.
func QuestionFromRow(row []string) Question {
	cell := func(i int) string {
		if i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}

	q := Question{
		Statement:     cell(0),
		Options:       make([]string, OptionCount),
		CorrectLetter: cell(OptionCount + 1),
	}
	for i := 0; i < OptionCount; i++ {
		q.Options[i] = cell(i + 1)
	}
	return q
}

// PresentedQuestion is the per-display view of one question: numbered
// text, a shuffled copy of the options and the position of the correct
// answer within that shuffled copy.
type PresentedQuestion struct {
	Number       int      // 1-based position within the quiz run
	Text         string   // statement prefixed with the question number
	Options      []string // shuffled permutation of the source options
	CorrectIndex int      // index of the correct answer in Options, -1 if unknown
}
