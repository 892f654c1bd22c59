package entity

import "time"

// Question is a quiz question with labelled options.
// Content fields (Category, Text, Options, Answer) are immutable after
// creation; the three counters are incremented only inside the scoring
// transaction, never on display.
type Question struct {
	ID                int64
	Category          string
	Text              string
	Options           map[string]string // label -> option text
	Answer            string            // correct option, matched exactly
	Views             int64
	CorrectGuessCount int64
	WrongGuessCount   int64
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
