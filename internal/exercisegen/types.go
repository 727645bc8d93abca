package exercisegen

import (
	"fmt"
	"strings"
)

// Category is one of the fixed linguistic error types a learner can be
// drilled on. It steers both prompt construction and answer validation.
type Category string

const (
	CategoryPreposition Category = "preposition"
	CategoryArticle     Category = "article"
	CategoryPunctuation Category = "punctuation"
	CategorySpelling    Category = "spelling"
	CategoryVerbTense   Category = "verb-tense"
	CategoryVerbForm    Category = "verb-form"
	CategoryAgreement   Category = "agreement"
	CategoryWordChoice  Category = "word-choice"
	CategoryWordOrder   Category = "word-order"
	CategoryMissingWord Category = "missing-word"
	CategoryModality    Category = "modality"
)

// Categories lists every known category in a stable order.
func Categories() []Category {
	return []Category{
		CategoryPreposition,
		CategoryArticle,
		CategoryPunctuation,
		CategorySpelling,
		CategoryVerbTense,
		CategoryVerbForm,
		CategoryAgreement,
		CategoryWordChoice,
		CategoryWordOrder,
		CategoryMissingWord,
		CategoryModality,
	}
}

// ParseCategory validates a category name from an external caller.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Categories() {
		if c == known {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown error category %q", s)
}

// Level is a CEFR proficiency level.
type Level string

const (
	LevelA1 Level = "A1"
	LevelA2 Level = "A2"
	LevelB1 Level = "B1"
	LevelB2 Level = "B2"
	LevelC1 Level = "C1"
	LevelC2 Level = "C2"
)

// Levels lists the six CEFR levels from lowest to highest.
func Levels() []Level {
	return []Level{LevelA1, LevelA2, LevelB1, LevelB2, LevelC1, LevelC2}
}

// ParseLevel validates a proficiency level from an external caller.
func ParseLevel(s string) (Level, error) {
	l := Level(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range Levels() {
		if l == known {
			return l, nil
		}
	}
	return "", fmt.Errorf("unknown proficiency level %q", s)
}

// tier groups the six levels into three difficulty bands used for topic
// selection and sentence-complexity instructions.
type tier int

const (
	tierBeginner tier = iota
	tierIntermediate
	tierAdvanced
)

func (l Level) tier() tier {
	switch l {
	case LevelA1, LevelA2:
		return tierBeginner
	case LevelB1, LevelB2:
		return tierIntermediate
	default:
		return tierAdvanced
	}
}

// GenerationRequest holds everything needed to generate one exercise batch.
// The orchestrator replaces only Seed between retries; the other fields are
// fixed for the lifetime of the request.
type GenerationRequest struct {
	// ErrorCategory is the linguistic error type to drill.
	ErrorCategory Category

	// FirstLanguage is the learner's first language. Used to flavor topic
	// choice only; the prompt never asks the model to mention it.
	FirstLanguage string

	// Age is the learner's age in years. Drives topic appropriateness.
	Age int

	// Level is the learner's CEFR proficiency level.
	Level Level

	// Seed is an opaque randomization token echoed into the prompt so the
	// model varies names and places between attempts. Replaced with a fresh
	// token on every retry.
	Seed string
}

// BlankMarker is the literal placeholder denoting one missing answer token
// in generated question text.
const BlankMarker = "___"

// ParsedQuestion is one fill-in-the-blank question extracted from raw model
// output. Answers are index-aligned with the blanks in Text, left to right.
type ParsedQuestion struct {
	// Text contains BlankMarker one or more times. Runs of 2+ underscores
	// in the raw output have been collapsed to exactly three.
	Text string `json:"text"`

	// Answers holds one token per blank, in left-to-right order.
	Answers []string `json:"answers"`
}

// Blanks returns the number of blank markers in the question text.
func (q ParsedQuestion) Blanks() int {
	return strings.Count(q.Text, BlankMarker)
}

// BatchSize is the fixed number of questions per generated batch. A batch
// is all-or-nothing: exactly this many questions, or a failed attempt.
const BatchSize = 3
