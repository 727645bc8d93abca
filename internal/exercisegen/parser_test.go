package exercisegen

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

const validPrepositionBatch = `Question 1:
The cat sleeps ___ the bed.

Answer 1:
["under"]

Question 2:
Are you ___ the station?

Answer 2:
["at"]

Question 3:
We walked ___ the park. It was fun.

Answer 3:
["through"]`

func TestParseBatch_Valid(t *testing.T) {
	batch, err := ParseBatch(validPrepositionBatch)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(batch) != 3 {
		t.Fatalf("expected 3 questions, got %d", len(batch))
	}
	if batch[0].Text != "The cat sleeps ___ the bed." {
		t.Errorf("unexpected question 1 text: %q", batch[0].Text)
	}
	if !reflect.DeepEqual(batch[1].Answers, []string{"at"}) {
		t.Errorf("unexpected question 2 answers: %v", batch[1].Answers)
	}
	for i, q := range batch {
		if q.Blanks() != len(q.Answers) {
			t.Errorf("question %d: %d blanks but %d answers", i+1, q.Blanks(), len(q.Answers))
		}
	}
}

func TestParseBatch_Idempotent(t *testing.T) {
	first, err1 := ParseBatch(validPrepositionBatch)
	second, err2 := ParseBatch(validPrepositionBatch)
	if err1 != nil || err2 != nil {
		t.Fatalf("unexpected errors: %v, %v", err1, err2)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("re-parsing identical input produced a different batch")
	}
}

func TestParseBatch_RefusalSentinel(t *testing.T) {
	for _, raw := range []string{"INVALID", "invalid", "  Invalid\n"} {
		_, err := ParseBatch(raw)
		if !errors.Is(err, ErrRefused) {
			t.Errorf("ParseBatch(%q): expected ErrRefused, got %v", raw, err)
		}
	}
}

func TestParseBatch_MissingQuestion(t *testing.T) {
	raw := strings.Replace(validPrepositionBatch, "Question 2:", "Q2:", 1)
	_, err := ParseBatch(raw)
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("expected *ParseError, got %v", err)
	}
}

func TestParseBatch_NoBlankInQuestion(t *testing.T) {
	// Question 2 has no underscore at all; the strict pass rejects it.
	raw := strings.Replace(validPrepositionBatch, "Are you ___ the station?", "Are you here?", 1)
	raw = strings.Replace(raw, `["at"]`, `[]`, 1)
	_, err := ParseBatch(raw)
	if err == nil {
		t.Fatal("expected parse failure for a question with no blank")
	}
}

func TestParseBatch_ZeroBlankZeroAnswers(t *testing.T) {
	// A single underscore survives the strict underscore check but does
	// not collapse into a blank marker, leaving blank count 0. A 0/0
	// question is rejected, not trivially accepted.
	raw := strings.Replace(validPrepositionBatch, "Are you ___ the station?", "Are you _ here?", 1)
	raw = strings.Replace(raw, `["at"]`, `[]`, 1)
	_, err := ParseBatch(raw)
	if err == nil {
		t.Fatal("expected parse failure for zero blanks with zero answers")
	}
}

func TestParseBatch_AnswerCountMismatch(t *testing.T) {
	raw := strings.Replace(validPrepositionBatch, `["under"]`, `["under", "over"]`, 1)
	_, err := ParseBatch(raw)
	if err == nil {
		t.Fatal("expected parse failure for answer/blank count mismatch")
	}
}

func TestParseBatch_UnderscoreRunNormalization(t *testing.T) {
	raw := strings.Replace(validPrepositionBatch, "The cat sleeps ___ the bed.", "The cat sleeps _____ the bed.", 1)
	batch, err := ParseBatch(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if batch[0].Text != "The cat sleeps ___ the bed." {
		t.Errorf("expected run collapsed to three underscores, got %q", batch[0].Text)
	}
	if batch[0].Blanks() != 1 {
		t.Errorf("expected 1 blank, got %d", batch[0].Blanks())
	}
}

func TestParseBatch_TwoBlanks(t *testing.T) {
	raw := strings.Replace(validPrepositionBatch, "We walked ___ the park. It was fun.",
		"We walked ___ the park ___ noon. It was fun.", 1)
	raw = strings.Replace(raw, `["through"]`, `["through", "at"]`, 1)
	batch, err := ParseBatch(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := batch[2].Blanks(); got != 2 {
		t.Fatalf("expected 2 blanks, got %d", got)
	}
	if !reflect.DeepEqual(batch[2].Answers, []string{"through", "at"}) {
		t.Errorf("unexpected answers: %v", batch[2].Answers)
	}
}

func TestParseBatch_EmptyStringAnswer(t *testing.T) {
	// The article category legitimately uses "" as an answer token.
	raw := strings.Replace(validPrepositionBatch, `["under"]`, `[""]`, 1)
	batch, err := ParseBatch(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(batch[0].Answers, []string{""}) {
		t.Errorf("expected one empty-string answer, got %v", batch[0].Answers)
	}
}

func TestParseBatch_CommaListFallback(t *testing.T) {
	raw := strings.Replace(validPrepositionBatch, `["through"]`, `[through]`, 1)
	batch, err := ParseBatch(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(batch[2].Answers, []string{"through"}) {
		t.Errorf("unexpected answers from fallback parse: %v", batch[2].Answers)
	}
}

func TestParseBatch_CRLFInput(t *testing.T) {
	raw := strings.ReplaceAll(validPrepositionBatch, "\n", "\r\n")
	batch, err := ParseBatch(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(batch) != 3 {
		t.Fatalf("expected 3 questions, got %d", len(batch))
	}
}
