package exercisegen

import "testing"

func batchOf(texts [3]string, answers [3][]string) []ParsedQuestion {
	return []ParsedQuestion{
		{Text: texts[0], Answers: answers[0]},
		{Text: texts[1], Answers: answers[1]},
		{Text: texts[2], Answers: answers[2]},
	}
}

func prepositionBatch() []ParsedQuestion {
	return batchOf(
		[3]string{
			"The cat sleeps ___ the bed.",
			"Are you ___ the station?",
			"We walked ___ the park. It was fun.",
		},
		[3][]string{{"under"}, {"at"}, {"through"}},
	)
}

func TestValidateBatch_PrepositionAccepted(t *testing.T) {
	if !ValidateBatch(prepositionBatch(), CategoryPreposition, LevelA2) {
		t.Error("well-formed preposition batch was rejected")
	}
}

func TestValidateBatch_ClosedSetRejection(t *testing.T) {
	tests := []struct {
		name     string
		category Category
		answer   string
	}{
		{"preposition outside set", CategoryPreposition, "towards"},
		{"article outside set", CategoryArticle, "some"},
		{"modality outside set", CategoryModality, "want to"},
		{"agreement outside set", CategoryAgreement, "be"},
		{"spelling multi-word", CategorySpelling, "two words"},
		{"missing-word is an article", CategoryMissingWord, "the"},
		{"missing-word is a preposition", CategoryMissingWord, "at"},
		{"word-order too long", CategoryWordOrder, "one two three four"},
		{"verb-tense too long", CategoryVerbTense, "one two three four five"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			batch := prepositionBatch()
			batch[0].Answers = []string{tt.answer}
			if ValidateBatch(batch, tt.category, LevelB1) {
				t.Errorf("answer %q accepted for category %s", tt.answer, tt.category)
			}
		})
	}
}

func TestValidateBatch_AnswerRulesAccept(t *testing.T) {
	tests := []struct {
		name     string
		category Category
		answer   string
	}{
		{"empty article", CategoryArticle, ""},
		{"compound preposition", CategoryPreposition, "in front of"},
		{"phrasal modality", CategoryModality, "have to"},
		{"contracted agreement", CategoryAgreement, "doesn't"},
		{"hyphenated spelling", CategorySpelling, "well-known"},
		{"missing-word verb", CategoryMissingWord, "is"},
		{"verb-tense phrase", CategoryVerbTense, "has been waiting"},
		{"verb-form phrase", CategoryVerbForm, "to have been seen"},
		{"word-order phrase", CategoryWordOrder, "always eats breakfast"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			batch := prepositionBatch()
			for i := range batch {
				batch[i].Answers = []string{tt.answer}
			}
			if !ValidateBatch(batch, tt.category, LevelB1) {
				t.Errorf("answer %q rejected for category %s", tt.answer, tt.category)
			}
		})
	}
}

func TestValidateBatch_WrongSize(t *testing.T) {
	if ValidateBatch(prepositionBatch()[:2], CategoryPreposition, LevelA1) {
		t.Error("two-question batch was accepted")
	}
}

func TestValidateBatch_MissingBlankMarker(t *testing.T) {
	batch := prepositionBatch()
	batch[0].Text = "The cat sleeps under the bed."
	if ValidateBatch(batch, CategoryPreposition, LevelA1) {
		t.Error("batch with a blank-free question was accepted")
	}
}

func TestValidateBatch_SecondQuestionMustBeInterrogative(t *testing.T) {
	batch := prepositionBatch()
	batch[1].Text = "You are ___ the station."
	if ValidateBatch(batch, CategoryPreposition, LevelA1) {
		t.Error("batch whose second question is not interrogative was accepted")
	}

	// Trailing whitespace after the question mark is tolerated.
	batch = prepositionBatch()
	batch[1].Text = "Are you ___ the station?  \n"
	if !ValidateBatch(batch, CategoryPreposition, LevelA1) {
		t.Error("trailing whitespace after the question mark caused rejection")
	}
}

func TestAnswerAllowed_UnlistedCategoryPasses(t *testing.T) {
	// ParseCategory keeps unknown values out of the public API, but the
	// rule switch itself accepts anything it has no rule for.
	if !answerAllowed("whatever", Category("made-up")) {
		t.Error("category without a rule did not default to accept")
	}
}

func punctuationBatch() []ParsedQuestion {
	return batchOf(
		[3]string{
			"The dog is big___",
			"What is your name___",
			"I like tea___ We drink it every day.",
		},
		[3][]string{{"."}, {"?"}, {"."}},
	)
}

func TestValidateBatch_PunctuationAccepted(t *testing.T) {
	if !ValidateBatch(punctuationBatch(), CategoryPunctuation, LevelA1) {
		t.Error("well-formed punctuation batch was rejected")
	}
}

func TestValidateBatch_PunctuationSkipsInterrogativeCheck(t *testing.T) {
	// Question 2 ends in a blank rather than "?", which is legal only for
	// punctuation batches.
	batch := punctuationBatch()
	if !ValidateBatch(batch, CategoryPunctuation, LevelA1) {
		t.Error("punctuation batch rejected for its blank-final second question")
	}
}

func TestValidateBatch_PunctuationSetByTier(t *testing.T) {
	batch := punctuationBatch()
	batch[2].Text = "We need eggs___ milk and bread."
	batch[2].Answers = []string{","}

	if ValidateBatch(batch, CategoryPunctuation, LevelA2) {
		t.Error("comma answer accepted at a beginner level")
	}
	if !ValidateBatch(batch, CategoryPunctuation, LevelB2) {
		t.Error("comma answer rejected at an intermediate level")
	}
}

func TestPunctuationPlacement_StopBeforeConnective(t *testing.T) {
	batch := punctuationBatch()
	batch[2].Text = "I like tea___ or coffee."
	if ValidateBatch(batch, CategoryPunctuation, LevelA1) {
		t.Error("period placed directly before \"or\" was accepted")
	}
}

func TestPunctuationPlacement_PeriodBeforeLowercase(t *testing.T) {
	batch := punctuationBatch()
	batch[2].Text = "I like tea___ we drink it every day."
	if ValidateBatch(batch, CategoryPunctuation, LevelB2) {
		t.Error("period followed by a lowercase letter was accepted")
	}
}

func TestPunctuationPlacement_BeginnerNeedsTrailingSpace(t *testing.T) {
	batch := punctuationBatch()
	batch[1].Text = "What is your name___,"
	batch[1].Answers = []string{"?"}

	if ValidateBatch(batch, CategoryPunctuation, LevelA1) {
		t.Error("mark glued to following text was accepted at a beginner level")
	}
	if !ValidateBatch(batch, CategoryPunctuation, LevelC1) {
		t.Error("adjacency rule applied outside the beginner tier")
	}
}

func TestPunctuationPlacement_NoTerminalRuns(t *testing.T) {
	batch := punctuationBatch()
	batch[0].Text = "The dog is big___."
	if ValidateBatch(batch, CategoryPunctuation, LevelC1) {
		t.Error("reconstructed text with adjacent terminal marks was accepted")
	}
}
