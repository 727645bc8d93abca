package exercisegen

import (
	"fmt"
	"hash/fnv"
	"math/rand/v2"
	"strings"
)

// SystemPrompt sets the model's role for every generation request.
const SystemPrompt = `You are an English teacher writing fill-in-the-blank practice exercises for learners of English as a foreign language.

Rules:
- Write natural, self-contained English. No translations, no metalanguage.
- Every question must contain at least one blank written as exactly three underscores: ___
- Use 1-2 blanks per question, never more.
- Answers must be emitted as a JSON array of strings whose length equals the number of blanks in that question.
- Follow the requested output template exactly. Do not add commentary before or after it.
- If you cannot satisfy every rule, reply with the single word INVALID instead of a malformed batch.`

// levelSpec describes the sentence length and grammatical complexity
// allowed at one CEFR level.
type levelSpec struct {
	words   string
	grammar string
}

var levelSpecs = map[Level]levelSpec{
	LevelA1: {"3-6 words", "simple present tense, basic vocabulary only"},
	LevelA2: {"5-8 words", "present and simple past, everyday vocabulary"},
	LevelB1: {"8-12 words", "common tenses and simple subordinate clauses"},
	LevelB2: {"10-15 words", "full tense range, relative and conditional clauses"},
	LevelC1: {"12-18 words", "complex clauses, passive voice, idiomatic phrasing"},
	LevelC2: {"15-25 words", "any grammatical structure, nuanced register"},
}

// topic is one candidate theme for a question. minAge gates content that is
// not appropriate for younger learners: legal/contract/policy themes need
// an adult learner, mildly formal themes need a teenager.
type topic struct {
	name   string
	minAge int
}

var beginnerTopics = []topic{
	{"a family breakfast", 0},
	{"a pet dog or cat", 0},
	{"a day at school", 0},
	{"playing in the park", 0},
	{"a birthday party", 0},
	{"favorite food", 0},
	{"the weather today", 0},
	{"a bus ride", 0},
	{"shopping for fruit", 0},
	{"a football game", 0},
}

var intermediateTopics = []topic{
	{"planning a holiday", 0},
	{"a school science project", 0},
	{"cooking dinner for friends", 0},
	{"a part-time job interview", 13},
	{"moving to a new city", 0},
	{"learning a musical instrument", 0},
	{"a visit to a museum", 0},
	{"writing an email to a teacher", 13},
	{"saving pocket money", 0},
	{"a hiking trip", 0},
}

var advancedTopics = []topic{
	{"negotiating a rental contract", 18},
	{"a workplace policy meeting", 18},
	{"debating a new city regulation", 18},
	{"applying for a university scholarship", 13},
	{"reviewing a scientific article", 13},
	{"an environmental volunteering campaign", 0},
	{"preparing a conference presentation", 13},
	{"comparing news coverage of an event", 13},
	{"a job promotion discussion", 18},
	{"organizing a charity fundraiser", 0},
}

func topicPool(t tier) []topic {
	switch t {
	case tierBeginner:
		return beginnerTopics
	case tierIntermediate:
		return intermediateTopics
	default:
		return advancedTopics
	}
}

// seededRand derives a deterministic PRNG from the request's opaque seed so
// that identical seeds always reproduce the same prompt.
func seededRand(seed string) *rand.Rand {
	h := fnv.New64a()
	h.Write([]byte(seed))
	s := h.Sum64()
	return rand.New(rand.NewPCG(s, s^0x9e3779b97f4a7c15))
}

// pickTopics selects exactly BatchSize topics for the request: the
// level-tier pool is filtered by age, shuffled with the seeded PRNG,
// deduplicated, and truncated. If filtering leaves too few candidates the
// beginner pool tops up the selection.
func pickTopics(req GenerationRequest) []string {
	rng := seededRand(req.Seed)

	eligible := filterByAge(topicPool(req.Level.tier()), req.Age)
	if len(eligible) < BatchSize {
		eligible = append(eligible, filterByAge(beginnerTopics, req.Age)...)
	}

	rng.Shuffle(len(eligible), func(i, j int) {
		eligible[i], eligible[j] = eligible[j], eligible[i]
	})

	seen := make(map[string]bool, BatchSize)
	out := make([]string, 0, BatchSize)
	for _, t := range eligible {
		if seen[t.name] {
			continue
		}
		seen[t.name] = true
		out = append(out, t.name)
		if len(out) == BatchSize {
			break
		}
	}
	return out
}

func filterByAge(pool []topic, age int) []topic {
	out := make([]topic, 0, len(pool))
	for _, t := range pool {
		if age >= t.minAge {
			out = append(out, t)
		}
	}
	return out
}

func agePolicy(age int) string {
	switch {
	case age <= 12:
		return "The learner is a child. Keep every topic concrete and playful. Never mention legal, contract, or policy themes."
	case age <= 17:
		return "The learner is a teenager. Everyday and school topics are fine. Avoid formal legal or policy content."
	default:
		return "The learner is an adult. Full adult-context topics such as work, contracts, and policy are allowed."
	}
}

// categoryRule holds the constraint text and one worked example embedded in
// the prompt for a category.
type categoryRule struct {
	rule    string
	example string
}

var categoryRules = map[Category]categoryRule{
	CategoryPreposition: {
		rule:    "Blank out exactly one preposition per blank. Every answer must be one of: in, on, at, to, for, from, with, by, about, into, over, under, between, behind, before, after, during, without, through, across, around, near, inside, outside, above, below, in front of, next to.",
		example: `Question: The cat is sleeping ___ the table.` + "\n" + `Answer: ["under"]`,
	},
	CategoryArticle: {
		rule:    `Blank out exactly one article per blank. Every answer must be "a", "an", "the", or an empty string "" when no article belongs there.`,
		example: `Question: She bought ___ orange at the market.` + "\n" + `Answer: ["an"]`,
	},
	CategoryPunctuation: {
		rule:    "Blank out exactly one punctuation mark per blank, placed where the mark naturally belongs at the end of a clause or sentence. Do not split a clause with a blank.",
		example: `Question: What a great day___` + "\n" + `Answer: ["!"]`,
	},
	CategorySpelling: {
		rule:    "Blank out one commonly misspelled word per blank. Every answer must be a single word.",
		example: `Question: I ___ my homework yesterday.` + "\n" + `Answer: ["finished"]`,
	},
	CategoryVerbTense: {
		rule:    "Blank out a verb whose tense the learner must choose. Answers are the correctly tensed verb phrase, 1-4 words, letters only.",
		example: `Question: Yesterday she ___ to the market.` + "\n" + `Answer: ["went"]`,
	},
	CategoryVerbForm: {
		rule:    "Blank out a verb whose form (infinitive, gerund, participle) the learner must choose. Answers are the correct verb form, 1-4 words, letters only.",
		example: `Question: He enjoys ___ in the lake.` + "\n" + `Answer: ["swimming"]`,
	},
	CategoryAgreement: {
		rule:    `Blank out a word that must agree with its subject. Every answer must be a copula, auxiliary, or determiner form such as is, are, was, were, do, does, has, have, this, these, or the contractions don't / doesn't.`,
		example: `Question: The children ___ playing outside.` + "\n" + `Answer: ["are"]`,
	},
	CategoryWordChoice: {
		rule:    "Blank out one word where learners often pick the wrong word. Every answer must be a single word.",
		example: `Question: Can you ___ me your pen?` + "\n" + `Answer: ["lend"]`,
	},
	CategoryWordOrder: {
		rule:    "Blank out a short phrase whose position in the sentence matters. Answers are 1-3 words, letters only.",
		example: `Question: She ___ late for class.` + "\n" + `Answer: ["is never"]`,
	},
	CategoryMissingWord: {
		rule:    "Blank out a small word learners tend to drop. Answers are 1-2 words, letters only, and must not be a bare article or a preposition.",
		example: `Question: My brother ___ a student.` + "\n" + `Answer: ["is"]`,
	},
	CategoryModality: {
		rule:    "Blank out a modal or semi-modal verb. Every answer must be one of: can, could, may, might, must, should, would, will, shall, have to, has to, had to, need to, needs to, needed to, ought to.",
		example: `Question: You ___ wear a helmet when cycling.` + "\n" + `Answer: ["must"]`,
	},
}

// ComposePrompt builds the natural-language instruction document for one
// generation attempt. Pure function of the request: the same request (seed
// included) always yields the same prompt.
func ComposePrompt(req GenerationRequest) string {
	spec := levelSpecs[req.Level]
	topics := pickTopics(req)
	rule := categoryRules[req.ErrorCategory]

	var b strings.Builder

	fmt.Fprintf(&b, "Randomization seed: %s\n", req.Seed)
	b.WriteString("Use the seed to vary the names, places, and details you invent. Do not mention the seed in your output.\n\n")

	fmt.Fprintf(&b, "Learner level: %s. Sentence length: %s. Grammar: %s.\n", req.Level, spec.words, spec.grammar)
	fmt.Fprintf(&b, "Learner age: %d. %s\n", req.Age, agePolicy(req.Age))
	if req.FirstLanguage != "" {
		fmt.Fprintf(&b, "Choose details that feel familiar to a speaker of %s, without ever mentioning that language.\n", req.FirstLanguage)
	}
	b.WriteString("\n")

	b.WriteString("Write exactly 3 fill-in-the-blank questions, one per topic:\n")
	for i, t := range topics {
		fmt.Fprintf(&b, "%d. %s\n", i+1, t)
	}
	b.WriteString("\n")

	if req.ErrorCategory == CategoryPunctuation && req.Level.tier() == tierBeginner {
		b.WriteString("Structure: each question is one short sentence whose final punctuation mark is the blank.\n")
	} else {
		b.WriteString("Structure: question 1 is a one-sentence statement, question 2 is a question ending in ?, question 3 is two sentences.\n")
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "Error focus: %s\n%s\n", rule.rule, "Example:\n"+rule.example)
	b.WriteString("\n")

	b.WriteString(`Every question must contain the blank marker ___ at least once (1-2 blanks).
Answers must be a JSON array of strings, one entry per blank, in left-to-right order.
If you cannot satisfy these rules, output the single word INVALID.

Output exactly this template:

Question 1:
<question text>

Answer 1:
<JSON array>

Question 2:
<question text>

Answer 2:
<JSON array>

Question 3:
<question text>

Answer 3:
<JSON array>`)

	return b.String()
}
