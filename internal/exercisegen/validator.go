package exercisegen

import (
	"regexp"
	"strings"
	"unicode"
)

// prepositionSet is the closed set of accepted preposition answers.
var prepositionSet = map[string]bool{
	"in": true, "on": true, "at": true, "to": true, "for": true,
	"from": true, "with": true, "by": true, "about": true, "into": true,
	"over": true, "under": true, "between": true, "behind": true,
	"before": true, "after": true, "during": true, "without": true,
	"through": true, "across": true, "around": true, "near": true,
	"inside": true, "outside": true, "above": true, "below": true,
	"in front of": true, "next to": true,
}

var articleSet = map[string]bool{
	"a": true, "an": true, "the": true, "": true,
}

var modalitySet = map[string]bool{
	"can": true, "could": true, "may": true, "might": true, "must": true,
	"should": true, "would": true, "will": true, "shall": true,
	"have to": true, "has to": true, "had to": true,
	"need to": true, "needs to": true, "needed to": true, "ought to": true,
}

var agreementSet = map[string]bool{
	"is": true, "are": true, "am": true, "was": true, "were": true,
	"do": true, "does": true, "did": true,
	"has": true, "have": true, "had": true,
	"this": true, "that": true, "these": true, "those": true,
	"don't": true, "doesn't": true,
}

// basicPunctuationSet is allowed at A1/A2; extendedPunctuationSet elsewhere.
var basicPunctuationSet = map[string]bool{
	".": true, "?": true, "!": true,
}

var extendedPunctuationSet = map[string]bool{
	".": true, "?": true, "!": true, ",": true, ";": true, ":": true,
	"'": true, `"`: true, "-": true,
}

var (
	// One alphabetic word with one optional internal apostrophe or hyphen.
	singleWordRe = regexp.MustCompile(`^[A-Za-z]+(?:['-][A-Za-z]+)?$`)

	wordToken = `[A-Za-z]+(?:['-][A-Za-z]+)?`

	upToTwoWordsRe   = regexp.MustCompile(`^` + wordToken + `(?: ` + wordToken + `)?$`)
	upToThreeWordsRe = regexp.MustCompile(`^` + wordToken + `(?: ` + wordToken + `){0,2}$`)
	upToFourWordsRe  = regexp.MustCompile(`^` + wordToken + `(?: ` + wordToken + `){0,3}$`)
)

// ValidateBatch applies the universal structure checks and the
// category-specific acceptance rules to a parsed batch. The batch is
// accepted or rejected as a whole.
func ValidateBatch(batch []ParsedQuestion, category Category, level Level) bool {
	if len(batch) != BatchSize {
		return false
	}

	for _, q := range batch {
		if !strings.Contains(q.Text, BlankMarker) {
			return false
		}
	}

	// Question 2 is the interrogative slot, except for punctuation
	// batches where its terminal mark may itself be the blank.
	if category != CategoryPunctuation {
		if !strings.HasSuffix(strings.TrimRight(batch[1].Text, " \t\n"), "?") {
			return false
		}
	}

	if category == CategoryPunctuation {
		allowed := basicPunctuationSet
		if level.tier() != tierBeginner {
			allowed = extendedPunctuationSet
		}
		for _, q := range batch {
			for _, a := range q.Answers {
				if !allowed[a] {
					return false
				}
			}
		}
		return PunctuationPlacementsLookNatural(batch, level)
	}

	for _, q := range batch {
		for _, a := range q.Answers {
			if !answerAllowed(a, category) {
				return false
			}
		}
	}
	return true
}

// answerAllowed applies the per-category acceptance rule to one answer.
// Categories not listed pass trivially; this mirrors the reference
// behavior, though the closed Category type makes the case unreachable
// through the public API.
func answerAllowed(answer string, category Category) bool {
	a := strings.ToLower(strings.TrimSpace(answer))

	switch category {
	case CategoryArticle:
		return articleSet[a]
	case CategoryPreposition:
		return prepositionSet[a]
	case CategorySpelling, CategoryWordChoice:
		return singleWordRe.MatchString(a)
	case CategoryModality:
		return modalitySet[a]
	case CategoryAgreement:
		return agreementSet[a]
	case CategoryMissingWord:
		return upToTwoWordsRe.MatchString(a) && !articleSet[a] && !prepositionSet[a]
	case CategoryWordOrder:
		return upToThreeWordsRe.MatchString(a)
	case CategoryVerbTense, CategoryVerbForm:
		return upToFourWordsRe.MatchString(a)
	default:
		return true
	}
}

var terminalMarks = map[byte]bool{'.': true, '?': true, '!': true}

var connectiveAfterStop = map[string]bool{"or": true, "and": true, "but": true}

// consecutiveTerminalRe flags runs of 2+ adjacent terminal marks in the
// fully reconstructed text.
var consecutiveTerminalRe = regexp.MustCompile(`[.?!]{2,}`)

// PunctuationPlacementsLookNatural substitutes each answer into its blank
// in left-to-right order and checks that every placed mark sits where
// punctuation naturally belongs:
//
//   - a placed sentence-ending mark is never followed by "or"/"and"/"but"
//   - a placed period is never followed by a lowercase letter
//   - at A1/A2 a placed mark must be immediately followed by whitespace or
//     the end of the text
//   - the reconstructed text contains no run of 2+ terminal marks
func PunctuationPlacementsLookNatural(batch []ParsedQuestion, level Level) bool {
	strict := level.tier() == tierBeginner

	for _, q := range batch {
		text, ends := substituteBlanks(q.Text, q.Answers)

		for i, end := range ends {
			answer := q.Answers[i]
			if answer == "" {
				continue
			}
			last := answer[len(answer)-1]

			rest := text[end:]
			if terminalMarks[last] {
				next := nextWord(rest)
				if connectiveAfterStop[next] {
					return false
				}
			}
			if last == '.' {
				if r := firstNonSpaceRune(rest); r != 0 && unicode.IsLower(r) {
					return false
				}
			}
			if strict && len(rest) > 0 && !isSpaceByte(rest[0]) {
				return false
			}
		}

		if consecutiveTerminalRe.MatchString(text) {
			return false
		}
	}
	return true
}

// substituteBlanks replaces blanks with answers left to right, returning
// the reconstructed text and the position just past each placed answer.
func substituteBlanks(text string, answers []string) (string, []int) {
	ends := make([]int, 0, len(answers))
	for _, a := range answers {
		idx := strings.Index(text, BlankMarker)
		if idx < 0 {
			break
		}
		text = text[:idx] + a + text[idx+len(BlankMarker):]
		ends = append(ends, idx+len(a))
	}
	return text, ends
}

// nextWord returns the lowercased first word of s, skipping leading spaces.
func nextWord(s string) string {
	s = strings.TrimLeft(s, " \t\n")
	end := 0
	for end < len(s) {
		c := s[end]
		if !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z') {
			break
		}
		end++
	}
	return strings.ToLower(s[:end])
}

func firstNonSpaceRune(s string) rune {
	for _, r := range s {
		if !unicode.IsSpace(r) {
			return r
		}
	}
	return 0
}

func isSpaceByte(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n'
}
