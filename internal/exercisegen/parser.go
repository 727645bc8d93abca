package exercisegen

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// ErrRefused is returned when the model reports its own failure by emitting
// the INVALID sentinel instead of a batch. It is a normal soft failure, not
// an error condition to diagnose.
var ErrRefused = errors.New("model declined to produce a batch")

// ParseError describes a structural mismatch between the raw model output
// and the three-question template. The whole batch is rejected; there are
// no partial results.
type ParseError struct {
	Reason string
}

func (e *ParseError) Error() string {
	return "parse failed: " + e.Reason
}

var (
	underscoreRunRe = regexp.MustCompile(`_{2,}`)

	// qaPairRe permissively matches a Question k / Answer k block pair.
	// The answer field is either a bracketed array or the rest of its line.
	qaPairRe = regexp.MustCompile(`(?is)Question\s*(\d+)\s*:\s*(.*?)\s*Answer\s*(\d+)\s*:\s*(\[.*?\]|[^\r\n]*)`)
)

// questionLabelRe matches the strict Question N / Answer N labels used for
// the presence check.
func questionLabelRe(n int) *regexp.Regexp {
	k := strconv.Itoa(n)
	return regexp.MustCompile(`(?is)Question\s*` + k + `\s*:\s*(.*?)\s*Answer\s*` + k + `\s*:`)
}

var strictLabelRes = [BatchSize]*regexp.Regexp{
	questionLabelRe(1),
	questionLabelRe(2),
	questionLabelRe(3),
}

// ParseBatch parses raw model output against the fixed three-question
// template. Every step must succeed or the whole parse fails; re-parsing
// identical input always yields an identical result.
func ParseBatch(raw string) ([]ParsedQuestion, error) {
	text := strings.ReplaceAll(raw, "\r\n", "\n")

	if strings.EqualFold(strings.TrimSpace(text), "INVALID") {
		return nil, ErrRefused
	}

	// Strict presence pass: all three labeled questions must exist and
	// each must contain at least one underscore.
	for i, re := range strictLabelRes {
		m := re.FindStringSubmatch(text)
		if m == nil {
			return nil, &ParseError{Reason: fmt.Sprintf("question %d label not found", i+1)}
		}
		if !strings.Contains(m[1], "_") {
			return nil, &ParseError{Reason: fmt.Sprintf("question %d contains no blank", i+1)}
		}
	}

	// Permissive extraction pass.
	retained := make(map[int]ParsedQuestion, BatchSize)
	for _, m := range qaPairRe.FindAllStringSubmatch(text, -1) {
		qn, err1 := strconv.Atoi(m[1])
		an, err2 := strconv.Atoi(m[3])
		if err1 != nil || err2 != nil || qn != an || qn < 1 || qn > BatchSize {
			continue
		}
		if _, dup := retained[qn]; dup {
			continue
		}

		qText := underscoreRunRe.ReplaceAllString(strings.TrimSpace(m[2]), BlankMarker)
		blanks := strings.Count(qText, BlankMarker)
		if blanks == 0 {
			continue
		}

		answers := parseAnswers(m[4])
		if len(answers) != blanks {
			continue
		}

		retained[qn] = ParsedQuestion{Text: qText, Answers: answers}
	}

	batch := make([]ParsedQuestion, 0, BatchSize)
	for n := 1; n <= BatchSize; n++ {
		q, ok := retained[n]
		if !ok {
			return nil, &ParseError{Reason: fmt.Sprintf("question %d rejected or missing", n)}
		}
		batch = append(batch, q)
	}
	return batch, nil
}

// answerArraySchema validates the JSON form of an answer field: an array
// of strings, nothing else.
var answerArraySchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	def := map[string]any{
		"type":  "array",
		"items": map[string]any{"type": "string"},
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource("schema://answer-array.json", def); err != nil {
		return nil, err
	}
	return c.Compile("schema://answer-array.json")
})

// parseAnswers parses an answer field as a JSON array of strings, falling
// back to splitting a bracket-delimited or bare comma list when JSON
// parsing yields nothing. Empty strings are legal answer tokens (the
// article category uses them), so blank entries are preserved.
func parseAnswers(field string) []string {
	field = strings.TrimSpace(field)
	if field == "" {
		return nil
	}

	var parsed any
	if err := json.Unmarshal([]byte(field), &parsed); err == nil {
		if schema, serr := answerArraySchema(); serr == nil && schema.Validate(parsed) == nil {
			arr := parsed.([]any)
			out := make([]string, len(arr))
			for i, v := range arr {
				out[i] = v.(string)
			}
			return out
		}
	}

	// Fallback: strip brackets and split on commas.
	field = strings.TrimPrefix(field, "[")
	field = strings.TrimSuffix(field, "]")
	if strings.TrimSpace(field) == "" {
		return nil
	}

	parts := strings.Split(field, ",")
	out := make([]string, len(parts))
	for i, p := range parts {
		p = strings.TrimSpace(p)
		p = strings.Trim(p, `"'`)
		out[i] = p
	}
	return out
}
