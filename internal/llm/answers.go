package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"go.uber.org/zap"

	"github.com/jonathan/apply-agent/internal/prompts"
	"github.com/jonathan/apply-agent/internal/types"
)

// batchAnswerSchema is the contract for the batched response. Validation
// happens before any answer is accepted, so a malformed model response is
// rejected as a unit.
const batchAnswerSchema = `{
  "type": "object",
  "required": ["answers"],
  "properties": {
    "answers": {
      "type": "array",
      "items": {"type": "string"}
    }
  },
  "additionalProperties": false
}`

// AnswerService generates application answers for detected questions. The
// batch path issues exactly one model call per auto-fill run; the single
// path backs the per-question fallback.
type AnswerService struct {
	client  Client
	log     *zap.Logger
	profile string
	schema  *gojsonschema.Schema
}

// NewAnswerService builds a service around an LLM client. profile is the
// applicant background text interpolated into every prompt.
func NewAnswerService(client Client, log *zap.Logger, profile string) (*AnswerService, error) {
	if log == nil {
		log = zap.NewNop()
	}
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(batchAnswerSchema))
	if err != nil {
		return nil, fmt.Errorf("compile answer schema: %w", err)
	}
	return &AnswerService{
		client:  client,
		log:     log,
		profile: profile,
		schema:  schema,
	}, nil
}

// AnswersBatch generates answers for all questions in one model call. The
// returned slice is positionally aligned with questions; a response whose
// length differs is rejected.
func (s *AnswerService) AnswersBatch(ctx context.Context, questions []string, job types.JobPosting) ([]string, error) {
	if len(questions) == 0 {
		return nil, nil
	}

	questionsJSON, err := json.Marshal(questions)
	if err != nil {
		return nil, fmt.Errorf("encode questions: %w", err)
	}

	prompt := prompts.Format(prompts.MustGet("autofill.json", "batch_answers"), map[string]string{
		"JobTitle":       job.Title,
		"Company":        job.CompanyName,
		"JobDescription": job.DescriptionHTML,
		"Profile":        s.profile,
		"Questions":      string(questionsJSON),
	})

	raw, err := s.client.GenerateJSON(ctx, prompt, TierStandard)
	if err != nil {
		return nil, fmt.Errorf("batch answer generation: %w", err)
	}

	answers, err := s.decodeBatch(raw)
	if err != nil {
		return nil, err
	}
	if len(answers) != len(questions) {
		return nil, fmt.Errorf("answer count mismatch: got %d, want %d", len(answers), len(questions))
	}

	s.log.Debug("batch answers generated", zap.Int("questions", len(questions)))
	return answers, nil
}

// Answer generates one answer for a single question.
func (s *AnswerService) Answer(ctx context.Context, question string, job types.JobPosting) (string, error) {
	prompt := prompts.Format(prompts.MustGet("autofill.json", "single_answer"), map[string]string{
		"JobTitle":       job.Title,
		"Company":        job.CompanyName,
		"JobDescription": job.DescriptionHTML,
		"Profile":        s.profile,
		"Question":       question,
	})

	answer, err := s.client.GenerateContent(ctx, prompt, TierLite)
	if err != nil {
		return "", fmt.Errorf("single answer generation: %w", err)
	}
	return strings.TrimSpace(answer), nil
}

// decodeBatch validates the raw response against the schema and extracts the
// answer array.
func (s *AnswerService) decodeBatch(raw string) ([]string, error) {
	result, err := s.schema.Validate(gojsonschema.NewStringLoader(raw))
	if err != nil {
		return nil, fmt.Errorf("malformed batch answer response: %w", err)
	}
	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			details = append(details, e.String())
		}
		return nil, fmt.Errorf("batch answer response rejected by schema: %s", strings.Join(details, "; "))
	}

	var payload struct {
		Answers []string `json:"answers"`
	}
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, fmt.Errorf("decode batch answers: %w", err)
	}
	return payload.Answers, nil
}
