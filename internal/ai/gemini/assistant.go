package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	_ "embed"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/spigell/tradematch/internal/ai"
	"github.com/spigell/tradematch/internal/logger"
	"github.com/spigell/tradematch/internal/matching"
	"github.com/spigell/tradematch/internal/model"
	"github.com/spigell/tradematch/internal/utils"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, system, message string) (string, error)
	GenerateJSON(ctx context.Context, system, message string, schema *genai.Schema) (string, error)
}

//go:embed draft_prompt.md
var draftTemplate string

//go:embed explain_prompt.md
var explainTemplate string

const (
	defaultMaxLogLength = 200
	maxNoteRunes        = 600

	systemInstruction = "You assist a job board for skilled trades. Follow the rules in the user message exactly."
)

var draftSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"description": {Type: genai.TypeString},
		"required_skills": {
			Type:  genai.TypeArray,
			Items: &genai.Schema{Type: genai.TypeString},
		},
	},
	Required: []string{"description", "required_skills"},
}

// Assistant implements ai.Assistant on top of a Gemini generator.
type Assistant struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int
}

var _ ai.Assistant = (*Assistant)(nil)

func NewAssistant(generator contentGenerator, maxLogLength int, log *zap.Logger) *Assistant {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}

	return &Assistant{
		generator: generator,
		logger:    logger.WithFields(log),
		maxLogLen: maxLogLength,
	}
}

// DraftJob asks the model for a description and skill list for title at company.
func (a *Assistant) DraftJob(ctx context.Context, title, company string) (*ai.JobDraft, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, model.Invalid("job title is required for a draft")
	}
	company = strings.TrimSpace(company)
	if company == "" {
		company = "an unnamed company"
	}

	prompt := fillTemplate(draftTemplate, map[string]string{
		"{{TITLE}}":   title,
		"{{COMPANY}}": company,
	})

	a.logRequest("gemini draft request", prompt, zap.String("title", title))

	raw, err := a.generator.GenerateJSON(ctx, systemInstruction, prompt, draftSchema)
	if err != nil {
		return nil, model.Unavailable("draft job", err)
	}

	a.logResponse("gemini draft response", raw, zap.String("title", title))

	draft, err := parseDraft(raw)
	if err != nil {
		return nil, model.Unavailable("draft job", err)
	}
	return draft, nil
}

// Explain returns a short note on why result ranked where it did for job.
func (a *Assistant) Explain(ctx context.Context, job model.Job, result matching.MatchResult) (string, error) {
	jobJSON, err := json.MarshalIndent(map[string]any{
		"title":           job.Title,
		"country":         job.Country,
		"location":        job.Location,
		"required_skills": job.RequiredSkills,
	}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal job payload: %w", err)
	}

	candidateJSON, err := json.MarshalIndent(map[string]any{
		"trade_or_skill":        result.Worker.TradeOrSkill,
		"experience_years":      result.Worker.ExperienceYears,
		"country_of_origin":     result.Worker.CountryOfOrigin,
		"experience_in_country": result.Worker.ExperienceInCountry,
		"summary":               result.Worker.Summary,
	}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal candidate payload: %w", err)
	}

	breakdownJSON, err := json.MarshalIndent(result.Breakdown, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal breakdown payload: %w", err)
	}

	prompt := fillTemplate(explainTemplate, map[string]string{
		"{{JOB_JSON}}":       string(jobJSON),
		"{{CANDIDATE_JSON}}": string(candidateJSON),
		"{{BREAKDOWN_JSON}}": string(breakdownJSON),
	})

	fields := logger.MatchFields(job.ID, result.WorkerID)
	a.logRequest("gemini explain request", prompt, fields...)

	raw, err := a.generator.GenerateContent(ctx, systemInstruction, prompt)
	if err != nil {
		return "", model.Unavailable("explain match", err)
	}

	a.logResponse("gemini explain response", raw, fields...)

	note := cleanNote(raw)
	if note == "" {
		return "", model.Unavailable("explain match", errors.New("empty note"))
	}
	return note, nil
}

func (a *Assistant) logRequest(msg, prompt string, fields ...zap.Field) {
	a.logger.Debug(msg, append(fields,
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, a.maxLogLen)),
	)...)
}

func (a *Assistant) logResponse(msg, raw string, fields ...zap.Field) {
	a.logger.Debug(msg, append(fields,
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, a.maxLogLen)),
	)...)
}

func fillTemplate(template string, values map[string]string) string {
	for placeholder, value := range values {
		template = strings.ReplaceAll(template, placeholder, value)
	}
	return template
}

func parseDraft(raw string) (*ai.JobDraft, error) {
	cleaned := extractJSON(raw)

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return nil, fmt.Errorf("parse gemini response: %w", err)
	}

	description := coerceString(data["description"])
	if description == "" {
		return nil, errors.New("gemini response has no description")
	}

	return &ai.JobDraft{
		Description:    description,
		RequiredSkills: model.NormalizeSkills(coerceStrings(data["required_skills"])),
		Raw:            raw,
	}, nil
}

func cleanNote(raw string) string {
	note := strings.Join(strings.Fields(extractJSON(raw)), " ")
	if utf8.RuneCountInString(note) > maxNoteRunes {
		note = utils.TruncateForLog(note, maxNoteRunes)
	}
	return note
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}

func coerceStrings(v any) []string {
	switch val := v.(type) {
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			out = append(out, coerceString(item))
		}
		return out
	case []string:
		return val
	case string:
		return strings.Split(val, ",")
	default:
		return nil
	}
}

func coerceString(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case fmt.Stringer:
		return strings.TrimSpace(val.String())
	default:
		if v == nil {
			return ""
		}
		bytes, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(bytes)
	}
}
