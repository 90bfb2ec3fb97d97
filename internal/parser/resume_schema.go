package parser

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"resume-analyzer-go/internal/types"
)

// ErrEmptyLLMResponse LLM 返回了空内容
var ErrEmptyLLMResponse = errors.New("LLM returned empty response")

var (
	resumeSchemaOnce sync.Once
	resumeSchema     *jsonschema.Schema
	resumeSchemaErr  error
)

func optionalString() map[string]any {
	return map[string]any{"type": []any{"string", "null"}}
}

func stringList() map[string]any {
	return map[string]any{
		"type":  []any{"array", "null"},
		"items": map[string]any{"type": "string"},
	}
}

// buildResumeJSONSchema 描述LLM必须返回的JSON结构。
// 必填字段必须是字符串，可选字段允许 null，多余字段忽略。
func buildResumeJSONSchema() map[string]any {
	training := map[string]any{
		"type":     "object",
		"required": []any{"school", "level"},
		"properties": map[string]any{
			"school": map[string]any{"type": "string"},
			"level":  map[string]any{"type": "string"},
			"period": optionalString(),
			"field":  optionalString(),
		},
	}
	experience := map[string]any{
		"type":     "object",
		"required": []any{"title", "description"},
		"properties": map[string]any{
			"title":       map[string]any{"type": "string"},
			"description": map[string]any{"type": "string"},
			"date":        optionalString(),
			"company":     optionalString(),
			"location":    optionalString(),
		},
	}
	return map[string]any{
		"$schema":  "https://json-schema.org/draft/2020-12/schema",
		"type":     "object",
		"required": []any{"first_name", "last_name", "trainings", "experiences"},
		"properties": map[string]any{
			"first_name":   map[string]any{"type": "string"},
			"last_name":    map[string]any{"type": "string"},
			"email":        optionalString(),
			"phone_number": optionalString(),
			"profession":   optionalString(),
			"address":      optionalString(),
			"languages":    stringList(),
			"skills":       stringList(),
			"trainings":    map[string]any{"type": "array", "items": training},
			"experiences":  map[string]any{"type": "array", "items": experience},
		},
	}
}

// compiledResumeSchema 编译一次，之后并发复用
func compiledResumeSchema() (*jsonschema.Schema, error) {
	resumeSchemaOnce.Do(func() {
		b, err := json.Marshal(buildResumeJSONSchema())
		if err != nil {
			resumeSchemaErr = fmt.Errorf("marshal schema: %w", err)
			return
		}
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("resume.json", bytes.NewReader(b)); err != nil {
			resumeSchemaErr = fmt.Errorf("add schema: %w", err)
			return
		}
		resumeSchema, resumeSchemaErr = compiler.Compile("resume.json")
		if resumeSchemaErr != nil {
			resumeSchemaErr = fmt.Errorf("compile schema: %w", resumeSchemaErr)
		}
	})
	return resumeSchema, resumeSchemaErr
}

// llmResumePayload LLM响应的中间结构
type llmResumePayload struct {
	FirstName   string             `json:"first_name"`
	LastName    string             `json:"last_name"`
	Email       *string            `json:"email"`
	PhoneNumber *string            `json:"phone_number"`
	Profession  *string            `json:"profession"`
	Address     *string            `json:"address"`
	Languages   []string           `json:"languages"`
	Skills      []string           `json:"skills"`
	Trainings   []types.Training   `json:"trainings"`
	Experiences []types.Experience `json:"experiences"`
}

// ParseResumeJSON 将LLM返回的原始内容解析为简历记录。
// 内容必须是严格的JSON对象，并通过结构校验，否则返回错误，不会返回部分结果。
func ParseResumeJSON(content string) (*types.Resume, error) {
	content = strings.TrimSpace(strings.TrimPrefix(content, "\uFEFF"))
	if content == "" {
		return nil, ErrEmptyLLMResponse
	}

	var raw any
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return nil, fmt.Errorf("response is not valid JSON: %w", err)
	}

	schema, err := compiledResumeSchema()
	if err != nil {
		return nil, err
	}
	if err := schema.Validate(raw); err != nil {
		return nil, fmt.Errorf("json does not match schema: %w", err)
	}

	var payload llmResumePayload
	if err := json.Unmarshal([]byte(content), &payload); err != nil {
		return nil, fmt.Errorf("decoding resume payload: %w", err)
	}

	trainings := make([]types.Training, 0, len(payload.Trainings))
	for _, t := range payload.Trainings {
		trainings = append(trainings, types.NewTraining(t.School, t.Level, t.Period, t.Field))
	}
	experiences := make([]types.Experience, 0, len(payload.Experiences))
	for _, e := range payload.Experiences {
		experiences = append(experiences, types.NewExperience(e.Title, e.Description, e.Date, e.Company, e.Location))
	}

	return types.NewResume(types.ResumeFields{
		FirstName:   payload.FirstName,
		LastName:    payload.LastName,
		Email:       deref(payload.Email),
		PhoneNumber: deref(payload.PhoneNumber),
		Profession:  deref(payload.Profession),
		Address:     deref(payload.Address),
		Languages:   payload.Languages,
		Trainings:   trainings,
		Skills:      payload.Skills,
		Experiences: experiences,
	}), nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
