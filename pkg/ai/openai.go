package ai

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	aiDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "gradeflow",
		Subsystem: "ai",
		Name:      "request_duration_seconds",
		Help:      "Duration of AI grading requests",
	}, []string{"model", "operation"})

	aiFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gradeflow",
		Subsystem: "ai",
		Name:      "request_failures_total",
		Help:      "Number of failed AI grading requests",
	}, []string{"model", "operation"})
)

const gradingSystemPrompt = `You are a teaching assistant grading a student's answer with concise, formative feedback.

Scoring dimensions:
%s
Rules:
- Score each dimension in {0.0, 0.5, 1.0}. Allow equivalent methods, numeric formats and minor rounding.
- Accept equivalent unit forms.
- Be factual and brief.
- IMPORTANT: Output ONLY one JSON object and nothing else.

JSON schema to return:
{
  "overall_score": <number 0..100>,
  "rubric_scores": [
    {"item": "<string>", "score": <0|0.5|1>, "comment": "<string>"}
  ],
  "feedback": "<string>"
}`

const rubricConvertSystemPrompt = `You are an assistant that converts grading rubrics into a structured JSON format.
The JSON schema must be:
[
  {
    "name": string,
    "description": string,
    "weight": number (optional),
    "levels": { "1.0": string, "0.5": string, "0.0": string } (optional)
  }, ...
]
Return ONLY valid JSON. Do not include comments or extra text.`

// referenceStrategies are tried in order until one produces a non-empty
// answer; later strategies trade prompt detail for a larger token budget.
var referenceStrategies = []struct {
	name      string
	prompt    string
	tokenMult int
}{
	{
		name: "standard",
		prompt: `You are an expert instructor. Generate a concise, correct reference solution for the following problem.
- Show key steps and formulas succinctly.
- Provide the final numeric result with correct SI units when applicable.
- Do NOT invent missing data; state necessary assumptions explicitly, then solve.
- Return plain text only.`,
		tokenMult: 1,
	},
	{
		name: "simplified",
		prompt: `Solve this problem step by step:
1. Identify what is given and what is asked
2. Select appropriate formulas
3. Perform calculations
4. State the final answer with units
Be concise and direct.`,
		tokenMult: 2,
	},
	{
		name:      "minimal",
		prompt:    `Solve this problem and show the answer with units.`,
		tokenMult: 4,
	},
}

// OpenAIConfig defines configuration options for the OpenAI grader.
type OpenAIConfig struct {
	APIKey      string
	Model       string
	RubricModel string
	MaxTokens   int
	MaxRetries  int
	RetryBase   time.Duration
	Temperature float32
	Logger      zerolog.Logger
}

// OpenAIGrader implements Grader against the OpenAI chat completion API.
type OpenAIGrader struct {
	client *openai.Client
	cfg    OpenAIConfig
	tracer trace.Tracer
	logger zerolog.Logger

	mu       sync.Mutex
	refCache map[string]string
}

// NewOpenAIGrader builds a grader using the provided configuration.
func NewOpenAIGrader(cfg OpenAIConfig) (*OpenAIGrader, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai api key is required")
	}

	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	if cfg.RubricModel == "" {
		cfg.RubricModel = cfg.Model
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 2048
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryBase <= 0 {
		cfg.RetryBase = 600 * time.Millisecond
	}

	return &OpenAIGrader{
		client:   openai.NewClientWithConfig(openai.DefaultConfig(cfg.APIKey)),
		cfg:      cfg,
		tracer:   otel.Tracer("github.com/eduleaf/gradeflow-api/pkg/ai/openai"),
		logger:   cfg.Logger.With().Str("component", "openai_grader").Logger(),
		refCache: make(map[string]string),
	}, nil
}

// Grade sends one grading request with retry and exponential backoff and
// extracts the JSON payload from the response.
func (g *OpenAIGrader) Grade(parent context.Context, input GradeInput) (RawGrade, error) {
	ctx, span := g.tracer.Start(parent, "openai.grade", trace.WithAttributes(
		attribute.String("model", g.cfg.Model),
		attribute.Int("rubric_items", len(input.Rubric)),
	))
	defer span.End()

	request := openai.ChatCompletionRequest{
		Model:       g.cfg.Model,
		MaxTokens:   g.cfg.MaxTokens,
		Temperature: g.cfg.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: gradingPrompt(input)},
			{Role: openai.ChatMessageRoleUser, Content: gradingUserPrompt(input)},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject},
	}

	var lastErr error
	for attempt := 0; attempt <= g.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			sleep := g.cfg.RetryBase * (1 << (attempt - 1))
			g.logger.Debug().Dur("backoff", sleep).Int("attempt", attempt).Msg("retrying grading request")
			select {
			case <-time.After(sleep):
			case <-ctx.Done():
				return RawGrade{}, ctx.Err()
			}
		}

		content, err := g.chatOnce(ctx, request, "grade")
		if err != nil {
			lastErr = err
			continue
		}

		payload, err := ExtractPayload(content)
		if err != nil {
			lastErr = err
			continue
		}

		return RawGrade{Payload: payload, Content: content}, nil
	}

	span.RecordError(lastErr)
	span.SetStatus(codes.Error, "grading_failed")
	return RawGrade{}, fmt.Errorf("grading failed after %d attempts: %w", g.cfg.MaxRetries+1, lastErr)
}

// GenerateReference produces a reference answer for a question, caching by
// question hash so repeated gradings of the same problem spend no extra
// tokens. Fallback strategies are tried in order.
func (g *OpenAIGrader) GenerateReference(parent context.Context, question string) (string, error) {
	key := hashQuestion(question)

	g.mu.Lock()
	if cached, ok := g.refCache[key]; ok {
		g.mu.Unlock()
		g.logger.Debug().Str("question_hash", key).Msg("reference answer cache hit")
		return cached, nil
	}
	g.mu.Unlock()

	ctx, span := g.tracer.Start(parent, "openai.generate_reference", trace.WithAttributes(
		attribute.String("model", g.cfg.Model),
	))
	defer span.End()

	var lastErr error
	for _, strategy := range referenceStrategies {
		request := openai.ChatCompletionRequest{
			Model:     g.cfg.Model,
			MaxTokens: g.cfg.MaxTokens * strategy.tokenMult,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleSystem, Content: strategy.prompt},
				{Role: openai.ChatMessageRoleUser, Content: strings.TrimSpace(question)},
			},
		}

		content, err := g.chatOnce(ctx, request, "reference")
		if err != nil {
			lastErr = err
			g.logger.Warn().Err(err).Str("strategy", strategy.name).Msg("reference generation strategy failed")
			continue
		}

		g.mu.Lock()
		g.refCache[key] = content
		g.mu.Unlock()
		g.logger.Info().Str("strategy", strategy.name).Int("chars", len(content)).Msg("reference answer generated")
		return content, nil
	}

	span.RecordError(lastErr)
	span.SetStatus(codes.Error, "reference_generation_failed")
	return "", fmt.Errorf("all reference generation strategies failed: %w", lastErr)
}

// ConvertRubric turns a natural-language rubric description into the strict
// rubric JSON format.
func (g *OpenAIGrader) ConvertRubric(parent context.Context, rubricText string) (string, error) {
	ctx, span := g.tracer.Start(parent, "openai.convert_rubric", trace.WithAttributes(
		attribute.String("model", g.cfg.RubricModel),
	))
	defer span.End()

	request := openai.ChatCompletionRequest{
		Model: g.cfg.RubricModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: rubricConvertSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: "Convert the following grading rubric description into the JSON format:\n\n" + rubricText},
		},
	}

	content, err := g.chatOnce(ctx, request, "convert_rubric")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "rubric_conversion_failed")
		return "", err
	}

	return content, nil
}

func (g *OpenAIGrader) chatOnce(ctx context.Context, request openai.ChatCompletionRequest, operation string) (string, error) {
	start := time.Now()
	resp, err := g.client.CreateChatCompletion(ctx, request)
	aiDuration.WithLabelValues(request.Model, operation).Observe(time.Since(start).Seconds())

	if err != nil {
		aiFailures.WithLabelValues(request.Model, operation).Inc()
		return "", fmt.Errorf("openai %s: %w", operation, err)
	}

	if len(resp.Choices) == 0 {
		aiFailures.WithLabelValues(request.Model, operation).Inc()
		return "", fmt.Errorf("openai %s: no choices returned", operation)
	}

	choice := resp.Choices[0]
	if choice.FinishReason == openai.FinishReasonContentFilter {
		aiFailures.WithLabelValues(request.Model, operation).Inc()
		return "", fmt.Errorf("openai %s: response blocked by content filter", operation)
	}

	content := strings.TrimSpace(choice.Message.Content)
	if content == "" {
		aiFailures.WithLabelValues(request.Model, operation).Inc()
		return "", fmt.Errorf("openai %s: empty response content", operation)
	}

	g.logger.Debug().
		Str("operation", operation).
		Int("prompt_tokens", resp.Usage.PromptTokens).
		Int("completion_tokens", resp.Usage.CompletionTokens).
		Msg("openai request completed")

	return content, nil
}

func gradingPrompt(input GradeInput) string {
	block := input.RubricBlock
	if block == "" {
		block = strings.Join(input.Rubric, ", ")
	}
	return fmt.Sprintf(gradingSystemPrompt, block)
}

// gradingUserPrompt fences user-supplied content as data, not instructions,
// to dampen prompt injection.
func gradingUserPrompt(input GradeInput) string {
	var builder strings.Builder
	writeDataBlock(&builder, "Problem", input.Question)
	writeDataBlock(&builder, "Reference Answer", input.ReferenceAnswer)
	writeDataBlock(&builder, "Student Answer", input.StudentAnswer)
	return strings.TrimSpace(builder.String())
}

func writeDataBlock(builder *strings.Builder, title, content string) {
	builder.WriteString("[" + title + "]\nBEGIN_DATA\n")
	builder.WriteString(content)
	builder.WriteString("\nEND_DATA\n\n")
}

func hashQuestion(question string) string {
	sum := sha1.Sum([]byte(strings.TrimSpace(question)))
	return hex.EncodeToString(sum[:])
}
