package qna

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"go.uber.org/zap"

	"github.com/jinlee/portfolio-server-go/internal/config"
	"github.com/jinlee/portfolio-server-go/internal/util"
	"github.com/jinlee/portfolio-server-go/pkg/errors"
)

const maxLoggedBodyRunes = 500

// chatCompleter isolates the OpenAI client behind a fakeable seam.
type chatCompleter interface {
	Complete(ctx context.Context, params openai.ChatCompletionNewParams) (*openai.ChatCompletion, error)
}

type openaiCompleter struct {
	client *openai.Client
}

func (o *openaiCompleter) Complete(ctx context.Context, params openai.ChatCompletionNewParams) (*openai.ChatCompletion, error) {
	return o.client.Chat.Completions.New(ctx, params)
}

// Gateway issues one completion call per request. One atomic
// request/response, no retries, no streaming; a single failure is terminal
// for that request and never affects other requests.
type Gateway struct {
	completer   chatCompleter
	model       openai.ChatModel
	temperature float64
	maxTokens   int
	timeout     time.Duration
	logger      *zap.Logger
}

// NewGateway builds the gateway. A missing API key is tolerated here and
// reported per-request, so the rest of the service keeps running on a
// misconfigured deployment.
func NewGateway(cfg config.OpenAIConfig, timeout time.Duration, logger *zap.Logger) *Gateway {
	g := &Gateway{
		model:       resolveModel(cfg.Model),
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxOutputTokens,
		timeout:     timeout,
		logger:      logger,
	}
	if cfg.APIKey != "" {
		client := openai.NewClient(option.WithAPIKey(cfg.APIKey))
		g.completer = &openaiCompleter{client: &client}
	}
	return g
}

func resolveModel(name string) openai.ChatModel {
	switch name {
	case "gpt-4o":
		return openai.ChatModelGPT4o
	case "gpt-4o-mini":
		return openai.ChatModelGPT4oMini
	case "gpt-4.1":
		return openai.ChatModelGPT4_1
	case "gpt-4.1-mini":
		return openai.ChatModelGPT4_1Mini
	case "gpt-5-mini":
		return openai.ChatModelGPT5Mini
	default:
		return openai.ChatModelGPT4oMini
	}
}

// Complete sends the prompt and returns the answer text. The answer is
// never empty: an unusable success shape degrades to FallbackAnswer.
func (g *Gateway) Complete(ctx context.Context, messages []Message) (string, error) {
	if g.completer == nil {
		return "", errors.NewConfigurationError("OPENAI_API_KEY is not configured")
	}

	params := openai.ChatCompletionNewParams{
		Model:               g.model,
		Messages:            toProviderMessages(messages),
		MaxCompletionTokens: openai.Int(int64(g.maxTokens)),
	}
	if !isGPT5Model(g.model) {
		params.Temperature = openai.Float(g.temperature)
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	resp, err := g.completer.Complete(ctx, params)
	if err != nil {
		return "", g.mapUpstreamError(err)
	}

	answer, ok := extractAnswer(resp)
	if !ok {
		g.logger.Warn("Unrecognized completion response shape, using fallback answer",
			zap.String("model", string(g.model)),
		)
		return FallbackAnswer, nil
	}

	return answer, nil
}

func (g *Gateway) mapUpstreamError(err error) error {
	var apiErr *openai.Error
	if stderrors.As(err, &apiErr) {
		g.logger.Error("Completion provider returned an error",
			zap.Int("status", apiErr.StatusCode),
			zap.String("detail", util.TruncateString(apiErr.Error(), maxLoggedBodyRunes)),
		)
		return errors.NewUpstreamError("completion request failed", map[string]any{
			"status": apiErr.StatusCode,
		}).WithCause(err)
	}

	if stderrors.Is(err, context.DeadlineExceeded) {
		g.logger.Error("Completion request timed out",
			zap.Duration("timeout", g.timeout),
		)
		return errors.NewUpstreamError("completion request timed out", map[string]any{
			"timeout": g.timeout.String(),
		}).WithCause(err)
	}

	g.logger.Error("Completion request failed", zap.Error(err))
	return errors.NewUpstreamError("completion request failed", nil).WithCause(err)
}

func toProviderMessages(messages []Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case RoleSystem:
			out = append(out, openai.SystemMessage(m.Content))
		case RoleAssistant:
			out = append(out, openai.AssistantMessage(m.Content))
		default:
			out = append(out, openai.UserMessage(m.Content))
		}
	}
	return out
}

// Answer extraction is an ordered list of strategies tried in sequence;
// callers fall through to FallbackAnswer when none match.
var answerExtractors = []func(*openai.ChatCompletion) (string, bool){
	extractFirstChoice,
	extractAnyChoice,
}

func extractAnswer(resp *openai.ChatCompletion) (string, bool) {
	if resp == nil {
		return "", false
	}
	for _, extract := range answerExtractors {
		if text, ok := extract(resp); ok {
			return text, true
		}
	}
	return "", false
}

func extractFirstChoice(resp *openai.ChatCompletion) (string, bool) {
	if len(resp.Choices) == 0 {
		return "", false
	}
	text := resp.Choices[0].Message.Content
	return text, text != ""
}

func extractAnyChoice(resp *openai.ChatCompletion) (string, bool) {
	for _, choice := range resp.Choices {
		if choice.Message.Content != "" {
			return choice.Message.Content, true
		}
	}
	return "", false
}

func isGPT5Model(model openai.ChatModel) bool {
	switch model {
	case openai.ChatModelGPT5, openai.ChatModelGPT5Mini, openai.ChatModelGPT5Nano:
		return true
	}
	return false
}
