package enhance

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"swarmgen/logging"
)

var (
	spanRe     = regexp.MustCompile(`(?s)^(.*?) *@< *([^>]+?) *>@ *(.*)$`)
	thinkRes   = []*regexp.Regexp{
		regexp.MustCompile(`(?s)^.*</seed:think>`),
		regexp.MustCompile(`(?s)^.*</think>`),
		regexp.MustCompile(`(?s)^.*<.message.>`),
	}
	flattenRes = []struct {
		re   *regexp.Regexp
		repl string
	}{
		{regexp.MustCompile(`\n`), ` `},
		{regexp.MustCompile(`^ +`), ``},
		{regexp.MustCompile(` +$`), ``},
		{regexp.MustCompile(` +`), ` `},
	}
)

// Config holds the settings for an Enhancer.
type Config struct {
	// BaseURL is the OpenAI-compatible endpoint, e.g.
	// "http://localhost:1234/v1" for LM Studio.
	BaseURL string

	// Model is the model identifier to request.
	Model string

	// Temperature controls output randomness. Default 0.75.
	Temperature float32

	// MaxTokens caps one response. Default 1000.
	MaxTokens int

	// Logger is optional.
	Logger *logging.Logger
}

// Enhancer rewrites prompts through a chat-completion model. Each line
// gets a fresh conversation; nothing carries over between calls.
type Enhancer struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
	log         *logging.Logger
}

// New creates an Enhancer for the given endpoint and model.
func New(cfg Config) (*Enhancer, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("enhance: base URL cannot be empty")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("enhance: model cannot be empty")
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = 0.75
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 1000
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.NewNop()
	}

	// Local servers ignore the key but the client requires one.
	clientConfig := openai.DefaultConfig("lm-studio")
	clientConfig.BaseURL = cfg.BaseURL

	return &Enhancer{
		client:      openai.NewClientWithConfig(clientConfig),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		log:         cfg.Logger.Named("enhance"),
	}, nil
}

// SplitSpan extracts the @< ... >@ marked section of a prompt. When
// markers are present only the inner text is rewritten and the prefix
// and suffix are reattached verbatim.
func SplitSpan(prompt string) (prefix, inner, suffix string, found bool) {
	m := spanRe.FindStringSubmatch(prompt)
	if m == nil {
		return "", prompt, "", false
	}
	return m[1], m[2], m[3], true
}

// CleanResponse strips reasoning-model think blocks from the front of a
// response and flattens it to one trimmed line.
func CleanResponse(text string) string {
	for _, re := range thinkRes {
		text = re.ReplaceAllString(text, "")
	}
	return Flatten(text)
}

// Flatten collapses a response to a single line with single spaces.
func Flatten(text string) string {
	for _, rule := range flattenRes {
		text = rule.re.ReplaceAllString(text, rule.repl)
	}
	return text
}

// EnhanceLine rewrites one prompt line: span extraction, one chat
// completion, think-block cleanup, and span reassembly.
func (e *Enhancer) EnhanceLine(ctx context.Context, systemPrompt, line string) (string, error) {
	prefix, inner, suffix, hasSpan := SplitSpan(strings.TrimRight(line, "\n"))

	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       e.model,
		Temperature: e.temperature,
		MaxTokens:   e.maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: inner},
		},
	})
	if err != nil {
		return "", fmt.Errorf("enhance: chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("enhance: model returned no choices")
	}

	result := CleanResponse(resp.Choices[0].Message.Content)
	if hasSpan {
		result = Flatten(strings.Join([]string{prefix, result, suffix}, " "))
	}
	e.log.Debugw("prompt rewritten", "in_len", len(line), "out_len", len(result))
	return result, nil
}

// ListModels returns the model identifiers the server has available.
func (e *Enhancer) ListModels(ctx context.Context) ([]string, error) {
	list, err := e.client.ListModels(ctx)
	if err != nil {
		return nil, fmt.Errorf("enhance: listing models: %w", err)
	}
	ids := make([]string, len(list.Models))
	for i, m := range list.Models {
		ids[i] = m.ID
	}
	return ids, nil
}
