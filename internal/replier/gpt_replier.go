package replier

import (
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/xaenox/heartmatch/internal/models"
)

// historyWindow bounds how many recent messages are sent as context.
const historyWindow = 10

type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// GPTReplier answers in the bot's persona and falls back to canned replies
// when the API is unavailable.
type GPTReplier struct {
	client      chatCompleter
	model       string
	maxTokens   int
	temperature float64
	fallback    Replier
	logger      *zap.Logger
}

func NewGPTReplier(apiKey string, model string, maxTokens int, temperature float64, fallback Replier, logger *zap.Logger) *GPTReplier {
	return &GPTReplier{
		client:      openai.NewClient(apiKey),
		model:       model,
		maxTokens:   maxTokens,
		temperature: temperature,
		fallback:    fallback,
		logger:      logger,
	}
}

func (g *GPTReplier) Reply(ctx context.Context, bot models.ChatBot, history []models.Message) string {
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       g.model,
		Messages:    buildPrompt(bot, history),
		MaxTokens:   g.maxTokens,
		Temperature: float32(g.temperature),
	})
	if err != nil {
		g.logger.Error("Failed to get GPT response",
			zap.Error(err),
			zap.String("bot_id", bot.ID))
		return g.fallback.Reply(ctx, bot, history)
	}

	if len(resp.Choices) == 0 {
		g.logger.Warn("GPT returned no choices", zap.String("bot_id", bot.ID))
		return g.fallback.Reply(ctx, bot, history)
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		g.logger.Warn("GPT returned an empty reply", zap.String("bot_id", bot.ID))
		return g.fallback.Reply(ctx, bot, history)
	}
	return text
}

func buildPrompt(bot models.ChatBot, history []models.Message) []openai.ChatCompletionMessage {
	system := fmt.Sprintf(`You are %s, a friendly assistant inside a dating app.
About you: %s
Answer in one or two short sentences. Keep it light and encouraging.`, bot.Name, bot.Bio)

	msgs := []openai.ChatCompletionMessage{{Role: openai.ChatMessageRoleSystem, Content: system}}
	if len(history) > historyWindow {
		history = history[len(history)-historyWindow:]
	}
	for _, m := range history {
		role := openai.ChatMessageRoleUser
		if m.SenderID == bot.ID {
			role = openai.ChatMessageRoleAssistant
		}
		msgs = append(msgs, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}
	return msgs
}
