// Package ai wraps the external completion service behind a compiled
// prompt-template + chat-model chain. One Service is constructed at process
// start and shared by read-only reference; callers that can run without it
// accept a nil-able interface instead of this concrete type.
package ai

import (
	"context"
	"fmt"
	"log"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/advisia/advisor/internal/config"
	"github.com/advisia/advisor/internal/model/chat"
)

// historyLimit bounds how many prior turns are replayed to the model.
const historyLimit = 20

// Service is the process-wide completion client.
type Service struct {
	cfg   config.AIConfig
	chain compose.Runnable[map[string]any, *schema.Message]
}

// NewService creates the completion client from configuration.
func NewService(ctx context.Context, cfg config.AIConfig) (*Service, error) {
	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.MessagesPlaceholder("history", true),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile completion chain: %w", err)
	}

	return &Service{cfg: cfg, chain: runnable}, nil
}

// StreamingEnabled indicates whether SSE delta streaming is configured.
func (s *Service) StreamingEnabled() bool {
	return s.cfg.Stream
}

// Complete runs one completion over the system instruction, replayed
// history and the latest user query.
func (s *Service) Complete(ctx context.Context, system string, history []chat.Message, query string) (string, error) {
	response, err := s.chain.Invoke(ctx, chainInput(system, history, query))
	if err != nil {
		return "", fmt.Errorf("failed to run completion chain: %w", err)
	}

	log.Printf("[ai] completion ok, length=%d", len(response.Content))
	return response.Content, nil
}

// Stream yields the completion as incremental chunks.
func (s *Service) Stream(ctx context.Context, system string, history []chat.Message, query string) (*schema.StreamReader[*schema.Message], error) {
	if !s.StreamingEnabled() {
		return nil, fmt.Errorf("streaming disabled in configuration")
	}

	stream, err := s.chain.Stream(ctx, chainInput(system, history, query))
	if err != nil {
		return nil, fmt.Errorf("failed to stream completion chain: %w", err)
	}
	return stream, nil
}

func chainInput(system string, history []chat.Message, query string) map[string]any {
	return map[string]any{
		"system":  system,
		"history": historyMessages(history),
		"query":   query,
	}
}

func historyMessages(messages []chat.Message) []*schema.Message {
	if len(messages) == 0 {
		return nil
	}

	startIdx := 0
	if len(messages) > historyLimit {
		startIdx = len(messages) - historyLimit
	}

	history := make([]*schema.Message, 0, len(messages)-startIdx)
	for _, msg := range messages[startIdx:] {
		switch msg.Role {
		case chat.RoleUser:
			history = append(history, schema.UserMessage(msg.Content))
		case chat.RoleAssistant:
			history = append(history, schema.AssistantMessage(msg.Content, nil))
		}
	}
	return history
}
