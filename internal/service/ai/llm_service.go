package ai

import (
	"context"
	"fmt"
	"log"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"

	"github.com/blockforge/craftchat/internal/config"
	"github.com/blockforge/craftchat/internal/model/chat"
	"github.com/blockforge/craftchat/internal/tool"
)

// Service wraps the upstream chat model behind a synchronous completion call.
type Service struct {
	chatModel model.BaseChatModel
	template  prompt.ChatTemplate
	profile   config.Profile
	tools     *tool.Registry
}

// NewService creates the model client. When the registry holds tools and the
// model supports tool calling, the tools are bound up front; otherwise the
// service runs plain completions.
func NewService(ctx context.Context, chatModel model.BaseChatModel, profile config.Profile, tools *tool.Registry) (*Service, error) {
	if chatModel == nil {
		return nil, fmt.Errorf("chat model is required")
	}

	template := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.MessagesPlaceholder("history", true),
		schema.UserMessage("{query}"),
	)

	if tools != nil && tools.Len() > 0 {
		toolModel, ok := chatModel.(model.ToolCallingChatModel)
		if !ok {
			log.Printf("[ai] chat model does not support tool calling, continuing without tools")
			tools = nil
		} else {
			bound, err := toolModel.WithTools(tools.Infos())
			if err != nil {
				return nil, fmt.Errorf("failed to bind tools: %w", err)
			}
			chatModel = bound
		}
	}

	return &Service{
		chatModel: chatModel,
		template:  template,
		profile:   profile,
		tools:     tools,
	}, nil
}

// Generate sends the accumulated history plus the new prompt upstream and
// returns the completion text. Failures propagate without retry.
func (s *Service) Generate(ctx context.Context, history []chat.Message, userPrompt string) (string, error) {
	input := map[string]any{
		"system":  s.profile.SystemInstruction,
		"history": s.buildHistory(history),
		"query":   userPrompt,
	}

	messages, err := s.template.Format(ctx, input)
	if err != nil {
		return "", fmt.Errorf("failed to build prompt: %w", err)
	}

	response, err := s.chatModel.Generate(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("failed to generate completion: %w", err)
	}

	response, err = s.resolveToolCalls(ctx, messages, response)
	if err != nil {
		return "", err
	}

	log.Printf("[ai] generated reply, length=%d", len(response.Content))
	return response.Content, nil
}

// resolveToolCalls executes requested tool calls and feeds the results back,
// for at most the configured number of rounds.
func (s *Service) resolveToolCalls(ctx context.Context, messages []*schema.Message, response *schema.Message) (*schema.Message, error) {
	if s.tools == nil {
		return response, nil
	}

	for round := 0; round < s.profile.MaxToolRounds; round++ {
		if len(response.ToolCalls) == 0 {
			return response, nil
		}

		messages = append(messages, response)
		for _, call := range response.ToolCalls {
			result, err := s.tools.Invoke(ctx, call.Function.Name, call.Function.Arguments)
			if err != nil {
				log.Printf("[ai] tool %s failed: %v", call.Function.Name, err)
				result = fmt.Sprintf(`{"error":%q}`, err.Error())
			}
			messages = append(messages, schema.ToolMessage(result, call.ID))
		}

		var err error
		response, err = s.chatModel.Generate(ctx, messages)
		if err != nil {
			return nil, fmt.Errorf("failed to generate completion after tool call: %w", err)
		}
	}

	if len(response.ToolCalls) > 0 {
		return nil, fmt.Errorf("model kept requesting tools after %d rounds", s.profile.MaxToolRounds)
	}
	return response, nil
}

// buildHistory converts stored turns into model messages, trimmed to the
// profile's history limit.
func (s *Service) buildHistory(messages []chat.Message) []*schema.Message {
	if len(messages) == 0 {
		return nil
	}

	startIdx := 0
	if limit := s.profile.HistoryLimit; limit > 0 && len(messages) > limit {
		startIdx = len(messages) - limit
	}

	history := make([]*schema.Message, 0, len(messages)-startIdx)
	for _, msg := range messages[startIdx:] {
		switch msg.Sender {
		case chat.SenderUser:
			history = append(history, schema.UserMessage(msg.Content))
		case chat.SenderAssistant:
			history = append(history, schema.AssistantMessage(msg.Content, nil))
		}
	}

	return history
}
