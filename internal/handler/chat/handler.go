package chat

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	model "github.com/blockforge/craftchat/internal/model/chat"
	chatService "github.com/blockforge/craftchat/internal/service/chat"
	"github.com/blockforge/craftchat/pkg/utils"
)

// Generator produces a completion from the accumulated context plus a new
// prompt. Implemented by the AI service; stubbed in tests.
type Generator interface {
	Generate(ctx context.Context, history []model.Message, prompt string) (string, error)
}

// Handler 聊天服务的HTTP处理器
type Handler struct {
	sessions  *chatService.Service
	generator Generator
}

// New 创建聊天处理器。generator 为 nil 时聊天接口返回 503。
func New(sessions *chatService.Service, generator Generator) *Handler {
	return &Handler{
		sessions:  sessions,
		generator: generator,
	}
}

// RegisterRoutes 注册聊天相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/chat", h.handleChat)
	r.Get("/sessions/{player}", h.handleTranscript)
	r.Delete("/sessions/{player}", h.handleReset)
}

// handleChat 处理一次玩家对话回合
func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Player string `json:"player"`
		Prompt string `json:"prompt"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	payload.Player = strings.TrimSpace(payload.Player)
	payload.Prompt = strings.TrimSpace(payload.Prompt)
	if payload.Player == "" {
		utils.RespondError(w, http.StatusBadRequest, "player is required")
		return
	}
	if payload.Prompt == "" {
		utils.RespondError(w, http.StatusBadRequest, "prompt is required")
		return
	}

	if h.generator == nil {
		utils.RespondError(w, http.StatusServiceUnavailable, "ai service unavailable")
		return
	}

	reply, turns, err := h.sessions.Turn(r.Context(), payload.Player, payload.Prompt, h.generator.Generate)
	if err != nil {
		switch {
		case errors.Is(err, chatService.ErrPlayerRequired), errors.Is(err, chatService.ErrPromptRequired):
			utils.RespondError(w, http.StatusBadRequest, err.Error())
		default:
			log.Printf("[chat] turn failed for player=%s: %v", payload.Player, err)
			utils.RespondError(w, http.StatusBadGateway, "failed to generate reply")
		}
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"player": payload.Player,
		"reply":  reply.Content,
		"lines":  splitLines(reply.Content),
		"turns":  turns,
	})
}

// handleTranscript 返回玩家会话的全部消息
func (h *Handler) handleTranscript(w http.ResponseWriter, r *http.Request) {
	player := chi.URLParam(r, "player")

	session, err := h.sessions.GetSession(r.Context(), player)
	if err != nil {
		utils.RespondError(w, http.StatusNotFound, "session not found")
		return
	}

	messages, err := h.sessions.Transcript(r.Context(), player)
	if err != nil {
		utils.RespondError(w, http.StatusNotFound, "session not found")
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"session":  session,
		"messages": messages,
	})
}

// handleReset 丢弃玩家会话，下一回合从空上下文开始
func (h *Handler) handleReset(w http.ResponseWriter, r *http.Request) {
	player := chi.URLParam(r, "player")

	if err := h.sessions.Reset(r.Context(), player); err != nil {
		utils.RespondError(w, http.StatusNotFound, "session not found")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// splitLines breaks a reply into game-chat sized lines.
func splitLines(content string) []string {
	raw := strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n")
	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	return lines
}
