package recipe

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/blockforge/craftchat/internal/recipe"
	"github.com/blockforge/craftchat/pkg/utils"
)

// Handler 配方查询的HTTP处理器
type Handler struct {
	store *recipe.Store
}

// New 创建配方处理器。store 为 nil 时接口返回 503。
func New(store *recipe.Store) *Handler {
	return &Handler{store: store}
}

// RegisterRoutes 注册配方相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/recipes", h.handleFind)
}

// handleFind 按物品ID查询合成配方
func (h *Handler) handleFind(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		utils.RespondError(w, http.StatusServiceUnavailable, "recipe lookup unavailable")
		return
	}

	item := strings.TrimSpace(r.URL.Query().Get("item"))
	if item == "" {
		utils.RespondError(w, http.StatusBadRequest, "item query parameter is required")
		return
	}

	recipes, err := h.store.FindByResultID(r.Context(), item)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "recipe lookup failed")
		return
	}

	formatted, err := recipe.Format(recipes)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "recipe lookup failed")
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"item":    recipe.NormalizeItemID(item),
		"recipes": formatted,
	})
}
