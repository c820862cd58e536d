package tool

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cloudwego/eino/schema"

	"github.com/blockforge/craftchat/internal/recipe"
)

// NewRecipeTool exposes crafting recipe lookups to the chat model.
func NewRecipeTool(store *recipe.Store) Tool {
	info := &schema.ToolInfo{
		Name: "find_recipes",
		Desc: "Get all crafting recipes for a specific item ID (e.g. 'minecraft:stick').",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"item_id": {
				Type:     schema.String,
				Desc:     "The technical ID of the item, e.g. 'minecraft:oak_planks'.",
				Required: true,
			},
		}),
	}

	call := func(ctx context.Context, arguments string) (string, error) {
		var args struct {
			ItemID string `json:"item_id"`
		}
		if err := json.Unmarshal([]byte(arguments), &args); err != nil {
			return "", fmt.Errorf("malformed find_recipes arguments: %w", err)
		}
		if args.ItemID == "" {
			return "", fmt.Errorf("find_recipes requires item_id")
		}

		recipes, err := store.FindByResultID(ctx, args.ItemID)
		if err != nil {
			return "", err
		}
		formatted, err := recipe.Format(recipes)
		if err != nil {
			return "", err
		}

		payload, err := json.Marshal(map[string]any{"recipes": formatted})
		if err != nil {
			return "", fmt.Errorf("failed to encode recipes: %w", err)
		}
		return string(payload), nil
	}

	return Tool{Info: info, Call: call}
}
