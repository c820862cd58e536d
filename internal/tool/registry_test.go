package tool

import (
	"context"
	"database/sql"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cloudwego/eino/schema"

	"github.com/blockforge/craftchat/internal/recipe"
)

func stubTool(name string, reply string) Tool {
	return Tool{
		Info: &schema.ToolInfo{Name: name, Desc: "stub"},
		Call: func(context.Context, string) (string, error) { return reply, nil },
	}
}

func TestRegistryDispatch(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(stubTool("ping", "pong")); err != nil {
		t.Fatalf("Register err: %v", err)
	}

	out, err := r.Invoke(context.Background(), "ping", "{}")
	if err != nil {
		t.Fatalf("Invoke err: %v", err)
	}
	if out != "pong" {
		t.Fatalf("unexpected reply: %s", out)
	}
}

func TestRegistryUnknownTool(t *testing.T) {
	r := NewRegistry()
	if _, err := r.Invoke(context.Background(), "missing", "{}"); err == nil {
		t.Fatal("expected error for unknown tool")
	}
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(stubTool("ping", "pong")); err != nil {
		t.Fatalf("Register err: %v", err)
	}
	if err := r.Register(stubTool("ping", "pong")); err == nil {
		t.Fatal("expected error for duplicate registration")
	}
}

func TestRegistryInfosKeepRegistrationOrder(t *testing.T) {
	r := NewRegistry()
	for _, name := range []string{"alpha", "beta", "gamma"} {
		if err := r.Register(stubTool(name, name)); err != nil {
			t.Fatalf("Register %s err: %v", name, err)
		}
	}

	infos := r.Infos()
	if len(infos) != 3 {
		t.Fatalf("expected 3 infos, got %d", len(infos))
	}
	for i, want := range []string{"alpha", "beta", "gamma"} {
		if infos[i].Name != want {
			t.Fatalf("infos[%d] = %s, want %s", i, infos[i].Name, want)
		}
	}
}

func seedRecipeStore(t *testing.T) *recipe.Store {
	t.Helper()

	path := filepath.Join(t.TempDir(), "recipes.db")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open seed db: %v", err)
	}
	stmts := []string{
		`CREATE TABLE recipes (
			id INTEGER PRIMARY KEY,
			recipe_type TEXT NOT NULL,
			result_id TEXT NOT NULL,
			result_name TEXT NOT NULL,
			result_count INTEGER NOT NULL,
			ingredients_json TEXT NOT NULL,
			pattern_json TEXT
		)`,
		`INSERT INTO recipes (recipe_type, result_id, result_name, result_count, ingredients_json, pattern_json)
		 VALUES ('crafting_shaped', 'minecraft:stick', 'Stick', 4, '["minecraft:oak_planks","minecraft:oak_planks"]', NULL)`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("seed db: %v", err)
		}
	}
	if err := db.Close(); err != nil {
		t.Fatalf("close seed db: %v", err)
	}

	store, err := recipe.Open(path)
	if err != nil {
		t.Fatalf("recipe.Open err: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestRecipeToolReturnsFormattedRecipes(t *testing.T) {
	store := seedRecipeStore(t)
	r := NewRegistry()
	if err := r.Register(NewRecipeTool(store)); err != nil {
		t.Fatalf("Register err: %v", err)
	}

	out, err := r.Invoke(context.Background(), "find_recipes", `{"item_id":"stick"}`)
	if err != nil {
		t.Fatalf("Invoke err: %v", err)
	}

	var payload struct {
		Recipes []struct {
			Output      string   `json:"output"`
			Ingredients []string `json:"ingredients"`
		} `json:"recipes"`
	}
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("unmarshal tool output: %v", err)
	}
	if len(payload.Recipes) != 1 {
		t.Fatalf("expected 1 recipe, got %d", len(payload.Recipes))
	}
	if payload.Recipes[0].Output != "4x Stick" {
		t.Fatalf("unexpected output: %s", payload.Recipes[0].Output)
	}
}

func TestRecipeToolRejectsMissingItemID(t *testing.T) {
	store := seedRecipeStore(t)
	tool := NewRecipeTool(store)

	if _, err := tool.Call(context.Background(), `{}`); err == nil {
		t.Fatal("expected error for missing item_id")
	}
	if _, err := tool.Call(context.Background(), `not json`); err == nil || !strings.Contains(err.Error(), "malformed") {
		t.Fatalf("expected malformed arguments error, got %v", err)
	}
}
