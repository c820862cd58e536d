package recipe

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"

	recipestore "github.com/blockforge/craftchat/internal/recipe"
)

func setupRouter(store *recipestore.Store) *chi.Mux {
	r := chi.NewRouter()
	New(store).RegisterRoutes(r)
	return r
}

func seedStore(t *testing.T) *recipestore.Store {
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
		 VALUES ('crafting_shaped', 'minecraft:torch', 'Torch', 4, '["minecraft:coal","minecraft:stick"]', NULL)`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("seed db: %v", err)
		}
	}
	if err := db.Close(); err != nil {
		t.Fatalf("close seed db: %v", err)
	}

	store, err := recipestore.Open(path)
	if err != nil {
		t.Fatalf("recipe.Open err: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestFindRecipesWithoutStore(t *testing.T) {
	r := setupRouter(nil)

	req := httptest.NewRequest(http.MethodGet, "/recipes?item=torch", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", resp.Code)
	}
}

func TestFindRecipesMissingItemParam(t *testing.T) {
	r := setupRouter(seedStore(t))

	req := httptest.NewRequest(http.MethodGet, "/recipes", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestFindRecipesByItem(t *testing.T) {
	r := setupRouter(seedStore(t))

	req := httptest.NewRequest(http.MethodGet, "/recipes?item=torch", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var body struct {
		Item    string `json:"item"`
		Recipes []struct {
			Output string `json:"output"`
		} `json:"recipes"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if body.Item != "minecraft:torch" {
		t.Fatalf("unexpected item: %s", body.Item)
	}
	if len(body.Recipes) != 1 || body.Recipes[0].Output != "4x Torch" {
		t.Fatalf("unexpected recipes: %+v", body.Recipes)
	}
}
