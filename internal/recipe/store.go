package recipe

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"
)

// Recipe mirrors one row of the recipes table.
type Recipe struct {
	ID              int64
	Type            string
	ResultID        string
	ResultName      string
	ResultCount     int
	IngredientsJSON string
	PatternJSON     sql.NullString
}

// Formatted is the tool-facing shape of a recipe, safe to hand to the model.
type Formatted struct {
	Type        string          `json:"type"`
	Output      string          `json:"output"`
	Ingredients []string        `json:"ingredients"`
	Pattern     json.RawMessage `json:"pattern,omitempty"`
}

// Store is a read-only repository over the crafting recipe database.
type Store struct {
	db *sql.DB
}

// Open connects to the SQLite recipe database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open recipe database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to reach recipe database %s: %w", path, err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// NormalizeItemID prefixes bare item names with the minecraft namespace.
func NormalizeItemID(itemID string) string {
	itemID = strings.TrimSpace(itemID)
	if itemID == "" {
		return itemID
	}
	if !strings.Contains(itemID, ":") {
		return "minecraft:" + itemID
	}
	return itemID
}

// FindByResultID returns all recipes producing the given item ID.
func (s *Store) FindByResultID(ctx context.Context, itemID string) ([]Recipe, error) {
	return s.query(ctx, "SELECT id, recipe_type, result_id, result_name, result_count, ingredients_json, pattern_json FROM recipes WHERE result_id = ?", NormalizeItemID(itemID))
}

// FindByName returns recipes whose result name contains the given substring.
func (s *Store) FindByName(ctx context.Context, name string) ([]Recipe, error) {
	return s.query(ctx, "SELECT id, recipe_type, result_id, result_name, result_count, ingredients_json, pattern_json FROM recipes WHERE result_name LIKE ?", "%"+name+"%")
}

// FindByIngredient returns recipes that use the exact ingredient ID,
// matched against the JSON ingredient list with json_each.
func (s *Store) FindByIngredient(ctx context.Context, ingredientID string) ([]Recipe, error) {
	query := `
		SELECT DISTINCT r.id, r.recipe_type, r.result_id, r.result_name, r.result_count, r.ingredients_json, r.pattern_json
		FROM recipes r, json_each(r.ingredients_json) j
		WHERE j.value = ?`
	return s.query(ctx, query, NormalizeItemID(ingredientID))
}

func (s *Store) query(ctx context.Context, query string, args ...any) ([]Recipe, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("recipe query failed: %w", err)
	}
	defer rows.Close()

	var recipes []Recipe
	for rows.Next() {
		var r Recipe
		if err := rows.Scan(&r.ID, &r.Type, &r.ResultID, &r.ResultName, &r.ResultCount, &r.IngredientsJSON, &r.PatternJSON); err != nil {
			return nil, fmt.Errorf("recipe scan failed: %w", err)
		}
		recipes = append(recipes, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("recipe iteration failed: %w", err)
	}
	return recipes, nil
}

// Format converts raw rows into the tool-facing representation.
func Format(recipes []Recipe) ([]Formatted, error) {
	formatted := make([]Formatted, 0, len(recipes))
	for _, r := range recipes {
		var ingredients []string
		if r.IngredientsJSON != "" {
			if err := json.Unmarshal([]byte(r.IngredientsJSON), &ingredients); err != nil {
				return nil, fmt.Errorf("malformed ingredients for recipe %d: %w", r.ID, err)
			}
		}

		f := Formatted{
			Type:        r.Type,
			Output:      fmt.Sprintf("%dx %s", r.ResultCount, r.ResultName),
			Ingredients: ingredients,
		}
		if r.PatternJSON.Valid && r.PatternJSON.String != "" {
			f.Pattern = json.RawMessage(r.PatternJSON.String)
		}
		formatted = append(formatted, f)
	}
	return formatted, nil
}
