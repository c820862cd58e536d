package tool

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/schema"
)

// Func executes a tool call with the raw JSON arguments the model produced.
type Func func(ctx context.Context, arguments string) (string, error)

// Tool pairs the declaration sent to the model with its implementation.
type Tool struct {
	Info *schema.ToolInfo
	Call Func
}

// Registry holds every tool exposed to the chat model and dispatches calls
// back to the matching implementation.
type Registry struct {
	order []string
	tools map[string]Tool
}

// NewRegistry returns an empty tool registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]Tool)}
}

// Register adds a tool, rejecting duplicates and incomplete entries.
func (r *Registry) Register(t Tool) error {
	if t.Info == nil || t.Info.Name == "" {
		return fmt.Errorf("tool declaration requires a name")
	}
	if t.Call == nil {
		return fmt.Errorf("tool %s has no implementation", t.Info.Name)
	}
	if _, exists := r.tools[t.Info.Name]; exists {
		return fmt.Errorf("tool %s already registered", t.Info.Name)
	}

	r.order = append(r.order, t.Info.Name)
	r.tools[t.Info.Name] = t
	return nil
}

// Infos returns the declarations in registration order, for model binding.
func (r *Registry) Infos() []*schema.ToolInfo {
	infos := make([]*schema.ToolInfo, 0, len(r.order))
	for _, name := range r.order {
		infos = append(infos, r.tools[name].Info)
	}
	return infos
}

// Len reports how many tools are registered.
func (r *Registry) Len() int {
	return len(r.tools)
}

// Invoke runs the named tool with the model-provided arguments.
func (r *Registry) Invoke(ctx context.Context, name, arguments string) (string, error) {
	t, ok := r.tools[name]
	if !ok {
		return "", fmt.Errorf("unknown tool: %s", name)
	}
	return t.Call(ctx, arguments)
}
