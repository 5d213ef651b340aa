package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/google/jsonschema-go/jsonschema"
)

const DiscoverMethod = "rpc.discover"

type HandlerFunc func(ctx context.Context, params json.RawMessage) (any, error)

type Method struct {
	Name        string
	Description string
	Schema      *jsonschema.Schema
	Handler     HandlerFunc

	resolved *jsonschema.Resolved
}

type Registry struct {
	mu      sync.RWMutex
	methods map[string]*Method
}

func NewRegistry() *Registry {
	r := &Registry{methods: make(map[string]*Method)}
	r.methods[DiscoverMethod] = &Method{
		Name:        DiscoverMethod,
		Description: "List the registered methods and their params schemas.",
		Handler: func(ctx context.Context, _ json.RawMessage) (any, error) {
			return r.describe(), nil
		},
	}
	return r
}

func (r *Registry) Register(m Method) error {
	if m.Name == "" {
		return errors.New("method name is empty")
	}
	if m.Handler == nil {
		return fmt.Errorf("method %q has no handler", m.Name)
	}

	if m.Schema != nil && m.resolved == nil {
		resolved, err := m.Schema.Resolve(nil)
		if err != nil {
			return fmt.Errorf("resolve schema for %q: %w", m.Name, err)
		}
		m.resolved = resolved
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.methods[m.Name]; exists {
		return fmt.Errorf("method %q already registered", m.Name)
	}
	r.methods[m.Name] = &m
	return nil
}

func (r *Registry) Lookup(name string) (*Method, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.methods[name]
	return m, ok
}

func (r *Registry) List() []Method {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]Method, 0, len(r.methods))
	for _, m := range r.methods {
		list = append(list, *m)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list
}

type MethodInfo struct {
	Name        string             `json:"name"`
	Description string             `json:"description,omitempty"`
	Params      *jsonschema.Schema `json:"params,omitempty"`
}

type DiscoverResult struct {
	Methods []MethodInfo `json:"methods"`
}

func (r *Registry) describe() DiscoverResult {
	methods := r.List()
	res := DiscoverResult{Methods: make([]MethodInfo, 0, len(methods))}
	for _, m := range methods {
		res.Methods = append(res.Methods, MethodInfo{
			Name:        m.Name,
			Description: m.Description,
			Params:      m.Schema,
		})
	}
	return res
}

// Register infers the params schema from P and validates P's binding tags
// before fn runs.
func Register[P, R any](reg *Registry, name, description string, fn func(context.Context, P) (R, error)) error {
	schema, err := jsonschema.For[P](nil)
	if err != nil {
		return fmt.Errorf("infer schema for %q: %w", name, err)
	}

	handler := func(ctx context.Context, raw json.RawMessage) (any, error) {
		var params P
		if err := json.Unmarshal(raw, &params); err != nil {
			return nil, InvalidParams(err.Error())
		}

		if err := binding.Validator.ValidateStruct(&params); err != nil {
			return nil, InvalidParams(err.Error())
		}

		return fn(ctx, params)
	}

	return reg.Register(Method{
		Name:        name,
		Description: description,
		Schema:      schema,
		Handler:     handler,
	})
}

func MustRegister[P, R any](reg *Registry, name, description string, fn func(context.Context, P) (R, error)) {
	if err := Register(reg, name, description, fn); err != nil {
		panic(err)
	}
}
