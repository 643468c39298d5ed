package service

import (
	"context"
	"fmt"
	"sort"

	"desktop-agent/internal/domain/entity"
)

// ActionHandler performs one action and reports a short message plus
// optional result data.
type ActionHandler func(ctx context.Context, req entity.ActionRequest) (string, map[string]any, error)

type HandlerRegistry struct {
	handlers map[entity.ActionType]ActionHandler
}

func NewHandlerRegistry() *HandlerRegistry {
	return &HandlerRegistry{
		handlers: make(map[entity.ActionType]ActionHandler),
	}
}

// Register panics on an invalid or already registered action type.
func (r *HandlerRegistry) Register(t entity.ActionType, h ActionHandler) {
	if !t.Valid() {
		panic(fmt.Sprintf("service: invalid action type %q", t))
	}
	if _, dup := r.handlers[t]; dup {
		panic(fmt.Sprintf("service: handler for %q registered twice", t))
	}
	r.handlers[t] = h
}

func (r *HandlerRegistry) Get(t entity.ActionType) (ActionHandler, bool) {
	h, ok := r.handlers[t]
	return h, ok
}

func (r *HandlerRegistry) Types() []entity.ActionType {
	result := make([]entity.ActionType, 0, len(r.handlers))
	for t := range r.handlers {
		result = append(result, t)
	}
	sort.Slice(result, func(i, j int) bool { return result[i] < result[j] })
	return result
}
