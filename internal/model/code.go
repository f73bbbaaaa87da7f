// Package model holds compiled model code, resolves its entry point and
// scopes the script search path while a model runs.
package model

import (
	"context"
	"errors"
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
)

// MainSymbol is the entry point every model exposes.
const MainSymbol = "main"

var ErrSymbolNotFound = errors.New("symbol not found")

// Bindings are the relation callables handed to a model's main.
type Bindings struct {
	ReadDF  func(ctx context.Context, relation string) (arrow.Table, error)
	WriteDF func(ctx context.Context, relation string, data arrow.Table) error
	// Script resolves a helper script on the search path of the current run.
	Script func(name string) (string, error)
}

type MainFunc func(ctx context.Context, b Bindings) (any, error)

// Code is a compiled model: a name and the symbols it defines.
type Code struct {
	Name    string
	Symbols map[string]any
}

func NewCode(name string, main MainFunc) Code {
	return Code{Name: name, Symbols: map[string]any{MainSymbol: main}}
}

func (c Code) RetrieveSymbol(name string) (any, error) {
	sym, ok := c.Symbols[name]
	if !ok || sym == nil {
		return nil, fmt.Errorf("%w: %s in %s", ErrSymbolNotFound, name, c.Name)
	}
	return sym, nil
}

// RetrieveMain returns the main symbol as a callable.
func (c Code) RetrieveMain() (MainFunc, error) {
	sym, err := c.RetrieveSymbol(MainSymbol)
	if err != nil {
		return nil, err
	}
	switch fn := sym.(type) {
	case MainFunc:
		return fn, nil
	case func(context.Context, Bindings) (any, error):
		return fn, nil
	default:
		return nil, fmt.Errorf("%s in %s is %T, not a main function", MainSymbol, c.Name, sym)
	}
}
