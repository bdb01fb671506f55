package crystal

import "os"

// GlobalStore is the persistence hook for global variables. The engine calls
// Load on startup and Save on every global write; the default implementation
// keeps nothing, but the call sites stay so persistence can be added without
// touching the engine.
type GlobalStore interface {
	Load() (map[string]Value, error)
	Save(globals map[string]Value) error
}

type NoopStore struct{}

func (NoopStore) Load() (map[string]Value, error) { return nil, nil }
func (NoopStore) Save(map[string]Value) error     { return nil }

// Context owns the interpreter state: local scope, global scope, function
// table and the tracked working directory. Exactly one Context exists per
// running script or REPL session; every nested construct shares it.
type Context struct {
	locals    map[string]Value
	globals   map[string]Value
	functions map[string][]Statement
	cwd       string
	store     GlobalStore
}

func NewContext() *Context {
	return NewContextWithStore(NoopStore{})
}

func NewContextWithStore(store GlobalStore) *Context {
	ctx := &Context{
		locals:    make(map[string]Value),
		globals:   make(map[string]Value),
		functions: make(map[string][]Statement),
		store:     store,
	}
	if loaded, err := store.Load(); err == nil {
		for name, val := range loaded {
			ctx.globals[name] = val
		}
	}
	if wd, err := os.Getwd(); err == nil {
		ctx.cwd = wd
	} else {
		ctx.cwd = "."
	}
	return ctx
}

// Get checks local scope, then global scope.
func (c *Context) Get(name string) (Value, bool) {
	if val, ok := c.locals[name]; ok {
		return val, true
	}
	if val, ok := c.globals[name]; ok {
		return val, true
	}
	return Value{}, false
}

func (c *Context) SetLocal(name string, value Value) {
	c.locals[name] = value
}

// SetGlobal writes the variable and triggers the best-effort persist hook.
func (c *Context) SetGlobal(name string, value Value) {
	c.globals[name] = value
	_ = c.store.Save(c.globals)
}

// Bindings returns globals merged with locals, locals winning on collision.
// Used by string interpolation.
func (c *Context) Bindings() map[string]Value {
	merged := make(map[string]Value, len(c.globals)+len(c.locals))
	for name, val := range c.globals {
		merged[name] = val
	}
	for name, val := range c.locals {
		merged[name] = val
	}
	return merged
}

func (c *Context) DefineFunction(name string, body []Statement) {
	c.functions[name] = body
}

func (c *Context) LookupFunction(name string) ([]Statement, bool) {
	body, ok := c.functions[name]
	return body, ok
}

func (c *Context) Cwd() string {
	return c.cwd
}

func (c *Context) Chdir(dir string) {
	c.cwd = dir
}

// swapLocals replaces the local scope wholesale; used by the isolated call
// mode.
func (c *Context) swapLocals(locals map[string]Value) map[string]Value {
	old := c.locals
	c.locals = locals
	return old
}
