package config

import (
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"
	"sync"

	"github.com/arnodel/golua/lib"
	rt "github.com/arnodel/golua/runtime"
)

// LuaConfigParser parses Lua configuration files. The script assigns a
// table to threadpaint.config whose sub-tables mirror the TOML sections:
//
//	threadpaint.config = {
//	    brush = { color = '#ff0000', width = 8 },
//	    window = { backend = 'ebiten' },
//	}
type LuaConfigParser struct {
	runtime *rt.Runtime
	cleanup func()
	mu      sync.Mutex
}

// NewLuaConfigParser creates a new LuaConfigParser with a fresh Lua runtime.
func NewLuaConfigParser() (*LuaConfigParser, error) {
	return NewLuaConfigParserWithOutput(io.Discard)
}

// NewLuaConfigParserWithOutput creates a LuaConfigParser whose print output
// goes to stdout.
func NewLuaConfigParserWithOutput(stdout io.Writer) (*LuaConfigParser, error) {
	if stdout == nil {
		stdout = os.Stdout
	}

	runtime := rt.New(stdout)
	cleanup := lib.LoadAll(runtime)

	return &LuaConfigParser{
		runtime: runtime,
		cleanup: cleanup,
	}, nil
}

// Parse executes a Lua configuration and extracts threadpaint.config.
func (p *LuaConfigParser) Parse(content []byte) (*Config, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cleanup == nil {
		return nil, fmt.Errorf("lua parser closed")
	}
	p.initGlobal()

	closure, err := p.runtime.CompileAndLoadLuaChunk(
		"config",
		content,
		rt.TableValue(p.runtime.GlobalEnv()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to compile Lua configuration: %w", err)
	}

	ctx := rt.RuntimeContextDef{
		HardLimits: rt.RuntimeResources{
			Cpu:    10_000_000,
			Memory: 50 * 1024 * 1024,
		},
	}
	p.runtime.PushContext(ctx)
	defer p.runtime.PopContext()

	thread := p.runtime.MainThread()
	if _, err := rt.Call1(thread, rt.FunctionValue(closure)); err != nil {
		return nil, fmt.Errorf("failed to execute Lua configuration: %w", err)
	}

	return p.extractConfig()
}

func (p *LuaConfigParser) initGlobal() {
	root := rt.NewTable()
	root.Set(rt.StringValue("config"), rt.TableValue(rt.NewTable()))
	p.runtime.GlobalEnv().Set(rt.StringValue("threadpaint"), rt.TableValue(root))
}

func (p *LuaConfigParser) extractConfig() (*Config, error) {
	var raw rawConfig

	rootVal := p.runtime.GlobalEnv().Get(rt.StringValue("threadpaint"))
	root, ok := rootVal.TryTable()
	if !ok {
		return nil, fmt.Errorf("threadpaint is not a table")
	}
	cfgVal := root.Get(rt.StringValue("config"))
	if cfgVal == rt.NilValue {
		return raw.config()
	}
	table, ok := cfgVal.TryTable()
	if !ok {
		return nil, fmt.Errorf("threadpaint.config is not a table")
	}

	if err := fillFromTable(table, reflect.ValueOf(&raw).Elem(), ""); err != nil {
		return nil, err
	}
	return raw.config()
}

// fillFromTable copies Lua table entries into the struct dst, keyed by
// the fields' toml tags. Nested structs are read from sub-tables.
func fillFromTable(table *rt.Table, dst reflect.Value, prefix string) error {
	t := dst.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		key := strings.Split(f.Tag.Get("toml"), ",")[0]
		val := table.Get(rt.StringValue(key))
		if val == rt.NilValue {
			continue
		}
		name := prefix + key

		if f.Type.Kind() == reflect.Struct {
			sub, ok := val.TryTable()
			if !ok {
				return fmt.Errorf("invalid %s: expected a table", name)
			}
			if err := fillFromTable(sub, dst.Field(i), name+"."); err != nil {
				return err
			}
			continue
		}

		if err := setField(dst.Field(i), val, name); err != nil {
			return err
		}
	}
	return nil
}

// setField stores val into a *int, *float64 or *string field.
func setField(field reflect.Value, val rt.Value, name string) error {
	switch field.Type().Elem().Kind() {
	case reflect.Int:
		n, ok := getInt(val)
		if !ok {
			return fmt.Errorf("invalid %s: expected a number", name)
		}
		field.Set(reflect.ValueOf(&n))
	case reflect.Float64:
		n, ok := getFloat(val)
		if !ok {
			return fmt.Errorf("invalid %s: expected a number", name)
		}
		field.Set(reflect.ValueOf(&n))
	case reflect.String:
		s, ok := val.TryString()
		if !ok {
			return fmt.Errorf("invalid %s: expected a string", name)
		}
		field.Set(reflect.ValueOf(&s))
	}
	return nil
}

// Close releases resources associated with the parser's Lua runtime.
func (p *LuaConfigParser) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cleanup != nil {
		p.cleanup()
		p.cleanup = nil
	}
	return nil
}

func getInt(val rt.Value) (int, bool) {
	if n, ok := val.TryInt(); ok {
		return int(n), true
	}
	if f, ok := val.TryFloat(); ok {
		return int(f), true
	}
	return 0, false
}

func getFloat(val rt.Value) (float64, bool) {
	if f, ok := val.TryFloat(); ok {
		return f, true
	}
	if n, ok := val.TryInt(); ok {
		return float64(n), true
	}
	return 0, false
}
