package config

import (
	"testing"
)

// FuzzTOMLParser checks that arbitrary TOML input never panics.
func FuzzTOMLParser(f *testing.F) {
	f.Add([]byte(tomlSample))
	f.Add([]byte("[window]\nwidth = -1\nheight = 99999999999999999999\n"))
	f.Add([]byte("[brush]\ncolor = \"rgba(1,2,3,\"\n"))
	f.Add([]byte(""))
	f.Add([]byte("[[brush]]\n"))
	f.Add([]byte("render = 5"))

	f.Fuzz(func(t *testing.T, data []byte) {
		cfg, err := NewTOMLConfigParser().Parse(data)
		if err == nil && cfg == nil {
			t.Error("Parse returned nil config with nil error")
		}
	})
}

// FuzzLuaParser checks that arbitrary Lua input never panics.
func FuzzLuaParser(f *testing.F) {
	f.Add([]byte(luaSample))
	f.Add([]byte("threadpaint.config = { canvas = { width = 1e300 } }"))
	f.Add([]byte("threadpaint.config = { brush = { cap = 1 } }"))
	f.Add([]byte("threadpaint = 3"))
	f.Add([]byte(""))

	p, err := NewLuaConfigParser()
	if err != nil {
		f.Fatal(err)
	}
	defer p.Close()

	f.Fuzz(func(t *testing.T, data []byte) {
		cfg, err := p.Parse(data)
		if err == nil && cfg == nil {
			t.Error("Parse returned nil config with nil error")
		}
	})
}
