package setting

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCastValue(t *testing.T) {
	tests := []struct {
		name  string
		kind  Kind
		input any
		want  any
	}{
		{name: "bool passthrough", kind: KindBoolean, input: true, want: true},
		{name: "bool from string", kind: KindBoolean, input: "true", want: true},
		{name: "bool from yes", kind: KindBoolean, input: "yes", want: true},
		{name: "bool from off", kind: KindBoolean, input: "off", want: false},
		{name: "bool from empty string", kind: KindBoolean, input: "", want: false},
		{name: "bool from int", kind: KindBoolean, input: 1, want: true},
		{name: "int passthrough", kind: KindInteger, input: 42, want: 42},
		{name: "int from string", kind: KindInteger, input: " 42 ", want: 42},
		{name: "int from whole float", kind: KindInteger, input: float64(7), want: 7},
		{name: "string passthrough", kind: KindString, input: "hello", want: "hello"},
		{name: "string from int", kind: KindString, input: 5, want: "5"},
		{name: "string from bool", kind: KindString, input: false, want: "false"},
		{
			name:  "object from yaml string",
			kind:  KindObject,
			input: `{x: 1, y: two}`,
			want:  map[string]any{"x": 1, "y": "two"},
		},
		{
			name:  "object passthrough",
			kind:  KindObject,
			input: map[string]any{"x": 1},
			want:  map[string]any{"x": 1},
		},
		{
			name:  "object from interface-keyed map",
			kind:  KindObject,
			input: map[any]any{"x": 1},
			want:  map[string]any{"x": 1},
		},
		{
			name:  "object from typed map",
			kind:  KindObject,
			input: map[string]string{"x": "1"},
			want:  map[string]any{"x": "1"},
		},
		{
			name:  "array from yaml string",
			kind:  KindArray,
			input: `[a, b]`,
			want:  []any{"a", "b"},
		},
		{
			name:  "array from typed slice",
			kind:  KindArray,
			input: []string{"a", "b"},
			want:  []any{"a", "b"},
		},
		{name: "untyped passthrough", kind: "", input: map[string]any{"k": "v"}, want: map[string]any{"k": "v"}},
		{name: "nil is nil", kind: KindInteger, input: nil, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def := &Definition{Name: "test", Kind: tt.kind}
			got, err := def.CastValue(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// Casting must be idempotent: casting an already-cast value returns the same
// value again.
func TestCastValueIdempotent(t *testing.T) {
	tests := []struct {
		kind  Kind
		input any
	}{
		{KindBoolean, "true"},
		{KindInteger, "42"},
		{KindString, 7},
		{KindObject, `{x: 1}`},
		{KindArray, `[1, 2]`},
	}

	for _, tt := range tests {
		def := &Definition{Name: "test", Kind: tt.kind}

		once, err := def.CastValue(tt.input)
		require.NoError(t, err)
		twice, err := def.CastValue(once)
		require.NoError(t, err)

		assert.Equal(t, once, twice, "kind %s: second cast must be a no-op", tt.kind)
	}
}

func TestCastValueErrors(t *testing.T) {
	tests := []struct {
		name  string
		kind  Kind
		input any
	}{
		{name: "not a bool", kind: KindBoolean, input: "maybe"},
		{name: "not an int", kind: KindInteger, input: "seven"},
		{name: "fractional float to int", kind: KindInteger, input: 1.5},
		{name: "scalar to object", kind: KindObject, input: "just a string"},
		{name: "scalar to array", kind: KindArray, input: "not a list"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def := &Definition{Name: "test", Kind: tt.kind}
			_, err := def.CastValue(tt.input)
			assert.Error(t, err)
		})
	}
}

func TestStringifyValue(t *testing.T) {
	def := &Definition{Name: "test"}

	tests := []struct {
		name  string
		input any
		want  string
	}{
		{name: "nil", input: nil, want: ""},
		{name: "string", input: "v", want: "v"},
		{name: "bool", input: true, want: "true"},
		{name: "int", input: 42, want: "42"},
		{name: "float", input: 1.25, want: "1.25"},
		{name: "object", input: map[string]any{"x": 1}, want: `{"x":1}`},
		{name: "array", input: []any{"a", 1}, want: `["a",1]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := def.StringifyValue(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
