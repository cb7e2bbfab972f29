package light

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDef(name string, aliases ...string) Definition {
	return Definition{
		Name:    name,
		Aliases: aliases,
		Method:  name,
		Parse:   NoArgs,
		Params:  func(Args) []any { return []any{} },
	}
}

func TestDefaultSchemaLookup(t *testing.T) {
	s := DefaultSchema()

	tests := []struct {
		keyword string
		name    string
		method  string
		arity   int
	}{
		{"toggle", "toggle", "toggle", 0},
		{"power", "power", "set_power", 1},
		{"rgb", "rgb", "set_rgb", 3},
		{"bright", "bright", "set_bright", 1},
		{"brightness", "bright", "set_bright", 1},
		{"temp", "temp", "set_ct_abx", 1},
		{"temperature", "temp", "set_ct_abx", 1},
	}
	for _, tt := range tests {
		t.Run(tt.keyword, func(t *testing.T) {
			def, ok := s.Lookup(tt.keyword)
			require.True(t, ok)
			assert.Equal(t, tt.name, def.Name)
			assert.Equal(t, tt.method, def.Method)
			assert.Equal(t, tt.arity, def.Arity)
		})
	}

	for _, miss := range []string{"wat", "Toggle", "POWER", "", "set_rgb"} {
		_, ok := s.Lookup(miss)
		assert.False(t, ok, miss)
	}
}

func TestDefaultSchemaKeywordsOrder(t *testing.T) {
	assert.Equal(t, []string{"toggle", "power", "rgb", "temp", "bright"}, DefaultSchema().Keywords())
}

func TestNewSchemaRejectsDuplicateKeys(t *testing.T) {
	_, err := NewSchema(testDef("bright", "brightness"), testDef("brightness"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"brightness"`)

	_, err = NewSchema(testDef("a", "x"), testDef("b", "x"))
	require.Error(t, err)
}

func TestNewSchemaRejectsIncompleteDefinitions(t *testing.T) {
	noParse := testDef("a")
	noParse.Parse = nil

	noMethod := testDef("b")
	noMethod.Method = ""

	negative := testDef("c")
	negative.Arity = -1

	for name, def := range map[string]Definition{
		"empty name":  testDef(""),
		"empty alias": testDef("d", ""),
		"no parse":    noParse,
		"no method":   noMethod,
		"neg arity":   negative,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := NewSchema(def)
			assert.Error(t, err)
		})
	}
}

func TestSchemaIsolatedFromCallerSlices(t *testing.T) {
	aliases := []string{"x"}
	s, err := NewSchema(testDef("a", aliases...))
	require.NoError(t, err)

	aliases[0] = "y"
	def, ok := s.Lookup("x")
	require.True(t, ok)
	assert.Equal(t, []string{"x"}, def.Aliases)

	defs := s.Definitions()
	defs[0] = nil
	assert.NotNil(t, s.Definitions()[0])
}

func TestMustSchemaPanics(t *testing.T) {
	assert.Panics(t, func() { MustSchema(testDef("a"), testDef("a")) })
}
