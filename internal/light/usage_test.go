package light

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUsage(t *testing.T) {
	tests := map[string]string{
		"toggle":      "usage: !light toggle",
		"power":       "usage: !light power (on, off)",
		"rgb":         "usage: !light rgb <r> <g> <b>",
		"bright":      "usage: !light bright <brightness>",
		"brightness":  "usage: !light bright <brightness>",
		"temp":        "usage: !light temp <temperature>",
		"temperature": "usage: !light temp <temperature>",
	}
	for keyword, want := range tests {
		t.Run(keyword, func(t *testing.T) {
			assert.Equal(t, want, Usage(DefaultPrefix, mustLookup(t, keyword)))
		})
	}
}

func TestTopLevelUsage(t *testing.T) {
	top := TopLevelUsage(DefaultPrefix, DefaultSchema())
	assert.Equal(t, "usage: !light (toggle, power, rgb, temp, bright)", top)

	for _, def := range DefaultSchema().Definitions() {
		assert.NotEqual(t, Usage(DefaultPrefix, def), top)
	}
	assert.Equal(t, "usage: !lamp (toggle, power, rgb, temp, bright)", TopLevelUsage("!lamp", DefaultSchema()))
}
