package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("LIGHT_PREFIX", "!light")
	t.Setenv("LOG_LEVEL", "error")

	var out bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestDispatchDryRun(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{
			name: "rgb with negative argument",
			args: []string{"dispatch", "--dry-run", "!light", "rgb", "999", "-5", "10"},
			want: "outcome: dispatched\n{\"method\":\"set_rgb\",\"params\":[16711690]}\n",
		},
		{
			name: "temperature alias",
			args: []string{"dispatch", "--dry-run", "!light", "temperature", "1000"},
			want: "outcome: dispatched\n{\"method\":\"set_ct_abx\",\"params\":[1700,\"smooth\",500]}\n",
		},
		{
			name: "unknown keyword",
			args: []string{"dispatch", "--dry-run", "!light", "blink"},
			want: "outcome: unknown_command\nusage: !light (toggle, power, rgb, temp, bright)\n",
		},
		{
			name: "invalid arguments",
			args: []string{"dispatch", "--dry-run", "!light", "power", "maybe"},
			want: "outcome: invalid_arguments\nusage: !light power (on, off)\n",
		},
		{
			name: "not a command",
			args: []string{"dispatch", "--dry-run", "hello", "there"},
			want: "outcome: ignored\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, tt.args...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestDispatchLiveNeedsHost(t *testing.T) {
	t.Setenv("DEVICE_HOST", "")
	_, err := run(t, "dispatch", "!light", "toggle")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DEVICE_HOST")
}

func TestUsage(t *testing.T) {
	out, err := run(t, "usage")
	require.NoError(t, err)
	assert.Equal(t, "usage: !light (toggle, power, rgb, temp, bright)\n", out)

	out, err = run(t, "usage", "brightness")
	require.NoError(t, err)
	assert.Equal(t, "usage: !light bright <brightness>\n", out)

	_, err = run(t, "usage", "blink")
	require.Error(t, err)
}

func TestCommands(t *testing.T) {
	out, err := run(t, "commands")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 6)
	assert.True(t, strings.HasPrefix(lines[0], "KEYWORD"))
	assert.True(t, strings.HasPrefix(lines[1], "toggle"))
	assert.Contains(t, lines[4], "temperature")
	assert.Contains(t, lines[4], "set_ct_abx")
}
