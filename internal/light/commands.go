package light

// Bulb limits.
const (
	minChannel     = 0
	maxChannel     = 255
	minBrightness  = 1
	maxBrightness  = 100
	minColorTemp   = 1700
	maxColorTemp   = 6500
	tempEffect     = "smooth"
	tempDurationMs = 500
)

var defaultSchema = MustSchema(
	Definition{
		Name:   "toggle",
		Arity:  0,
		Method: "toggle",
		Parse:  NoArgs,
		Params: func(Args) []any { return []any{} },
	},
	Definition{
		Name:   "power",
		Arity:  1,
		Usage:  "(on, off)",
		Method: "set_power",
		Parse:  OneOf("on", "off"),
		Params: func(a Args) []any { return []any{a[0]} },
	},
	Definition{
		Name:   "rgb",
		Arity:  3,
		Usage:  "<r> <g> <b>",
		Method: "set_rgb",
		Parse:  ClampedInts(minChannel, maxChannel),
		Params: func(a Args) []any {
			return []any{EncodeRGB(a[0].(int), a[1].(int), a[2].(int))}
		},
	},
	Definition{
		Name:    "temp",
		Aliases: []string{"temperature"},
		Arity:   1,
		Usage:   "<temperature>",
		Method:  "set_ct_abx",
		Parse:   ClampedInts(minColorTemp, maxColorTemp),
		Params:  func(a Args) []any { return []any{a[0], tempEffect, tempDurationMs} },
	},
	Definition{
		Name:    "bright",
		Aliases: []string{"brightness"},
		Arity:   1,
		Usage:   "<brightness>",
		Method:  "set_bright",
		Parse:   ClampedInts(minBrightness, maxBrightness),
		Params:  func(a Args) []any { return []any{a[0]} },
	},
)

// DefaultSchema returns the bulb command table. It is built once at package
// init and never modified.
func DefaultSchema() *Schema {
	return defaultSchema
}
