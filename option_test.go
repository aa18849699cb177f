package commandant

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOption_FlagSplitting(t *testing.T) {
	tests := []struct {
		name     string
		flags    string
		short    string
		long     string
		required bool
		optional bool
		variadic bool
		negate   bool
	}{
		{"short only", "-p", "-p", "", false, false, false, false},
		{"long only", "--port", "", "--port", false, false, false, false},
		{"short and long", "-p, --port", "-p", "--port", false, false, false, false},
		{"pipe separator", "-p|--port", "-p", "--port", false, false, false, false},
		{"space separator", "-p --port", "-p", "--port", false, false, false, false},
		{"required argument", "-p, --port <number>", "-p", "--port", true, false, false, false},
		{"optional argument", "-c, --cheese [type]", "-c", "--cheese", false, true, false, false},
		{"variadic required", "-l, --list <items...>", "-l", "--list", true, false, true, false},
		{"variadic optional", "--tags [tags...]", "", "--tags", false, true, true, false},
		{"negated", "--no-sauce", "", "--no-sauce", false, false, false, true},
		{"short with required argument", "-x <n>", "-x", "", true, false, false, false},
		{"trailing whitespace", "-p, --port <number> ", "-p", "--port", true, false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			option := NewOption(tt.flags, "")
			assert.Equal(t, tt.short, option.Short())
			assert.Equal(t, tt.long, option.Long())
			assert.Equal(t, tt.required, option.required)
			assert.Equal(t, tt.optional, option.optional)
			assert.Equal(t, tt.variadic, option.variadic)
			assert.Equal(t, tt.negate, option.IsNegated())
		})
	}
}

func TestNewOption_NoFlagPanics(t *testing.T) {
	assert.Panics(t, func() {
		NewOption("<value>", "no flag at all")
	})
}

func TestOption_Names(t *testing.T) {
	tests := []struct {
		flags     string
		name      string
		attribute string
	}{
		{"-p, --port <number>", "port", "port"},
		{"--dry-run", "dry-run", "dryRun"},
		{"--no-color", "no-color", "color"},
		{"-s", "s", "s"},
		{"--use-http2", "use-http2", "useHttp2"},
	}

	for _, tt := range tests {
		option := NewOption(tt.flags, "")
		assert.Equal(t, tt.name, option.Name(), "name for %s", tt.flags)
		assert.Equal(t, tt.attribute, option.AttributeName(), "attribute for %s", tt.flags)
	}
}

func TestOption_Is(t *testing.T) {
	option := NewOption("-p, --port <number>", "")
	assert.True(t, option.Is("-p"))
	assert.True(t, option.Is("--port"))
	assert.False(t, option.Is("--po"))
	assert.False(t, option.Is(""))
}

func TestOption_ConcatValue(t *testing.T) {
	option := NewOption("--list <items...>", "")
	first := option.concatValue("a", option.defaultValue)
	assert.Equal(t, []any{"a"}, first)
	second := option.concatValue("b", first)
	assert.Equal(t, []any{"a", "b"}, second)

	// A previous value equal to the declared default starts a fresh list.
	def := []any{"x"}
	option = NewOption("--list <items...>", "").Default(def)
	assert.Equal(t, []any{"a"}, option.concatValue("a", def))
}

func TestDualOptions_ValueFromOption(t *testing.T) {
	positive := NewOption("--build", "")
	negative := NewOption("--no-build", "")
	dual := NewDualOptions([]*Option{positive, negative})

	// false is the negative option's implicit preset.
	assert.True(t, dual.ValueFromOption(false, negative))
	assert.False(t, dual.ValueFromOption(false, positive))
	assert.True(t, dual.ValueFromOption(true, positive))
	assert.False(t, dual.ValueFromOption(true, negative))

	// With an explicit preset the negative option owns that value instead.
	presetNegative := NewOption("--no-cache", "").Preset("off")
	lone := NewOption("--verbose", "")
	dual = NewDualOptions([]*Option{NewOption("--cache", ""), presetNegative, lone})
	assert.True(t, dual.ValueFromOption("off", presetNegative))
	assert.False(t, dual.ValueFromOption("on", presetNegative))

	// A lone option is always its own source.
	assert.True(t, dual.ValueFromOption(true, lone))
}

func TestOption_RegistrationConflictPanics(t *testing.T) {
	program := NewCommand("prog")
	program.Option("-p, --port <number>", "")
	require.Panics(t, func() {
		program.Option("-p, --police", "clashing short flag")
	})
	require.Panics(t, func() {
		program.Option("--port <number>", "clashing long flag")
	})
}
