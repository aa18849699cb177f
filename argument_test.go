package commandant

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewArgument_Declarations(t *testing.T) {
	tests := []struct {
		declaration string
		name        string
		required    bool
		variadic    bool
	}{
		{"<source>", "source", true, false},
		{"[destination]", "destination", false, false},
		{"bare", "bare", true, false},
		{"<files...>", "files", true, true},
		{"[dirs...]", "dirs", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.declaration, func(t *testing.T) {
			arg := NewArgument(tt.declaration, "")
			assert.Equal(t, tt.name, arg.Name())
			assert.Equal(t, tt.required, arg.IsRequired())
			assert.Equal(t, tt.variadic, arg.IsVariadic())
		})
	}
}

func TestHumanReadableArgName(t *testing.T) {
	assert.Equal(t, "<source>", humanReadableArgName(NewArgument("<source>", "")))
	assert.Equal(t, "[dirs...]", humanReadableArgName(NewArgument("[dirs...]", "")))
	assert.Equal(t, "<files...>", humanReadableArgName(NewArgument("<files...>", "")))
}

func TestAddArgument_VariadicMustBeLast(t *testing.T) {
	program := NewCommand("prog")
	program.Argument("<files...>", "")
	require.Panics(t, func() {
		program.Argument("[extra]", "after a variadic argument")
	})
}

func TestAddArgument_DefaultOnRequiredNeedsParser(t *testing.T) {
	program := NewCommand("prog")
	require.Panics(t, func() {
		program.AddArgument(NewArgument("<timeout>", "").Default("60"))
	})

	// With a coercer the default is the reduce seed and is accepted.
	assert.NotPanics(t, func() {
		program.AddArgument(NewArgument("<timeout>", "").Default(60).ArgParser(ParseInt))
	})
}

func TestArgument_Choices(t *testing.T) {
	arg := NewArgument("<drink>", "").Choices("tea", "coffee")
	value, err := arg.parseArg("tea", nil)
	require.NoError(t, err)
	assert.Equal(t, "tea", value)

	_, err = arg.parseArg("milk", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Allowed choices are")
}
