package commandant

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mlorenz/commandant/env"
	"github.com/mlorenz/commandant/errs"
)

func TestResolver_EnvPrecedence(t *testing.T) {
	build := func(resolver env.Resolver) *Command {
		program, _ := testProgram("prog")
		program.SetEnvResolver(resolver)
		program.AddOption(NewOption("-p, --port <n>", "").Env("PORT").Default("80"))
		program.Action(func(cmd *Command, args []any) error { return nil })
		return program
	}

	// Default only.
	program := build(env.MapResolver{})
	require.NoError(t, program.Parse([]string{"node", "script"}))
	assert.Equal(t, "80", program.GetOptionValue("port"))
	assert.Equal(t, SourceDefault, program.GetOptionValueSource("port"))

	// Env overrides default.
	program = build(env.MapResolver{"PORT": "9000"})
	require.NoError(t, program.Parse([]string{"node", "script"}))
	assert.Equal(t, "9000", program.GetOptionValue("port"))
	assert.Equal(t, SourceEnv, program.GetOptionValueSource("port"))

	// CLI beats env.
	program = build(env.MapResolver{"PORT": "9000"})
	require.NoError(t, program.Parse([]string{"node", "script", "--port", "1234"}))
	assert.Equal(t, "1234", program.GetOptionValue("port"))
	assert.Equal(t, SourceCLI, program.GetOptionValueSource("port"))
}

func TestResolver_EnvBooleanOption(t *testing.T) {
	program, _ := testProgram("prog")
	program.SetEnvResolver(env.MapResolver{"VERBOSE": ""})
	program.AddOption(NewOption("--verbose", "").Env("VERBOSE"))
	program.Action(func(cmd *Command, args []any) error { return nil })

	require.NoError(t, program.Parse([]string{"node", "script"}))
	assert.Equal(t, true, program.GetOptionValue("verbose"))
	assert.Equal(t, SourceEnv, program.GetOptionValueSource("verbose"))
}

func TestResolver_EnvCoercionFailure(t *testing.T) {
	program, capture := testProgram("prog")
	program.SetEnvResolver(env.MapResolver{"PORT": "nope"})
	program.AddOption(NewOption("--port <n>", "").Env("PORT").ArgParser(ParseInt))
	program.Action(func(cmd *Command, args []any) error { return nil })

	err := program.Parse([]string{"node", "script"})
	requireErrCode(t, err, errs.CodeInvalidArgument)
	assert.Contains(t, capture.err.String(), "value 'nope' from env 'PORT' is invalid")
}

func TestResolver_CLICoercionFailure(t *testing.T) {
	program, capture := testProgram("prog")
	program.Option("-p, --port <n>", "", ParseInt)
	program.Action(func(cmd *Command, args []any) error { return nil })

	err := program.Parse([]string{"node", "script", "--port", "nope"})
	requireErrCode(t, err, errs.CodeInvalidArgument)
	assert.Contains(t, capture.err.String(), "argument 'nope' is invalid")
}

func TestResolver_PresetForOptionalWithoutValue(t *testing.T) {
	program, _ := testProgram("prog")
	program.AddOption(NewOption("--donate [amount]", "").Preset("20"))
	program.Action(func(cmd *Command, args []any) error { return nil })

	require.NoError(t, program.Parse([]string{"node", "script", "--donate"}))
	assert.Equal(t, "20", program.GetOptionValue("donate"))

	require.NoError(t, program.Parse([]string{"node", "script", "--donate", "50"}))
	assert.Equal(t, "50", program.GetOptionValue("donate"))
}

func TestResolver_OptionalWithoutValueOrPresetIsTrue(t *testing.T) {
	program, _ := testProgram("prog")
	program.Option("--cheese [type]", "")
	program.Action(func(cmd *Command, args []any) error { return nil })

	require.NoError(t, program.Parse([]string{"node", "script", "--cheese"}))
	assert.Equal(t, true, program.GetOptionValue("cheese"))
}

func TestResolver_VariadicAccumulatesInOrder(t *testing.T) {
	program, _ := testProgram("prog")
	program.Option("--tag <tags...>", "")
	program.Action(func(cmd *Command, args []any) error { return nil })

	require.NoError(t, program.Parse([]string{"node", "script", "--tag", "a", "b", "--tag", "c"}))
	assert.Equal(t, []any{"a", "b", "c"}, program.GetOptionValue("tag"))
}

func TestResolver_VariadicWithCoercer(t *testing.T) {
	program, _ := testProgram("prog")
	program.AddOption(NewOption("--num <values...>", "").ArgParser(func(value string, previous any) (any, error) {
		parsed, err := ParseInt(value, previous)
		if err != nil {
			return nil, err
		}
		prev, _ := previous.([]any)
		return append(prev, parsed), nil
	}))
	program.Action(func(cmd *Command, args []any) error { return nil })

	require.NoError(t, program.Parse([]string{"node", "script", "--num", "1", "2"}))
	assert.Equal(t, []any{1, 2}, program.GetOptionValue("num"))
}

func TestResolver_ChoicesRejectOutsiders(t *testing.T) {
	program, capture := testProgram("prog")
	program.AddOption(NewOption("--drink <type>", "").Choices("tea", "coffee"))
	program.Action(func(cmd *Command, args []any) error { return nil })

	err := program.Parse([]string{"node", "script", "--drink", "milk"})
	requireErrCode(t, err, errs.CodeInvalidArgument)
	assert.Contains(t, capture.err.String(), "Allowed choices are \"tea\", \"coffee\"")
}

func TestResolver_ImpliedValues(t *testing.T) {
	program, _ := testProgram("prog")
	program.AddOption(NewOption("--quiet", "").Implies(map[string]any{"logLevel": "off"}))
	program.Option("--log-level <level>", "")
	program.Action(func(cmd *Command, args []any) error { return nil })

	require.NoError(t, program.Parse([]string{"node", "script", "--quiet"}))
	assert.Equal(t, "off", program.GetOptionValue("logLevel"))
	assert.Equal(t, SourceImplied, program.GetOptionValueSource("logLevel"))

	// A CLI value is stronger than an implied one.
	program2, _ := testProgram("prog")
	program2.AddOption(NewOption("--quiet", "").Implies(map[string]any{"logLevel": "off"}))
	program2.Option("--log-level <level>", "")
	program2.Action(func(cmd *Command, args []any) error { return nil })

	require.NoError(t, program2.Parse([]string{"node", "script", "--quiet", "--log-level", "debug"}))
	assert.Equal(t, "debug", program2.GetOptionValue("logLevel"))
	assert.Equal(t, SourceCLI, program2.GetOptionValueSource("logLevel"))
}

func TestResolver_ImpliedOnlyFromProducingHalfOfDual(t *testing.T) {
	build := func() *Command {
		program, _ := testProgram("prog")
		program.AddOption(NewOption("--build", "").Implies(map[string]any{"test": true}))
		program.Option("--no-build", "")
		program.Option("--test", "")
		program.Option("--no-test", "")
		program.Action(func(cmd *Command, args []any) error { return nil })
		return program
	}

	program := build()
	require.NoError(t, program.Parse([]string{"node", "script", "--build"}))
	assert.Equal(t, true, program.GetOptionValue("test"))
	assert.Equal(t, SourceImplied, program.GetOptionValueSource("test"))

	// The value came from --no-build, so --build implies nothing.
	program = build()
	require.NoError(t, program.Parse([]string{"node", "script", "--no-build"}))
	assert.Nil(t, program.GetOptionValue("test"))
}

func TestResolver_DualOptionSharesAttribute(t *testing.T) {
	program, _ := testProgram("prog")
	program.Option("--build", "")
	program.Option("--no-build", "")
	program.Action(func(cmd *Command, args []any) error { return nil })

	require.NoError(t, program.Parse([]string{"node", "script", "--no-build"}))
	assert.Equal(t, false, program.GetOptionValue("build"))

	require.NoError(t, program.Parse([]string{"node", "script", "--build"}))
	assert.Equal(t, true, program.GetOptionValue("build"))
}

func TestResolver_DefensiveEmptyStringFallback(t *testing.T) {
	// Not reachable through the token parser, which raises
	// optionMissingArgument first; exercised directly.
	program, _ := testProgram("prog")
	option := NewOption("--port <n>", "")
	program.AddOption(option)

	require.NoError(t, program.emitOption(option, nil, SourceCLI))
	assert.Equal(t, "", program.GetOptionValue("port"))
}

func TestResolver_SourcesAlwaysValid(t *testing.T) {
	program, _ := testProgram("prog")
	program.SetEnvResolver(env.MapResolver{"B": "x"})
	program.Option("-a <v>", "", "defA")
	program.AddOption(NewOption("-b <v>", "").Env("B"))
	program.AddOption(NewOption("-c", "").Implies(map[string]any{"a": "impliedA"}))
	program.Action(func(cmd *Command, args []any) error { return nil })

	require.NoError(t, program.Parse([]string{"node", "script", "-c"}))
	valid := map[ValueSource]bool{
		SourceDefault: true, SourceConfig: true, SourceEnv: true,
		SourceCLI: true, SourceImplied: true,
	}
	for key, source := range program.optionValueSources {
		assert.True(t, valid[source], "attribute %s has source %q", key, source)
	}
}
