package commandant

import (
	"os"
	"strings"

	"github.com/mlorenz/commandant/env"
	"github.com/mlorenz/commandant/errs"
)

func optionalBool(values []bool) bool {
	if len(values) == 0 {
		return true
	}
	return values[0]
}

// AllowUnknownOption lets option-shaped tokens the command does not
// recognize flow into the operands instead of failing the parse.
func (c *Command) AllowUnknownOption(allow ...bool) *Command {
	c.allowUnknownOption = optionalBool(allow)
	return c
}

// AllowExcessArguments suppresses the error for operands beyond the
// declared positional arguments. On by default.
func (c *Command) AllowExcessArguments(allow ...bool) *Command {
	c.allowExcessArguments = optionalBool(allow)
	return c
}

// CombineFlagAndOptionalValue controls whether -fb is read as -f with value
// b when -f takes an optional argument. On by default; when off, -fb is
// read as the boolean -f followed by -b.
func (c *Command) CombineFlagAndOptionalValue(combine ...bool) *Command {
	c.combineFlagAndOptionalValue = optionalBool(combine)
	return c
}

// EnablePositionalOptions requires this command's options to appear before
// the subcommand name, letting subcommands reuse option spellings.
func (c *Command) EnablePositionalOptions(positional ...bool) *Command {
	c.enablePositionalOptions = optionalBool(positional)
	return c
}

// PassThroughOptions delivers every token from the first operand on
// verbatim to the action instead of parsing them as options. Using it on a
// subcommand whose parent has not enabled positional options is an
// authoring error.
func (c *Command) PassThroughOptions(passThrough ...bool) *Command {
	c.passThroughOptions = optionalBool(passThrough)
	c.checkForBrokenPassThrough()
	return c
}

// StoreOptionsAsProperties is a compatibility toggle; values are always
// read through the option store. Changing it after options were registered
// or values stored is an authoring error.
func (c *Command) StoreOptionsAsProperties(store ...bool) *Command {
	if c.acceptedOptions.Len() > 0 {
		panic("commandant: call StoreOptionsAsProperties before adding options")
	}
	if len(c.optionValues) > 0 {
		panic("commandant: call StoreOptionsAsProperties before setting option values")
	}
	c.storeOptionsAsProperties = optionalBool(store)
	return c
}

// Hide removes the command from help output.
func (c *Command) Hide() *Command {
	c.hidden = true
	return c
}

// ShowHelpAfterError appends the full help to the error output of a failed
// parse.
func (c *Command) ShowHelpAfterError(show ...bool) *Command {
	c.showHelpAfterError = optionalBool(show)
	c.helpAfterErrorMessage = ""
	return c
}

// ShowHelpAfterErrorText appends the given message instead of the full
// help.
func (c *Command) ShowHelpAfterErrorText(message string) *Command {
	c.showHelpAfterError = false
	c.helpAfterErrorMessage = message
	return c
}

// ShowSuggestionAfterError controls the "did you mean" suffix on unknown
// option and command errors. On by default.
func (c *Command) ShowSuggestionAfterError(show ...bool) *Command {
	c.showSuggestionAfterError = optionalBool(show)
	return c
}

// SetSuggestFunc replaces the similarity function used for suggestions.
func (c *Command) SetSuggestFunc(fn SuggestFunc) *Command {
	c.suggestFunc = fn
	return c
}

// ExitOverride replaces process exit with returning the structured error
// from Parse. With no argument the error is propagated as-is.
func (c *Command) ExitOverride(fn ...ExitFunc) *Command {
	if len(fn) > 0 && fn[0] != nil {
		c.exitCallback = fn[0]
	} else {
		c.exitCallback = func(err *errs.Error) error { return err }
	}
	return c
}

// ConfigureOutput overrides the non-nil fields of the output configuration.
// A subcommand inherits its parent's configuration until it overrides one
// field, at which point it gets its own copy.
func (c *Command) ConfigureOutput(cfg OutputConfig) *Command {
	merged := c.outputConfig().clone()
	if cfg.WriteOut != nil {
		merged.WriteOut = cfg.WriteOut
	}
	if cfg.WriteErr != nil {
		merged.WriteErr = cfg.WriteErr
	}
	if cfg.GetOutHelpWidth != nil {
		merged.GetOutHelpWidth = cfg.GetOutHelpWidth
	}
	if cfg.GetErrHelpWidth != nil {
		merged.GetErrHelpWidth = cfg.GetErrHelpWidth
	}
	if cfg.OutputError != nil {
		merged.OutputError = cfg.OutputError
	}
	c.outputCfg = merged
	return c
}

// SetEnvResolver replaces the environment source consulted for env-bound
// options; subcommands inherit it unless they install their own.
func (c *Command) SetEnvResolver(resolver env.Resolver) *Command {
	c.environment = resolver
	return c
}

// SetPlatform records host facts used for argv interpretation.
func (c *Command) SetPlatform(platform Platform) *Command {
	c.platform = platform
	return c
}

// OnCommandFallback installs the handler consulted when this command has no
// action for an invocation. It receives the operands and unrecognized
// tokens and reports whether it handled them.
func (c *Command) OnCommandFallback(fn FallbackFunc) *Command {
	c.fallback = fn
	return c
}

// ExecutableDir sets the directory searched for executable subcommands. A
// relative directory is resolved against the invoking script's directory.
func (c *Command) ExecutableDir(dir string) *Command {
	c.executableDir = dir
	return c
}

// HelpOption replaces the implicit -h, --help option.
func (c *Command) HelpOption(flags, description string) *Command {
	c.helpOption = NewOption(flags, description)
	c.helpOptionDisabled = false
	return c
}

// AddHelpOption installs a fully configured help option.
func (c *Command) AddHelpOption(option *Option) *Command {
	c.helpOption = option
	c.helpOptionDisabled = false
	return c
}

// DisableHelpOption removes the help option entirely.
func (c *Command) DisableHelpOption() *Command {
	c.helpOption = nil
	c.helpOptionDisabled = true
	return c
}

// HelpCommand replaces the implicit help subcommand declaration.
func (c *Command) HelpCommand(nameAndArgs, description string) *Command {
	name, args, _ := strings.Cut(nameAndArgs, " ")
	sub := NewCommand(name)
	if args != "" {
		sub.Arguments(args)
	}
	sub.SetDescription(description)
	sub.parent = c
	c.helpCommand = sub
	c.helpCommandSet = true
	c.helpCommandEnabled = true
	return c
}

// EnableHelpCommand forces the help subcommand on or off regardless of the
// implicit rule.
func (c *Command) EnableHelpCommand(enable bool) *Command {
	c.helpCommandSet = true
	c.helpCommandEnabled = enable
	return c
}

// Exit terminates the process with the given code unless an exit override
// is installed, in which case the override's error is returned.
func (c *Command) Exit(code int) error {
	return c.exit(errs.NewWithExit(code, errs.CodeGeneric, ""))
}

// exit routes a terminal error through the nearest installed exit override,
// falling back to process exit.
func (c *Command) exit(e *errs.Error) error {
	for cmd := c; cmd != nil; cmd = cmd.parent {
		if cmd.exitCallback != nil {
			if err := cmd.exitCallback(e); err != nil {
				return err
			}
			break
		}
	}
	os.Exit(e.ExitCode)
	return nil
}
