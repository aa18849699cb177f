package commandant

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/mlorenz/commandant/errs"
	"github.com/mlorenz/commandant/internal/parse"
	"github.com/mlorenz/commandant/internal/util"
)

var longFlagWithValueRegex = regexp.MustCompile(`^--[^=]+=`)

// maybeOption reports whether a token is option-shaped. A lone dash is an
// operand (conventionally stdin), as is anything not starting with a dash.
func maybeOption(arg string) bool {
	return len(arg) > 1 && arg[0] == '-'
}

// parseOptions classifies the given tokens against this command. Recognized
// options are applied to the value store as they are seen; operands and
// unrecognized option-shaped tokens are returned for dispatch. Once an
// unknown option is seen, subsequent tokens are routed to unknown as well
// so a subcommand can re-parse them.
func (c *Command) parseOptions(args []string) (operands, unknown []string, err error) {
	operands = []string{}
	unknown = []string{}
	dest := &operands
	state := parse.NewState(args)
	var activeVariadicOption *Option

	for state.Len() > 0 {
		arg, _ := state.Next()

		// Literal -- stops option parsing for this command.
		if arg == "--" {
			if dest == &unknown {
				*dest = append(*dest, arg)
			}
			operands = append(operands, state.Drain()...)
			break
		}

		if activeVariadicOption != nil && !maybeOption(arg) {
			if err := c.emitOption(activeVariadicOption, &arg, SourceCLI); err != nil {
				return nil, nil, err
			}
			continue
		}
		activeVariadicOption = nil

		if maybeOption(arg) {
			if option := c.findOption(arg); option != nil {
				switch {
				case option.required:
					value, ok := state.Next()
					if !ok {
						return nil, nil, c.optionMissingArgument(option)
					}
					if err := c.emitOption(option, &value, SourceCLI); err != nil {
						return nil, nil, err
					}
				case option.optional:
					var value *string
					if next, ok := state.Peek(); ok && !maybeOption(next) {
						consumed, _ := state.Next()
						value = &consumed
					}
					if err := c.emitOption(option, value, SourceCLI); err != nil {
						return nil, nil, err
					}
				default:
					if err := c.emitOption(option, nil, SourceCLI); err != nil {
						return nil, nil, err
					}
				}
				if option.variadic {
					activeVariadicOption = option
				}
				continue
			}
		}

		// Short flag cluster: -Xrest is -X with value rest when -X takes a
		// value, otherwise boolean -X followed by -rest.
		if len(arg) > 2 && arg[0] == '-' && arg[1] != '-' {
			if option := c.findOption(arg[:2]); option != nil {
				if option.required || (option.optional && c.combineFlagAndOptionalValue) {
					value := arg[2:]
					if err := c.emitOption(option, &value, SourceCLI); err != nil {
						return nil, nil, err
					}
				} else {
					if err := c.emitOption(option, nil, SourceCLI); err != nil {
						return nil, nil, err
					}
					state.Requeue("-" + arg[2:])
				}
				continue
			}
		}

		// Long flag with combined value: --flag=value.
		if longFlagWithValueRegex.MatchString(arg) {
			index := strings.Index(arg, "=")
			if option := c.findOption(arg[:index]); option != nil && (option.required || option.optional) {
				value := arg[index+1:]
				if err := c.emitOption(option, &value, SourceCLI); err != nil {
					return nil, nil, err
				}
				continue
			}
		}

		if maybeOption(arg) {
			dest = &unknown
		}

		if (c.enablePositionalOptions || c.passThroughOptions) &&
			len(operands) == 0 && len(unknown) == 0 {
			if c.findCommand(arg) != nil {
				operands = append(operands, arg)
				unknown = append(unknown, state.Drain()...)
				break
			} else if helpCommand := c.getHelpCommand(); helpCommand != nil && arg == helpCommand.name {
				operands = append(operands, arg)
				operands = append(operands, state.Drain()...)
				break
			} else if c.defaultCommandName != "" {
				unknown = append(unknown, arg)
				unknown = append(unknown, state.Drain()...)
				break
			}
		}

		if c.passThroughOptions {
			*dest = append(*dest, arg)
			*dest = append(*dest, state.Drain()...)
			break
		}

		*dest = append(*dest, arg)
	}

	return operands, unknown, nil
}

// emitOption applies one recognized-option event to the value store. raw is
// nil when the flag was given without a value. Sources are cli and env; the
// env pass reuses the same resolution rules with its own message prefix.
func (c *Command) emitOption(option *Option, raw *string, source ValueSource) error {
	if option == c.versionOption {
		c.outputConfig().WriteOut(c.version + "\n")
		return c.exit(errs.NewWithExit(0, errs.CodeVersion, c.version))
	}

	name := option.AttributeName()
	old := c.getOptionValue(name)
	oldSource := c.optionValueSources[name]

	var val any
	if raw != nil {
		val = *raw
	} else if option.presetArg != nil {
		val = option.presetArg
	}

	switch {
	case val != nil && option.parseArg != nil:
		s, isString := val.(string)
		if isString {
			parsed, err := option.parseArg(s, old)
			if err != nil {
				if errs.IsCode(err, errs.CodeInvalidArgument) {
					return c.errorExit(errs.Wrap(errs.CodeInvalidArgument,
						c.invalidOptionValueMessage(option, s, source, err), err))
				}
				return err
			}
			val = parsed
		}
	case val != nil && option.variadic:
		if oldSource == SourceDefault || oldSource == "" {
			val = []any{val}
		} else if prev, ok := old.([]any); ok {
			val = append(prev, val)
		} else {
			val = []any{val}
		}
	}

	if val == nil {
		switch {
		case option.negate:
			val = false
		case option.isBoolean() || option.optional:
			val = true
		default:
			// Required-argument options always arrive with a value through
			// the token parser; fall back to an empty string if not.
			val = ""
		}
	}

	c.setOptionValueWithSource(name, val, source)
	return nil
}

func (c *Command) invalidOptionValueMessage(option *Option, value string, source ValueSource, cause error) string {
	if source == SourceEnv {
		return fmt.Sprintf("error: option '%s' value '%s' from env '%s' is invalid. %s",
			option.Flags, value, option.envVar, cause.Error())
	}
	return fmt.Sprintf("error: option '%s' argument '%s' is invalid. %s",
		option.Flags, value, cause.Error())
}

// parseOptionsEnv applies environment-bound options after CLI parsing. The
// environment only overrides values whose source is weaker than env.
func (c *Command) parseOptionsEnv() error {
	resolver := c.environmentResolver()
	for _, option := range c.Options() {
		if option.envVar == "" || !resolver.Has(option.envVar) {
			continue
		}
		name := option.AttributeName()
		source := c.optionValueSources[name]
		overridable := c.getOptionValue(name) == nil ||
			source == SourceDefault || source == SourceConfig || source == SourceEnv
		if !overridable {
			continue
		}
		if option.required || option.optional {
			value := resolver.Get(option.envVar)
			if err := c.emitOption(option, &value, SourceEnv); err != nil {
				return err
			}
		} else {
			if err := c.emitOption(option, nil, SourceEnv); err != nil {
				return err
			}
		}
	}
	return nil
}

// parseOptionsImplied applies implied values of options that produced a
// value, onto attributes not set from a stronger source.
func (c *Command) parseOptionsImplied() {
	dual := NewDualOptions(c.Options())
	hasCustomValue := func(key string) bool {
		source, ok := c.optionValueSources[key]
		return c.getOptionValue(key) != nil &&
			(!ok || (source != SourceDefault && source != SourceImplied))
	}
	for _, option := range c.Options() {
		if len(option.implied) == 0 ||
			!hasCustomValue(option.AttributeName()) ||
			!dual.ValueFromOption(c.getOptionValue(option.AttributeName()), option) {
			continue
		}
		for key, value := range option.implied {
			if !hasCustomValue(key) {
				c.setOptionValueWithSource(key, value, SourceImplied)
			}
		}
	}
}

// parseCommand runs the per-command parse walk: token parsing, env and
// implied passes, then dispatch to a subcommand or handling as a leaf.
func (c *Command) parseCommand(operands, unknown []string) *ParseResult {
	parsedOperands, parsedUnknown, err := c.parseOptions(unknown)
	if err != nil {
		return resolvedResult(err)
	}
	if err := c.parseOptionsEnv(); err != nil {
		return resolvedResult(err)
	}
	c.parseOptionsImplied()

	operands = append(append([]string{}, operands...), parsedOperands...)
	unknown = parsedUnknown
	c.args = append(append([]string{}, operands...), unknown...)

	if len(operands) > 0 && c.findCommand(operands[0]) != nil {
		return c.dispatchSubcommand(operands[0], operands[1:], unknown)
	}
	if helpCommand := c.getHelpCommand(); helpCommand != nil &&
		len(operands) > 0 && operands[0] == helpCommand.name {
		return c.dispatchHelpCommand(operands[1:])
	}
	if c.defaultCommandName != "" {
		if err := c.outputHelpIfRequested(unknown); err != nil {
			return resolvedResult(err)
		}
		return c.dispatchSubcommand(c.defaultCommandName, operands, unknown)
	}
	if c.registeredCommands.Len() > 0 && len(c.args) == 0 && c.actionHandler == nil {
		return resolvedResult(c.helpExit(true))
	}

	if err := c.outputHelpIfRequested(parsedUnknown); err != nil {
		return resolvedResult(err)
	}
	if err := c.checkForMissingMandatoryOptions(); err != nil {
		return resolvedResult(err)
	}
	if err := c.checkForConflictingOptions(); err != nil {
		return resolvedResult(err)
	}

	checkForUnknownOptions := func() error {
		if len(parsedUnknown) > 0 {
			return c.unknownOption(parsedUnknown[0])
		}
		return nil
	}

	if c.actionHandler != nil {
		if err := checkForUnknownOptions(); err != nil {
			return resolvedResult(err)
		}
		if err := c.processArguments(); err != nil {
			return resolvedResult(err)
		}
		var result *ParseResult
		result = c.chainOrCallHooks(result, PreAction, c)
		result = chainOrCall(result, func() *ParseResult {
			return callStep(func() error {
				return c.actionHandler(c, c.processedArgs)
			})
		})
		result = c.chainOrCallHooks(result, PostAction, c)
		if result == nil {
			result = resolvedResult(nil)
		}
		return result
	}

	if c.parent != nil && c.parent.fallback != nil {
		if err := checkForUnknownOptions(); err != nil {
			return resolvedResult(err)
		}
		if err := c.processArguments(); err != nil {
			return resolvedResult(err)
		}
		c.parent.fallback(operands, unknown)
		return resolvedResult(nil)
	}

	if len(operands) > 0 {
		if c.findCommand("*") != nil {
			return c.dispatchSubcommand("*", operands, unknown)
		}
		if c.fallback != nil && c.fallback(operands, unknown) {
			return resolvedResult(nil)
		}
		if c.registeredCommands.Len() > 0 {
			return resolvedResult(c.unknownCommand())
		}
		if err := checkForUnknownOptions(); err != nil {
			return resolvedResult(err)
		}
		if err := c.processArguments(); err != nil {
			return resolvedResult(err)
		}
		return resolvedResult(nil)
	}

	if c.registeredCommands.Len() > 0 {
		if err := checkForUnknownOptions(); err != nil {
			return resolvedResult(err)
		}
		return resolvedResult(c.helpExit(true))
	}

	if err := checkForUnknownOptions(); err != nil {
		return resolvedResult(err)
	}
	if err := c.processArguments(); err != nil {
		return resolvedResult(err)
	}
	return resolvedResult(nil)
}

// dispatchSubcommand descends into a child, running preSubcommand hooks of
// this command and its ancestors first.
func (c *Command) dispatchSubcommand(name string, operands, unknown []string) *ParseResult {
	sub := c.findCommand(name)
	if sub == nil {
		return resolvedResult(c.helpExit(true))
	}
	var result *ParseResult
	result = c.chainOrCallHooks(result, PreSubcommand, sub)
	result = chainOrCall(result, func() *ParseResult {
		if sub.executableHandler {
			return callStep(func() error {
				return c.executeSubCommand(sub, append(append([]string{}, operands...), unknown...))
			})
		}
		return sub.parseCommand(operands, unknown)
	})
	if result == nil {
		result = resolvedResult(nil)
	}
	return result
}

// dispatchHelpCommand renders help for the named subcommand, or for this
// command when no name was given. Executable subcommands are re-dispatched
// with a synthesized help flag instead.
func (c *Command) dispatchHelpCommand(operands []string) *ParseResult {
	if len(operands) == 0 {
		return resolvedResult(c.helpDisplayed())
	}
	name := operands[0]
	if sub := c.findCommand(name); sub != nil && !sub.executableHandler {
		return resolvedResult(sub.helpDisplayed())
	}
	helpFlag := "--help"
	if option := c.getHelpOption(); option != nil {
		if option.long != "" {
			helpFlag = option.long
		} else {
			helpFlag = option.short
		}
	}
	return c.dispatchSubcommand(name, []string{}, []string{helpFlag})
}

// checkForMissingMandatoryOptions validates this command and every ancestor.
func (c *Command) checkForMissingMandatoryOptions() error {
	for _, cmd := range c.getCommandAndAncestors() {
		for _, option := range cmd.Options() {
			if option.mandatory && cmd.getOptionValue(option.AttributeName()) == nil {
				return c.missingMandatoryOptionValue(option)
			}
		}
	}
	return nil
}

// checkForConflictingOptions validates conflicts locally per command for
// this command and every ancestor.
func (c *Command) checkForConflictingOptions() error {
	for _, cmd := range c.getCommandAndAncestors() {
		if err := cmd.checkForConflictingLocalOptions(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Command) checkForConflictingLocalOptions() error {
	var definedNonDefault []*Option
	for _, option := range c.Options() {
		key := option.AttributeName()
		if c.getOptionValue(key) == nil {
			continue
		}
		if c.optionValueSources[key] != SourceDefault {
			definedNonDefault = append(definedNonDefault, option)
		}
	}
	for _, option := range definedNonDefault {
		if len(option.conflictsWith) == 0 {
			continue
		}
		for _, defined := range definedNonDefault {
			if util.Contains(option.conflictsWith, defined.AttributeName()) {
				return c.conflictingOption(option, defined)
			}
		}
	}
	return nil
}

// findBestOptionFromValue picks, for a dual pair sharing an attribute, the
// option the stored value likely came from.
func (c *Command) findBestOptionFromValue(option *Option) *Option {
	key := option.AttributeName()
	value := c.getOptionValue(key)
	var negativeOption, positiveOption *Option
	for _, candidate := range c.Options() {
		if candidate.AttributeName() != key {
			continue
		}
		if candidate.negate {
			negativeOption = candidate
		} else {
			positiveOption = candidate
		}
	}
	if negativeOption != nil {
		negativeValue := any(false)
		if negativeOption.presetArg != nil {
			negativeValue = negativeOption.presetArg
		}
		if sameValue(negativeValue, value) {
			return negativeOption
		}
	}
	if positiveOption != nil {
		return positiveOption
	}
	return option
}

func (c *Command) conflictingOption(option, conflictingOption *Option) error {
	describe := func(o *Option) string {
		best := c.findBestOptionFromValue(o)
		key := best.AttributeName()
		if c.optionValueSources[key] == SourceEnv {
			return fmt.Sprintf("environment variable '%s'", best.envVar)
		}
		return fmt.Sprintf("option '%s'", best.Flags)
	}
	return c.errorExit(errs.New(errs.CodeConflictingOption,
		fmt.Sprintf("error: %s cannot be used with %s", describe(option), describe(conflictingOption))))
}

// checkNumberOfArguments validates operand counts against the declared
// positional arguments.
func (c *Command) checkNumberOfArguments() error {
	for index, arg := range c.registeredArguments {
		if arg.required && index >= len(c.args) {
			return c.missingArgument(arg.name)
		}
	}
	last := len(c.registeredArguments) - 1
	if last >= 0 && c.registeredArguments[last].variadic {
		return nil
	}
	if len(c.args) > len(c.registeredArguments) {
		return c.excessArguments(c.args)
	}
	return nil
}

// processArguments coerces operands into the declared positional slots,
// collecting the variadic tail when present.
func (c *Command) processArguments() error {
	coerce := func(argument *Argument, value string, previous any) (any, error) {
		parsed, err := argument.parseArg(value, previous)
		if err != nil {
			if errs.IsCode(err, errs.CodeInvalidArgument) {
				message := fmt.Sprintf("error: command-argument value '%s' is invalid for argument '%s'. %s",
					value, argument.name, err.Error())
				return nil, c.errorExit(errs.Wrap(errs.CodeInvalidArgument, message, err))
			}
			return nil, err
		}
		return parsed, nil
	}

	if err := c.checkNumberOfArguments(); err != nil {
		return err
	}

	processed := make([]any, 0, len(c.registeredArguments))
	for index, declared := range c.registeredArguments {
		value := declared.defaultValue
		if declared.variadic {
			if index < len(c.args) {
				raw := c.args[index:]
				if declared.parseArg != nil {
					accumulated := declared.defaultValue
					for _, v := range raw {
						parsed, err := coerce(declared, v, accumulated)
						if err != nil {
							return err
						}
						accumulated = parsed
					}
					value = accumulated
				} else {
					collected := make([]any, len(raw))
					for i, v := range raw {
						collected[i] = v
					}
					value = collected
				}
			} else if value == nil {
				value = []any{}
			}
		} else if index < len(c.args) {
			raw := c.args[index]
			if declared.parseArg != nil {
				parsed, err := coerce(declared, raw, declared.defaultValue)
				if err != nil {
					return err
				}
				value = parsed
			} else {
				value = raw
			}
		}
		processed = append(processed, value)
	}
	c.processedArgs = processed
	return nil
}

func (c *Command) optionMissingArgument(option *Option) error {
	return c.errorExit(errs.New(errs.CodeOptionMissingArgument,
		fmt.Sprintf("error: option '%s' argument missing", option.Flags)))
}

func (c *Command) missingMandatoryOptionValue(option *Option) error {
	return c.errorExit(errs.New(errs.CodeMissingMandatoryOptionValue,
		fmt.Sprintf("error: required option '%s' not specified", option.Flags)))
}

func (c *Command) missingArgument(name string) error {
	return c.errorExit(errs.New(errs.CodeMissingArgument,
		fmt.Sprintf("error: missing required argument '%s'", name)))
}

func (c *Command) excessArguments(receivedArgs []string) error {
	if c.allowExcessArguments {
		return nil
	}
	expected := len(c.registeredArguments)
	s := ""
	if expected != 1 {
		s = "s"
	}
	forSubcommand := ""
	if c.parent != nil {
		forSubcommand = fmt.Sprintf(" for '%s'", c.name)
	}
	return c.errorExit(errs.New(errs.CodeExcessArguments,
		fmt.Sprintf("error: too many arguments%s. Expected %d argument%s but got %d.",
			forSubcommand, expected, s, len(receivedArgs))))
}

// unknownOption raises an error for the first unrecognized option-shaped
// token, with a similarity suggestion over the visible long flags of this
// command and its ancestors.
func (c *Command) unknownOption(flag string) error {
	if c.allowUnknownOption {
		return nil
	}
	suggestion := ""
	if strings.HasPrefix(flag, "--") && c.showSuggestionAfterError {
		var candidates []string
		command := c
		for {
			renderer := command.helpRenderer()
			for _, option := range renderer.VisibleOptions(command) {
				if option.long != "" {
					candidates = append(candidates, option.long)
				}
			}
			command = command.parent
			if command == nil || command.enablePositionalOptions {
				break
			}
		}
		suggestion = c.suggest(flag, candidates)
	}
	return c.errorExit(errs.New(errs.CodeUnknownOption,
		fmt.Sprintf("error: unknown option '%s'%s", flag, suggestion)))
}

// unknownCommand raises an error for an operand that matched no subcommand,
// with a suggestion over visible command names and first aliases.
func (c *Command) unknownCommand() error {
	unknownName := c.args[0]
	suggestion := ""
	if c.showSuggestionAfterError {
		var candidates []string
		for _, sub := range c.helpRenderer().VisibleCommands(c) {
			candidates = append(candidates, sub.name)
			if len(sub.aliases) > 0 {
				candidates = append(candidates, sub.aliases[0])
			}
		}
		suggestion = c.suggest(unknownName, candidates)
	}
	return c.errorExit(errs.New(errs.CodeUnknownCommand,
		fmt.Sprintf("error: unknown command '%s'%s", unknownName, suggestion)))
}

func (c *Command) suggest(input string, candidates []string) string {
	fn := c.suggestFunc
	for cmd := c; fn == nil && cmd != nil; cmd = cmd.parent {
		fn = cmd.suggestFunc
	}
	if fn == nil {
		fn = DefaultSuggest
	}
	return fn(input, candidates)
}

// errorExit displays the error through the configured sinks and routes it
// through the exit machinery.
func (c *Command) errorExit(e *errs.Error) error {
	cfg := c.outputConfig()
	cfg.OutputError(e.Error()+"\n", cfg.WriteErr)
	if c.helpAfterErrorMessage != "" {
		cfg.WriteErr(c.helpAfterErrorMessage + "\n")
	} else if c.showHelpAfterError {
		cfg.WriteErr("\n")
		c.writeHelp(true)
	}
	return c.exit(e)
}
