// Package commandant provides declarative command-line processing.
//
// A program is described as a tree of commands. Each command declares the
// options and positional arguments it accepts; parsing walks the tree,
// classifying tokens against the active command, resolving option values
// from command line, environment, implied and declared-default sources
// under a fixed precedence, and dispatching to the selected command's
// action through its life-cycle hooks.
//
// Commands, options and arguments are configured by fluent chaining:
//
//	program := commandant.NewCommand("serve")
//	program.Option("-p, --port <number>", "port to listen on", commandant.ParseInt)
//	program.Argument("<config>", "configuration file")
//	program.Action(func(cmd *commandant.Command, args []any) error {
//		...
//	})
//	err := program.Parse(os.Args[1:], commandant.ParseOptions{From: commandant.FromUser})
package commandant

import (
	"fmt"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/mlorenz/commandant/env"
	"github.com/mlorenz/commandant/errs"
	"github.com/mlorenz/commandant/internal/parse"
)

// Command is a node in the command tree. The root represents the program
// itself; children are subcommands. All declaration methods return the
// receiver (or the created child) for chaining.
type Command struct {
	name            string
	aliases         []string
	description     string
	summary         string
	usageStr        string
	argsDescription map[string]string
	hidden          bool

	// acceptedOptions keeps options in declaration order keyed by their
	// identity; optionLookup maps each flag spelling to that identity. Dual
	// options share an attribute name but never an identity key.
	acceptedOptions     *orderedmap.OrderedMap[string, *Option]
	optionLookup        map[string]string
	registeredCommands  *orderedmap.OrderedMap[string, *Command]
	registeredArguments []*Argument

	parent *Command

	allowUnknownOption          bool
	allowExcessArguments        bool
	combineFlagAndOptionalValue bool
	storeOptionsAsProperties    bool
	enablePositionalOptions     bool
	passThroughOptions          bool

	defaultCommandName string
	executableHandler  bool
	executableFile     string
	executableDir      string

	helpOption         *Option
	helpOptionDisabled bool
	helpCommand        *Command
	helpCommandSet     bool
	helpCommandEnabled bool
	help               *Help
	helpTexts          map[HelpTextPosition][]string

	version       string
	versionOption *Option

	actionHandler  ActionFunc
	fallback       FallbackFunc
	lifeCycleHooks map[HookEvent][]HookFunc

	outputCfg                *OutputConfig
	exitCallback             ExitFunc
	showHelpAfterError       bool
	helpAfterErrorMessage    string
	showSuggestionAfterError bool
	suggestFunc              SuggestFunc
	environment              env.Resolver
	platform                 Platform
	scriptPath               string

	// Per-invocation parse state, overwritten by each parse.
	rawArgs            []string
	args               []string
	processedArgs      []any
	optionValues       map[string]any
	optionValueSources map[string]ValueSource
}

// NewCommand creates a command with the given name. An empty name is
// inferred from the script path at parse time.
func NewCommand(name string) *Command {
	return &Command{
		name:                        name,
		acceptedOptions:             orderedmap.New[string, *Option](),
		optionLookup:                map[string]string{},
		registeredCommands:          orderedmap.New[string, *Command](),
		optionValues:                map[string]any{},
		optionValueSources:          map[string]ValueSource{},
		allowExcessArguments:        true,
		combineFlagAndOptionalValue: true,
		showSuggestionAfterError:    true,
	}
}

// copyInheritedSettings applies the shareable settings of source, used when
// creating a subcommand through Command or ExecutableCommand.
func (c *Command) copyInheritedSettings(source *Command) *Command {
	c.helpOption = source.helpOption
	c.helpOptionDisabled = source.helpOptionDisabled
	c.help = source.help
	c.storeOptionsAsProperties = source.storeOptionsAsProperties
	c.combineFlagAndOptionalValue = source.combineFlagAndOptionalValue
	c.allowExcessArguments = source.allowExcessArguments
	c.enablePositionalOptions = source.enablePositionalOptions
	c.showHelpAfterError = source.showHelpAfterError
	c.helpAfterErrorMessage = source.helpAfterErrorMessage
	c.showSuggestionAfterError = source.showSuggestionAfterError
	c.suggestFunc = source.suggestFunc
	c.platform = source.platform
	return c
}

// createCommand builds a child command inheriting this command's settings.
func (c *Command) createCommand(name string) *Command {
	return NewCommand(name).copyInheritedSettings(c)
}

// Command creates a subcommand from a declaration such as
// "clone <source> [destination]" and registers it. The new subcommand is
// returned for configuration.
func (c *Command) Command(nameAndArgs string, opts ...CommandOptions) *Command {
	name, args, _ := strings.Cut(nameAndArgs, " ")
	sub := c.createCommand(name)
	if args != "" {
		sub.Arguments(args)
	}
	c.AddCommand(sub, opts...)
	return sub
}

// ExecutableCommand registers a subcommand handled by a stand-alone
// executable, resolved at dispatch time from the executable directory or
// next to the invoking script. Returns the receiver.
func (c *Command) ExecutableCommand(nameAndArgs, description string, opts ...CommandOptions) *Command {
	name, args, _ := strings.Cut(nameAndArgs, " ")
	sub := c.createCommand(name)
	if args != "" {
		sub.Arguments(args)
	}
	sub.description = description
	sub.executableHandler = true
	c.AddCommand(sub, opts...)
	return c
}

// AddCommand registers a previously constructed command as a subcommand.
// A nameless command, or a name or alias already taken by a sibling, is an
// authoring error. Returns the receiver.
func (c *Command) AddCommand(sub *Command, opts ...CommandOptions) *Command {
	if sub.name == "" {
		panic("commandant: command passed to AddCommand must have a name")
	}
	var options CommandOptions
	if len(opts) > 0 {
		options = opts[0]
	}
	if options.IsDefault {
		c.defaultCommandName = sub.name
	}
	if options.Hidden {
		sub.hidden = true
	}
	if options.ExecutableFile != "" {
		sub.executableFile = options.ExecutableFile
	}
	c.registerCommand(sub)
	sub.parent = c
	sub.checkForBrokenPassThrough()
	return c
}

func (c *Command) registerCommand(sub *Command) {
	knownBy := func(cmd *Command) []string {
		return append([]string{cmd.name}, cmd.aliases...)
	}
	for _, candidate := range knownBy(sub) {
		if existing := c.findCommand(candidate); existing != nil {
			panic(fmt.Sprintf("commandant: cannot add command '%s' as already have command '%s'",
				strings.Join(knownBy(sub), "|"), strings.Join(knownBy(existing), "|")))
		}
	}
	c.registeredCommands.Set(sub.name, sub)
}

func (c *Command) checkForBrokenPassThrough() {
	if c.parent != nil && c.passThroughOptions && !c.parent.enablePositionalOptions {
		panic(fmt.Sprintf("commandant: passThroughOptions cannot be used for '%s' without turning on enablePositionalOptions for parent command(s)", c.name))
	}
}

// findCommand resolves a subcommand by name or alias.
func (c *Command) findCommand(name string) *Command {
	if name == "" {
		return nil
	}
	if sub, ok := c.registeredCommands.Get(name); ok {
		return sub
	}
	for pair := c.registeredCommands.Oldest(); pair != nil; pair = pair.Next() {
		for _, alias := range pair.Value.aliases {
			if alias == name {
				return pair.Value
			}
		}
	}
	return nil
}

// Commands returns the registered subcommands in declaration order.
func (c *Command) Commands() []*Command {
	out := make([]*Command, 0, c.registeredCommands.Len())
	for pair := c.registeredCommands.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Value)
	}
	return out
}

// Options returns the registered options in declaration order.
func (c *Command) Options() []*Option {
	out := make([]*Option, 0, c.acceptedOptions.Len())
	for pair := c.acceptedOptions.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Value)
	}
	return out
}

// Option declares an option from a flag string. Extras may carry a coercion
// callback (ParseArgFunc) and a default value, in that order:
//
//	cmd.Option("-p, --port <number>", "port", commandant.ParseInt, 8080)
func (c *Command) Option(flags, description string, extras ...any) *Command {
	return c.declareOption(flags, description, false, extras...)
}

// RequiredOption declares an option that must have a value once parsing
// finishes, from any source.
func (c *Command) RequiredOption(flags, description string, extras ...any) *Command {
	return c.declareOption(flags, description, true, extras...)
}

func (c *Command) declareOption(flags, description string, mandatory bool, extras ...any) *Command {
	option := NewOption(flags, description)
	for _, extra := range extras {
		switch v := extra.(type) {
		case ParseArgFunc:
			option.ArgParser(v)
		case func(value string, previous any) (any, error):
			option.ArgParser(v)
		default:
			option.Default(v)
		}
	}
	if mandatory {
		option.MakeMandatory()
	}
	return c.AddOption(option)
}

// AddOption registers a fully configured option. A flag spelling already
// used by another option of this command is an authoring error.
func (c *Command) AddOption(option *Option) *Command {
	c.registerOption(option)
	name := option.AttributeName()
	if option.negate {
		// The implicit default of a lone negative option is true.
		positive := strings.Replace(option.long, "--no-", "--", 1)
		if c.findOption(positive) == nil {
			def := option.defaultValue
			if def == nil {
				def = true
			}
			c.setOptionValueWithSource(name, def, SourceDefault)
		}
	} else if option.defaultValue != nil {
		c.setOptionValueWithSource(name, option.defaultValue, SourceDefault)
	}
	return c
}

func (c *Command) registerOption(option *Option) {
	for pair := c.acceptedOptions.Oldest(); pair != nil; pair = pair.Next() {
		existing := pair.Value
		var matching string
		switch {
		case option.short != "" && existing.Is(option.short):
			matching = option.short
		case option.long != "" && existing.Is(option.long):
			matching = option.long
		default:
			continue
		}
		panic(fmt.Sprintf("commandant: cannot add option '%s' due to conflicting flag '%s' - already used by option '%s'",
			option.Flags, matching, existing.Flags))
	}
	c.acceptedOptions.Set(option.id, option)
	if option.short != "" {
		c.optionLookup[option.short] = option.id
	}
	if option.long != "" {
		c.optionLookup[option.long] = option.id
	}
}

// findOption resolves an option by flag spelling.
func (c *Command) findOption(arg string) *Option {
	id, ok := c.optionLookup[arg]
	if !ok {
		return nil
	}
	option, _ := c.acceptedOptions.Get(id)
	return option
}

// Argument declares a positional argument. Extras may carry a coercion
// callback and a default value, like Option.
func (c *Command) Argument(name, description string, extras ...any) *Command {
	arg := NewArgument(name, description)
	for _, extra := range extras {
		switch v := extra.(type) {
		case ParseArgFunc:
			arg.ArgParser(v)
		case func(value string, previous any) (any, error):
			arg.ArgParser(v)
		default:
			arg.Default(v)
		}
	}
	return c.AddArgument(arg)
}

// Arguments declares several positional arguments from one space-separated
// declaration string.
func (c *Command) Arguments(names string) *Command {
	for _, name := range strings.Fields(names) {
		c.Argument(name, "")
	}
	return c
}

// AddArgument registers a previously constructed argument. A variadic
// argument anywhere but last, or a default on a required argument without a
// coercer, is an authoring error.
func (c *Command) AddArgument(arg *Argument) *Command {
	if n := len(c.registeredArguments); n > 0 && c.registeredArguments[n-1].variadic {
		panic(fmt.Sprintf("commandant: only the last argument can be variadic '%s'",
			humanReadableArgName(c.registeredArguments[n-1])))
	}
	if arg.required && arg.defaultValue != nil && arg.parseArg == nil {
		panic(fmt.Sprintf("commandant: a default value for a required argument is never used: '%s'",
			humanReadableArgName(arg)))
	}
	c.registeredArguments = append(c.registeredArguments, arg)
	return c
}

// Action installs the handler invoked when this command is selected.
func (c *Command) Action(fn ActionFunc) *Command {
	c.actionHandler = fn
	return c
}

// Alias adds an alias. The first alias is shown in help output.
func (c *Command) Alias(alias string) *Command {
	if alias == c.name {
		panic("commandant: command alias can't be the same as its name")
	}
	if c.parent != nil {
		if existing := c.parent.findCommand(alias); existing != nil {
			knownBy := append([]string{existing.name}, existing.aliases...)
			panic(fmt.Sprintf("commandant: cannot add alias '%s' to command '%s' as already have command '%s'",
				alias, c.name, strings.Join(knownBy, "|")))
		}
	}
	c.aliases = append(c.aliases, alias)
	return c
}

// Aliases adds several aliases.
func (c *Command) Aliases(aliases ...string) *Command {
	for _, alias := range aliases {
		c.Alias(alias)
	}
	return c
}

// GetAliases returns the declared aliases.
func (c *Command) GetAliases() []string {
	return append([]string(nil), c.aliases...)
}

// Name returns the command name.
func (c *Command) Name() string { return c.name }

// SetName sets the command name.
func (c *Command) SetName(name string) *Command {
	c.name = name
	return c
}

// Description returns the command description.
func (c *Command) Description() string { return c.description }

// SetDescription sets the command description shown in help.
func (c *Command) SetDescription(description string) *Command {
	c.description = description
	return c
}

// Summary returns the short description used in subcommand listings.
func (c *Command) Summary() string { return c.summary }

// SetSummary sets the short description used in subcommand listings.
func (c *Command) SetSummary(summary string) *Command {
	c.summary = summary
	return c
}

// SetArgsDescription attaches descriptions to positional arguments by name,
// for arguments declared without one.
func (c *Command) SetArgsDescription(descriptions map[string]string) *Command {
	c.argsDescription = descriptions
	return c
}

// Usage returns the usage string, computed from the declared options,
// subcommands and arguments unless overridden with SetUsage.
func (c *Command) Usage() string {
	if c.usageStr != "" {
		return c.usageStr
	}
	var parts []string
	if c.acceptedOptions.Len() > 0 || !c.helpOptionDisabled {
		parts = append(parts, "[options]")
	}
	if c.registeredCommands.Len() > 0 {
		parts = append(parts, "[command]")
	}
	for _, arg := range c.registeredArguments {
		parts = append(parts, humanReadableArgName(arg))
	}
	return strings.Join(parts, " ")
}

// SetUsage overrides the computed usage string.
func (c *Command) SetUsage(usage string) *Command {
	c.usageStr = usage
	return c
}

// Version declares the program version and registers the version option,
// "-V, --version" unless overridden by the optional flags and description.
func (c *Command) Version(version string, flagsAndDescription ...string) *Command {
	c.version = version
	flags := "-V, --version"
	description := "output the version number"
	if len(flagsAndDescription) > 0 && flagsAndDescription[0] != "" {
		flags = flagsAndDescription[0]
	}
	if len(flagsAndDescription) > 1 {
		description = flagsAndDescription[1]
	}
	c.versionOption = NewOption(flags, description)
	c.registerOption(c.versionOption)
	return c
}

// Parent returns the parent command, nil at the root.
func (c *Command) Parent() *Command { return c.parent }

func (c *Command) getCommandAndAncestors() []*Command {
	var ancestors []*Command
	for cmd := c; cmd != nil; cmd = cmd.parent {
		ancestors = append(ancestors, cmd)
	}
	return ancestors
}

// Parse parses argv against the command tree and dispatches. It returns the
// error of the synchronous part of the dispatch chain; when a hook or
// action defers, the remainder continues in the background and ParseAsync
// should be used instead to observe it.
func (c *Command) Parse(args []string, options ...ParseOptions) error {
	result := c.parseInternal(args, firstParseOptions(options))
	if result.Completed() {
		return result.Err()
	}
	return nil
}

// ParseAsync parses like Parse but always returns a ParseResult covering
// the entire dispatch chain, including deferred hooks and actions.
func (c *Command) ParseAsync(args []string, options ...ParseOptions) *ParseResult {
	return c.parseInternal(args, firstParseOptions(options))
}

// ParseString splits a command line with shell quoting rules and parses the
// resulting tokens as user arguments.
func (c *Command) ParseString(line string) error {
	args, err := parse.Split(line)
	if err != nil {
		return err
	}
	return c.Parse(args, ParseOptions{From: FromUser})
}

func firstParseOptions(options []ParseOptions) ParseOptions {
	if len(options) > 0 {
		return options[0]
	}
	return ParseOptions{}
}

func (c *Command) parseInternal(args []string, options ParseOptions) *ParseResult {
	userArgs := c.prepareUserArgs(args, options)
	result := c.parseCommand([]string{}, userArgs)
	if result == nil {
		result = resolvedResult(nil)
	}
	return swallowSpawnSentinel(result)
}

// swallowSpawnSentinel hides the executeSubCommandAsync control-flow error
// from parse callers so a spawned subcommand is not double-reported.
func swallowSpawnSentinel(result *ParseResult) *ParseResult {
	filter := func(err error) error {
		if errs.IsCode(err, errs.CodeExecuteSubCommandAsync) {
			return nil
		}
		return err
	}
	if result.Completed() {
		return resolvedResult(filter(result.Err()))
	}
	out := newPendingResult()
	go func() {
		out.complete(filter(result.Wait()))
	}()
	return out
}

// Opts returns a copy of the resolved option values keyed by attribute
// name.
func (c *Command) Opts() map[string]any {
	out := make(map[string]any, len(c.optionValues))
	for key, value := range c.optionValues {
		out[key] = value
	}
	return out
}

// OptsWithGlobals returns the option values of this command and its
// ancestors merged into one map, ancestors overriding.
func (c *Command) OptsWithGlobals() map[string]any {
	combined := map[string]any{}
	for _, cmd := range c.getCommandAndAncestors() {
		for key, value := range cmd.optionValues {
			combined[key] = value
		}
	}
	return combined
}

// GetOptionValue returns the resolved value stored under the attribute
// name, nil when never set.
func (c *Command) GetOptionValue(key string) any {
	return c.optionValues[key]
}

func (c *Command) getOptionValue(key string) any {
	return c.optionValues[key]
}

// SetOptionValue stores a value without recording a source.
func (c *Command) SetOptionValue(key string, value any) *Command {
	c.optionValues[key] = value
	delete(c.optionValueSources, key)
	return c
}

// SetOptionValueWithSource stores a value recording where it came from.
// SourceConfig is the conventional source for values read from
// configuration files.
func (c *Command) SetOptionValueWithSource(key string, value any, source ValueSource) *Command {
	c.setOptionValueWithSource(key, value, source)
	return c
}

func (c *Command) setOptionValueWithSource(key string, value any, source ValueSource) {
	c.optionValues[key] = value
	c.optionValueSources[key] = source
}

// GetOptionValueSource returns where the stored value came from, or an
// empty string when the attribute was never set with a source.
func (c *Command) GetOptionValueSource(key string) ValueSource {
	return c.optionValueSources[key]
}

// GetOptionValueSourceWithGlobals returns the value source for the
// attribute across this command and its ancestors, ancestors overriding.
func (c *Command) GetOptionValueSourceWithGlobals(key string) ValueSource {
	var source ValueSource
	for _, cmd := range c.getCommandAndAncestors() {
		if s, ok := cmd.optionValueSources[key]; ok {
			source = s
		}
	}
	return source
}

// Args returns the operands and unrecognized tokens of the last parse.
func (c *Command) Args() []string {
	return append([]string(nil), c.args...)
}

// ProcessedArgs returns the positional arguments of the last parse after
// coercion and variadic collection.
func (c *Command) ProcessedArgs() []any {
	return append([]any(nil), c.processedArgs...)
}

// RawArgs returns the argv the last parse started from, before source-style
// slicing.
func (c *Command) RawArgs() []string {
	return append([]string(nil), c.rawArgs...)
}

// Error displays the message through the error sink and exits with the
// generic commander.error code.
func (c *Command) Error(message string) error {
	return c.errorExit(errs.New(errs.CodeGeneric, message))
}

func (c *Command) environmentResolver() env.Resolver {
	for cmd := c; cmd != nil; cmd = cmd.parent {
		if cmd.environment != nil {
			return cmd.environment
		}
	}
	return env.OSResolver{}
}

func (c *Command) outputConfig() *OutputConfig {
	for cmd := c; cmd != nil; cmd = cmd.parent {
		if cmd.outputCfg != nil {
			return cmd.outputCfg
		}
	}
	root := c
	for root.parent != nil {
		root = root.parent
	}
	root.outputCfg = defaultOutputConfig()
	return root.outputCfg
}
