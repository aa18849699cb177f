package commandant

import (
	"os"

	"github.com/mlorenz/commandant/errs"
	"github.com/mlorenz/commandant/input"
)

// ValueSource records where an option's current value came from. Precedence
// when overwriting is cli > env > implied > config > default; the resolver
// enforces it at write time, never retroactively.
type ValueSource string

const (
	SourceDefault ValueSource = "default"
	SourceConfig  ValueSource = "config"
	SourceEnv     ValueSource = "env"
	SourceCLI     ValueSource = "cli"
	SourceImplied ValueSource = "implied"
)

// ParseArgFunc coerces a raw token into the stored value of an option or
// positional argument. previous holds the value accumulated so far (the
// declared default on the first call). Returning an error created with
// errs.NewInvalidArgument surfaces as a commander.invalidArgument failure
// with the flag or argument context prepended.
type ParseArgFunc func(value string, previous any) (any, error)

// ActionFunc runs when its command is selected by the dispatch walk. args
// holds the coerced positional arguments, in declaration order. Returning
// Defer(c) suspends the rest of the dispatch chain until c completes.
type ActionFunc func(cmd *Command, args []any) error

// HookEvent names a life-cycle event callbacks can attach to via Hook.
type HookEvent string

const (
	// PreSubcommand fires on a command before it descends into a subcommand.
	PreSubcommand HookEvent = "preSubcommand"
	// PreAction fires before the selected command's action, root first.
	PreAction HookEvent = "preAction"
	// PostAction fires after the selected command's action, leaf first.
	PostAction HookEvent = "postAction"
)

// HookFunc receives the command the hook was registered on and the command
// the event concerns (the subcommand for PreSubcommand, the action command
// otherwise). Like actions, hooks may return Defer(c) to finish later.
type HookFunc func(hookedCommand, eventCommand *Command) error

// SuggestFunc computes the suggestion suffix appended to unknown-option and
// unknown-command errors. It returns an empty string when no candidate is
// close enough.
type SuggestFunc func(input string, candidates []string) string

// FallbackFunc is consulted when a command without an action handler is left
// with unhandled operands. Returning true marks the invocation as handled.
type FallbackFunc func(operands, unknown []string) bool

// From selects how the argv passed to Parse is interpreted.
type From string

const (
	// FromNode treats argv[0] as the interpreter and argv[1] as the script.
	FromNode From = "node"
	// FromUser treats every token as a user argument.
	FromUser From = "user"
	// FromElectron skips one or two leading tokens depending on
	// Platform.ElectronDefaultApp.
	FromElectron From = "electron"
	// FromEval skips argv[0] only.
	FromEval From = "eval"
)

// ParseOptions configures a single Parse invocation.
type ParseOptions struct {
	// From selects the argv interpretation style. Empty selects FromNode for
	// explicitly supplied argv (FromEval when the platform reports an eval
	// launch), and program-style argv (os.Args) otherwise.
	From From
}

// Platform carries host facts the library cannot observe itself.
type Platform struct {
	// ElectronDefaultApp mirrors the host's defaultApp report and decides
	// where user arguments start under FromElectron.
	ElectronDefaultApp bool
	// LaunchedFromEval marks processes started through an -e/-p style
	// evaluation flag; it switches the default argv style to FromEval.
	LaunchedFromEval bool
}

// OutputConfig carries the write sinks and width providers all boundary
// output passes through. Zero-valued fields keep their defaults when merged
// via ConfigureOutput.
type OutputConfig struct {
	// WriteOut writes regular output (help, version).
	WriteOut func(s string)
	// WriteErr writes error output.
	WriteErr func(s string)
	// GetOutHelpWidth returns the wrap width for help written to the out
	// sink; 0 means unbounded terminal knowledge and falls back to 80.
	GetOutHelpWidth func() int
	// GetErrHelpWidth is the error-sink counterpart of GetOutHelpWidth.
	GetErrHelpWidth func() int
	// OutputError formats an error line through the given write sink.
	OutputError func(s string, write func(s string))
}

func defaultOutputConfig() *OutputConfig {
	return &OutputConfig{
		WriteOut: func(s string) { _, _ = os.Stdout.WriteString(s) },
		WriteErr: func(s string) { _, _ = os.Stderr.WriteString(s) },
		GetOutHelpWidth: func() int {
			return input.WidthOf(os.Stdout)
		},
		GetErrHelpWidth: func() int {
			return input.WidthOf(os.Stderr)
		},
		OutputError: func(s string, write func(s string)) {
			write(s)
		},
	}
}

func (c *OutputConfig) clone() *OutputConfig {
	dup := *c
	return &dup
}

// ExitFunc intercepts terminal exits when installed via ExitOverride. A
// non-nil return propagates the error out of Parse instead of terminating
// the process.
type ExitFunc func(err *errs.Error) error

// HelpTextPosition places text added with AddHelpText relative to the built
// in help.
type HelpTextPosition string

const (
	// BeforeAll text renders before the help of this command and every
	// descendant.
	BeforeAll HelpTextPosition = "beforeAll"
	// Before text renders immediately before this command's help.
	Before HelpTextPosition = "before"
	// After text renders immediately after this command's help.
	After HelpTextPosition = "after"
	// AfterAll text renders after the help of this command and every
	// descendant.
	AfterAll HelpTextPosition = "afterAll"
)

// CommandOptions configures a subcommand at registration time.
type CommandOptions struct {
	// Hidden removes the command from help output.
	Hidden bool
	// IsDefault makes this the command dispatched for bare invocations.
	IsDefault bool
	// ExecutableFile overrides the inferred executable name for external
	// subcommands.
	ExecutableFile string
}
