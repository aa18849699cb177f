package commandant

import (
	"fmt"
	"strings"

	"github.com/mlorenz/commandant/errs"
	"github.com/mlorenz/commandant/internal/util"
)

// Argument describes a positional argument. `<name>` declares it required,
// `[name]` optional, a bare name required; a trailing ellipsis collects the
// remaining operands into a list.
type Argument struct {
	// Description is shown in help output when set.
	Description string

	name                    string
	required                bool
	variadic                bool
	defaultValue            any
	defaultValueDescription string
	parseArg                ParseArgFunc
	argChoices              []string
}

// NewArgument creates an Argument from its declaration.
func NewArgument(name, description string) *Argument {
	a := &Argument{Description: description}
	switch {
	case strings.HasPrefix(name, "<") && strings.HasSuffix(name, ">"):
		a.required = true
		a.name = name[1 : len(name)-1]
	case strings.HasPrefix(name, "[") && strings.HasSuffix(name, "]"):
		a.name = name[1 : len(name)-1]
	default:
		a.required = true
		a.name = name
	}
	if strings.HasSuffix(a.name, "...") {
		a.variadic = true
		a.name = strings.TrimSuffix(a.name, "...")
	}
	return a
}

// Name returns the declared name without brackets or ellipsis.
func (a *Argument) Name() string { return a.name }

// IsRequired reports whether the argument must be supplied.
func (a *Argument) IsRequired() bool { return a.required }

// IsVariadic reports whether the argument collects the remaining operands.
func (a *Argument) IsVariadic() bool { return a.variadic }

// Default sets the value used when the argument is not supplied.
func (a *Argument) Default(value any) *Argument {
	a.defaultValue = value
	return a
}

// DefaultWithDescription sets the default value together with the text shown
// for it in help output.
func (a *Argument) DefaultWithDescription(value any, description string) *Argument {
	a.defaultValue = value
	a.defaultValueDescription = description
	return a
}

// ArgParser installs the coercion callback applied to each supplied value.
func (a *Argument) ArgParser(fn ParseArgFunc) *Argument {
	a.parseArg = fn
	return a
}

// Choices restricts the argument to the given values.
func (a *Argument) Choices(values ...string) *Argument {
	a.argChoices = append([]string(nil), values...)
	a.parseArg = func(arg string, previous any) (any, error) {
		if !util.Contains(a.argChoices, arg) {
			return nil, errs.NewInvalidArgument(
				fmt.Sprintf("Allowed choices are %s.", strings.Join(a.argChoices, ", ")))
		}
		if a.variadic {
			return concatArgValue(arg, previous), nil
		}
		return arg, nil
	}
	return a
}

func concatArgValue(value, previous any) any {
	prev, ok := previous.([]any)
	if !ok {
		return []any{value}
	}
	return append(prev, value)
}

// humanReadableArgName renders the argument the way usage strings show it.
func humanReadableArgName(a *Argument) string {
	name := a.name
	if a.variadic {
		name += "..."
	}
	if a.required {
		return "<" + name + ">"
	}
	return "[" + name + "]"
}
