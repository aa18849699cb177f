package commandant

import (
	"fmt"
	"strings"

	"github.com/mlorenz/commandant/errs"
	"github.com/mlorenz/commandant/internal/util"
)

// Default sets the value used when no source supplies one.
func (o *Option) Default(value any) *Option {
	o.defaultValue = value
	return o
}

// DefaultWithDescription sets the default value together with the text shown
// for it in help output.
func (o *Option) DefaultWithDescription(value any, description string) *Option {
	o.defaultValue = value
	o.defaultValueDescription = description
	return o
}

// Preset sets the value stored when the flag is specified without an
// argument. Only meaningful for options with an optional argument slot or
// for negated options.
func (o *Option) Preset(arg any) *Option {
	o.presetArg = arg
	return o
}

// Env binds the option to an environment variable, read after CLI parsing
// with lower precedence than cli and higher than implied, config and
// default.
func (o *Option) Env(name string) *Option {
	o.envVar = name
	return o
}

// ArgParser installs the coercion callback applied to each raw value.
func (o *Option) ArgParser(fn ParseArgFunc) *Option {
	o.parseArg = fn
	return o
}

// Choices restricts the option argument to the given values. The check is
// installed as the option's coercion callback.
func (o *Option) Choices(values ...string) *Option {
	o.argChoices = append([]string(nil), values...)
	o.parseArg = func(arg string, previous any) (any, error) {
		if !util.Contains(o.argChoices, arg) {
			return nil, errs.NewInvalidArgument(
				fmt.Sprintf("Allowed choices are %s.", strings.Join(o.argChoices, ", ")))
		}
		if o.variadic {
			return o.concatValue(arg, previous), nil
		}
		return arg, nil
	}
	return o
}

// Conflicts declares option attributes this option may not be combined
// with. Names are attribute names (camel-cased, no dashes).
func (o *Option) Conflicts(attributeNames ...string) *Option {
	o.conflictsWith = append(o.conflictsWith, attributeNames...)
	return o
}

// Implies sets the given attribute values when this option produced a value
// and the implied attributes were not set from a stronger source.
func (o *Option) Implies(impliedValues map[string]any) *Option {
	if o.implied == nil {
		o.implied = map[string]any{}
	}
	for key, value := range impliedValues {
		o.implied[key] = value
	}
	return o
}

// MakeMandatory requires the option to have a value once parsing finishes,
// from any source.
func (o *Option) MakeMandatory() *Option {
	o.mandatory = true
	return o
}

// Hide removes the option from help output.
func (o *Option) Hide() *Option {
	o.hidden = true
	return o
}
