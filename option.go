package commandant

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/iancoleman/strcase"
)

var (
	shortFlagOnlyRegex = regexp.MustCompile(`^-[^-]$`)
	variadicFlagRegex  = regexp.MustCompile(`\w\.\.\.[>\]]$`)
	flagSplitRegex     = regexp.MustCompile(`[ |,]+`)
)

// Option describes a flag accepted by a command. The flag declaration string
// names a short and/or long form and an optional argument slot:
//
//	-s
//	-s, --long
//	--long <value>
//	--long [value]
//	--long <values...>
//
// Angle brackets declare a required argument, square brackets an optional
// one, a trailing ellipsis a variadic one. A long form starting with --no-
// declares the negative half of a dual option.
type Option struct {
	// Flags is the declaration string the option was created from.
	Flags string
	// Description is shown in help output.
	Description string

	short    string
	long     string
	required bool
	optional bool
	variadic bool
	negate   bool

	mandatory               bool
	hidden                  bool
	defaultValue            any
	defaultValueDescription string
	presetArg               any
	envVar                  string
	parseArg                ParseArgFunc
	argChoices              []string
	conflictsWith           []string
	implied                 map[string]any

	// id keys the option in its command's registry. Dual options share an
	// attribute name but never an id.
	id string
}

// NewOption creates an Option from a flag declaration string. A declaration
// with neither a short nor a long form is an authoring error.
func NewOption(flags, description string) *Option {
	o := &Option{
		Flags:       flags,
		Description: description,
		id:          uuid.NewString(),
	}
	o.required = strings.Contains(flags, "<")
	o.optional = strings.Contains(flags, "[")
	o.variadic = variadicFlagRegex.MatchString(flags)
	o.short, o.long = splitOptionFlags(flags)
	if o.short == "" && o.long == "" {
		panic("commandant: option declaration '" + flags + "' names no flag")
	}
	o.negate = strings.HasPrefix(o.long, "--no-")
	return o
}

// splitOptionFlags separates a declaration string into its short and long
// forms. Runs of spaces, commas and pipes separate the parts; argument
// descriptors are ignored here.
func splitOptionFlags(flags string) (short, long string) {
	parts := flagSplitRegex.Split(strings.TrimSpace(flags), -1)
	if len(parts) > 1 && !strings.HasPrefix(parts[1], "[") && !strings.HasPrefix(parts[1], "<") {
		short = parts[0]
		parts = parts[1:]
	}
	long = parts[0]
	if strings.HasPrefix(long, "[") || strings.HasPrefix(long, "<") {
		long = ""
	}
	if short == "" && shortFlagOnlyRegex.MatchString(long) {
		short = long
		long = ""
	}
	return short, long
}

// Name returns the option name with leading dashes stripped, preferring the
// long form.
func (o *Option) Name() string {
	if o.long != "" {
		return strings.TrimPrefix(o.long, "--")
	}
	return strings.TrimPrefix(o.short, "-")
}

// AttributeName returns the key under which the option stores its value:
// the name with any no- prefix stripped and hyphen segments camel-cased, so
// --dry-run stores under dryRun and --no-color under color.
func (o *Option) AttributeName() string {
	return camelcase(strings.TrimPrefix(o.Name(), "no-"))
}

func camelcase(s string) string {
	return strcase.ToLowerCamel(s)
}

// Is reports whether arg equals the option's short or long form.
func (o *Option) Is(arg string) bool {
	return arg != "" && (o.short == arg || o.long == arg)
}

// Short returns the short form including its dash, or an empty string.
func (o *Option) Short() string { return o.short }

// Long returns the long form including its dashes, or an empty string.
func (o *Option) Long() string { return o.long }

// IsNegated reports whether the option is the --no- half of a dual option.
func (o *Option) IsNegated() bool { return o.negate }

// IsMandatory reports whether the option must have a value after parsing.
func (o *Option) IsMandatory() bool { return o.mandatory }

// IsHidden reports whether the option is omitted from help output.
func (o *Option) IsHidden() bool { return o.hidden }

// EnvVar returns the bound environment variable name, or an empty string.
func (o *Option) EnvVar() string { return o.envVar }

// DefaultValue returns the declared default.
func (o *Option) DefaultValue() any { return o.defaultValue }

// isBoolean reports whether the option takes no argument at all.
func (o *Option) isBoolean() bool {
	return !o.required && !o.optional && !o.negate
}

// concatValue folds one variadic value into the accumulator. A previous
// value that is still the declared default, or not a list, starts a fresh
// list.
func (o *Option) concatValue(value, previous any) any {
	prev, ok := previous.([]any)
	if !ok || sameValue(previous, o.defaultValue) {
		return []any{value}
	}
	return append(prev, value)
}

// sameValue compares two stored values, treating slices by identity the way
// the accumulator logic requires.
func sameValue(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Kind() == reflect.Slice && vb.Kind() == reflect.Slice {
		return va.Pointer() == vb.Pointer() && va.Len() == vb.Len()
	}
	if !va.Type().Comparable() || !vb.Type().Comparable() {
		return false
	}
	return a == b
}

// DualOptions resolves which half of a positive/negative option pair a
// stored value came from. For a dual pair the negative option is considered
// the source iff the value equals its preset (false when no preset is
// declared); a lone option is always its own source.
type DualOptions struct {
	positive map[string]*Option
	negative map[string]*Option
	dual     map[string]bool
}

// NewDualOptions indexes the given options by attribute name.
func NewDualOptions(options []*Option) *DualOptions {
	d := &DualOptions{
		positive: map[string]*Option{},
		negative: map[string]*Option{},
		dual:     map[string]bool{},
	}
	for _, option := range options {
		key := option.AttributeName()
		if option.negate {
			d.negative[key] = option
		} else {
			d.positive[key] = option
		}
	}
	for key := range d.negative {
		if _, ok := d.positive[key]; ok {
			d.dual[key] = true
		}
	}
	return d
}

// ValueFromOption reports whether value likely came from option.
func (d *DualOptions) ValueFromOption(value any, option *Option) bool {
	key := option.AttributeName()
	if !d.dual[key] {
		return true
	}
	preset := d.negative[key].presetArg
	negativeValue := any(false)
	if preset != nil {
		negativeValue = preset
	}
	return option.negate == sameValue(negativeValue, value)
}
