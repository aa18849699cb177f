package commandant

import (
	"fmt"
	"strconv"
	"time"

	"github.com/araddon/dateparse"
	"github.com/mlorenz/commandant/errs"
)

// Ready-made ParseArgFunc coercers for common value shapes. Each rejects bad
// input with a commander.invalidArgument error, which the parser prefixes
// with the flag or argument context before surfacing.

// ParseInt coerces a base-10 integer.
func ParseInt(value string, _ any) (any, error) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return nil, errs.NewInvalidArgument(fmt.Sprintf("'%s' is not an integer.", value))
	}
	return n, nil
}

// ParseFloat coerces a floating point number.
func ParseFloat(value string, _ any) (any, error) {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, errs.NewInvalidArgument(fmt.Sprintf("'%s' is not a number.", value))
	}
	return f, nil
}

// ParseBool coerces the strconv boolean spellings.
func ParseBool(value string, _ any) (any, error) {
	b, err := strconv.ParseBool(value)
	if err != nil {
		return nil, errs.NewInvalidArgument(fmt.Sprintf("'%s' is not a boolean.", value))
	}
	return b, nil
}

// ParseDuration coerces a time.Duration string such as 1h30m.
func ParseDuration(value string, _ any) (any, error) {
	d, err := time.ParseDuration(value)
	if err != nil {
		return nil, errs.NewInvalidArgument(fmt.Sprintf("'%s' is not a duration.", value))
	}
	return d, nil
}

// ParseDate coerces a timestamp in any of the layouts dateparse recognizes,
// interpreted in the local time zone.
func ParseDate(value string, _ any) (any, error) {
	t, err := dateparse.ParseLocal(value)
	if err != nil {
		return nil, errs.NewInvalidArgument(fmt.Sprintf("'%s' is not a date.", value))
	}
	return t, nil
}

// Accumulate folds each value into a []any, for variadic slots that want the
// raw strings collected without further coercion.
func Accumulate(value string, previous any) (any, error) {
	return concatArgValue(value, previous), nil
}
