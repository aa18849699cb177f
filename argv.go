package commandant

import (
	"os"
	"path/filepath"
	"strings"
)

// prepareUserArgs records the raw argv and slices off the host prefix
// according to the parse options. When argv is nil the process arguments are
// used program-style: argv[0] is the executable (recorded as the script
// path) and user arguments start at argv[1].
func (c *Command) prepareUserArgs(args []string, options ParseOptions) []string {
	from := options.From
	if args == nil {
		args = os.Args
		if from == "" {
			c.rawArgs = append([]string(nil), args...)
			c.scriptPath = args[0]
			c.inferNames()
			return args[1:]
		}
	}
	if from == "" {
		from = FromNode
		if c.platform.LaunchedFromEval {
			from = FromEval
		}
	}

	c.rawArgs = append([]string(nil), args...)
	var userArgs []string
	switch from {
	case FromNode:
		if len(args) > 1 {
			c.scriptPath = args[1]
		}
		userArgs = sliceFrom(args, 2)
	case FromElectron:
		if c.platform.ElectronDefaultApp {
			if len(args) > 1 {
				c.scriptPath = args[1]
			}
			userArgs = sliceFrom(args, 2)
		} else {
			userArgs = sliceFrom(args, 1)
		}
	case FromUser:
		userArgs = append([]string(nil), args...)
	case FromEval:
		userArgs = sliceFrom(args, 1)
	default:
		panic("commandant: unexpected parse option from '" + string(from) + "'")
	}

	c.inferNames()
	return userArgs
}

func sliceFrom(args []string, start int) []string {
	if len(args) <= start {
		return []string{}
	}
	return append([]string(nil), args[start:]...)
}

// inferNames derives the command name from the script path when no name was
// declared.
func (c *Command) inferNames() {
	if c.name == "" && c.scriptPath != "" {
		base := filepath.Base(c.scriptPath)
		c.name = strings.TrimSuffix(base, filepath.Ext(base))
	}
	if c.name == "" {
		c.name = "program"
	}
}
