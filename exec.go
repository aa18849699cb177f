package commandant

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"

	"github.com/mlorenz/commandant/errs"
)

var (
	inspectBareRegex     = regexp.MustCompile(`^(--inspect(-brk)?)$`)
	inspectSingleRegex   = regexp.MustCompile(`^(--inspect(-brk|-port)?)=([^:]+)$`)
	inspectHostPortRegex = regexp.MustCompile(`^(--inspect(-brk|-port)?)=([^:]+):(\d+)$`)
	digitsRegex          = regexp.MustCompile(`^\d+$`)
)

// IncrementDebuggerPort rewrites --inspect style tokens so a spawned child
// does not collide with the parent's debugger port. The port is incremented
// by one, preserving any host part; a port of 0 is left untouched.
func IncrementDebuggerPort(args []string) []string {
	out := make([]string, len(args))
	for i, arg := range args {
		out[i] = incrementDebuggerPortArg(arg)
	}
	return out
}

func incrementDebuggerPortArg(arg string) string {
	var debugOption string
	debugHost := "127.0.0.1"
	debugPort := "9229"
	if m := inspectBareRegex.FindStringSubmatch(arg); m != nil {
		debugOption = m[1]
	} else if m := inspectSingleRegex.FindStringSubmatch(arg); m != nil {
		debugOption = m[1]
		if digitsRegex.MatchString(m[3]) {
			debugPort = m[3]
		} else {
			debugHost = m[3]
		}
	} else if m := inspectHostPortRegex.FindStringSubmatch(arg); m != nil {
		debugOption = m[1]
		debugHost = m[3]
		debugPort = m[4]
	}
	if debugOption == "" || debugPort == "0" {
		return arg
	}
	port, err := strconv.Atoi(debugPort)
	if err != nil {
		return arg
	}
	return fmt.Sprintf("%s=%s:%d", debugOption, debugHost, port+1)
}

// executableName returns the file the executable subcommand resolves to
// before directory resolution.
func (c *Command) executableName(sub *Command) string {
	if sub.executableFile != "" {
		return sub.executableFile
	}
	return c.name + "-" + sub.name
}

// resolveExecutablePath applies the executable directory. When a script path
// is known, a relative or absent directory is resolved against the directory
// of the invoking script.
func (c *Command) resolveExecutablePath(sub *Command) string {
	file := c.executableName(sub)
	dir := c.executableDir
	if c.scriptPath != "" && !filepath.IsAbs(dir) {
		dir = filepath.Join(filepath.Dir(c.scriptPath), dir)
	}
	if dir != "" {
		return filepath.Join(dir, file)
	}
	return file
}

// executeSubCommand spawns an external subcommand with the combined operands
// and unknown tokens, then routes the child's exit through the exit
// machinery with the commander.executeSubCommandAsync code so an installed
// exit override can observe (and by default swallow) the spawn.
func (c *Command) executeSubCommand(sub *Command, args []string) error {
	args = IncrementDebuggerPort(args)
	path := c.resolveExecutablePath(sub)

	child := exec.Command(path, args...)
	child.Stdin = os.Stdin
	child.Stdout = os.Stdout
	child.Stderr = os.Stderr

	err := child.Run()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return c.exit(errs.NewWithExit(exitErr.ExitCode(), errs.CodeExecuteSubCommandAsync, "(spawned)"))
		}
		if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
			executableDirMessage := "searched for local subcommand relative to directory of invoked script"
			if c.executableDir != "" {
				executableDirMessage = fmt.Sprintf("searched for local subcommand in directory '%s'", c.executableDir)
			}
			return c.errorExit(errs.New(errs.CodeGeneric,
				fmt.Sprintf("error: '%s' does not exist\n - %s", path, executableDirMessage)))
		}
		return c.errorExit(errs.New(errs.CodeGeneric, fmt.Sprintf("error: %v", err)))
	}
	return c.exit(errs.NewWithExit(0, errs.CodeExecuteSubCommandAsync, "(spawned)"))
}
