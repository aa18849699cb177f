package commandant

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/mlorenz/commandant/errs"
	"github.com/mlorenz/commandant/internal/util"
)

// Help renders a command's help. The core calls into it at well-defined
// points; replace the renderer on a command with SetHelpRenderer to change
// the presentation.
type Help struct {
	// HelpWidth overrides the wrap width; 0 consults the output width
	// provider, falling back to 80.
	HelpWidth int
	// SortSubcommands orders subcommands alphabetically in help output.
	SortSubcommands bool
	// SortOptions orders options alphabetically in help output.
	SortOptions bool
	// ShowGlobalOptions adds a section for options of ancestor commands.
	ShowGlobalOptions bool
}

// VisibleCommands returns the subcommands shown in help, including the
// implicit help command when one applies.
func (h *Help) VisibleCommands(cmd *Command) []*Command {
	subcommands := cmd.Commands()
	visible := make([]*Command, 0, len(subcommands))
	for _, sub := range subcommands {
		if !sub.hidden {
			visible = append(visible, sub)
		}
	}
	if helpCommand := cmd.getHelpCommand(); helpCommand != nil && !helpCommand.hidden {
		visible = append(visible, helpCommand)
	}
	if h.SortSubcommands {
		sort.Slice(visible, func(i, j int) bool { return visible[i].name < visible[j].name })
	}
	return visible
}

// VisibleOptions returns the options shown in help, including the help
// option when one applies.
func (h *Help) VisibleOptions(cmd *Command) []*Option {
	options := cmd.Options()
	visible := make([]*Option, 0, len(options))
	for _, option := range options {
		if !option.hidden {
			visible = append(visible, option)
		}
	}
	if helpOption := cmd.getHelpOption(); helpOption != nil {
		visible = append(visible, helpOption)
	}
	if h.SortOptions {
		sort.Slice(visible, func(i, j int) bool { return visible[i].Name() < visible[j].Name() })
	}
	return visible
}

// VisibleGlobalOptions returns the visible options of every ancestor.
func (h *Help) VisibleGlobalOptions(cmd *Command) []*Option {
	var visible []*Option
	for ancestor := cmd.parent; ancestor != nil; ancestor = ancestor.parent {
		for _, option := range ancestor.Options() {
			if !option.hidden {
				visible = append(visible, option)
			}
		}
	}
	if h.SortOptions {
		sort.Slice(visible, func(i, j int) bool { return visible[i].Name() < visible[j].Name() })
	}
	return visible
}

// VisibleArguments returns the positional arguments described in help. The
// section renders only when at least one argument carries a description.
func (h *Help) VisibleArguments(cmd *Command) []*Argument {
	if cmd.argsDescription != nil {
		for _, arg := range cmd.registeredArguments {
			if arg.Description == "" {
				arg.Description = cmd.argsDescription[arg.name]
			}
		}
	}
	for _, arg := range cmd.registeredArguments {
		if arg.Description != "" {
			return cmd.registeredArguments
		}
	}
	return nil
}

// SubcommandTerm renders the term column for a subcommand.
func (h *Help) SubcommandTerm(cmd *Command) string {
	args := make([]string, 0, len(cmd.registeredArguments))
	for _, arg := range cmd.registeredArguments {
		args = append(args, humanReadableArgName(arg))
	}
	term := cmd.name
	if len(cmd.aliases) > 0 {
		term += "|" + cmd.aliases[0]
	}
	if cmd.acceptedOptions.Len() > 0 || !cmd.helpOptionDisabled {
		term += " [options]"
	}
	if len(args) > 0 {
		term += " " + strings.Join(args, " ")
	}
	return term
}

// OptionTerm renders the term column for an option.
func (h *Help) OptionTerm(option *Option) string {
	return option.Flags
}

// ArgumentTerm renders the term column for a positional argument.
func (h *Help) ArgumentTerm(arg *Argument) string {
	return arg.name
}

// CommandUsage renders the usage line including ancestor command names.
func (h *Help) CommandUsage(cmd *Command) string {
	term := cmd.name
	if len(cmd.aliases) > 0 {
		term += "|" + cmd.aliases[0]
	}
	prefix := ""
	for ancestor := cmd.parent; ancestor != nil; ancestor = ancestor.parent {
		prefix = ancestor.name + " " + prefix
	}
	return prefix + term + " " + cmd.Usage()
}

// CommandDescription returns the full description of the command.
func (h *Help) CommandDescription(cmd *Command) string {
	return cmd.description
}

// SubcommandDescription prefers the summary over the description.
func (h *Help) SubcommandDescription(cmd *Command) string {
	if cmd.summary != "" {
		return cmd.summary
	}
	return cmd.description
}

// OptionDescription appends choices, default, preset and env details to the
// declared description.
func (h *Help) OptionDescription(option *Option) string {
	var extra []string
	if len(option.argChoices) > 0 {
		extra = append(extra, "choices: "+joinDisplayValues(option.argChoices))
	}
	if option.defaultValue != nil {
		showDefault := option.required || option.optional || option.isBoolean()
		if showDefault {
			description := option.defaultValueDescription
			if description == "" {
				description = displayValue(option.defaultValue)
			}
			extra = append(extra, "default: "+description)
		}
	}
	if option.presetArg != nil && option.optional {
		extra = append(extra, "preset: "+displayValue(option.presetArg))
	}
	if option.envVar != "" {
		extra = append(extra, "env: "+option.envVar)
	}
	if len(extra) > 0 {
		return fmt.Sprintf("%s (%s)", option.Description, strings.Join(extra, ", "))
	}
	return option.Description
}

// ArgumentDescription appends choices and default details to the declared
// description.
func (h *Help) ArgumentDescription(arg *Argument) string {
	var extra []string
	if len(arg.argChoices) > 0 {
		extra = append(extra, "choices: "+joinDisplayValues(arg.argChoices))
	}
	if arg.defaultValue != nil {
		description := arg.defaultValueDescription
		if description == "" {
			description = displayValue(arg.defaultValue)
		}
		extra = append(extra, "default: "+description)
	}
	if len(extra) > 0 {
		if arg.Description != "" {
			return fmt.Sprintf("%s (%s)", arg.Description, strings.Join(extra, ", "))
		}
		return "(" + strings.Join(extra, ", ") + ")"
	}
	return arg.Description
}

func displayValue(v any) string {
	if s, ok := v.(string); ok {
		return fmt.Sprintf("%q", s)
	}
	return fmt.Sprintf("%v", v)
}

func joinDisplayValues(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = fmt.Sprintf("%q", v)
	}
	return strings.Join(quoted, ", ")
}

// PadWidth returns the width of the widest term across all sections.
func (h *Help) PadWidth(cmd *Command) int {
	widest := 0
	for _, option := range h.VisibleOptions(cmd) {
		widest = util.Max(widest, runewidth.StringWidth(h.OptionTerm(option)))
	}
	if h.ShowGlobalOptions {
		for _, option := range h.VisibleGlobalOptions(cmd) {
			widest = util.Max(widest, runewidth.StringWidth(h.OptionTerm(option)))
		}
	}
	for _, sub := range h.VisibleCommands(cmd) {
		widest = util.Max(widest, runewidth.StringWidth(h.SubcommandTerm(sub)))
	}
	for _, arg := range h.VisibleArguments(cmd) {
		widest = util.Max(widest, runewidth.StringWidth(h.ArgumentTerm(arg)))
	}
	return widest
}

// Wrap folds text at width with a hanging indent for continuation lines.
// Text that fits within width is returned unchanged; otherwise each
// newline-separated paragraph is re-flowed on its own and every line after
// the first starts with the indent.
func (h *Help) Wrap(text string, width, indent int) string {
	if width <= 0 || runewidth.StringWidth(text) <= width {
		return text
	}
	pad := strings.Repeat(" ", indent)
	var lines []string
	for _, paragraph := range strings.Split(text, "\n") {
		words := strings.Fields(paragraph)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}
		line := words[0]
		lineWidth := runewidth.StringWidth(line)
		if len(lines) > 0 {
			line = pad + line
		}
		for _, word := range words[1:] {
			wordWidth := runewidth.StringWidth(word)
			if lineWidth+1+wordWidth > width-indent && lineWidth > 0 {
				lines = append(lines, line)
				line = pad + word
				lineWidth = wordWidth
				continue
			}
			line += " " + word
			lineWidth += 1 + wordWidth
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// FormatHelp renders the full help text for cmd.
func (h *Help) FormatHelp(cmd *Command) string {
	termWidth := h.PadWidth(cmd)
	helpWidth := h.HelpWidth
	if helpWidth <= 0 {
		helpWidth = 80
	}
	const itemIndentWidth = 2
	const itemSeparatorWidth = 2

	formatItem := func(term, description string) string {
		if description == "" {
			return term
		}
		padded := term + strings.Repeat(" ", util.Max(0, termWidth+itemSeparatorWidth-runewidth.StringWidth(term)))
		return h.Wrap(padded+description, helpWidth-itemIndentWidth, termWidth+itemSeparatorWidth)
	}
	formatList := func(items []string) string {
		indent := strings.Repeat(" ", itemIndentWidth)
		for i, item := range items {
			items[i] = indent + strings.ReplaceAll(item, "\n", "\n"+indent)
		}
		return strings.Join(items, "\n")
	}

	output := []string{"Usage: " + h.CommandUsage(cmd), ""}

	if description := h.CommandDescription(cmd); description != "" {
		output = append(output, h.Wrap(description, helpWidth, 0), "")
	}

	var argumentList []string
	for _, arg := range h.VisibleArguments(cmd) {
		argumentList = append(argumentList, formatItem(h.ArgumentTerm(arg), h.ArgumentDescription(arg)))
	}
	if len(argumentList) > 0 {
		output = append(output, "Arguments:", formatList(argumentList), "")
	}

	var optionList []string
	for _, option := range h.VisibleOptions(cmd) {
		optionList = append(optionList, formatItem(h.OptionTerm(option), h.OptionDescription(option)))
	}
	if len(optionList) > 0 {
		output = append(output, "Options:", formatList(optionList), "")
	}

	if h.ShowGlobalOptions {
		var globalList []string
		for _, option := range h.VisibleGlobalOptions(cmd) {
			globalList = append(globalList, formatItem(h.OptionTerm(option), h.OptionDescription(option)))
		}
		if len(globalList) > 0 {
			output = append(output, "Global Options:", formatList(globalList), "")
		}
	}

	var commandList []string
	for _, sub := range h.VisibleCommands(cmd) {
		commandList = append(commandList, formatItem(h.SubcommandTerm(sub), h.SubcommandDescription(sub)))
	}
	if len(commandList) > 0 {
		output = append(output, "Commands:", formatList(commandList), "")
	}

	return strings.Join(output, "\n")
}

// getHelpOption returns the help option, creating the implicit -h, --help
// on first query unless help has been disabled.
func (c *Command) getHelpOption() *Option {
	if c.helpOptionDisabled {
		return nil
	}
	if c.helpOption == nil {
		c.helpOption = NewOption("-h, --help", "display help for command")
	}
	return c.helpOption
}

// getHelpCommand returns the help subcommand, creating the implicit
// help [command] on first query when this command has subcommands, no
// action handler and no explicit help child.
func (c *Command) getHelpCommand() *Command {
	implicit := c.registeredCommands.Len() > 0 && c.actionHandler == nil && c.findCommand("help") == nil
	if c.helpCommandSet {
		implicit = c.helpCommandEnabled
	}
	if !implicit {
		return nil
	}
	if c.helpCommand == nil {
		c.helpCommand = NewCommand("help")
		c.helpCommand.Argument("[command]", "command to show help for")
		c.helpCommand.SetDescription("display help for command")
		c.helpCommand.parent = c
	}
	return c.helpCommand
}

// HelpInformation renders the command's help text.
func (c *Command) HelpInformation() string {
	renderer := c.helpRenderer()
	return renderer.FormatHelp(c)
}

func (c *Command) helpRenderer() *Help {
	renderer := c.help
	if renderer == nil {
		renderer = &Help{}
	}
	dup := *renderer
	if dup.HelpWidth <= 0 {
		if w := c.outputConfig().GetOutHelpWidth(); w > 0 {
			dup.HelpWidth = w
		}
	}
	return &dup
}

func (c *Command) helpRendererForError() *Help {
	renderer := c.helpRenderer()
	if c.help == nil || c.help.HelpWidth <= 0 {
		if w := c.outputConfig().GetErrHelpWidth(); w > 0 {
			renderer.HelpWidth = w
		}
	}
	return renderer
}

// SetHelpRenderer replaces the help renderer used by this command.
func (c *Command) SetHelpRenderer(h *Help) *Command {
	c.help = h
	return c
}

// AddHelpText attaches text rendered around the built-in help. BeforeAll and
// AfterAll positions also apply to descendants. An unknown position is an
// authoring error.
func (c *Command) AddHelpText(position HelpTextPosition, text string) *Command {
	switch position {
	case BeforeAll, Before, After, AfterAll:
	default:
		panic(fmt.Sprintf("commandant: unexpected value for position to addHelpText: '%s'", position))
	}
	if c.helpTexts == nil {
		c.helpTexts = map[HelpTextPosition][]string{}
	}
	c.helpTexts[position] = append(c.helpTexts[position], text)
	return c
}

// OutputHelp writes help to the out sink.
func (c *Command) OutputHelp() {
	c.writeHelp(false)
}

func (c *Command) writeHelp(toError bool) {
	cfg := c.outputConfig()
	write := cfg.WriteOut
	renderer := c.helpRenderer()
	if toError {
		write = cfg.WriteErr
		renderer = c.helpRendererForError()
	}

	ancestors := c.getCommandAndAncestors()
	root := append([]*Command(nil), ancestors...)
	util.Reverse(root)
	for _, ancestor := range root {
		for _, text := range ancestor.helpTexts[BeforeAll] {
			write(text + "\n")
		}
	}
	for _, text := range c.helpTexts[Before] {
		write(text + "\n")
	}

	write(renderer.FormatHelp(c))

	for _, text := range c.helpTexts[After] {
		write(text + "\n")
	}
	for _, ancestor := range ancestors {
		for _, text := range ancestor.helpTexts[AfterAll] {
			write(text + "\n")
		}
	}
}

// Help displays help on the out sink and exits with the commander.help
// control-flow code.
func (c *Command) Help() error {
	return c.helpExit(false)
}

func (c *Command) helpExit(toError bool) error {
	c.writeHelp(toError)
	exitCode := 0
	if toError {
		exitCode = 1
	}
	return c.exit(errs.NewWithExit(exitCode, errs.CodeHelp, "(outputHelp)"))
}

// helpDisplayed renders help on the out sink and exits with the
// commander.helpDisplayed control-flow code.
func (c *Command) helpDisplayed() error {
	c.writeHelp(false)
	return c.exit(errs.NewWithExit(0, errs.CodeHelpDisplayed, "(outputHelp)"))
}

// outputHelpIfRequested scans option-shaped tokens for the help flag and,
// when present, renders help and exits with commander.helpDisplayed.
func (c *Command) outputHelpIfRequested(args []string) error {
	helpOption := c.getHelpOption()
	if helpOption == nil {
		return nil
	}
	for _, arg := range args {
		if helpOption.Is(arg) {
			return c.helpDisplayed()
		}
	}
	return nil
}
