package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	flag "github.com/spf13/pflag"
)

// Shell represents a supported shell for completion generation.
type Shell string

// Supported shells for completion.
const (
	ShellBash Shell = "bash"
	ShellZsh  Shell = "zsh"
	ShellFish Shell = "fish"
)

// ErrUnsupportedShell is returned when an unknown shell is requested.
var ErrUnsupportedShell = errors.New("unsupported shell")

// flagType represents the completion type for a flag.
type flagType int

const (
	flagString flagType = iota // default
	flagBool
	flagInt
	flagDuration
	flagEnum // has predefined values
	flagFile // file with glob pattern
	flagDir  // directory
)

// flagDef describes a flag for completion purposes.
type flagDef struct {
	Long     string   // --output
	Short    string   // -o (empty if none)
	Type     flagType // completion type
	Desc     string   // help text
	Values   []string // for enum flags
	FileGlob string   // for file flags, comma-separated ("*.yaml,*.yml")
}

// commandDef describes a command for completion.
type commandDef struct {
	Name        string
	Desc        string
	Flags       []flagDef
	Args        []string // fixed argument values (help topics, shells)
	FilePattern string   // glob for file arguments, "" when none
}

// completionMeta holds completion hints that a FlagSet cannot express.
// Flag names, types and descriptions come from the FlagSet itself.
type completionMeta struct {
	Values   []string
	FileGlob string
	IsDir    bool
}

const markdownGlob = "*.md,*.markdown"

// flagCompletionMeta maps flag names to their completion metadata for all
// commands. commandFlagMeta overrides it per command.
var flagCompletionMeta = map[string]completionMeta{
	"config":     {FileGlob: "*.yaml,*.yml"},
	"style":      {FileGlob: "*.css"},
	"css":        {FileGlob: "*.css"},
	"asset-path": {IsDir: true},
}

var commandFlagMeta = map[string]map[string]completionMeta{
	"render": {"output": {IsDir: true}},
	"meta":   {"format": {Values: []string{formatJSON, formatYAML}}},
	"export": {
		"format": {Values: []string{formatHTML, formatPDF}},
		"output": {FileGlob: "*.html,*.pdf"},
	},
	"watch":  {"output": {FileGlob: "*.html"}},
	"doctor": {"format": {Values: []string{formatText, formatJSON, formatYAML}}},
}

// extractFlags converts the flags of fs to completion definitions for the
// named command.
func extractFlags(command string, fs *flag.FlagSet) []flagDef {
	var flags []flagDef

	fs.VisitAll(func(f *flag.Flag) {
		fd := flagDef{
			Long:  f.Name,
			Short: f.Shorthand,
			Desc:  f.Usage,
		}

		switch f.Value.Type() {
		case "bool":
			fd.Type = flagBool
		case "int":
			fd.Type = flagInt
		case "duration":
			fd.Type = flagDuration
		default:
			fd.Type = flagString
		}

		meta, ok := commandFlagMeta[command][f.Name]
		if !ok {
			meta, ok = flagCompletionMeta[f.Name]
		}
		if ok {
			switch {
			case len(meta.Values) > 0:
				fd.Type = flagEnum
				fd.Values = meta.Values
			case meta.FileGlob != "":
				fd.Type = flagFile
				fd.FileGlob = meta.FileGlob
			case meta.IsDir:
				fd.Type = flagDir
			}
		}

		flags = append(flags, fd)
	})

	return flags
}

// getCommands returns the command registry for completion.
func getCommands() []commandDef {
	topics := []string{"render", "meta", "export", "watch", "doctor", "completion", "version"}

	return []commandDef{
		{
			Name:        "render",
			Desc:        "Render markdown to sanitized HTML fragments",
			Flags:       extractFlags("render", buildRenderFlagSet(&renderFlags{}, io.Discard)),
			FilePattern: markdownGlob,
		},
		{
			Name:        "meta",
			Desc:        "Print headings, word count and reading time",
			Flags:       extractFlags("meta", buildMetaFlagSet(&metaFlags{}, io.Discard)),
			FilePattern: markdownGlob,
		},
		{
			Name:        "export",
			Desc:        "Export a standalone HTML or PDF document",
			Flags:       extractFlags("export", buildExportFlagSet(&exportFlags{}, io.Discard)),
			FilePattern: markdownGlob,
		},
		{
			Name:        "watch",
			Desc:        "Re-export HTML whenever a file changes",
			Flags:       extractFlags("watch", buildWatchFlagSet(&watchFlags{}, io.Discard)),
			FilePattern: markdownGlob,
		},
		{
			Name:  "doctor",
			Desc:  "Check PDF export and configuration readiness",
			Flags: extractFlags("doctor", buildDoctorFlagSet(&doctorFlags{}, io.Discard)),
		},
		{
			Name: "completion",
			Desc: "Generate shell completion script",
			Args: []string{string(ShellBash), string(ShellZsh), string(ShellFish)},
		},
		{Name: "version", Desc: "Show version information"},
		{Name: "help", Desc: "Show help for a command", Args: topics},
	}
}

// GenerateCompletion writes the completion script for shell to w.
func GenerateCompletion(w io.Writer, shell Shell) error {
	var script string
	switch shell {
	case ShellBash:
		script = generateBash(getCommands())
	case ShellZsh:
		script = generateZsh(getCommands())
	case ShellFish:
		script = generateFish(getCommands())
	default:
		return fmt.Errorf("%w: %q (supported: bash, zsh, fish)", ErrUnsupportedShell, shell)
	}
	_, err := io.WriteString(w, script)
	return err
}

// runCompletion handles the completion command.
func runCompletion(_ context.Context, args []string, env *Environment) error {
	if len(args) == 0 {
		printCompletionUsage(env.Stdout)
		return nil
	}
	if len(args) > 1 {
		return fmt.Errorf("%w: completion takes one shell, got %d", ErrUsage, len(args))
	}
	return GenerateCompletion(env.Stdout, Shell(args[0]))
}

// globExtensions turns "*.md,*.markdown" into ["md", "markdown"].
func globExtensions(glob string) []string {
	var exts []string
	for _, g := range strings.Split(glob, ",") {
		exts = append(exts, strings.TrimPrefix(strings.TrimSpace(g), "*."))
	}
	return exts
}

// flagNames returns the --long and -short spellings of every flag.
func flagNames(flags []flagDef) []string {
	names := make([]string, 0, len(flags)*2)
	for _, f := range flags {
		names = append(names, "--"+f.Long)
		if f.Short != "" {
			names = append(names, "-"+f.Short)
		}
	}
	return names
}

func commandNames(cmds []commandDef) []string {
	names := make([]string, len(cmds))
	for i, c := range cmds {
		names[i] = c.Name
	}
	return names
}

// ---------------------------------------------------------------------------
// bash
// ---------------------------------------------------------------------------

func generateBash(cmds []commandDef) string {
	var b strings.Builder

	b.WriteString("# bash completion for mdpreview\n")
	b.WriteString("_mdpreview() {\n")
	b.WriteString("    local cur prev cmd\n")
	b.WriteString("    cur=\"${COMP_WORDS[COMP_CWORD]}\"\n")
	b.WriteString("    prev=\"${COMP_WORDS[COMP_CWORD-1]}\"\n")
	b.WriteString("    cmd=\"${COMP_WORDS[1]}\"\n\n")
	b.WriteString("    if [[ ${COMP_CWORD} -eq 1 ]]; then\n")
	fmt.Fprintf(&b, "        COMPREPLY=($(compgen -W %q -- \"${cur}\"))\n", strings.Join(commandNames(cmds), " "))
	b.WriteString("        return\n")
	b.WriteString("    fi\n\n")
	b.WriteString("    case \"${cmd}\" in\n")

	for _, c := range cmds {
		fmt.Fprintf(&b, "    %s)\n", c.Name)
		writeBashFlagValues(&b, c.Flags)
		if len(c.Flags) > 0 {
			b.WriteString("        if [[ ${cur} == -* ]]; then\n")
			fmt.Fprintf(&b, "            COMPREPLY=($(compgen -W %q -- \"${cur}\"))\n", strings.Join(flagNames(c.Flags), " "))
			b.WriteString("            return\n")
			b.WriteString("        fi\n")
		}
		switch {
		case len(c.Args) > 0:
			fmt.Fprintf(&b, "        COMPREPLY=($(compgen -W %q -- \"${cur}\"))\n", strings.Join(c.Args, " "))
		case c.FilePattern != "":
			fmt.Fprintf(&b, "        COMPREPLY=($(compgen -f -X '%s' -- \"${cur}\"))\n", bashExcludePattern(c.FilePattern))
		}
		b.WriteString("        ;;\n")
	}

	b.WriteString("    esac\n")
	b.WriteString("}\n")
	b.WriteString("shopt -s extglob\n")
	b.WriteString("complete -o filenames -o bashdefault -F _mdpreview mdpreview\n")
	return b.String()
}

// writeBashFlagValues completes the value of the flag typed just before the
// cursor.
func writeBashFlagValues(b *strings.Builder, flags []flagDef) {
	var cases []string
	for _, f := range flags {
		var reply string
		switch f.Type {
		case flagEnum:
			reply = fmt.Sprintf("compgen -W %q -- \"${cur}\"", strings.Join(f.Values, " "))
		case flagFile:
			reply = fmt.Sprintf("compgen -f -X '%s' -- \"${cur}\"", bashExcludePattern(f.FileGlob))
		case flagDir:
			reply = "compgen -d -- \"${cur}\""
		default:
			continue
		}
		pattern := "--" + f.Long
		if f.Short != "" {
			pattern += "|-" + f.Short
		}
		cases = append(cases, fmt.Sprintf("        %s) COMPREPLY=($(%s)); return ;;\n", pattern, reply))
	}
	if len(cases) == 0 {
		return
	}
	b.WriteString("        case \"${prev}\" in\n")
	for _, c := range cases {
		b.WriteString("    " + c)
	}
	b.WriteString("        esac\n")
}

// bashExcludePattern returns the compgen -X pattern hiding files that do not
// match glob.
func bashExcludePattern(glob string) string {
	return "!*.@(" + strings.Join(globExtensions(glob), "|") + ")"
}

// ---------------------------------------------------------------------------
// zsh
// ---------------------------------------------------------------------------

func generateZsh(cmds []commandDef) string {
	var b strings.Builder

	b.WriteString("#compdef mdpreview\n\n")
	b.WriteString("_mdpreview() {\n")
	b.WriteString("  local -a commands\n")
	b.WriteString("  commands=(\n")
	for _, c := range cmds {
		fmt.Fprintf(&b, "    '%s:%s'\n", c.Name, zshQuote(c.Desc))
	}
	b.WriteString("  )\n\n")
	b.WriteString("  if (( CURRENT == 2 )); then\n")
	b.WriteString("    _describe 'command' commands\n")
	b.WriteString("    return\n")
	b.WriteString("  fi\n\n")
	b.WriteString("  case \"${words[2]}\" in\n")

	for _, c := range cmds {
		fmt.Fprintf(&b, "    %s)\n", c.Name)
		var specs []string
		for _, f := range c.Flags {
			specs = append(specs, zshFlagSpec(f))
		}
		switch {
		case len(c.Args) > 0:
			specs = append(specs, fmt.Sprintf("'1:argument:(%s)'", strings.Join(c.Args, " ")))
		case c.FilePattern != "":
			specs = append(specs, fmt.Sprintf("'*:markdown file:_files -g \"*.(%s)\"'", strings.Join(globExtensions(c.FilePattern), "|")))
		}
		if len(specs) > 0 {
			b.WriteString("      _arguments \\\n        ")
			b.WriteString(strings.Join(specs, " \\\n        "))
			b.WriteString("\n")
		}
		b.WriteString("      ;;\n")
	}

	b.WriteString("  esac\n")
	b.WriteString("}\n\n")
	b.WriteString("compdef _mdpreview mdpreview\n")
	return b.String()
}

// zshFlagSpec returns the _arguments spec of f.
func zshFlagSpec(f flagDef) string {
	desc := "[" + zshQuote(f.Desc) + "]"

	var action string
	switch f.Type {
	case flagBool:
	case flagEnum:
		action = ":" + f.Long + ":(" + strings.Join(f.Values, " ") + ")"
	case flagFile:
		action = ":file:_files -g \"*.(" + strings.Join(globExtensions(f.FileGlob), "|") + ")\""
	case flagDir:
		action = ":directory:_files -/"
	default:
		action = ":" + f.Long + ":"
	}

	if f.Short == "" {
		return "'--" + f.Long + desc + action + "'"
	}
	return fmt.Sprintf("'(-%s --%s)'{-%s,--%s}'%s%s'", f.Short, f.Long, f.Short, f.Long, desc, action)
}

// zshQuote escapes s for a single-quoted _arguments description.
func zshQuote(s string) string {
	return strings.NewReplacer(
		"'", `'\''`,
		"[", `\[`,
		"]", `\]`,
		":", `\:`,
	).Replace(s)
}

// ---------------------------------------------------------------------------
// fish
// ---------------------------------------------------------------------------

func generateFish(cmds []commandDef) string {
	var b strings.Builder

	b.WriteString("# fish completion for mdpreview\n")
	b.WriteString("complete -c mdpreview -f\n\n")

	for _, c := range cmds {
		fmt.Fprintf(&b, "complete -c mdpreview -n __fish_use_subcommand -a %s -d '%s'\n", c.Name, fishQuote(c.Desc))
	}

	for _, c := range cmds {
		cond := fmt.Sprintf("-n '__fish_seen_subcommand_from %s'", c.Name)
		b.WriteString("\n")
		for _, f := range c.Flags {
			line := "complete -c mdpreview " + cond
			if f.Short != "" {
				line += " -s " + f.Short
			}
			line += " -l " + f.Long + " -d '" + fishQuote(f.Desc) + "'"
			switch f.Type {
			case flagBool:
			case flagEnum:
				line += " -x -a '" + strings.Join(f.Values, " ") + "'"
			case flagFile:
				line += " -r -F"
			case flagDir:
				line += " -x -a '(__fish_complete_directories)'"
			default:
				line += " -x"
			}
			b.WriteString(line + "\n")
		}
		switch {
		case len(c.Args) > 0:
			fmt.Fprintf(&b, "complete -c mdpreview %s -a '%s'\n", cond, strings.Join(c.Args, " "))
		case c.FilePattern != "":
			fmt.Fprintf(&b, "complete -c mdpreview %s -F\n", cond)
		}
	}
	return b.String()
}

// fishQuote escapes s for a single-quoted fish string.
func fishQuote(s string) string {
	return strings.NewReplacer(`\`, `\\`, "'", `\'`).Replace(s)
}
