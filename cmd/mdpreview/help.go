package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mdpreview <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  render     Render markdown to sanitized HTML fragments")
	fmt.Fprintln(w, "  meta       Print headings, word count and reading time")
	fmt.Fprintln(w, "  export     Export a standalone HTML or PDF document")
	fmt.Fprintln(w, "  watch      Re-export HTML whenever a file changes")
	fmt.Fprintln(w, "  doctor     Check PDF export and configuration readiness")
	fmt.Fprintln(w, "  completion Generate shell completion script")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'mdpreview help <command>' for details on a specific command.")
}

func printCommonUsage(w io.Writer) {
	fmt.Fprintln(w, "Common:")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show debug logs")
}

func printMarkdownUsage(w io.Writer) {
	fmt.Fprintln(w, "Markdown:")
	fmt.Fprintln(w, "      --no-breaks           Keep single newlines as soft breaks")
	fmt.Fprintln(w, "      --no-gfm              Disable tables, strikethrough, autolinks, task lists")
	fmt.Fprintln(w, "      --no-sanitize         Skip HTML sanitization (trusted input only)")
	fmt.Fprintln(w, "      --origin <url>        Page origin used to mark external links")
	fmt.Fprintln(w, "      --wpm <n>             Reading speed in words per minute")
}

func printDocumentUsage(w io.Writer) {
	fmt.Fprintln(w, "Document:")
	fmt.Fprintln(w, "      --style <s>           Style name, CSS file path or inline CSS")
	fmt.Fprintln(w, "      --highlight-style <s> Chroma style for code blocks")
	fmt.Fprintln(w, "      --css <path>          Extra CSS file appended after the style")
	fmt.Fprintln(w, "      --title <s>           Title (\"\" = front matter or first H1)")
	fmt.Fprintln(w, "      --lang <s>            Document language")
	fmt.Fprintln(w, "      --asset-path <dir>    Custom asset directory (styles/<name>.css)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Table of Contents:")
	fmt.Fprintln(w, "      --toc                 Insert a table of contents")
	fmt.Fprintln(w, "      --toc-title <s>       TOC heading text")
	fmt.Fprintln(w, "      --toc-depth <n>       Max heading depth (1-6)")
	fmt.Fprintln(w, "      --no-toc              Disable table of contents")
}

// printRenderUsage prints usage for the render command.
func printRenderUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mdpreview render [input...] [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Render markdown to HTML fragments. Reads stdin when input is - or")
	fmt.Fprintln(w, "omitted. Directories are rendered recursively in parallel.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output:")
	fmt.Fprintln(w, "  -o, --output <path>       Output file or directory (default: stdout)")
	fmt.Fprintln(w, "  -w, --workers <n>         Parallel workers (0 = auto)")
	fmt.Fprintln(w, "      --preview             Write the JSON preview payload with metadata")
	fmt.Fprintln(w)
	printMarkdownUsage(w)
	fmt.Fprintln(w)
	printCommonUsage(w)
}

// printMetaUsage prints usage for the meta command.
func printMetaUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mdpreview meta [input] [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Print headings, word count and reading time of a markdown file.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output:")
	fmt.Fprintln(w, "  -f, --format <s>          Output format: json, yaml")
	fmt.Fprintln(w, "      --wpm <n>             Reading speed in words per minute")
	fmt.Fprintln(w, "      --outline             Include the table of contents HTML")
	fmt.Fprintln(w, "      --toc-depth <n>       Max heading depth for the outline (1-6)")
	fmt.Fprintln(w)
	printCommonUsage(w)
}

// printExportUsage prints usage for the export command.
func printExportUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mdpreview export <input> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Export a markdown file as a standalone HTML or PDF document.")
	fmt.Fprintln(w, "PDF export uses headless Chrome (set ROD_BROWSER_BIN to pick one).")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output:")
	fmt.Fprintln(w, "  -o, --output <path>       Output file (default: input with .html/.pdf)")
	fmt.Fprintln(w, "  -f, --format <s>          Output format: html, pdf")
	fmt.Fprintln(w, "  -t, --timeout <d>         PDF export timeout (e.g., 30s, 2m)")
	fmt.Fprintln(w)
	printDocumentUsage(w)
	fmt.Fprintln(w)
	printMarkdownUsage(w)
	fmt.Fprintln(w)
	printCommonUsage(w)
}

// printWatchUsage prints usage for the watch command.
func printWatchUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mdpreview watch <input> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Export a markdown file to HTML and rebuild it on every save.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output:")
	fmt.Fprintln(w, "  -o, --output <path>       Output HTML file (default: input with .html)")
	fmt.Fprintln(w, "      --debounce <d>        Delay before rebuilding (default: 300ms)")
	fmt.Fprintln(w, "      --metrics-addr <a>    Serve Prometheus metrics (e.g., :9090)")
	fmt.Fprintln(w)
	printDocumentUsage(w)
	fmt.Fprintln(w)
	printMarkdownUsage(w)
	fmt.Fprintln(w)
	printCommonUsage(w)
}

// printDoctorUsage prints usage for the doctor command.
func printDoctorUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mdpreview doctor [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Check the browser used for PDF export, the environment and the")
	fmt.Fprintln(w, "configuration. Exits 1 when a check fails; warnings still exit 0.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output:")
	fmt.Fprintln(w, "  -f, --format <s>          Output format: text, json, yaml")
	fmt.Fprintln(w)
	printCommonUsage(w)
}

// printCompletionUsage prints help for the completion command.
func printCompletionUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mdpreview completion <shell>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Generate shell completion script for the specified shell.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Supported shells:")
	fmt.Fprintln(w, "  bash        Bash completion script")
	fmt.Fprintln(w, "  zsh         Zsh completion script")
	fmt.Fprintln(w, "  fish        Fish completion script")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Installation:")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Bash:")
	fmt.Fprintln(w, "    # Add to ~/.bashrc:")
	fmt.Fprintln(w, "    eval \"$(mdpreview completion bash)\"")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Zsh:")
	fmt.Fprintln(w, "    # Add to ~/.zshrc (after compinit):")
	fmt.Fprintln(w, "    eval \"$(mdpreview completion zsh)\"")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Fish:")
	fmt.Fprintln(w, "    mdpreview completion fish > ~/.config/fish/completions/mdpreview.fish")
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) error {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return nil
	}

	switch args[0] {
	case "render":
		printRenderUsage(env.Stdout)
	case "meta":
		printMetaUsage(env.Stdout)
	case "export":
		printExportUsage(env.Stdout)
	case "watch":
		printWatchUsage(env.Stdout)
	case "doctor":
		printDoctorUsage(env.Stdout)
	case "completion":
		printCompletionUsage(env.Stdout)
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: mdpreview version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: mdpreview help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		printUsage(env.Stderr)
		return fmt.Errorf("%w: %s", ErrUnknownCommand, args[0])
	}
	return nil
}
