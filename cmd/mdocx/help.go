package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mdocx <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  convert     Convert markdown files to DOCX")
	fmt.Fprintln(w, "  inspect     Print the document commands for a markdown file")
	fmt.Fprintln(w, "  config      Print the effective configuration")
	fmt.Fprintln(w, "  doctor      Check math engines and system setup")
	fmt.Fprintln(w, "  completion  Generate shell completion script")
	fmt.Fprintln(w, "  version     Show version information")
	fmt.Fprintln(w, "  help        Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'mdocx help <command>' for details on a specific command.")
}

// printConvertUsage prints usage for the convert command.
func printConvertUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mdocx convert <input> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Convert markdown files to DOCX. $$...$$ blocks are typeset as equation images.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Arguments:")
	fmt.Fprintln(w, "  input    Markdown file or directory (optional if config has input.defaultDir)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Input/Output:")
	fmt.Fprintln(w, "  -o, --output <path>       Output .docx file or directory")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "  -w, --workers <n>         Parallel workers (0 = auto)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Document:")
	fmt.Fprintln(w, "      --title <s>           Title property (\"\" = auto from H1)")
	fmt.Fprintln(w, "      --author <s>          Author property")
	fmt.Fprintln(w, "      --date <s>            Creation date (\"auto\" = now)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Page:")
	fmt.Fprintln(w, "  -p, --page-size <s>       Page size: letter, a4, legal")
	fmt.Fprintln(w, "      --orientation <s>     Orientation: portrait, landscape")
	fmt.Fprintln(w, "      --margin <f>          Margin in inches (0.25-3.0)")
	fmt.Fprintln(w, "      --image-width <f>     Embedded image width in cm (default 15)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Math:")
	fmt.Fprintln(w, "      --math-engine <s>     Engine: latex, browser (default latex)")
	fmt.Fprintln(w, "      --temp-dir <path>     Equation image directory (default tmp)")
	fmt.Fprintln(w, "      --dpi <n>             Equation resolution, latex engine (default 100)")
	fmt.Fprintln(w, "  -t, --timeout <d>         Per-equation timeout (default 30s)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Styling:")
	fmt.Fprintln(w, "  -s, --style-set <name>    Style set (default \"default\")")
	fmt.Fprintln(w, "      --asset-path <dir>    Custom style set directory")
	fmt.Fprintln(w, "      --highlight           Color code blocks")
	fmt.Fprintln(w, "      --theme <name>        Highlighting theme (default github)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output Control:")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show detailed timing")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment:")
	fmt.Fprintln(w, "  MDOCX_CONFIG, MDOCX_STYLE_SET, MDOCX_MATH_ENGINE, MDOCX_TEMP_DIR,")
	fmt.Fprintln(w, "  MDOCX_INPUT_DIR, MDOCX_OUTPUT_DIR, MDOCX_WORKERS, MDOCX_TIMEOUT")
	fmt.Fprintln(w, "  Flags override environment, which overrides the config file.")
}

// printInspectUsage prints usage for the inspect command.
func printInspectUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mdocx inspect <file> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Render a markdown file and print the document commands it produces.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "      --math-engine <s>     Engine: latex, browser")
	fmt.Fprintln(w, "      --width <n>           Output width (0 = terminal width)")
	fmt.Fprintln(w, "      --dry-run             Replace equations with placeholder images")
}

// printConfigUsage prints usage for the config command.
func printConfigUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mdocx config [-c config]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Print the effective configuration as YAML: config file, then")
	fmt.Fprintln(w, "MDOCX_* environment variables, then defaults.")
}

// printDoctorUsage prints usage for the doctor command.
func printDoctorUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mdocx doctor [--json]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Check latex, dvipng, Chrome and the temp directory.")
	fmt.Fprintln(w, "Exits 1 when no math engine is usable.")
}

// printCompletionUsage prints help for the completion command.
func printCompletionUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mdocx completion <shell>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Generate shell completion script for the specified shell.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Supported shells:")
	fmt.Fprintln(w, "  bash        Bash completion script")
	fmt.Fprintln(w, "  zsh         Zsh completion script")
	fmt.Fprintln(w, "  fish        Fish completion script")
	fmt.Fprintln(w, "  powershell  PowerShell completion script")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Installation:")
	fmt.Fprintln(w, "  Bash:        eval \"$(mdocx completion bash)\"  # in ~/.bashrc")
	fmt.Fprintln(w, "  Zsh:         eval \"$(mdocx completion zsh)\"   # in ~/.zshrc, before compinit")
	fmt.Fprintln(w, "  Fish:        mdocx completion fish > ~/.config/fish/completions/mdocx.fish")
	fmt.Fprintln(w, "  PowerShell:  mdocx completion powershell | Out-String | Invoke-Expression")
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return
	}

	switch args[0] {
	case "convert":
		printConvertUsage(env.Stdout)
	case "inspect":
		printInspectUsage(env.Stdout)
	case "config":
		printConfigUsage(env.Stdout)
	case "doctor":
		printDoctorUsage(env.Stdout)
	case "completion":
		printCompletionUsage(env.Stdout)
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: mdocx version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: mdocx help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
	}
}
