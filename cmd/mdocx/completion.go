package main

import (
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
	ShellBash       Shell = "bash"
	ShellZsh        Shell = "zsh"
	ShellFish       Shell = "fish"
	ShellPowerShell Shell = "powershell"
)

// ErrUnsupportedShell is returned when an unknown shell is requested.
var ErrUnsupportedShell = errors.New("unsupported shell")

// flagType represents the completion type for a flag.
type flagType int

const (
	flagString flagType = iota // default
	flagBool
	flagInt
	flagFloat
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
	FileGlob string   // for file flags
}

// commandDef describes a command for completion.
type commandDef struct {
	Name        string
	Desc        string
	Flags       []flagDef
	TakesFiles  bool   // accepts file arguments
	FilePattern string // glob for file arguments (e.g., "*.md")
}

// completionMeta holds completion-specific metadata for flags.
// Flag names, types, and descriptions come from the FlagSet.
type completionMeta struct {
	Values   []string // enum values
	FileGlob string   // file glob pattern
	IsDir    bool     // directory completion
}

// flagCompletionMeta maps flag names to their completion metadata.
var flagCompletionMeta = map[string]completionMeta{
	// Enum flags
	"page-size":   {Values: []string{"letter", "a4", "legal"}},
	"orientation": {Values: []string{"portrait", "landscape"}},
	"math-engine": {Values: []string{"latex", "browser"}},

	// File flags with glob patterns
	"config": {FileGlob: "*.yaml,*.yml"},

	// Directory flags
	"output":     {IsDir: true},
	"temp-dir":   {IsDir: true},
	"asset-path": {IsDir: true},
}

// extractFlagsFromFlagSet extracts flag definitions from a pflag.FlagSet.
// Enriches with completion metadata from flagCompletionMeta.
func extractFlagsFromFlagSet(fs *flag.FlagSet) []flagDef {
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
		case "int", "int8", "int16", "int32", "int64", "uint", "uint8", "uint16", "uint32", "uint64":
			fd.Type = flagInt
		case "float32", "float64":
			fd.Type = flagFloat
		default:
			fd.Type = flagString
		}

		if meta, ok := flagCompletionMeta[f.Name]; ok {
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
// Flags are extracted from the actual FlagSet.
func getCommands() []commandDef {
	return []commandDef{
		{
			Name:        "convert",
			Desc:        "Convert markdown files to DOCX",
			Flags:       extractFlagsFromFlagSet(buildConvertFlagSet()),
			TakesFiles:  true,
			FilePattern: "*.md,*.markdown",
		},
		{
			Name: "inspect",
			Desc: "Print the document commands for a markdown file",
			Flags: []flagDef{
				{Long: "config", Short: "c", Type: flagFile, Desc: "config file name or path", FileGlob: "*.yaml,*.yml"},
				{Long: "math-engine", Type: flagEnum, Desc: "math engine", Values: []string{"latex", "browser"}},
				{Long: "width", Type: flagInt, Desc: "output width"},
				{Long: "dry-run", Type: flagBool, Desc: "replace equations with placeholders"},
			},
			TakesFiles:  true,
			FilePattern: "*.md,*.markdown",
		},
		{
			Name: "config",
			Desc: "Print the effective configuration",
			Flags: []flagDef{
				{Long: "config", Short: "c", Type: flagFile, Desc: "config file name or path", FileGlob: "*.yaml,*.yml"},
			},
		},
		{
			Name:  "doctor",
			Desc:  "Check math engines and system setup",
			Flags: []flagDef{{Long: "json", Type: flagBool, Desc: "output as JSON"}},
		},
		{Name: "completion", Desc: "Generate shell completion script"},
		{Name: "version", Desc: "Show version information"},
		{Name: "help", Desc: "Show help for a command"},
	}
}

// GenerateCompletion writes shell completion script to w.
// Returns error if shell is unsupported or write fails.
func GenerateCompletion(w io.Writer, shell Shell) error {
	var b strings.Builder
	cmds := getCommands()
	switch shell {
	case ShellBash:
		writeBash(&b, cmds)
	case ShellZsh:
		writeZsh(&b, cmds)
	case ShellFish:
		writeFish(&b, cmds)
	case ShellPowerShell:
		writePowerShell(&b, cmds)
	default:
		return fmt.Errorf("%w: %q (supported: bash, zsh, fish, powershell)", ErrUnsupportedShell, shell)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func commandNames(cmds []commandDef) string {
	names := make([]string, len(cmds))
	for i, c := range cmds {
		names[i] = c.Name
	}
	return strings.Join(names, " ")
}

// flagWords returns every spelling of a command's flags.
func flagWords(c commandDef) string {
	var words []string
	for _, f := range c.Flags {
		words = append(words, "--"+f.Long)
		if f.Short != "" {
			words = append(words, "-"+f.Short)
		}
	}
	return strings.Join(words, " ")
}

// globExts turns "*.md,*.markdown" into "md|markdown" style alternatives.
func globExts(glob string) []string {
	var exts []string
	for _, g := range strings.Split(glob, ",") {
		exts = append(exts, strings.TrimPrefix(strings.TrimSpace(g), "*."))
	}
	return exts
}

func writeBash(b *strings.Builder, cmds []commandDef) {
	b.WriteString("# bash completion for mdocx\n")
	b.WriteString("_mdocx_completions() {\n")
	b.WriteString("    local cur prev cmd\n")
	b.WriteString("    cur=\"${COMP_WORDS[COMP_CWORD]}\"\n")
	b.WriteString("    prev=\"${COMP_WORDS[COMP_CWORD-1]}\"\n")
	b.WriteString("    cmd=\"${COMP_WORDS[1]}\"\n\n")
	b.WriteString("    if [[ ${COMP_CWORD} -eq 1 ]]; then\n")
	fmt.Fprintf(b, "        COMPREPLY=($(compgen -W %q -- \"$cur\"))\n", commandNames(cmds))
	b.WriteString("        return\n")
	b.WriteString("    fi\n\n")

	b.WriteString("    case \"$prev\" in\n")
	seen := map[string]bool{}
	for _, c := range cmds {
		for _, f := range c.Flags {
			if seen[f.Long] {
				continue
			}
			seen[f.Long] = true
			pattern := "--" + f.Long
			if f.Short != "" {
				pattern += "|-" + f.Short
			}
			switch f.Type {
			case flagEnum:
				fmt.Fprintf(b, "        %s)\n            COMPREPLY=($(compgen -W %q -- \"$cur\"))\n            return ;;\n",
					pattern, strings.Join(f.Values, " "))
			case flagFile:
				fmt.Fprintf(b, "        %s)\n            COMPREPLY=($(compgen -f -X '!*.@(%s)' -- \"$cur\"))\n            return ;;\n",
					pattern, strings.Join(globExts(f.FileGlob), "|"))
			case flagDir:
				fmt.Fprintf(b, "        %s)\n            COMPREPLY=($(compgen -d -- \"$cur\"))\n            return ;;\n", pattern)
			}
		}
	}
	b.WriteString("    esac\n\n")

	b.WriteString("    case \"$cmd\" in\n")
	for _, c := range cmds {
		fmt.Fprintf(b, "        %s)\n", c.Name)
		if c.Name == "completion" {
			b.WriteString("            COMPREPLY=($(compgen -W \"bash zsh fish powershell\" -- \"$cur\")) ;;\n")
			continue
		}
		if c.Name == "help" {
			fmt.Fprintf(b, "            COMPREPLY=($(compgen -W %q -- \"$cur\")) ;;\n", commandNames(cmds))
			continue
		}
		fmt.Fprintf(b, "            if [[ \"$cur\" == -* ]]; then\n                COMPREPLY=($(compgen -W %q -- \"$cur\"))\n", flagWords(c))
		if c.TakesFiles {
			fmt.Fprintf(b, "            else\n                COMPREPLY=($(compgen -f -X '!*.@(%s)' -- \"$cur\") $(compgen -d -- \"$cur\"))\n",
				strings.Join(globExts(c.FilePattern), "|"))
		}
		b.WriteString("            fi ;;\n")
	}
	b.WriteString("    esac\n")
	b.WriteString("}\n")
	b.WriteString("shopt -s extglob\n")
	b.WriteString("complete -F _mdocx_completions mdocx\n")
}

// zshEscape escapes a description for an _arguments spec.
func zshEscape(s string) string {
	r := strings.NewReplacer("[", "\\[", "]", "\\]", ":", "\\:", "'", "'\\''")
	return r.Replace(s)
}

func writeZsh(b *strings.Builder, cmds []commandDef) {
	b.WriteString("#compdef mdocx\n\n")
	b.WriteString("_mdocx() {\n")
	b.WriteString("    local -a commands\n")
	b.WriteString("    commands=(\n")
	for _, c := range cmds {
		fmt.Fprintf(b, "        '%s:%s'\n", c.Name, zshEscape(c.Desc))
	}
	b.WriteString("    )\n\n")
	b.WriteString("    if (( CURRENT == 2 )); then\n")
	b.WriteString("        _describe 'command' commands\n")
	b.WriteString("        return\n")
	b.WriteString("    fi\n\n")
	b.WriteString("    case \"${words[2]}\" in\n")
	for _, c := range cmds {
		fmt.Fprintf(b, "        %s)\n", c.Name)
		switch c.Name {
		case "completion":
			b.WriteString("            _values 'shell' bash zsh fish powershell ;;\n")
			continue
		case "help":
			b.WriteString("            _describe 'command' commands ;;\n")
			continue
		}
		b.WriteString("            _arguments \\\n")
		for _, f := range c.Flags {
			action := ""
			switch f.Type {
			case flagEnum:
				action = ":value:(" + strings.Join(f.Values, " ") + ")"
			case flagFile:
				action = ":file:_files -g '*.(" + strings.Join(globExts(f.FileGlob), "|") + ")'"
			case flagDir:
				action = ":directory:_files -/"
			case flagString, flagInt, flagFloat:
				action = ":value: "
			}
			fmt.Fprintf(b, "                '--%s[%s]%s' \\\n", f.Long, zshEscape(f.Desc), action)
			if f.Short != "" {
				fmt.Fprintf(b, "                '-%s[%s]%s' \\\n", f.Short, zshEscape(f.Desc), action)
			}
		}
		if c.TakesFiles {
			fmt.Fprintf(b, "                '*:file:_files -g \"*.(%s)\"'", strings.Join(globExts(c.FilePattern), "|"))
		} else {
			b.WriteString("                '*: :'")
		}
		b.WriteString(" ;;\n")
	}
	b.WriteString("    esac\n")
	b.WriteString("}\n\n")
	b.WriteString("compdef _mdocx mdocx\n")
}

// fishEscape escapes a description for a single-quoted fish string.
func fishEscape(s string) string {
	return strings.NewReplacer("\\", "\\\\", "'", "\\'").Replace(s)
}

func writeFish(b *strings.Builder, cmds []commandDef) {
	b.WriteString("# fish completion for mdocx\n")
	b.WriteString("function __fish_mdocx_needs_command\n    set -l cmd (commandline -opc)\n    test (count $cmd) -eq 1\nend\n\n")
	b.WriteString("function __fish_mdocx_using_command\n    set -l cmd (commandline -opc)\n    test (count $cmd) -gt 1; and test $cmd[2] = $argv[1]\nend\n\n")
	b.WriteString("complete -c mdocx -f\n")
	for _, c := range cmds {
		fmt.Fprintf(b, "complete -c mdocx -n __fish_mdocx_needs_command -a %s -d '%s'\n", c.Name, fishEscape(c.Desc))
	}
	b.WriteString("\n")
	for _, c := range cmds {
		cond := "'__fish_mdocx_using_command " + c.Name + "'"
		if c.Name == "completion" {
			fmt.Fprintf(b, "complete -c mdocx -n %s -a 'bash zsh fish powershell'\n", cond)
		}
		if c.TakesFiles {
			fmt.Fprintf(b, "complete -c mdocx -n %s -F\n", cond)
		}
		for _, f := range c.Flags {
			line := fmt.Sprintf("complete -c mdocx -n %s -l %s", cond, f.Long)
			if f.Short != "" {
				line += " -s " + f.Short
			}
			switch f.Type {
			case flagEnum:
				line += " -x -a '" + strings.Join(f.Values, " ") + "'"
			case flagFile, flagDir:
				line += " -r -F"
			case flagString, flagInt, flagFloat:
				line += " -x"
			}
			line += " -d '" + fishEscape(f.Desc) + "'"
			b.WriteString(line + "\n")
		}
	}
}

// psEscape escapes a string for a single-quoted PowerShell literal.
func psEscape(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

func writePowerShell(b *strings.Builder, cmds []commandDef) {
	b.WriteString("# powershell completion for mdocx\n")
	b.WriteString("Register-ArgumentCompleter -Native -CommandName mdocx -ScriptBlock {\n")
	b.WriteString("    param($wordToComplete, $commandAst, $cursorPosition)\n\n")
	b.WriteString("    $commands = @{\n")
	for _, c := range cmds {
		fmt.Fprintf(b, "        '%s' = '%s'\n", c.Name, psEscape(c.Desc))
	}
	b.WriteString("    }\n")
	b.WriteString("    $flags = @{\n")
	for _, c := range cmds {
		var words []string
		for _, w := range strings.Fields(flagWords(c)) {
			words = append(words, "'"+w+"'")
		}
		if c.Name == "completion" {
			words = append(words, "'bash'", "'zsh'", "'fish'", "'powershell'")
		}
		fmt.Fprintf(b, "        '%s' = @(%s)\n", c.Name, strings.Join(words, ", "))
	}
	b.WriteString("    }\n\n")
	b.WriteString("    $elements = $commandAst.CommandElements | ForEach-Object { $_.ToString() }\n")
	b.WriteString("    if ($elements.Count -le 1 -or ($elements.Count -eq 2 -and $wordToComplete -ne '')) {\n")
	b.WriteString("        $commands.Keys | Where-Object { $_ -like \"$wordToComplete*\" } | Sort-Object | ForEach-Object {\n")
	b.WriteString("            [System.Management.Automation.CompletionResult]::new($_, $_, 'ParameterValue', $commands[$_])\n")
	b.WriteString("        }\n")
	b.WriteString("        return\n")
	b.WriteString("    }\n\n")
	b.WriteString("    $cmd = $elements[1]\n")
	b.WriteString("    if ($flags.ContainsKey($cmd)) {\n")
	b.WriteString("        $flags[$cmd] | Where-Object { $_ -like \"$wordToComplete*\" } | ForEach-Object {\n")
	b.WriteString("            [System.Management.Automation.CompletionResult]::new($_, $_, 'ParameterName', $_)\n")
	b.WriteString("        }\n")
	b.WriteString("    }\n")
	b.WriteString("}\n")
}

// runCompletion handles the completion command.
func runCompletion(args []string, env *Environment) error {
	if len(args) == 0 {
		printCompletionUsage(env.Stdout)
		return nil
	}
	return GenerateCompletion(env.Stdout, Shell(args[0]))
}
