package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: charsheet <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  print        Print a character sheet PDF")
	fmt.Fprintln(w, "  fields       List the form fields of a sheet template")
	fmt.Fprintln(w, "  serve        Serve character sheets over HTTP")
	fmt.Fprintln(w, "  doctor       Check browser, fonts and template")
	fmt.Fprintln(w, "  completion   Generate shell completion script")
	fmt.Fprintln(w, "  version      Show version information")
	fmt.Fprintln(w, "  help         Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'charsheet help <command>' for details on a specific command.")
}

// printPrintUsage prints usage for the print command.
func printPrintUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: charsheet print <file.yaml|id> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Print a character sheet: the filled character page, then the")
	fmt.Fprintln(w, "features, spells and magic items pages that have content.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Arguments:")
	fmt.Fprintln(w, "  file.yaml    Character file, printed on behalf of its owner")
	fmt.Fprintln(w, "  id           Character in data.dir; requires --caller")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output:")
	fmt.Fprintln(w, "  -o, --output <path>       Output file or directory (default <id>.pdf)")
	fmt.Fprintln(w, "  -s, --sections <list>     CHARACTER,FEATURES,SPELLS,MAGIC_ITEMS")
	fmt.Fprintln(w, "                            (default CHARACTER,FEATURES,SPELLS)")
	fmt.Fprintln(w, "      --date <s>            Stamp under section titles: \"auto\", \"auto:FORMAT\",")
	fmt.Fprintln(w, "                            or literal. Tokens: YYYY, YY, MMMM, MMM, MM, M, DD, D")
	fmt.Fprintln(w, "                            Presets: iso, european, us, long. \"\" disables")
	fmt.Fprintln(w, "      --read-only           Make form fields read-only")
	fmt.Fprintln(w, "      --strict              Fail when a section cannot be rendered")
	fmt.Fprintln(w, "      --caller <id>         Caller checked against the character owner")
	fmt.Fprintln(w)
	printRenderFlags(w)
	printCommonFlags(w)
}

// printFieldsUsage prints usage for the fields command.
func printFieldsUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: charsheet fields [template.pdf] [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "List the form fields of a sheet template, with the character value")
	fmt.Fprintln(w, "each one is filled from. Templates without fields use overlay fill.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -t, --template <path>     Template (default template.path)")
	fmt.Fprintln(w, "      --json                Output as JSON")
	fmt.Fprintln(w)
	printCommonFlags(w)
}

// printServeUsage prints usage for the serve command.
func printServeUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: charsheet serve [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Serve character sheets from data.dir over HTTP.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Endpoints:")
	fmt.Fprintln(w, "  POST /v1/characters/{id}/pdf   Header X-Caller-ID; query sections,")
	fmt.Fprintln(w, "                                 readOnly, strict, date")
	fmt.Fprintln(w, "  GET  /healthz                  Liveness and browser state")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Server:")
	fmt.Fprintln(w, "  -a, --addr <addr>         Listen address (default :8080)")
	fmt.Fprintln(w, "  -d, --data-dir <dir>      Directory of <id>.yaml character files")
	fmt.Fprintln(w)
	printRenderFlags(w)
	printCommonFlags(w)
}

// printDoctorUsage prints usage for the doctor command.
func printDoctorUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: charsheet doctor [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Check that Chrome, the fonts and the sheet template are usable.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "      --json                Output as JSON")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
}

func printRenderFlags(w io.Writer) {
	fmt.Fprintln(w, "Rendering:")
	fmt.Fprintln(w, "  -t, --template <path>     Character sheet PDF template")
	fmt.Fprintln(w, "      --timeout <d>         Per-section render timeout (e.g. 30s, 1m)")
	fmt.Fprintln(w, "  -w, --workers <n>         Concurrent browser tabs (0 = auto)")
	fmt.Fprintln(w)
}

func printCommonFlags(w io.Writer) {
	fmt.Fprintln(w, "Common:")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path (or CHARSHEET_CONFIG)")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show debug logs")
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) int {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return ExitSuccess
	}

	switch args[0] {
	case "print":
		printPrintUsage(env.Stdout)
	case "fields":
		printFieldsUsage(env.Stdout)
	case "serve":
		printServeUsage(env.Stdout)
	case "doctor":
		printDoctorUsage(env.Stdout)
	case "completion":
		printCompletionUsage(env.Stdout)
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: charsheet version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: charsheet help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		fmt.Fprintf(env.Stderr, "unknown command: %s\n\n", args[0])
		printUsage(env.Stderr)
		return ExitUsage
	}
	return ExitSuccess
}
