// Command pigletmatcher assembles, disassembles, and runs piglet-matcher
// event-chain bytecode against a text event stream.
package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"gopkg.in/urfave/cli.v1"

	"pigletvm/matcher"
)

var (
	matchedColor = color.New(color.FgGreen)
	noMatchColor = color.New(color.FgYellow)
	errorColor   = color.New(color.FgRed)
)

func main() {
	stdout := colorable.NewColorableStdout()
	if !isatty.IsTerminal(os.Stdout.Fd()) {
		color.NoColor = true
	}

	app := cli.NewApp()
	app.Name = "pigletmatcher"
	app.Usage = "assemble, disassemble, and run piglet-matcher bytecode"
	app.Commands = []cli.Command{
		{
			Name:      "asm",
			Usage:     "assemble text source into a bytecode file",
			ArgsUsage: "<source_path> <out_path>",
			Action:    runAsm,
		},
		{
			Name:      "dis",
			Usage:     "print a disassembly of a bytecode file",
			ArgsUsage: "<bytecode_path>",
			Action:    runDis,
		},
		{
			Name:      "run",
			Usage:     "feed an event file to a bytecode matcher",
			ArgsUsage: "<bytecode_path> <events_path>",
			Action:    func(ctx *cli.Context) error { return runMatch(ctx, stdout) },
		},
	}

	if err := app.Run(os.Args); err != nil {
		errorColor.Fprintf(os.Stderr, "%s\n", err)
		os.Exit(1)
	}
}

func runAsm(ctx *cli.Context) error {
	if ctx.NArg() != 2 {
		return cli.NewExitError("usage: pigletmatcher asm <source_path> <out_path>", 1)
	}
	src, err := os.ReadFile(ctx.Args().Get(0))
	if err != nil {
		return cli.NewExitError(err.Error(), 1)
	}
	code, err := matcher.Assemble(string(src))
	if err != nil {
		return cli.NewExitError(fmt.Sprintf("assembly error: %s", err), 1)
	}
	if err := os.WriteFile(ctx.Args().Get(1), code, 0644); err != nil {
		return cli.NewExitError(err.Error(), 1)
	}
	return nil
}

func runDis(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return cli.NewExitError("usage: pigletmatcher dis <bytecode_path>", 1)
	}
	code, err := os.ReadFile(ctx.Args().Get(0))
	if err != nil {
		return cli.NewExitError(err.Error(), 1)
	}
	instrs, err := matcher.Disassemble(code)
	if err != nil {
		return cli.NewExitError(err.Error(), 1)
	}
	fmt.Print(matcher.FormatDisassembly(instrs))
	return nil
}

// readEvents parses the event file format: one "<name> <screen>" pair of
// decimal u32s per line; blank lines and lines starting with "#" are
// ignored.
func readEvents(path string) ([]matcher.Event, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var events []matcher.Event
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 2 {
			return nil, fmt.Errorf("line %d: expected \"<name> <screen>\"", lineNo)
		}
		name, err := strconv.ParseUint(fields[0], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		screen, err := strconv.ParseUint(fields[1], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		events = append(events, matcher.Event{Name: uint32(name), Screen: uint32(screen)})
	}
	return events, scanner.Err()
}

func runMatch(ctx *cli.Context, stdout io.Writer) error {
	if ctx.NArg() != 2 {
		return cli.NewExitError("usage: pigletmatcher run <bytecode_path> <events_path>", 1)
	}
	code, err := os.ReadFile(ctx.Args().Get(0))
	if err != nil {
		return cli.NewExitError(err.Error(), 1)
	}
	events, err := readEvents(ctx.Args().Get(1))
	if err != nil {
		return cli.NewExitError(err.Error(), 1)
	}

	m := matcher.New(code)
	result := matcher.ResultNext
	for _, evt := range events {
		result = m.Accept(evt)
		if result != matcher.ResultNext {
			break
		}
	}

	if result == matcher.ResultOK {
		matchedColor.Fprintln(stdout, "MATCHED")
		return nil
	}
	noMatchColor.Fprintln(stdout, "NO MATCH")
	return cli.NewExitError("", 1)
}
