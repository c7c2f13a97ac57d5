// Command pigletvm assembles, disassembles, and runs PigletVM bytecode
// through any of its three interpreter back-ends.
package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"gopkg.in/urfave/cli.v1"

	"pigletvm/vm"
)

var (
	successColor = color.New(color.FgGreen)
	errorColor   = color.New(color.FgRed)

	backendFlag = cli.StringFlag{
		Name:  "backend",
		Usage: "interpreter back-end: switch, switch-masked, threaded, or trace",
		Value: "trace",
	}
)

func main() {
	stdout := colorable.NewColorableStdout()
	if !isatty.IsTerminal(os.Stdout.Fd()) {
		color.NoColor = true
	}

	app := cli.NewApp()
	app.Name = "pigletvm"
	app.Usage = "assemble, disassemble, and run PigletVM bytecode"
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
			Usage:     "execute a bytecode file once",
			ArgsUsage: "<bytecode_path>",
			Flags:     []cli.Flag{backendFlag},
			Action:    func(ctx *cli.Context) error { return runOnce(ctx, stdout) },
		},
		{
			Name:      "runtimes",
			Usage:     "execute a bytecode file N times and report wall time",
			ArgsUsage: "<bytecode_path> <N>",
			Flags:     []cli.Flag{backendFlag},
			Action:    func(ctx *cli.Context) error { return runMany(ctx, stdout) },
		},
	}

	if err := app.Run(os.Args); err != nil {
		errorColor.Fprintf(os.Stderr, "%s\n", err)
		os.Exit(1)
	}
}

func runAsm(ctx *cli.Context) error {
	if ctx.NArg() != 2 {
		return cli.NewExitError("usage: pigletvm asm <source_path> <out_path>", 1)
	}
	src, err := os.ReadFile(ctx.Args().Get(0))
	if err != nil {
		return cli.NewExitError(err.Error(), 1)
	}
	code, err := vm.Assemble(string(src))
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
		return cli.NewExitError("usage: pigletvm dis <bytecode_path>", 1)
	}
	code, err := os.ReadFile(ctx.Args().Get(0))
	if err != nil {
		return cli.NewExitError(err.Error(), 1)
	}
	instrs, err := vm.Disassemble(code)
	if err != nil {
		return cli.NewExitError(err.Error(), 1)
	}
	fmt.Print(vm.FormatDisassembly(instrs))
	return nil
}

func selectBackend(name string) (func([]byte, *os.File) (uint64, error), error) {
	switch name {
	case "switch":
		return func(code []byte, out *os.File) (uint64, error) { return vm.InterpretSwitch(code, out) }, nil
	case "switch-masked":
		return func(code []byte, out *os.File) (uint64, error) { return vm.InterpretSwitchMasked(code, out) }, nil
	case "threaded":
		return func(code []byte, out *os.File) (uint64, error) { return vm.InterpretThreaded(code, out) }, nil
	case "trace":
		return func(code []byte, out *os.File) (uint64, error) { return vm.InterpretTrace(code, out) }, nil
	default:
		return nil, fmt.Errorf("unknown back-end %q", name)
	}
}

func runOnce(ctx *cli.Context, stdout io.Writer) error {
	if ctx.NArg() != 1 {
		return cli.NewExitError("usage: pigletvm run <bytecode_path>", 1)
	}
	code, err := os.ReadFile(ctx.Args().Get(0))
	if err != nil {
		return cli.NewExitError(err.Error(), 1)
	}
	interpret, err := selectBackend(ctx.String("backend"))
	if err != nil {
		return cli.NewExitError(err.Error(), 1)
	}

	result, runErr := interpret(code, os.Stdout)
	if runErr != nil {
		errorColor.Fprintf(os.Stderr, "Runtime error: %s\n", runErr)
		return cli.NewExitError("", 1)
	}
	successColor.Fprintf(stdout, "Result value: %d\n", result)
	return nil
}

func runMany(ctx *cli.Context, stdout io.Writer) error {
	if ctx.NArg() != 2 {
		return cli.NewExitError("usage: pigletvm runtimes <bytecode_path> <N>", 1)
	}
	code, err := os.ReadFile(ctx.Args().Get(0))
	if err != nil {
		return cli.NewExitError(err.Error(), 1)
	}
	var n int
	if _, err := fmt.Sscanf(ctx.Args().Get(1), "%d", &n); err != nil {
		return cli.NewExitError("N must be an integer", 1)
	}
	interpret, err := selectBackend(ctx.String("backend"))
	if err != nil {
		return cli.NewExitError(err.Error(), 1)
	}

	start := time.Now()
	for i := 0; i < n; i++ {
		result, runErr := interpret(code, os.Stdout)
		if runErr != nil {
			errorColor.Fprintf(os.Stderr, "Runtime error: %s\n", runErr)
			return cli.NewExitError("", 1)
		}
		successColor.Fprintf(stdout, "Result value: %d\n", result)
	}
	fmt.Fprintf(os.Stderr, "PROFILE: code finished took %dms\n", time.Since(start).Milliseconds())
	return nil
}
