// vsc is the command-line front end for the ScriptLang compiler: compile
// source to a program container, disassemble a compiled program back to
// symbolic assembly, and inspect the native-function database.
//
// Replaces the teacher's flag-parsed, REPL-by-default main.go with a thin,
// non-interactive, subcommand-based driver (cobra, grounded on
// termfx-morfx's demo/cmd/main.go) — there is no bytecode VM here to drop
// into a REPL over, and the CLI front end is explicitly out of scope beyond
// its interface (§1).
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:   "vsc",
		Short: "ScriptLang compiler, disassembler, and native-database inspector",
	}
	root.PersistentFlags().Bool("debug", false, "enable debug-level logging")

	root.AddCommand(newCompileCmd(), newDisasmCmd(), newNativesCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newLogger(cmd *cobra.Command) *slog.Logger {
	debug, _ := cmd.Flags().GetBool("debug")
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
