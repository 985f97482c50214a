package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/dr8co/vsc/codegen"
	"github.com/dr8co/vsc/diag"
	"github.com/dr8co/vsc/lexer"
	"github.com/dr8co/vsc/parser"
	"github.com/dr8co/vsc/program"
	"github.com/dr8co/vsc/sema"
)

func newCompileCmd() *cobra.Command {
	var out string
	var globalsBlockIndex int

	cmd := &cobra.Command{
		Use:   "compile <source.sc>",
		Short: "Compile a script to a program container",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := newLogger(cmd).With("build_id", uuid.New().String())

			src, err := os.ReadFile(args[0])
			if err != nil {
				return errors.Wrap(err, "vsc: read source")
			}

			bag := diag.NewBag()
			ast := parser.New(lexer.New(string(src)), bag, args[0]).ParseProgram()

			analyzer := sema.NewAnalyzer(bag)
			bound := analyzer.BindProgram(ast)
			log.Debug("first pass complete")
			log.Debug("second pass complete")

			if bag.HasErrors() {
				printDiagnostics(bag)
				return errors.New("vsc: compilation failed")
			}

			gen, err := codegen.Generate(bound)
			if err != nil {
				return errors.Wrap(err, "vsc: code generation")
			}
			log.Debug("codegen complete")

			prog, err := program.Assemble(bound, gen, globalsBlockIndex)
			if err != nil {
				return errors.Wrap(err, "vsc: assemble program")
			}

			if bag.Len() > 0 {
				printDiagnostics(bag)
			}

			if out == "" {
				out = strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0])) + ".vsc"
			}
			f, err := os.Create(out)
			if err != nil {
				return errors.Wrap(err, "vsc: create output")
			}
			defer f.Close()

			if err := prog.Encode(f); err != nil {
				return errors.Wrap(err, "vsc: encode program")
			}

			log.Info("compiled", "script", prog.ScriptName, "output", out, "build_id", prog.BuildID.String())
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "output", "o", "", "output container path (default: <source>.vsc)")
	cmd.Flags().IntVar(&globalsBlockIndex, "globals-block", 0, "owning block index for this script's globals")
	return cmd
}

func printDiagnostics(bag *diag.Bag) {
	bag.SortStable()
	for _, d := range bag.All() {
		fmt.Fprintln(os.Stderr, d.String())
	}
}
