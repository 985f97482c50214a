package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/dr8co/vsc/disasm"
	"github.com/dr8co/vsc/nativedb"
	"github.com/dr8co/vsc/program"
)

func newDisasmCmd() *cobra.Command {
	var natDSN string

	cmd := &cobra.Command{
		Use:   "disasm <program.vsc>",
		Short: "Disassemble a compiled program container to symbolic assembly",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := newLogger(cmd)

			f, err := os.Open(args[0])
			if err != nil {
				return errors.Wrap(err, "vsc: open program")
			}
			defer f.Close()

			prog, err := program.Decode(f)
			if err != nil {
				return errors.Wrap(err, "vsc: decode program")
			}

			var natives *nativedb.DB
			if dsn := nativesDSN(natDSN); dsn != "" {
				natives, err = nativedb.Open(dsn, false)
				if err != nil {
					return errors.Wrap(err, "vsc: open native database")
				}
				defer natives.Close()
			} else {
				log.Debug("no native database configured, falling back to unknown-native labels")
			}

			text, err := disasm.Disassemble(prog, natives)
			if err != nil {
				return errors.Wrap(err, "vsc: disassemble")
			}

			fmt.Fprint(cmd.OutOrStdout(), text)
			return nil
		},
	}

	cmd.Flags().StringVar(&natDSN, "natives", "", "native database DSN (overrides VSC_NATIVES_DSN)")
	return cmd
}

// nativesDSN resolves the native database location: an explicit --natives
// flag wins, otherwise the VSC_NATIVES_DSN environment variable (which
// main's .env load populates when a .env file is present).
func nativesDSN(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return os.Getenv("VSC_NATIVES_DSN")
}
