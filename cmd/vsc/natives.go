package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/dr8co/vsc/nativedb"
)

func newNativesCmd() *cobra.Command {
	var dsn string

	root := &cobra.Command{
		Use:   "natives",
		Short: "Inspect and maintain the native-function database",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if dsn == "" {
				dsn = nativesDSN("")
			}
			if dsn == "" {
				return errors.New("vsc: no native database configured (use --dsn or VSC_NATIVES_DSN)")
			}
			return nil
		},
	}
	root.PersistentFlags().StringVar(&dsn, "dsn", "", "native database DSN (overrides VSC_NATIVES_DSN)")

	root.AddCommand(newNativesLookupCmd(&dsn), newNativesSeedCmd(&dsn))
	return root
}

func newNativesLookupCmd(dsn *string) *cobra.Command {
	return &cobra.Command{
		Use:   "lookup <hash>",
		Short: "Resolve a native import hash to its name and signature",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := strconv.ParseUint(args[0], 0, 64)
			if err != nil {
				return errors.Wrap(err, "vsc: parse hash")
			}

			db, err := nativedb.Open(*dsn, false)
			if err != nil {
				return errors.Wrap(err, "vsc: open native database")
			}
			defer db.Close()

			n, ok := db.Lookup(hash)
			if !ok {
				fmt.Println(nativedb.UnknownName(hash))
				return nil
			}
			fmt.Printf("%s  original=0x%016X  signature=%s\n", n.Name, n.OriginalHash, n.Signature)
			return nil
		},
	}
}

// newNativesSeedCmd loads a CSV of hash,original_hash,name,signature rows
// into the native database. Building and maintaining that database from the
// engine's own native tables is out of scope (§1); this only provides the
// loading mechanism an operator or a separate extraction tool feeds into.
func newNativesSeedCmd(dsn *string) *cobra.Command {
	return &cobra.Command{
		Use:   "seed <table.csv>",
		Short: "Load native definitions from a CSV file into the database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return errors.Wrap(err, "vsc: open native table")
			}
			defer f.Close()

			rows, err := csv.NewReader(f).ReadAll()
			if err != nil {
				return errors.Wrap(err, "vsc: parse native table")
			}

			natives := make([]nativedb.Native, 0, len(rows))
			for i, row := range rows {
				if len(row) != 4 {
					return errors.Errorf("vsc: row %d: expected 4 columns, got %d", i, len(row))
				}
				hash, err := strconv.ParseUint(row[0], 0, 64)
				if err != nil {
					return errors.Wrapf(err, "vsc: row %d: hash", i)
				}
				original, err := strconv.ParseUint(row[1], 0, 64)
				if err != nil {
					return errors.Wrapf(err, "vsc: row %d: original hash", i)
				}
				natives = append(natives, nativedb.Native{
					Hash:         hash,
					OriginalHash: original,
					Name:         row[2],
					Signature:    row[3],
				})
			}

			db, err := nativedb.Open(*dsn, false)
			if err != nil {
				return errors.Wrap(err, "vsc: open native database")
			}
			defer db.Close()

			if err := db.Seed(natives...); err != nil {
				return errors.Wrap(err, "vsc: seed native database")
			}

			fmt.Printf("seeded %d native definitions\n", len(natives))
			return nil
		},
	}
}
