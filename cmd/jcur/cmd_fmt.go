// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

package main

import (
	"fmt"
	"os"

	"github.com/creachadair/jcursor"
	"github.com/spf13/cobra"
)

func newFmtCmd() *cobra.Command {
	var (
		indent  string
		compact bool
		relaxed bool
	)

	cmd := &cobra.Command{
		Use:   "fmt [file]",
		Short: "Reformat a JSON document",
		Long: `Reformat a JSON document to stdout.

If a file is provided, it is read; otherwise input comes from stdin. The
document is streamed through the parser and rewritten as it parses, so it is
never held in memory as a whole.

With --relaxed, comments and trailing commas are accepted in the input. The
output is always strict JSON.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, name, err := openInput(args)
			if err != nil {
				return err
			}
			defer in.Close()

			p := newParser(in, relaxed)
			w := jcursor.NewWriter(os.Stdout)
			if !compact {
				w.SetIndent(indent)
			}
			if err := jcursor.Copy(w, p); err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Println()
			return nil
		},
	}

	cmd.Flags().StringVarP(&indent, "indent", "i", "  ", "indentation for each nesting level")
	cmd.Flags().BoolVarP(&compact, "compact", "c", false, "write compact output with no blank space")
	cmd.Flags().BoolVarP(&relaxed, "relaxed", "r", false, "accept comments and trailing commas")

	return cmd
}
