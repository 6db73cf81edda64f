// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

package main

import (
	"fmt"
	"os"

	"github.com/creachadair/jcursor"
	"github.com/creachadair/jcursor/jpath"
	"github.com/spf13/cobra"
)

func newGetCmd() *cobra.Command {
	var (
		indent  string
		compact bool
		relaxed bool
	)

	cmd := &cobra.Command{
		Use:   "get path [file]",
		Short: "Extract the value a JSONPath expression addresses",
		Long: `Extract the single value addressed by a JSONPath expression.

The path must address exactly one value, for example:

  $.store.books[2].title
  $['odd name'].count

The input is streamed and values outside the path are skipped without
parsing, so a small value can be extracted from a large document without
holding the document in memory.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, name, err := openInput(args[1:])
			if err != nil {
				return err
			}
			defer in.Close()

			p := newParser(in, relaxed)
			if err := jpath.Eval(p, args[0]); err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			w := jcursor.NewWriter(os.Stdout)
			if !compact {
				w.SetIndent(indent)
			}
			if err := jcursor.CopyValue(w, p); err != nil {
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
