// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

// Program jcur streams JSON documents through a pull parser to reformat
// them, validate them, and extract single values by path.
package main

import (
	"io"
	"os"

	"github.com/creachadair/jcursor"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "jcur",
		Short: "Stream-process JSON documents",
	}

	rootCmd.AddCommand(newFmtCmd())
	rootCmd.AddCommand(newValidateCmd())
	rootCmd.AddCommand(newGetCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// openInput opens the input named by args, or stdin if args is empty. The
// returned name labels the input in diagnostics.
func openInput(args []string) (io.ReadCloser, string, error) {
	if len(args) == 0 {
		return io.NopCloser(os.Stdin), "stdin", nil
	}
	f, err := os.Open(args[0])
	if err != nil {
		return nil, "", err
	}
	return f, args[0], nil
}

// newParser constructs a parser for r, with the input extensions enabled
// when relaxed is true.
func newParser(r io.Reader, relaxed bool) *jcursor.Parser {
	p := jcursor.NewParser(r)
	if relaxed {
		p.AllowComments(true)
		p.AllowTrailingCommas(true)
	}
	return p
}
