// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

func newValidateCmd() *cobra.Command {
	var relaxed bool

	cmd := &cobra.Command{
		Use:   "validate [file...]",
		Short: "Check that documents are well-formed JSON",
		Long: `Check that each named document is a single well-formed JSON value.

A diagnostic naming the file, the position, and the expected tokens is
printed for each document that fails. With no arguments, stdin is checked.
The exit status is nonzero if any document is invalid.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				if err := validate(os.Stdin, relaxed); err != nil {
					return fmt.Errorf("stdin: %w", err)
				}
				return nil
			}
			var failed int
			for _, path := range args {
				if err := validateFile(path, relaxed); err != nil {
					fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
					failed++
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d documents invalid", failed, len(args))
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&relaxed, "relaxed", "r", false, "accept comments and trailing commas")

	return cmd
}

func validateFile(path string, relaxed bool) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return validate(f, relaxed)
}

// validate consumes all the events of the input, reporting the first error.
func validate(r io.Reader, relaxed bool) error {
	p := newParser(r, relaxed)
	for {
		if _, err := p.Next(); err == io.EOF {
			return nil
		} else if err != nil {
			return err
		}
	}
}
