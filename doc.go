// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

// Package jcursor implements a pull-style streaming JSON parser and writer.
//
// # Scanning
//
// The Scanner type implements a lexical scanner for JSON.  Construct a scanner
// from an io.Reader and call its Next method to iterate over the stream. Next
// advances to the next input token and returns nil, or reports an error:
//
//	s := jcursor.NewScanner(input)
//	for s.Next() == nil {
//	   log.Printf("Next token: %v", s.Token())
//	}
//
// Next returns io.EOF when the input has been fully consumed. Any other error
// indicates an I/O or lexical error in the input.
//
//	if s.Err() != io.EOF {
//	   log.Fatalf("Scanning failed: %v", s.Err())
//	}
//
// # Parsing
//
// The Parser type is a cursor over the structure of a single JSON value.
// Unlike a callback-driven parser, the caller asks the parser for each
// event when it is ready to handle one, and may stop at any point. Each call
// to Next advances the cursor and reports what it found: the opening or
// closing of an object or array, an object key, or a scalar value.
//
//	p := jcursor.NewParser(input)
//	for {
//	   ev, err := p.Next()
//	   if err == io.EOF {
//	      break // the value is complete
//	   } else if err != nil {
//	      log.Fatalf("Parse failed: %v", err)
//	   }
//	   log.Printf("Event: %v", ev)
//	}
//
// The cursor validates the input incrementally: a grammar violation is
// reported by the call to Next (or More) that first touches the offending
// token, as an error of concrete type *jcursor.SyntaxError recording the
// position, the token found, and the set of tokens that were admissible at
// that point.
//
// While the cursor is positioned on an event, accessor methods report the
// contents of the input at that position: String for keys and string values,
// and Int, Int64, Float64, Rat, and IsIntegralNumber for numbers. Calling an
// accessor that does not apply to the current event is a programming error
// and panics with a *jcursor.StateError.
//
// # Skipping
//
// The skip methods move the cursor past input the caller does not care
// about, without reporting events for it. When the cursor is on a
// BeginObject or BeginArray event, SkipObject or SkipArray moves past the
// contents of that structure and leaves the cursor on the matching close;
// SkipChildren dispatches on the current event. In any other position the
// skip methods do nothing:
//
//	if ev == jcursor.BeginArray {
//	   if err := p.SkipChildren(); err != nil {
//	      log.Fatalf("Skip failed: %v", err)
//	   }
//	   // the cursor is now on the matching EndArray
//	}
//
// Skipped input is scanned for lexical validity and balanced delimiters
// only; its grammar is not otherwise checked.
//
// # Writing
//
// The Writer type is the counterpart of the Parser: it emits a single JSON
// value one token at a time and verifies that the calls describe a complete
// value. Copy connects the two, transcribing the events of a parser to a
// writer; with SetIndent this reformats a stream without materializing it:
//
//	w := jcursor.NewWriter(output)
//	w.SetIndent("  ")
//	if err := jcursor.Copy(w, p); err != nil {
//	   log.Fatalf("Copy failed: %v", err)
//	}
//	if err := w.Close(); err != nil {
//	   log.Fatalf("Close failed: %v", err)
//	}
package jcursor
