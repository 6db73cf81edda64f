// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

package jcursor_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"math"
	"math/big"
	"strings"
	"testing"

	"github.com/creachadair/jcursor"
)

func TestWriterCompact(t *testing.T) {
	var buf bytes.Buffer
	w := jcursor.NewWriter(&buf)
	must := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatalf("Write failed: %v", err)
		}
	}
	must(w.BeginObject())
	must(w.Key("name"))
	must(w.String("Aiko"))
	must(w.Key("tags"))
	must(w.BeginArray())
	must(w.String("x"))
	must(w.String("y"))
	must(w.End())
	must(w.Key("count"))
	must(w.Int(3))
	must(w.Key("ratio"))
	must(w.Float(3.25))
	must(w.Key("ok"))
	must(w.Bool(true))
	must(w.Key("none"))
	must(w.Null())
	must(w.Key("total"))
	must(w.Number("6.02e23"))
	must(w.Key("frac"))
	must(w.Rat(big.NewRat(-7, 4)))
	must(w.End())
	must(w.Flush())

	const want = `{"name":"Aiko","tags":["x","y"],"count":3,"ratio":3.25,` +
		`"ok":true,"none":null,"total":6.02e23,"frac":-1.75}`
	if got := buf.String(); got != want {
		t.Errorf("Output:\n got %#q\nwant %#q", got, want)
	}
}

func TestWriterIndent(t *testing.T) {
	// The indented layout matches what encoding/json produces for an
	// equivalent value.
	type record struct {
		A int      `json:"a"`
		B []int    `json:"b"`
		C struct{} `json:"c"`
		D string   `json:"d"`
		E []int    `json:"e"`
	}
	want, err := json.MarshalIndent(record{A: 1, B: []int{2, 3}, D: "x\ty", E: []int{}}, "", "  ")
	if err != nil {
		t.Fatalf("MarshalIndent failed: %v", err)
	}

	var buf bytes.Buffer
	w := jcursor.NewWriter(&buf)
	w.SetIndent("  ")
	must := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatalf("Write failed: %v", err)
		}
	}
	must(w.BeginObject())
	must(w.Key("a"))
	must(w.Int(1))
	must(w.Key("b"))
	must(w.BeginArray())
	must(w.Int(2))
	must(w.Int(3))
	must(w.End())
	must(w.Key("c"))
	must(w.BeginObject())
	must(w.End())
	must(w.Key("d"))
	must(w.String("x\ty"))
	must(w.Key("e"))
	must(w.BeginArray())
	must(w.End())
	must(w.End())
	must(w.Flush())

	if got := buf.String(); got != string(want) {
		t.Errorf("Output:\n got:\n%s\nwant:\n%s", got, want)
	}
}

func TestWriterScalar(t *testing.T) {
	tests := []struct {
		name  string
		write func(w *jcursor.Writer) error
		want  string
	}{
		{"String", func(w *jcursor.Writer) error { return w.String("hi\nthere") }, `"hi\nthere"`},
		{"Int", func(w *jcursor.Writer) error { return w.Int(-25) }, `-25`},
		{"Float", func(w *jcursor.Writer) error { return w.Float(0.1) }, `0.1`},
		{"BigFloat", func(w *jcursor.Writer) error { return w.Float(1e21) }, `1e+21`},
		{"True", func(w *jcursor.Writer) error { return w.Bool(true) }, `true`},
		{"False", func(w *jcursor.Writer) error { return w.Bool(false) }, `false`},
		{"Null", func(w *jcursor.Writer) error { return w.Null() }, `null`},
		{"Number", func(w *jcursor.Writer) error { return w.Number("-0.5e-2") }, `-0.5e-2`},
		{"Rat", func(w *jcursor.Writer) error { return w.Rat(big.NewRat(1, 64)) }, `0.015625`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			w := jcursor.NewWriter(&buf)
			if err := tc.write(w); err != nil {
				t.Fatalf("Write failed: %v", err)
			}
			if err := w.Close(); err != nil {
				t.Fatalf("Close failed: %v", err)
			}
			if got := buf.String(); got != tc.want {
				t.Errorf("Output: got %#q, want %#q", got, tc.want)
			}
		})
	}
}

func TestWriterMisuse(t *testing.T) {
	tests := []struct {
		name       string
		run        func(w *jcursor.Writer) error
		op, reason string
	}{
		{"SecondTopLevel",
			func(w *jcursor.Writer) error { w.Int(1); return w.Int(2) },
			"Int", "top-level value already written"},
		{"KeyAtTopLevel",
			func(w *jcursor.Writer) error { return w.Key("a") },
			"Key", "no open object"},
		{"KeyInArray",
			func(w *jcursor.Writer) error { w.BeginArray(); return w.Key("a") },
			"Key", "no open object"},
		{"ValueWithoutKey",
			func(w *jcursor.Writer) error { w.BeginObject(); return w.Bool(true) },
			"Bool", "member key required"},
		{"KeyAfterKey",
			func(w *jcursor.Writer) error { w.BeginObject(); w.Key("a"); return w.Key("b") },
			"Key", "member value required"},
		{"EndAtTopLevel",
			func(w *jcursor.Writer) error { return w.End() },
			"End", "no open object or array"},
		{"EndAfterKey",
			func(w *jcursor.Writer) error { w.BeginObject(); w.Key("a"); return w.End() },
			"End", "member value required"},
		{"CloseEmpty",
			func(w *jcursor.Writer) error { return w.Close() },
			"Close", "incomplete JSON text"},
		{"CloseOpenArray",
			func(w *jcursor.Writer) error { w.BeginArray(); w.Int(1); return w.Close() },
			"Close", "incomplete JSON text"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.run(jcursor.NewWriter(io.Discard))
			var serr *jcursor.StateError
			if !errors.As(err, &serr) {
				t.Fatalf("Got error %v, want *StateError", err)
			}
			if serr.Op != tc.op || serr.Reason != tc.reason {
				t.Errorf("StateError: got %q/%q, want %q/%q", serr.Op, serr.Reason, tc.op, tc.reason)
			}
		})
	}
}

func TestWriterSticky(t *testing.T) {
	var buf bytes.Buffer
	w := jcursor.NewWriter(&buf)
	werr := w.Key("loose") // not valid at the top level
	if werr == nil {
		t.Fatal("Key at top level did not report an error")
	}
	if err := w.Int(1); err != werr {
		t.Errorf("Int after error: got %v, want %v", err, werr)
	}
	if err := w.BeginObject(); err != werr {
		t.Errorf("BeginObject after error: got %v, want %v", err, werr)
	}
	if err := w.Flush(); err != werr {
		t.Errorf("Flush after error: got %v, want %v", err, werr)
	}
	if err := w.Close(); err != werr {
		t.Errorf("Close after error: got %v, want %v", err, werr)
	}
	if err := w.Close(); err != nil {
		t.Errorf("Second Close: got %v, want nil", err)
	}
	if buf.Len() != 0 {
		t.Errorf("Output was written after an error: %#q", buf.String())
	}
}

func TestWriterFloatSpecial(t *testing.T) {
	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		w := jcursor.NewWriter(io.Discard)
		if err := w.Float(v); err == nil {
			t.Errorf("Float(%v) did not report an error", v)
		}
	}
}

func TestWriterRat(t *testing.T) {
	tests := []struct {
		num, den int64
		want     string // "" for error
	}{
		{1, 2, "0.5"},
		{3, 4, "0.75"},
		{5, 1, "5"},
		{-7, 4, "-1.75"},
		{1, 8, "0.125"},
		{7, 10, "0.7"},
		{9, 25, "0.36"},
		{1, 3, ""},
		{22, 7, ""},
	}
	for _, tc := range tests {
		var buf bytes.Buffer
		w := jcursor.NewWriter(&buf)
		err := w.Rat(big.NewRat(tc.num, tc.den))
		if tc.want == "" {
			if err == nil {
				t.Errorf("Rat(%d/%d): got %q, want error", tc.num, tc.den, buf.String())
			}
			continue
		}
		if err != nil {
			t.Errorf("Rat(%d/%d) failed: %v", tc.num, tc.den, err)
			continue
		}
		w.Flush()
		if got := buf.String(); got != tc.want {
			t.Errorf("Rat(%d/%d): got %q, want %q", tc.num, tc.den, got, tc.want)
		}
	}

	err := jcursor.NewWriter(io.Discard).Rat(big.NewRat(1, 3))
	const want = "1/3 has no finite decimal representation"
	if err == nil || err.Error() != want {
		t.Errorf("Rat(1/3): got %v, want %s", err, want)
	}
}

func TestWriterNumber(t *testing.T) {
	good := []string{"0", "-0", "15", "-3.75", "1e-9", "6.02e23", "120.5", "2E+4"}
	for _, text := range good {
		var buf bytes.Buffer
		w := jcursor.NewWriter(&buf)
		if err := w.Number(text); err != nil {
			t.Errorf("Number(%q) failed: %v", text, err)
			continue
		}
		w.Flush()
		if got := buf.String(); got != text {
			t.Errorf("Number(%q): got %q", text, got)
		}
	}

	bad := []string{"", "01", "+1", "1.", ".5", "1e", "0x10", "1 2", "NaN", "true", `"1"`}
	for _, text := range bad {
		w := jcursor.NewWriter(io.Discard)
		if err := w.Number(text); err == nil {
			t.Errorf("Number(%q) did not report an error", text)
		}
	}
}

type closeTracker struct {
	bytes.Buffer
	closed bool
}

func (c *closeTracker) Close() error { c.closed = true; return nil }

func TestWriterClose(t *testing.T) {
	var ct closeTracker
	w := jcursor.NewWriter(&ct)
	if err := w.Int(42); err != nil {
		t.Fatalf("Int failed: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if !ct.closed {
		t.Error("Close did not close the underlying writer")
	}
	if got := ct.String(); got != "42" {
		t.Errorf("Output: got %q, want 42", got)
	}
	if err := w.Close(); err != nil {
		t.Errorf("Second Close: got %v, want nil", err)
	}
	var serr *jcursor.StateError
	if err := w.Int(1); !errors.As(err, &serr) {
		t.Errorf("Int after Close: got %v, want *StateError", err)
	}
	if err := w.Flush(); !errors.As(err, &serr) {
		t.Errorf("Flush after Close: got %v, want *StateError", err)
	}
}

func TestCopy(t *testing.T) {
	t.Run("RoundTrip", func(t *testing.T) {
		// Compact copy preserves the input exactly, including the literal
		// text of numbers.
		const input = `{"name":"Aiko\tSan","tags":["x","y"],"n":1.50e1,` +
			`"deep":{"a":[true,false,null],"b":{}},"last":-0.25}`
		p := jcursor.NewParser(strings.NewReader(input))
		var buf bytes.Buffer
		w := jcursor.NewWriter(&buf)
		if err := jcursor.Copy(w, p); err != nil {
			t.Fatalf("Copy failed: %v", err)
		}
		if err := w.Close(); err != nil {
			t.Fatalf("Close failed: %v", err)
		}
		if got := buf.String(); got != input {
			t.Errorf("Copy result:\n got %#q\nwant %#q", got, input)
		}
	})

	t.Run("Indent", func(t *testing.T) {
		p := jcursor.NewParser(strings.NewReader(`{"a":[1,2],"b":{}}`))
		var buf bytes.Buffer
		w := jcursor.NewWriter(&buf)
		w.SetIndent("  ")
		if err := jcursor.Copy(w, p); err != nil {
			t.Fatalf("Copy failed: %v", err)
		}
		w.Flush()
		const want = "{\n  \"a\": [\n    1,\n    2\n  ],\n  \"b\": {}\n}"
		if got := buf.String(); got != want {
			t.Errorf("Copy result:\n got:\n%s\nwant:\n%s", got, want)
		}
	})

	t.Run("ParseError", func(t *testing.T) {
		p := jcursor.NewParser(strings.NewReader(`[1, 2`))
		w := jcursor.NewWriter(io.Discard)
		err := jcursor.Copy(w, p)
		var serr *jcursor.SyntaxError
		if !errors.As(err, &serr) {
			t.Fatalf("Copy: got %v, want *SyntaxError", err)
		}
	})
}

func TestCopyValue(t *testing.T) {
	t.Run("Structure", func(t *testing.T) {
		p := jcursor.NewParser(strings.NewReader(`[{"a":1},{"b":[2,3]},4]`))
		for i := 0; i < 2; i++ { // begin array, begin object
			if _, err := p.Next(); err != nil {
				t.Fatalf("Next failed: %v", err)
			}
		}
		var buf bytes.Buffer
		w := jcursor.NewWriter(&buf)
		if err := jcursor.CopyValue(w, p); err != nil {
			t.Fatalf("CopyValue failed: %v", err)
		}
		if p.Event() != jcursor.EndObject {
			t.Errorf("Event after copy: got %v, want %v", p.Event(), jcursor.EndObject)
		}
		w.Flush()
		if got := buf.String(); got != `{"a":1}` {
			t.Errorf("CopyValue result: got %#q, want %#q", got, `{"a":1}`)
		}

		// The enclosing parse continues normally after the copy.
		got, err := eventTranscript(p)
		if err != nil {
			t.Fatalf("Next failed: %v", err)
		}
		const want = `
begin object
object key <b>
begin array
number value <2>
number value <3>
end array
end object
number value <4>
end array
.`
		if diff := diffStrings(want, got); diff != "" {
			t.Errorf("Events: (-want, +got)\n%s", diff)
		}
	})

	t.Run("Scalar", func(t *testing.T) {
		p := jcursor.NewParser(strings.NewReader(`["first", 2.50]`))
		for i := 0; i < 3; i++ { // begin array, "first", 2.50
			if _, err := p.Next(); err != nil {
				t.Fatalf("Next failed: %v", err)
			}
		}
		var buf bytes.Buffer
		w := jcursor.NewWriter(&buf)
		if err := jcursor.CopyValue(w, p); err != nil {
			t.Fatalf("CopyValue failed: %v", err)
		}
		w.Flush()
		if got := buf.String(); got != "2.50" {
			t.Errorf("CopyValue result: got %#q, want 2.50", got)
		}
	})

	t.Run("NotAValue", func(t *testing.T) {
		p := jcursor.NewParser(strings.NewReader(`{"a":1}`))
		for i := 0; i < 2; i++ { // begin object, key "a"
			if _, err := p.Next(); err != nil {
				t.Fatalf("Next failed: %v", err)
			}
		}
		err := jcursor.CopyValue(jcursor.NewWriter(io.Discard), p)
		var serr *jcursor.StateError
		if !errors.As(err, &serr) {
			t.Fatalf("CopyValue: got %v, want *StateError", err)
		}
		if serr.Op != "CopyValue" || serr.Event != jcursor.Key {
			t.Errorf("StateError: got %q/%v, want CopyValue/object key", serr.Op, serr.Event)
		}
	})
}
