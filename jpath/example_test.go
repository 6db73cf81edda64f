package jpath_test

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/creachadair/jcursor"
	"github.com/creachadair/jcursor/jpath"
)

func ExampleEval() {
	const input = `{
     "characters": [
       {"name": "Westley", "alias": "The Dread Pirate Roberts"},
       {"name": "Buttercup", "alias": "The Princess Bride"}
     ]
  }`

	p := jcursor.NewParser(strings.NewReader(input))
	if err := jpath.Eval(p, "$.characters[1].alias"); err != nil {
		log.Fatalf("Eval: %v", err)
	}
	fmt.Println(p.String())
	// Output:
	// The Princess Bride
}

func ExampleSeek() {
	path := jpath.Expr{
		{Op: jpath.Member, Name: "characters"},
		{Op: jpath.Index, Index: 0},
	}
	fmt.Println(path)

	p := jcursor.NewParser(strings.NewReader(
		`{"characters": [{"name": "Westley"}, {"name": "Buttercup"}]}`))
	if err := jpath.Seek(p, path); err != nil {
		log.Fatalf("Seek: %v", err)
	}
	w := jcursor.NewWriter(os.Stdout)
	if err := jcursor.CopyValue(w, p); err != nil {
		log.Fatalf("CopyValue: %v", err)
	}
	w.Flush()
	// Output:
	// $.characters[0]
	// {"name":"Westley"}
}
