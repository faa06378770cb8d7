// Command jsontoken parses a JSON document with the token package and
// reports its token count, re-emits it (optionally reformatted), or
// dumps its physical token layout for debugging.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/ncruces/gojsontoken/token"
)

func main() {
	var (
		pretty   = pflag.Bool("pretty", false, "pretty-print the re-emitted document")
		indent   = pflag.Uint8("indent", 0, "indent width for --pretty (max 8; a nonzero value overrides the config file)")
		typoSpc  = pflag.Bool("typographical-space", false, "add a space after ':' and ',' in compact output")
		reemit   = pflag.Bool("reemit", false, "re-emit the parsed document instead of just validating it")
		dump     = pflag.Bool("dump", false, "print the physical token array instead of re-emitting")
		config   = pflag.String("config", ".jsontokenrc.yaml", "path to an optional config file for writer defaults")
	)
	pflag.Parse()

	if pflag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: jsontoken [flags] <file.json>")
		os.Exit(2)
	}

	cfg, err := loadConfig(*config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "jsontoken: reading config: %v\n", err)
		os.Exit(1)
	}

	store, err := token.NewFromFile(pflag.Arg(0), 0)
	if err != nil {
		fmt.Fprintf(os.Stderr, "jsontoken: %v\n", err)
		os.Exit(1)
	}

	if *dump {
		fmt.Print(store.Dump())
		return
	}

	if !*reemit {
		fmt.Printf("jsontoken: %s: %d tokens, OK\n", pflag.Arg(0), store.Len())
		return
	}

	ind := cfg.Indent
	if *indent != 0 {
		ind = int(*indent)
	}
	if ind < 0 || ind > 8 {
		fmt.Fprintf(os.Stderr, "jsontoken: indent must be between 0 and 8, got %d\n", ind)
		os.Exit(2)
	}
	opts := token.WriterOptions{
		Pretty:              *pretty || cfg.Pretty,
		TypographicalSpace: *typoSpc || cfg.TypographicalSpace,
	}
	w := token.NewWriter(opts, uint8(ind), 0)
	if err := token.WriteJSON(w, store.Root()); err != nil {
		fmt.Fprintf(os.Stderr, "jsontoken: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(w.String())
}
