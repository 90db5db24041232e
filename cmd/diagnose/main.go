// Command diagnose prints the tree of an HDF5 file as the converter sees it
// and reports which quantities a conversion would find.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/davecgh/go-spew/spew"

	"github.com/baltrad/vpconvert/hdf5"
	"github.com/baltrad/vpconvert/odim"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("diagnose", flag.ContinueOnError)
	fs.SetOutput(stderr)
	dump := fs.Bool("spew", false, "dump every node with go-spew")
	quantities := fs.String("quantities", "", "quantities to look up (default: "+strings.Join(odim.DefaultQuantities, ",")+")")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(stderr, "Usage: diagnose [-spew] [-quantities list] <file.h5>")
		return 2
	}

	filename := fs.Arg(0)
	fmt.Fprintf(stdout, "=== Analyzing %s ===\n\n", filename)

	if f, err := hdf5.Open(filename); err == nil {
		fmt.Fprintf(stdout, "Superblock version: %d\n", f.Version())
		for _, attr := range []string{"Conventions", "what/version"} {
			obj, name := path.Split("/" + attr)
			p := hdf5.JoinAttrPath(path.Clean(obj), name)
			if v, err := f.ReadAttr(p); err == nil {
				fmt.Fprintf(stdout, "%s: %v\n", p, v)
			}
		}
		fmt.Fprintln(stdout)
		f.Close()
	}

	tree, err := odim.Load(filename)
	if err != nil {
		fmt.Fprintf(stderr, "ERROR: %v\n", err)
		return 1
	}

	printTree(stdout, tree, *dump)
	fmt.Fprintln(stdout)
	report(stdout, tree, odim.ParseQuantities(*quantities))
	return 0
}

func printTree(w io.Writer, tree *odim.Tree, dump bool) {
	cfg := spew.ConfigState{Indent: "  ", DisablePointerAddresses: true, SortKeys: true}

	for _, p := range tree.Paths() {
		n, _ := tree.Node(p)
		indent := strings.Repeat("  ", depth(p))
		switch n.Kind {
		case odim.GroupNode:
			fmt.Fprintf(w, "%sGroup %q\n", indent, p)
		case odim.AttributeNode:
			v, err := tree.Attribute(p)
			if err != nil {
				fmt.Fprintf(w, "%s@%s: UNREADABLE (%v)\n", indent, n.Name(), err)
				continue
			}
			fmt.Fprintf(w, "%s@%s = %s (%s)\n", indent, n.Name(), v, v.Kind())
		case odim.DatasetNode:
			fmt.Fprintf(w, "%sDataset %q: %s %v\n", indent, p, n.Array.ElementType, n.Array.Shape)
			if dump {
				cfg.Fdump(w, n.Array)
			}
		}
	}
}

func report(w io.Writer, tree *odim.Tree, quantities []string) {
	conv := odim.NewConverter(tree)
	obj, err := conv.Object()
	if err != nil {
		fmt.Fprintf(w, "Object: unknown (%v)\n", err)
	} else {
		fmt.Fprintf(w, "Object: %s (convertible: %t)\n", obj, conv.IsSupported())
	}

	locator := odim.NewLocator(tree)
	for _, q := range quantities {
		key := odim.SearchName(q)
		loc, ok := locator.Locate(key)
		if !ok {
			fmt.Fprintf(w, "  %-10s not found (searched as %q)\n", q, key)
			continue
		}
		fmt.Fprintf(w, "  %-10s %s\n", q, loc.Group())
	}
}

func depth(p string) int {
	if p == "/" {
		return 0
	}
	return strings.Count(p, "/") - 1
}
