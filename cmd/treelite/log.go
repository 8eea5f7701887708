package main

import (
	"fmt"
	"os"
)

// logger writes progress lines to stderr when the --verbose flag is
// set, keeping stdout clean for the model dump itself.
type logger bool

func (l logger) Logf(format string, a ...interface{}) {
	if !l {
		return
	}
	fmt.Fprintf(os.Stderr, format, a...)
	fmt.Fprintln(os.Stderr, "")
}
