package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
)

// Exit reports err on stderr and terminates the process. A nil err or
// flag.ErrHelp exits 0; the flag package has already printed usage.
func Exit(err error) {
	os.Exit(Report(os.Stderr, err))
}

// Report writes err to w and returns the process exit code for it.
func Report(w io.Writer, err error) int {
	if err == nil || errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if w != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
	}
	return 1
}
