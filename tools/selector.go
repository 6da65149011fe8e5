package tools

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Selector decides whether the collision models of a link are simplified.
type Selector func(linkName string) bool

// SelectAll keeps every link.
func SelectAll(string) bool {
	return true
}

// NewConsoleSelector asks on out for every link and reads y/n answers from in.
// An empty answer or the end of the input selects the link.
func NewConsoleSelector(in io.Reader, out io.Writer) Selector {
	reader := bufio.NewReader(in)
	return func(linkName string) bool {
		for {
			fmt.Fprintf(out, "Simplify collision models of %s? [Y/n] ", linkName)
			line, err := reader.ReadString('\n')
			switch strings.ToLower(strings.TrimSpace(line)) {
			case "y", "yes":
				return true
			case "n", "no":
				return false
			case "":
				return true
			}
			if err != nil {
				return true
			}
			fmt.Fprintln(out, "Please answer y or n.")
		}
	}
}
