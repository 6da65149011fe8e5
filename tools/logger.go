package tools

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/golang/glog"
)

var isEnabled = true
var printTimestamp = false
var output io.Writer = os.Stdout

func EnableLogger() {
	isEnabled = true
}

func DisableLogger() {
	isEnabled = false
}

func EnableLoggerTimestamp() {
	printTimestamp = true
}

func DisableLoggerTimestamp() {
	printTimestamp = false
}

// SetOutput redirects the user facing messages, stdout by default.
func SetOutput(w io.Writer) {
	output = w
}

// LogOutput prints a user facing progress line. The line is always recorded by
// glog at verbosity 1, and printed unless the logger is disabled.
func LogOutput(val ...interface{}) {
	glog.V(1).Infoln(val...)
	if !isEnabled {
		return
	}
	if printTimestamp {
		fmt.Fprint(output, "["+time.Now().Format("2006-01-02 15.04:05.000")+"] ")
	}
	fmt.Fprintln(output, val...)
}

// LogOutputf is LogOutput with a format.
func LogOutputf(format string, args ...interface{}) {
	LogOutput(fmt.Sprintf(format, args...))
}
