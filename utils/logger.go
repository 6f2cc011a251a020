package utils

import "log"

// Logf is the diagnostic logger shared by the solver packages. It defaults
// to log.Printf; the command line tool and tests may redirect or mute it.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces Logf. Passing nil installs a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}
