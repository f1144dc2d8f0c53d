package utils

import "fmt"

// RecoverWithError turns a panic in the calling function into an error
// stored in *err. It must be deferred directly.
func RecoverWithError(err *error) {
	if rv := recover(); rv != nil {
		*err = fmt.Errorf("got panic: %v", rv)
	}
}
