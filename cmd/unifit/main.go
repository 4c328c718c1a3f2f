// Command unifit compares univariate regression models with k-fold
// cross-validation.
//
// Usage:
//
//	unifit evaluate --data data.csv --suite all --plot folds.png
//	unifit evaluate --data data.csv --config unifit.yaml --held-out
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "unifit:", err)
		os.Exit(1)
	}
}
