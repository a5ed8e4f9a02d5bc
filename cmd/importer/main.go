// Command importer loads a spreadsheet from disk into the configured record store.
package main

import "os"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
