// Command oxyview renders glTF 2.0 models in a window and inspects or converts their contents
// without a GPU.
package main

import (
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
