// Command cvm estimates the number of distinct lines or words in its input.
package main

import (
	"os"
)

func main() {
	if err := NewCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
