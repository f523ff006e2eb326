// cmd/enhancectl/main.go
package main

import (
	"os"

	"github.com/SyedDaiam9101/conditioning-service/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
