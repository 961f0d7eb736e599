// main is the entry point of the reviewdash CLI.
package main

import (
	"github.com/huangsam/reviewdash/cmd"
	"github.com/huangsam/reviewdash/internal/contract"
)

func main() {
	err := cmd.Execute()
	if stopErr := cmd.StopProfiling(); stopErr != nil {
		contract.LogWarn("Failed to stop profiling", stopErr)
	}
	if err != nil {
		contract.LogFatal("reviewdash failed", err)
	}
}
