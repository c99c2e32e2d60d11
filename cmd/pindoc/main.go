// Package main is the pindoc bot and report CLI.
//
// @title           pindoc Ops API
// @version         1.0
// @description     Health and report run history for the pindoc Discord bot.
//
// @BasePath  /
package main

import (
	"fmt"
	"os"
)

func main() {
	Execute()
}

func fatal(msg string, err error) {
	fmt.Fprintf(os.Stderr, "%s: %v\n", msg, err)
	os.Exit(1)
}
