package main

import (
	"log"

	"github.com/jessevdk/go-flags"
	"github.com/nguyengg/arscan/internal/cmd"
)

func main() {
	p, err := cmd.NewParser()
	if err != nil {
		log.Fatal(err)
	}

	_, err = p.Parse()
	exit(code(err))
}

// code returns the exit code for the error returned by flags.Parser.Parse.
func code(err error) int {
	if err == nil || flags.WroteHelp(err) {
		return 0
	}

	return 1
}
