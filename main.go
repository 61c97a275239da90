package main

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/tacbarber/barberdesk/internal/barberdeskcli"
)

func main() {
	if err := barberdeskcli.Execute(os.Args[1:]); err != nil {
		if errors.Is(err, barberdeskcli.ErrUsage) {
			fmt.Fprintln(os.Stderr, err)
			fmt.Fprintln(os.Stderr)
			barberdeskcli.PrintUsage(os.Stderr)
			os.Exit(2)
		}
		log.Fatal(err)
	}
}
