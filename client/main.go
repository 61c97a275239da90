// Command client runs only the front office web server.
package main

import (
	"log"
	"os"

	"github.com/tacbarber/barberdesk/internal/barberdeskcli"
)

func main() {
	args := append([]string{"run"}, os.Args[1:]...)
	if err := barberdeskcli.Execute(args); err != nil {
		log.Fatal(err)
	}
}
