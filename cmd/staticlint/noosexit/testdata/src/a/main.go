package main

import (
	"log"
	"os"
)

func main() {
	defer cleanup()

	if len(os.Args) > 3 {
		log.Fatalln("too many arguments") // want "avoid using log.Fatalln in main.main"
	}

	os.Exit(1) // want "avoid using os.Exit in main.main"
}

func cleanup() {
	os.Exit(0)
}
