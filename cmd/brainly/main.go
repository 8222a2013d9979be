// Command brainly runs the bookmarking API: accounts, saved links and public share links.
package main

import (
	"log"

	"github.com/patric-chuzhbe/brainly/internal/app"
)

func main() {
	theApp, err := app.New()
	if err != nil {
		log.Panicln("failed to initialize the application:", err)
	}
	defer theApp.Close()

	if err := theApp.Run(); err != nil {
		log.Panicln("application stopped with an error:", err)
	}
}
