package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

var server srv

func main() {
	// A missing .env is fine, values may come from the real environment.
	_ = godotenv.Load()

	server.loadApp()
	if err := server.app.Run(os.Args); err != nil {
		log.Fatalln(err)
	}
}
