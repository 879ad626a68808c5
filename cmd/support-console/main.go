package main

import (
	"log"

	"github.com/tbourn/go-support-console/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
