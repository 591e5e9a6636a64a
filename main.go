package main

import (
	"log"

	"github.com/cvmatch/cv-match/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
