package main

import (
	"log"

	"github.com/career-pathfinder/pathfinder/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
