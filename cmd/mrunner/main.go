package main

import (
	"log"

	"github.com/MrSnakeDoc/mrunner/internal/cli"
)

func main() {
	if err := cli.New().Execute(); err != nil {
		log.Fatalf("❌ mrunner failed: %v", err)
	}
}
