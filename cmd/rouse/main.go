package main

import (
	"log"

	"github.com/MrSnakeDoc/rouse/internal/app"
)

func main() {
	if err := app.New().Run(); err != nil {
		log.Fatalf("❌ rouse failed to start: %v", err)
	}
}
