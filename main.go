package main

import (
	"github.com/joho/godotenv"

	"github.com/jiangrong2001/uom-proxy/internal/cmd"
)

func main() {
	// Optional .env for local development; deployments use the real process
	// environment.
	_ = godotenv.Load()

	cmd.Execute()
}
