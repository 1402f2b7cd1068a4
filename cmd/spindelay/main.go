package main

import (
	"github.com/joho/godotenv"
)

func main() {
	// Optional .env file for database path and server port.
	_ = godotenv.Load()

	Execute()
}
