package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"interview-practice/internal/cli"
)

func main() {
	// .env необязателен: переменные могут прийти из окружения
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "failed to load .env: %v\n", err)
	}

	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
