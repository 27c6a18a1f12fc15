// Package main точка входа CLI echotrace.
//
// Использование:
//
//	echotrace [flags] <command> [args]
//
// Команды:
//
//	analyze  - классифицировать запись как HUMAN или AI_GENERATED
//	record   - записать с микрофона и классифицировать
//	tone     - записать синтетический тестовый тон (mp3 или wav)
//	version  - показать версию
package main

import (
	"fmt"
	"os"

	"echotrace/cmd/echotrace/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
