package main

import (
	"os"

	"github.com/cinex/seat-booking/internal/app"
)

func main() {
	err := app.Run()
	if err != nil {
		os.Exit(1)
	}
}
