package main

import (
	"os"

	"mockingbird/internal/app"
)

func main() {
	os.Exit(app.Execute())
}
