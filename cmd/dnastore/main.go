// cmd/dnastore/main.go
package main

import (
	"dnastore/internal/app"
	"dnastore/internal/appshell"
)

func main() {
	appshell.Main(app.RunContext)
}
