// cmd/kmerx/main.go
package main

import (
	"kmerx/internal/app"
	"kmerx/internal/appshell"
)

func main() {
	appshell.Main(app.RunContext)
}
