package main

import (
	"github.com/rentgengl/copilot-1c-proxy/internal/app"
)

func main() {
	app.New().Run()
}
