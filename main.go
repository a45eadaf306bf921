package main

import (
	"log"
)

// Build time values injected with -ldflags "-X main.GitCommit=... -X main.GitTag=... -X main.BuildTime=...".
var (
	GitCommit string
	GitTag    string
	BuildTime string
)

// @title        Library Management API
// @version      1.0
// @description  Authors, books, borrowers and loans management backend.
// @host         localhost:8080
// @BasePath     /
func main() {
	app, err := NewApp()
	if err != nil {
		log.Fatal("library api failed to initialize: ", err)
	}
	if err = app.Run(); err != nil {
		log.Fatal("library api exited. check logs for more details: ", err)
	}
}
