package main

import (
	"github.com/neelgujarathi/ZoomProject/internal/client/cmd"
	"github.com/neelgujarathi/ZoomProject/internal/logging"
)

func main() {
	// Initialize logging
	logging.Init()
	cmd.Execute()
}
