package main

import "github.com/ytget/ytgrab-bot/cmd"

// Version is set during build via -ldflags "-X main.version=X.Y.Z"
var version = "dev"

func main() {
	cmd.Version = version
	cmd.Execute()
}
