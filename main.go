package main

import (
	"github.com/desklago/leadhub/cmd"
)

func main() {
	cmd.Execute()
}
