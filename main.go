package main

import (
	"github.com/widyatma/catalog/cmd"
)

func main() {
	cmd.Start()
}
