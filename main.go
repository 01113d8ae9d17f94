package main

import (
	"github.com/mohamedMoujib/E-Health-sub000/cmd"
)

func main() {
	cmd.Execute()
}
