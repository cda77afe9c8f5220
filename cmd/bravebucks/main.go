package main

import (
	"github.com/bravecollective/bravebucks/cmd"
)

func main() {
	cmd.Execute()
}
