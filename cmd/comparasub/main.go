// Package main provides the comparasub CLI application.
// comparasub cuts small test subsets out of comparative-genomics databases.
package main

import (
	"github.com/comparadb/comparasub/cmd"
)

func main() {
	cmd.Execute()
}
