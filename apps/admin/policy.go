package main

import (
	"fmt"

	"github.com/mohdshetty/grap/core/policy"
)

// validatePolicy applies the file over the default tables and prints the result.
func (cli *commandLine) validatePolicy(path string) error {
	store := policy.NewStore()
	if err := store.LoadFile(path); err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "%s: OK\n", path)
	return store.Save(cli.out)
}
