package main

import (
	"errors"
	"fmt"
	"os"

	"roadside-rescue/internal/client/api"
)

func main() {
	if err := newRootCmd(os.Stdin, os.Stdout).Execute(); err != nil {
		if errors.Is(err, api.ErrSessionExpired) {
			fmt.Fprintln(os.Stderr, "Your session has expired. Run `roadside login` again.")
		}
		os.Exit(1)
	}
}
