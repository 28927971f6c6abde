package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/terra-clan/interview-console/pkg/client"
)

// Exit codes for different failure modes
const (
	ExitSuccess     = 0
	ExitError       = 1
	ExitAuthExpired = 2 // stored credentials were rejected; run login again
)

func main() {
	if err := execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)

		if errors.Is(err, client.ErrAuthExpired) {
			fmt.Fprintln(os.Stderr, "Your session has expired. Run `interviewctl login` to sign in again.")
			os.Exit(ExitAuthExpired)
		}
		os.Exit(ExitError)
	}
}
