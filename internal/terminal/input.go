// Package terminal reads user input from stdin.
package terminal

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"
)

// ReadLine reads one line of input from the user
func ReadLine() (string, error) {
	reader := bufio.NewReader(os.Stdin)
	input, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(input), nil
}

// ReadPassword reads a line without echoing it. Falls back to plain
// line input when stdin is not a terminal (e.g. piped input in tests).
func ReadPassword() (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return ReadLine()
	}

	raw, err := term.ReadPassword(fd)
	fmt.Println()
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(string(raw)), nil
}

// IsTerminal checks if stdout is a terminal
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}
