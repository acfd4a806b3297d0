package auth

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"

	"golang.org/x/term"
)

// PromptCredentials interactively collects a credential set from stdin.
// Secrets are read without echo when stdin is a terminal.
func PromptCredentials(label string) (*Credentials, error) {
	reader := bufio.NewReader(os.Stdin)

	if label == "" {
		fmt.Print("Credential label [default]: ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return nil, fmt.Errorf("failed to read label: %w", err)
		}
		if label = strings.TrimSpace(line); label == "" {
			label = "default"
		}
	}

	bearer, err := promptSecret(reader, "Bearer token (leave empty to use key/secret): ")
	if err != nil {
		return nil, err
	}

	creds := &Credentials{Label: label, BearerToken: bearer}

	if bearer == "" {
		if creds.APIKey, err = promptSecret(reader, "API key: "); err != nil {
			return nil, err
		}
		if creds.APISecret, err = promptSecret(reader, "API secret: "); err != nil {
			return nil, err
		}
		if creds.AccessToken, err = promptSecret(reader, "Access token (optional): "); err != nil {
			return nil, err
		}
		if creds.AccessSecret, err = promptSecret(reader, "Access secret (optional): "); err != nil {
			return nil, err
		}
	}

	if !creds.Complete() {
		return nil, ErrInvalidCredentials
	}

	return creds, nil
}

// promptSecret reads a value without echoing it when attached to a terminal
func promptSecret(reader *bufio.Reader, prompt string) (string, error) {
	fmt.Print(prompt)

	if term.IsTerminal(int(syscall.Stdin)) {
		value, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println()
		if err != nil {
			return "", fmt.Errorf("failed to read secret: %w", err)
		}
		return strings.TrimSpace(string(value)), nil
	}

	line, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}
