package client

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Credentials are the values a user types to sign up or log in.
type Credentials struct {
	Name     string
	Email    string
	Password string
}

// PromptCredentials asks on out for every empty field of c, reading one line
// per answer from in. The name is only asked for when withName is set.
func PromptCredentials(in io.Reader, out io.Writer, c Credentials, withName bool) (Credentials, error) {
	scanner := bufio.NewScanner(in)

	ask := func(label string, dst *string) error {
		if *dst != "" {
			return nil
		}
		fmt.Fprintf(out, "Enter %s: ", label)
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("read %s: %w", label, err)
			}
			return fmt.Errorf("read %s: %w", label, io.ErrUnexpectedEOF)
		}
		*dst = strings.TrimSpace(scanner.Text())
		return nil
	}

	if withName {
		if err := ask("name", &c.Name); err != nil {
			return Credentials{}, err
		}
	}
	if err := ask("email", &c.Email); err != nil {
		return Credentials{}, err
	}
	if err := ask("password", &c.Password); err != nil {
		return Credentials{}, err
	}
	return c, nil
}
