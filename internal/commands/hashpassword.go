package commands

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/klabast/wb-services/beschikbaarheid/internal/app"
)

var errInterrupted = errors.New("interrupted")

// HashPassword handles the hash-password subcommand. Prompts go to out;
// username and, with --insecure-unmask-password, the passwords are read
// from in. Masked passwords are read from the terminal on stdin.
func HashPassword(args []string, in io.Reader, out io.Writer) error {
	fs := flag.NewFlagSet("hash-password", flag.ContinueOnError)
	fs.SetOutput(out)
	overwrite := fs.Bool("overwrite", false, "Overwrite existing auth file without asking")
	insecureUnmask := fs.Bool("insecure-unmask-password", false, "Show password as plain text (INSECURE!)")
	authFile := fs.String("auth-file", "", "Path to auth file (default: $AUTH_FILE or auth.secret next to the binary)")
	fs.Usage = func() {
		fmt.Fprintf(out, "Usage: beschikbaarheid hash-password [OPTIONS]\n\n")
		fmt.Fprintf(out, "Creates an auth.secret file with hashed password (Argon2id).\n\n")
		fmt.Fprintf(out, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(out, "\nEnvironment Variables:\n")
		fmt.Fprintf(out, "  AUTH_FILE    Path to auth file\n")
	}
	if err := fs.Parse(args); err != nil {
		return err
	}

	path, err := app.ResolveAuthFile(*authFile)
	if err != nil {
		return err
	}

	reader := bufio.NewReader(in)

	fmt.Fprint(out, "Enter username: ")
	username, err := readLine(reader)
	if err != nil {
		return fmt.Errorf("reading username: %w", err)
	}
	if username == "" {
		return errors.New("username cannot be empty")
	}

	var password, passwordConfirm string
	if *insecureUnmask {
		fmt.Fprintf(out, "WARNING: Password will be visible on screen!\n")
		fmt.Fprint(out, "Enter password:   ")
		if password, err = readLine(reader); err != nil {
			return fmt.Errorf("reading password: %w", err)
		}
		fmt.Fprint(out, "Confirm password: ")
		if passwordConfirm, err = readLine(reader); err != nil {
			return fmt.Errorf("reading password confirmation: %w", err)
		}
	} else {
		if password, err = readPasswordWithMask(out, "Enter password:   "); err != nil {
			return err
		}
		if passwordConfirm, err = readPasswordWithMask(out, "Confirm password: "); err != nil {
			return err
		}
	}

	if password == "" {
		return errors.New("password cannot be empty")
	}
	if password != passwordConfirm {
		return errors.New("passwords do not match")
	}

	return app.CreateAuthFile(path, username, password, *overwrite, reader, out)
}

func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// readPasswordWithMask reads a password from the terminal and echoes
// asterisks.
func readPasswordWithMask(out io.Writer, prompt string) (string, error) {
	fmt.Fprint(out, prompt)
	fd := int(os.Stdin.Fd())

	oldState, err := term.MakeRaw(fd)
	if err != nil {
		// Fallback to hidden input
		password, err := term.ReadPassword(fd)
		fmt.Fprintln(out)
		return string(password), err
	}
	defer term.Restore(fd, oldState)

	var password []byte
	reader := bufio.NewReader(os.Stdin)

	for {
		char, _, err := reader.ReadRune()
		if err != nil {
			break
		}

		switch char {
		case '\n', '\r':
			fmt.Fprint(out, "\r\n")
			return string(password), nil
		case 127, 8: // Backspace or Delete
			if len(password) > 0 {
				password = password[:len(password)-1]
				fmt.Fprint(out, "\b \b")
			}
		case 3: // Ctrl+C
			fmt.Fprint(out, "\r\n")
			return "", errInterrupted
		default:
			// Only accept printable characters
			if char >= 32 && char <= 126 {
				password = append(password, byte(char))
				fmt.Fprint(out, "*")
			}
		}
	}

	fmt.Fprint(out, "\r\n")
	return string(password), nil
}
