package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/cbsr/biobank/internal/domain"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

// requiredAttempts bounds how often promptRequired asks again.
const requiredAttempts = 3

// promptLine writes "prompt: " and reads one trimmed line. A final line
// without a newline is still returned.
func promptLine(reader *bufio.Reader, prompt string, w io.Writer) (string, error) {
	if _, err := fmt.Fprint(w, prompt+": "); err != nil {
		return "", err
	}
	line, err := reader.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && len(line) > 0) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// promptRequired asks for field until a non-empty answer is given.
func promptRequired(reader *bufio.Reader, field string, w io.Writer) (string, error) {
	for i := 0; i < requiredAttempts; i++ {
		v, err := promptLine(reader, field, w)
		if err != nil {
			return "", err
		}
		if v != "" {
			return v, nil
		}
		fmt.Fprintf(w, "%s cannot be empty\n", field)
	}
	return "", domain.NewDomainError("%s is required", strings.ToLower(field))
}

// promptPassword reads a password from the terminal without echo. The
// caller wipes the returned slice.
func promptPassword(w io.Writer, prompt string) ([]byte, error) {
	if _, err := fmt.Fprint(w, prompt+": "); err != nil {
		return nil, err
	}
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(w)
	if err != nil {
		return nil, err
	}
	return pw, nil
}

// promptText reads lines until an empty one or EOF and joins them with '\n'.
// Used for study and centre descriptions.
func promptText(reader *bufio.Reader, prompt string, w io.Writer) (string, error) {
	if _, err := fmt.Fprint(w, prompt+" (empty line to finish)\n"); err != nil {
		return "", err
	}

	var lines []string
	for {
		line, err := reader.ReadString('\n')
		line = strings.TrimRight(line, "\r\n")
		if line != "" {
			lines = append(lines, line)
		}
		if line == "" || err != nil {
			break
		}
	}
	return strings.TrimSpace(strings.Join(lines, "\n")), nil
}
