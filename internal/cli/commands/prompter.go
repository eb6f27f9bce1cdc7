package commands

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/askdb-labs/askdb/internal/workflow"
)

// readlinePrompter adapts an open readline instance to the workflow's
// Prompter, so confirmation prompts share the chat loop's line editor and
// history. The loop's own prompt is restored after every read.
type readlinePrompter struct {
	rl      *readline.Instance
	restore string
}

func (p *readlinePrompter) ReadLine(prompt string) (string, error) {
	p.rl.SetPrompt(prompt)
	defer p.rl.SetPrompt(p.restore)

	line, err := p.rl.Readline()
	if err != nil {
		return "", err
	}
	return line, nil
}

// ioPrompter reads answers from a plain reader. It is the prompter for
// one-shot commands and for piped input, where a line editor has no
// terminal to work with.
type ioPrompter struct {
	in  *bufio.Reader
	out io.Writer
}

func (p *ioPrompter) ReadLine(prompt string) (string, error) {
	_, _ = fmt.Fprint(p.out, prompt)

	line, err := p.in.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// newPrompter picks the prompter for a command: the answers come from the
// command's input stream, which tests may have replaced.
func newPrompter(cmd *cobra.Command) workflow.Prompter {
	return &ioPrompter{
		in:  bufio.NewReader(cmd.InOrStdin()),
		out: cmd.OutOrStdout(),
	}
}
