package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"syscall"

	"golang.org/x/term"
)

var readPasswordFunc = term.ReadPassword // mockable

// console is the boundary the session depends on. All calls block on a
// console read; re-prompting on bad input is the caller's concern.
type console interface {
	Ask(prompt, def string) string
	AskSecret(prompt string) string
	Choose(prompt string, options []string) string
	Confirm(prompt string) bool
	Info(format string, args ...interface{})
	Error(format string, args ...interface{})
	Line(format string, args ...interface{})
	// EOF reports that the input stream is exhausted; prompts can no longer
	// be answered and loops should wind down.
	EOF() bool
}

type termConsole struct {
	in  *bufio.Scanner
	out io.Writer
	eof bool
}

var _ console = (*termConsole)(nil)

func newTermConsole(in io.Reader, out io.Writer) *termConsole {
	return &termConsole{in: bufio.NewScanner(in), out: out}
}

func (c *termConsole) readLine() string {
	if c.eof {
		return ""
	}
	if !c.in.Scan() {
		c.eof = true
		return ""
	}
	return c.in.Text()
}

func (c *termConsole) EOF() bool { return c.eof }

func (c *termConsole) Ask(prompt, def string) string {
	if def != "" {
		fmt.Fprintf(c.out, "%s [%s]: ", prompt, def)
	} else {
		fmt.Fprintf(c.out, "%s: ", prompt)
	}
	if ans := strings.TrimSpace(c.readLine()); ans != "" {
		return ans
	}
	return def
}

func (c *termConsole) AskSecret(prompt string) string {
	fmt.Fprintf(c.out, "%s: ", prompt)
	pwd, err := readPasswordFunc(syscall.Stdin)
	fmt.Fprintln(c.out)
	if err != nil {
		return ""
	}
	return string(pwd)
}

// Choose renders a numbered menu and accepts either the number or the exact
// option text.
func (c *termConsole) Choose(prompt string, options []string) string {
	for !c.eof {
		fmt.Fprintln(c.out, prompt)
		for i, opt := range options {
			fmt.Fprintf(c.out, "  [%d] %s\n", i+1, opt)
		}
		fmt.Fprint(c.out, "> ")
		ans := strings.TrimSpace(c.readLine())
		if n, err := strconv.Atoi(ans); err == nil && n >= 1 && n <= len(options) {
			return options[n-1]
		}
		for _, opt := range options {
			if strings.EqualFold(opt, ans) {
				return opt
			}
		}
		c.Error("Invalid choice.")
	}
	return ""
}

func (c *termConsole) Confirm(prompt string) bool {
	fmt.Fprintf(c.out, "%s [y/N]: ", prompt)
	ans := strings.ToLower(strings.TrimSpace(c.readLine()))
	return ans == "y" || ans == "yes"
}

func (c *termConsole) Info(format string, args ...interface{}) {
	fmt.Fprintf(c.out, format+"\n", args...)
}

func (c *termConsole) Error(format string, args ...interface{}) {
	fmt.Fprintf(c.out, "ERROR: "+format+"\n", args...)
}

func (c *termConsole) Line(format string, args ...interface{}) {
	fmt.Fprintf(c.out, format+"\n", args...)
}
