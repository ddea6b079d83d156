package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
)

var (
	successColor = color.New(color.FgGreen)
	warnColor    = color.New(color.FgYellow)
	errorColor   = color.New(color.FgRed)
	infoColor    = color.New(color.FgCyan)
	boldStyle    = color.New(color.Bold)
)

func printSuccess(format string, args ...any) {
	successColor.Printf("✓ "+format+"\n", args...)
}

func printWarning(format string, args ...any) {
	warnColor.Printf("! "+format+"\n", args...)
}

func printError(format string, args ...any) {
	errorColor.Printf("✗ "+format+"\n", args...)
}

func printInfo(format string, args ...any) {
	infoColor.Printf(format+"\n", args...)
}

func bold(s string) string {
	return boldStyle.Sprint(s)
}

// consoleLogger prints diagnostics to stderr when --verbose is set.
type consoleLogger struct{}

func (consoleLogger) log(level, msg string, fields []interface{}) {
	fmt.Fprintf(os.Stderr, "[%s] %s", level, msg)
	for i := 0; i+1 < len(fields); i += 2 {
		fmt.Fprintf(os.Stderr, " %v=%v", fields[i], fields[i+1])
	}
	fmt.Fprintln(os.Stderr)
}

func (l consoleLogger) Debug(msg string, fields ...interface{}) { l.log("debug", msg, fields) }
func (l consoleLogger) Info(msg string, fields ...interface{})  { l.log("info", msg, fields) }
func (l consoleLogger) Warn(msg string, fields ...interface{})  { l.log("warn", msg, fields) }
func (l consoleLogger) Error(msg string, err error, fields ...interface{}) {
	l.log("error", fmt.Sprintf("%s: %v", msg, err), fields)
}

// confirm asks a yes/no question on stdin, defaulting to yes.
func confirm(question string) bool {
	fmt.Printf("%s [Y/n] ", question)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return true
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "" || answer == "y" || answer == "yes"
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
