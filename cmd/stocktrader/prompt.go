package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

func promptString(reader *bufio.Reader, out io.Writer, label, current string) string {
	if current != "" {
		fmt.Fprintf(out, "%s [%s]: ", label, current)
	} else {
		fmt.Fprintf(out, "%s: ", label)
	}
	line, _ := reader.ReadString('\n')
	line = strings.TrimSpace(line)
	if line == "" {
		return current
	}
	return line
}

func promptFloat(reader *bufio.Reader, out io.Writer, label string, current float64) float64 {
	fmt.Fprintf(out, "%s [%.2f]: ", label, current)
	line, _ := reader.ReadString('\n')
	line = strings.TrimSpace(line)
	if line == "" {
		return current
	}
	val, err := strconv.ParseFloat(line, 64)
	if err != nil {
		fmt.Fprintf(out, "invalid number, keeping %.2f\n", current)
		return current
	}
	return val
}

// promptChoice asks until the answer matches one of choices (case-insensitive)
// or input runs out, in which case it returns "".
func promptChoice(reader *bufio.Reader, out io.Writer, label string, choices []string) string {
	for {
		fmt.Fprintf(out, "%s (%s): ", label, strings.Join(choices, ", "))
		line, err := reader.ReadString('\n')
		answer := strings.TrimSpace(line)
		for _, c := range choices {
			if strings.EqualFold(answer, c) {
				return c
			}
		}
		if err != nil {
			return ""
		}
		fmt.Fprintf(out, "Error: %q is not one of %s\n", answer, strings.Join(choices, ", "))
	}
}

func splitComma(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
