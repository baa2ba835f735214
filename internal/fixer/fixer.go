// Package fixer applies textual lint suggestions back to source files.
//
// Every issue carries a fix confidence; the fixer only touches issues at or
// above its threshold. Advisory findings such as boxed-return report a
// confidence of zero and are therefore only ever printed, never applied.
package fixer

import (
	"bytes"
	"fmt"
	"go/format"
	"go/parser"
	"go/token"
	"os"
	"sort"
	"strings"

	tt "github.com/boxlint/boxlint/internal/types"
)

// MinThreshold is the lowest accepted confidence threshold. Keeping it above
// zero guarantees that zero-confidence (manual follow-up) suggestions can
// never be auto-applied, whatever the user passes on the command line.
const MinThreshold = 0.1

type Fixer struct {
	DryRun        bool
	MinConfidence float64
}

func New(dryRun bool, threshold float64) *Fixer {
	if threshold < MinThreshold {
		threshold = MinThreshold
	}
	return &Fixer{
		DryRun:        dryRun,
		MinConfidence: threshold,
	}
}

// Fix rewrites filename in place, applying the suggestions of every issue
// that clears the confidence threshold, from the bottom of the file upwards
// so that earlier offsets stay valid.
func (f *Fixer) Fix(filename string, issues []tt.Issue) error {
	content, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	sort.Slice(issues, func(i, j int) bool {
		return issues[i].End.Offset > issues[j].End.Offset
	})

	lines := strings.Split(string(content), "\n")

	applied := false
	for _, issue := range issues {
		if issue.Confidence < f.MinConfidence {
			continue
		}

		if f.DryRun {
			fmt.Printf("Would fix issue in %s at line %d: %s\n", filename, issue.Start.Line, issue.Message)
			fmt.Printf("Suggestion:\n%s\n", issue.Suggestion)
			continue
		}

		startLine := issue.Start.Line - 1
		endLine := issue.End.Line - 1
		if startLine < 0 || endLine >= len(lines) || startLine > endLine {
			continue
		}

		indent := extractIndent(lines[startLine])
		suggestion := applyIndent(issue.Suggestion, indent)

		lines = append(lines[:startLine], append([]string{suggestion}, lines[endLine+1:]...)...)
		applied = true
	}

	if f.DryRun || !applied {
		return nil
	}

	newContent := strings.Join(lines, "\n")

	fset := token.NewFileSet()
	astFile, err := parser.ParseFile(fset, filename, newContent, parser.ParseComments)
	if err != nil {
		return fmt.Errorf("failed to parse file: %w", err)
	}

	var buf bytes.Buffer
	if err := format.Node(&buf, fset, astFile); err != nil {
		return fmt.Errorf("failed to format file: %w", err)
	}

	if err := os.WriteFile(filename, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	fmt.Printf("Fixed issues in %s\n", filename)

	return nil
}

func extractIndent(line string) string {
	return line[:len(line)-len(strings.TrimLeft(line, " \t"))]
}

func applyIndent(code, indent string) string {
	lines := strings.Split(code, "\n")
	for i, line := range lines {
		lines[i] = indent + line
	}
	return strings.Join(lines, "\n")
}
