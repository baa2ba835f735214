package internal

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/boxlint/boxlint/internal/lints"
	"github.com/boxlint/boxlint/internal/nolint"
	tt "github.com/boxlint/boxlint/internal/types"
)

// Engine manages the linting process.
type Engine struct {
	ignoredRules map[string]bool
	rules        map[string]LintRule
}

type ruleConstructor func() LintRule

var allRuleConstructors = map[string]ruleConstructor{
	"boxed-return": NewBoxedReturnRule,
}

// NewEngine creates a new lint engine with every registered rule, then
// applies the per-rule configuration and engine-wide options on top.
func NewEngine(rules map[string]tt.ConfigRule, opts tt.Options) (*Engine, error) {
	engine := &Engine{}
	engine.applyRules(rules)
	engine.applyOptions(opts)

	return engine, nil
}

func (e *Engine) applyRules(rules map[string]tt.ConfigRule) {
	e.rules = make(map[string]LintRule)
	e.registerDefaultRules()

	for key, rule := range rules {
		r := e.findRule(key)
		if r == nil {
			// unknown rule name, skip
			continue
		}
		if rule.Severity == tt.SeverityOff {
			e.IgnoreRule(key)
		}
		r.SetSeverity(rule.Severity)
	}
}

func (e *Engine) applyOptions(opts tt.Options) {
	for _, rule := range e.rules {
		if br, ok := rule.(*BoxedReturnRule); ok {
			br.AvoidBreakingExportedAPI = opts.AvoidBreakingExportedAPI
		}
	}
}

func (e *Engine) registerDefaultRules() {
	for key, construct := range allRuleConstructors {
		rule := construct()
		if rule.Severity() != tt.SeverityOff {
			e.rules[key] = rule
		}
	}
}

func (e *Engine) findRule(name string) LintRule {
	if rule, ok := e.rules[name]; ok {
		return rule
	}
	return nil
}

// Run applies all lint rules to the given file and returns a slice of Issues.
func (e *Engine) Run(filename string) ([]tt.Issue, error) {
	if !strings.HasSuffix(filename, ".go") {
		return nil, fmt.Errorf("%s is not a Go source file", filename)
	}

	node, fset, err := lints.ParseFile(filename, nil)
	if err != nil {
		return nil, fmt.Errorf("error parsing file: %w", err)
	}

	// kept local so concurrent Run calls do not share parser state
	nolintMgr := nolint.ParseComments(node, fset)

	var wg sync.WaitGroup
	var mu sync.Mutex

	var allIssues []tt.Issue
	for _, rule := range e.rules {
		wg.Add(1)
		go func(r LintRule) {
			defer wg.Done()
			if e.ignoredRules[r.Name()] {
				return
			}
			issues, err := r.Check(filename, node, fset)
			if err != nil {
				return
			}

			filtered := filterNolintIssues(nolintMgr, issues)

			mu.Lock()
			allIssues = append(allIssues, filtered...)
			mu.Unlock()
		}(rule)
	}
	wg.Wait()

	return allIssues, nil
}

// RunSource applies all lint rules to the given source and returns a slice of Issues.
func (e *Engine) RunSource(source []byte) ([]tt.Issue, error) {
	node, fset, err := lints.ParseFile("", source)
	if err != nil {
		return nil, fmt.Errorf("error parsing content: %w", err)
	}

	nolintMgr := nolint.ParseComments(node, fset)

	var wg sync.WaitGroup
	var mu sync.Mutex

	var allIssues []tt.Issue
	for _, rule := range e.rules {
		wg.Add(1)
		go func(r LintRule) {
			defer wg.Done()
			if e.ignoredRules[r.Name()] {
				return
			}
			issues, err := r.Check("", node, fset)
			if err != nil {
				return
			}

			filtered := filterNolintIssues(nolintMgr, issues)

			mu.Lock()
			allIssues = append(allIssues, filtered...)
			mu.Unlock()
		}(rule)
	}
	wg.Wait()

	return allIssues, nil
}

// IgnoreRule disables a rule for the rest of the engine's lifetime.
func (e *Engine) IgnoreRule(rule string) {
	if e.ignoredRules == nil {
		e.ignoredRules = make(map[string]bool)
	}
	e.ignoredRules[rule] = true
}

func filterNolintIssues(mgr *nolint.Manager, issues []tt.Issue) []tt.Issue {
	if mgr == nil {
		return issues
	}

	filtered := make([]tt.Issue, 0, len(issues))
	for _, issue := range issues {
		if mgr.IsNolinted(issue.Start, issue.Rule) {
			continue
		}
		filtered = append(filtered, issue)
	}
	return filtered
}

// SourceCode stores the content of a source code file.
type SourceCode struct {
	Lines []string
}

// ReadSourceCode reads the content of a file and returns it as a SourceCode.
func ReadSourceCode(filename string) (*SourceCode, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	lines := strings.Split(string(content), "\n")
	return &SourceCode{Lines: lines}, nil
}
