// Package lint wires the engine, configuration and file traversal together
// for CLI use.
package lint

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/boxlint/boxlint/internal"
	tt "github.com/boxlint/boxlint/internal/types"
)

// Config is the on-disk configuration, usually .boxlint.yaml.
type Config struct {
	Name  string                   `yaml:"name"`
	Rules map[string]tt.ConfigRule `yaml:"rules"`

	// AvoidBreakingExportedAPI suppresses findings whose suggested fix would
	// change an exported signature. Absent means true.
	AvoidBreakingExportedAPI *bool `yaml:"avoid-breaking-exported-api"`
}

// Options lowers the configuration into the engine-wide option set.
func (c Config) Options() tt.Options {
	avoid := true
	if c.AvoidBreakingExportedAPI != nil {
		avoid = *c.AvoidBreakingExportedAPI
	}
	return tt.Options{AvoidBreakingExportedAPI: avoid}
}

// LintEngine is the part of the engine the traversal layer depends on.
type LintEngine interface {
	Run(filePath string) ([]tt.Issue, error)
	RunSource(source []byte) ([]tt.Issue, error)
	IgnoreRule(rule string)
}

// New builds an engine from the configuration file at configurationPath.
// A missing file yields the defaults.
func New(configurationPath string) (*internal.Engine, error) {
	config, err := ParseConfigurationFile(configurationPath)
	if err != nil {
		return nil, err
	}

	return internal.NewEngine(config.Rules, config.Options())
}

// ParseConfigurationFile reads and decodes a configuration file. An empty
// path or a nonexistent file is not an error; both mean defaults.
func ParseConfigurationFile(configurationPath string) (Config, error) {
	var config Config
	if configurationPath == "" {
		return config, nil
	}

	data, err := os.ReadFile(configurationPath)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return config, fmt.Errorf("read configuration: %w", err)
	}

	if err := yaml.Unmarshal(data, &config); err != nil {
		return config, fmt.Errorf("parse configuration: %w", err)
	}

	return config, nil
}

// ProcessFile runs the engine over a single file.
func ProcessFile(engine LintEngine, filePath string) ([]tt.Issue, error) {
	return engine.Run(filePath)
}

// ProcessSource runs the engine over in-memory source.
func ProcessSource(engine LintEngine, source []byte) ([]tt.Issue, error) {
	return engine.RunSource(source)
}

// ProcessFiles lints every given path, recursing into directories.
func ProcessFiles(
	ctx context.Context,
	logger *zap.Logger,
	engine LintEngine,
	paths []string,
	processor func(LintEngine, string) ([]tt.Issue, error),
) ([]tt.Issue, error) {
	var allIssues []tt.Issue
	for _, path := range paths {
		issues, err := ProcessPath(ctx, logger, engine, path, processor)
		if err != nil {
			if logger != nil {
				logger.Error("Error processing path", zap.String("path", path), zap.Error(err))
			}
			return nil, err
		}
		allIssues = append(allIssues, issues...)
	}

	return allIssues, nil
}

// ProcessPath lints one path. Directories are walked and their Go files
// processed by a bounded pool of workers.
func ProcessPath(
	ctx context.Context,
	logger *zap.Logger,
	engine LintEngine,
	path string,
	processor func(LintEngine, string) ([]tt.Issue, error),
) ([]tt.Issue, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("error accessing %s: %w", path, err)
	}

	if !info.IsDir() {
		// explicitly named files go straight to the engine, which rejects
		// non-Go input with a proper error
		return processor(engine, path)
	}

	var files []string
	err = filepath.Walk(path, func(filePath string, fileInfo os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !fileInfo.IsDir() && hasDesiredExtension(filePath) {
			files = append(files, filePath)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error walking %s: %w", path, err)
	}

	bar := progressbar.NewOptions(len(files),
		progressbar.OptionSetDescription(path),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
	)

	maxWorkers := runtime.NumCPU()
	sem := make(chan struct{}, maxWorkers)

	resultChan := make(chan []tt.Issue, len(files))
	errorChan := make(chan error, len(files))

	for _, filePath := range files {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
			sem <- struct{}{}
			go func(fp string) {
				defer func() { <-sem }()

				fileIssues, err := processor(engine, fp)
				if err != nil {
					if logger != nil {
						logger.Error("Error processing file", zap.String("file", fp), zap.Error(err))
					}
					errorChan <- err
					resultChan <- nil
				} else {
					errorChan <- nil
					resultChan <- fileIssues
				}
				_ = bar.Add(1)
			}(filePath)
		}
	}

	var issues []tt.Issue
	for range files {
		if err := <-errorChan; err != nil {
			<-resultChan
			continue
		}
		if result := <-resultChan; result != nil {
			issues = append(issues, result...)
		}
	}

	fmt.Println()

	return issues, nil
}

func hasDesiredExtension(path string) bool {
	return strings.HasSuffix(path, ".go")
}
