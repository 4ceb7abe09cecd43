//go:build integration

package integration

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/jwebster45206/chronicle-engine/integration/runner"
)

var caseFlag = flag.String("case", "", "Name of test case to run (from integration/cases/)")
var runsFlag = flag.Int("runs", 1, "Number of times to run each test suite (useful for testing non-deterministic behavior)")

func TestMain(m *testing.M) {
	flag.Parse()
	fmt.Printf("Running Chronicle Engine Integration Tests\n")
	fmt.Printf("   API Base URL: %s\n", baseURL())
	os.Exit(m.Run())
}

func TestIntegrationSuites(t *testing.T) {
	timeout := time.Duration(getIntEnv("TEST_TIMEOUT_SECONDS", 300)) * time.Second
	r := runner.NewRunner(baseURL(), timeout)
	r.Logger = func(format string, args ...any) {
		fmt.Printf(format+"\n", args...)
	}

	files, err := discoverTestFiles("cases")
	if err != nil {
		t.Fatalf("Failed to discover test files: %v", err)
	}
	if len(files) == 0 {
		t.Fatal("No test files found in cases directory")
	}

	for _, file := range files {
		suite, err := runner.LoadTestSuite(file)
		if err != nil {
			t.Errorf("Failed to load test suite %s: %v", file, err)
			continue
		}
		for run := 1; run <= *runsFlag; run++ {
			name := suite.Name
			if *runsFlag > 1 {
				name = fmt.Sprintf("%s (run %d)", name, run)
			}
			t.Run(name, func(t *testing.T) {
				result, err := r.RunSuite(context.Background(), suite)
				for _, step := range result.Results {
					if !step.Success {
						t.Errorf("%s: %v\nnarrative: %s", step.StepName, step.Error, step.ResponseText)
					}
				}
				if err != nil && len(result.Results) == 0 {
					t.Fatalf("suite failed: %v", err)
				}
				t.Logf("%s finished in %v", suite.Name, result.Duration)
			})
		}
	}
}

func baseURL() string {
	if v := os.Getenv("API_BASE_URL"); v != "" {
		return v
	}
	return "http://localhost:8080"
}

// discoverTestFiles lists the case files, or only the one named by -case.
func discoverTestFiles(dir string) ([]string, error) {
	if *caseFlag != "" {
		name := *caseFlag
		if !strings.HasSuffix(name, ".json") {
			name += ".json"
		}
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("test case %s not found: %w", name, err)
		}
		return []string{path}, nil
	}
	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

func getIntEnv(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
