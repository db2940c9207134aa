//go:build integration

// Package integration runs the budget API feature files against an in-process
// server backed by SQLite, miniredis and a stubbed Resend API.
package integration

import (
	"flag"
	"os"
	"testing"

	"github.com/cucumber/godog"
	"github.com/cucumber/godog/colors"

	"github.com/wedding-planner/backend/test/integration/steps"
)

var opts = godog.Options{
	Format:      "pretty",
	Paths:       []string{"features"},
	Output:      colors.Colored(os.Stdout),
	Concurrency: 1, // scenarios share one in-memory database
	Strict:      true,
}

func init() {
	godog.BindCommandLineFlags("godog.", &opts)
}

func TestMain(m *testing.M) {
	flag.Parse()
	if tags := os.Getenv("GODOG_TAGS"); tags != "" {
		opts.Tags = tags
	}
	os.Exit(m.Run())
}

func TestFeatures(t *testing.T) {
	if testing.Short() {
		t.Skip("feature tests start a full server")
	}

	o := opts
	o.TestingT = t

	suite := godog.TestSuite{
		Name:                 "wedding-budget-api",
		ScenarioInitializer:  steps.InitializeScenario,
		TestSuiteInitializer: steps.InitializeTestSuite,
		Options:              &o,
	}

	if suite.Run() != 0 {
		t.Fatal("feature tests failed")
	}
}
