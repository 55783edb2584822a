package runner

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/dungeon-hunt/internal/handlers"
	"github.com/jwebster45206/dungeon-hunt/pkg/state"
)

type ErrorHandlingMode string

const ErrorHandlingExit ErrorHandlingMode = "exit"
const ErrorHandlingContinue ErrorHandlingMode = "continue"

// Runner executes scripted command sequences against a running dungeon-hunt API
type Runner struct {
	BaseURL           string
	Client            *http.Client
	Logger            func(format string, args ...interface{})
	ErrorHandlingMode ErrorHandlingMode
	ClassOverride     string // If set, overrides the class for all test cases
}

// NewRunner creates a new test runner
func NewRunner(baseURL string) *Runner {
	return &Runner{
		BaseURL:           strings.TrimSuffix(baseURL, "/"),
		Client:            &http.Client{Timeout: 30 * time.Second},
		Logger:            func(string, ...interface{}) {},
		ErrorHandlingMode: ErrorHandlingContinue,
	}
}

// LoadTestSuite loads a test suite from a JSON file
func LoadTestSuite(filename string) (TestSuite, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return TestSuite{}, fmt.Errorf("failed to read test file %s: %w", filename, err)
	}

	var suite TestSuite
	if err := json.Unmarshal(content, &suite); err != nil {
		return TestSuite{}, fmt.Errorf("failed to parse JSON in %s: %w", filename, err)
	}

	return suite, nil
}

// LoadTestSuiteWithExpansion loads a test suite and expands it if it's a sequence
// Returns a list of actual test suites (expanded from the sequence if needed)
func LoadTestSuiteWithExpansion(filename string, casesDir string) ([]TestJob, error) {
	suite, err := LoadTestSuite(filename)
	if err != nil {
		return nil, err
	}

	if !suite.IsSequence() {
		return []TestJob{{
			Name:     suite.Name,
			Suite:    suite,
			CaseFile: filename,
		}}, nil
	}

	var jobs []TestJob
	for _, caseFile := range suite.Cases {
		casePath := filepath.Join(casesDir, caseFile)

		// Recursively load (in case a sequence references another sequence)
		subJobs, err := LoadTestSuiteWithExpansion(casePath, casesDir)
		if err != nil {
			return nil, fmt.Errorf("failed to load case '%s' referenced by sequence '%s': %w", caseFile, suite.Name, err)
		}

		jobs = append(jobs, subJobs...)
	}

	return jobs, nil
}

// RunSuite executes a complete test suite on a fresh game state
func (r *Runner) RunSuite(ctx context.Context, suite TestSuite) (TestRunResult, error) {
	start := time.Now()
	result := TestRunResult{
		Job: TestJob{
			Name:  suite.Name,
			Suite: suite,
		},
		Results: make([]TestResult, 0, len(suite.Steps)),
	}

	class := suite.Class
	if r.ClassOverride != "" {
		class = r.ClassOverride
	}

	gs, err := CreateGameState(ctx, r.Client, r.BaseURL, class)
	if err != nil {
		result.Error = fmt.Errorf("failed to seed gamestate: %w", err)
		result.Duration = time.Since(start)
		return result, result.Error
	}
	gameStateID := gs.ID
	result.GameState = gameStateID

	for i, step := range suite.Steps {
		r.Logger("    [%d/%d] Running step: %s", i+1, len(suite.Steps), step.Name)

		stepResult, nextID := r.executeStep(ctx, gameStateID, class, step)
		stepResult.TestName = suite.Name
		result.Results = append(result.Results, stepResult)
		gameStateID = nextID
		result.GameState = gameStateID

		if stepResult.Error != nil {
			r.Logger("    [%d/%d] ✗ %s: %v", i+1, len(suite.Steps), step.Name, stepResult.Error)
			if result.Error == nil {
				result.Error = fmt.Errorf("step %d (%s) failed: %w", i, step.Name, stepResult.Error)
			}
			if r.ErrorHandlingMode == ErrorHandlingExit {
				break
			}
			continue
		}

		r.Logger("    [%d/%d] ✓ %s (%v)", i+1, len(suite.Steps), step.Name, stepResult.Duration)
	}

	result.Duration = time.Since(start)
	return result, result.Error
}

// executeStep runs one step and checks its expectations. It returns the
// game state ID to use from now on, which changes after a reset.
func (r *Runner) executeStep(ctx context.Context, gameStateID uuid.UUID, class string, step TestStep) (TestResult, uuid.UUID) {
	start := time.Now()
	result := TestResult{
		StepName: step.Name,
	}

	var (
		postState *state.GameState
		response  *handlers.CommandResponse
		err       error
	)

	switch step.Command {
	case ResetGameStateCommand:
		postState, err = CreateGameState(ctx, r.Client, r.BaseURL, class)
		if err == nil {
			gameStateID = postState.ID
		}
		result.IsReset = true
		result.ResponseText = "[GAMESTATE RESET]"
	case ConnectWalletCommand, DisconnectWalletCommand:
		postState, err = SetWallet(ctx, r.Client, r.BaseURL, gameStateID, step.Command == ConnectWalletCommand)
		result.ResponseText = "[" + step.Command + "]"
	default:
		response, err = PostCommand(ctx, r.Client, r.BaseURL, gameStateID, step.Command)
		if err == nil {
			postState = response.GameState
			result.ResponseText = response.Response.Text()
		}
	}

	if err != nil {
		result.Error = err
		result.Duration = time.Since(start)
		return result, gameStateID
	}

	if err := checkExpectations(step.Expectations, postState, response); err != nil {
		result.Error = fmt.Errorf("expectation failed: %w", err)
		result.Duration = time.Since(start)
		return result, gameStateID
	}

	result.Success = true
	result.Duration = time.Since(start)
	return result, gameStateID
}

// checkExpectations validates the test expectations against the game state
// after the step. response is nil for steps that are not commands; response
// expectations then fail.
func checkExpectations(exp Expectations, postState *state.GameState, response *handlers.CommandResponse) error {
	c := postState.Character

	if exp.Location != nil && postState.Location != *exp.Location {
		return fmt.Errorf("expected location %s, got %s", *exp.Location, postState.Location)
	}
	if exp.Level != nil && c.Level != *exp.Level {
		return fmt.Errorf("expected level %d, got %d", *exp.Level, c.Level)
	}
	if exp.Gold != nil && c.Gold != *exp.Gold {
		return fmt.Errorf("expected gold %d, got %d", *exp.Gold, c.Gold)
	}
	if exp.Experience != nil && c.Experience != *exp.Experience {
		return fmt.Errorf("expected experience %d, got %d", *exp.Experience, c.Experience)
	}
	if exp.WalletConnected != nil && postState.Wallet.Connected != *exp.WalletConnected {
		return fmt.Errorf("expected wallet_connected to be %t, got %t", *exp.WalletConnected, postState.Wallet.Connected)
	}

	// Full inventory check (order independent)
	if len(exp.Inventory) > 0 {
		expected := make(map[string]bool)
		for _, item := range exp.Inventory {
			expected[item] = true
		}
		actual := make(map[string]bool)
		for _, item := range c.Inventory {
			actual[item] = true
		}

		for expectedItem := range expected {
			if !actual[expectedItem] {
				return fmt.Errorf("expected inventory to contain '%s', but it's missing. Actual inventory: %v", expectedItem, c.Inventory)
			}
		}
		for actualItem := range actual {
			if !expected[actualItem] {
				return fmt.Errorf("inventory contains unexpected item '%s'. Expected inventory: %v, Actual: %v", actualItem, exp.Inventory, c.Inventory)
			}
		}
	}

	hasResponseChecks := exp.Tone != nil || exp.Transactions != nil ||
		len(exp.ResponseContains) > 0 || len(exp.ResponseNotContains) > 0 || exp.ResponseRegex != ""
	if !hasResponseChecks {
		return nil
	}
	if response == nil || response.Response == nil {
		return fmt.Errorf("response expectations need a command step")
	}
	resp := response.Response

	if exp.Tone != nil && string(resp.Tone) != *exp.Tone {
		return fmt.Errorf("expected tone %s, got %s (%s)", *exp.Tone, resp.Tone, resp.Title)
	}
	if exp.Transactions != nil && len(resp.Transactions) != *exp.Transactions {
		return fmt.Errorf("expected %d transactions, got %d", *exp.Transactions, len(resp.Transactions))
	}

	text := resp.Text()
	lowerText := strings.ToLower(text)
	for _, expectedText := range exp.ResponseContains {
		if !strings.Contains(lowerText, strings.ToLower(expectedText)) {
			return fmt.Errorf("expected response to contain '%s', but it didn't: %q", expectedText, text)
		}
	}
	for _, unexpectedText := range exp.ResponseNotContains {
		if strings.Contains(lowerText, strings.ToLower(unexpectedText)) {
			return fmt.Errorf("expected response to NOT contain '%s', but it did", unexpectedText)
		}
	}

	if exp.ResponseRegex != "" {
		matched, err := regexp.MatchString(exp.ResponseRegex, text)
		if err != nil {
			return fmt.Errorf("invalid regex pattern: %w", err)
		}
		if !matched {
			return fmt.Errorf("response didn't match regex pattern: %s", exp.ResponseRegex)
		}
	}

	return nil
}
