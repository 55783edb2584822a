package runner

import (
	"time"

	"github.com/google/uuid"
)

// Special commands that drive the wallet collaborator or the session instead
// of the interpreter
const (
	ResetGameStateCommand   = "RESET_GAMESTATE"
	ConnectWalletCommand    = "CONNECT_WALLET"
	DisconnectWalletCommand = "DISCONNECT_WALLET"
)

// TestSuite defines a complete integration test scenario
// Can either be a regular test with Steps, or a suite that references other Cases
type TestSuite struct {
	Name  string     `json:"name"`
	Class string     `json:"class,omitempty"` // Used for regular tests; empty uses the default class
	Steps []TestStep `json:"steps,omitempty"` // Used for regular tests
	Cases []string   `json:"cases,omitempty"` // Used for suite tests (list of case files)
}

// IsSequence returns true if this is a suite that sequences other cases
func (ts *TestSuite) IsSequence() bool {
	return len(ts.Cases) > 0
}

// TestStep defines a single command and its expected outcomes
// Use command: "RESET_GAMESTATE" to start over with a fresh game state
type TestStep struct {
	Name         string       `json:"name,omitempty"`
	Command      string       `json:"command"`
	Expectations Expectations `json:"expect"`
}

// Expectations defines what to check after a test step executes
type Expectations struct {
	// GameState properties - aligned with pkg/state
	Location        *string  `json:"location,omitempty"`
	Level           *int     `json:"level,omitempty"`
	Gold            *int     `json:"gold,omitempty"`
	Experience      *int     `json:"experience,omitempty"`
	Inventory       []string `json:"inventory,omitempty"` // Full inventory contents (order independent)
	WalletConnected *bool    `json:"wallet_connected,omitempty"`

	// Response Analysis
	Tone                *string  `json:"tone,omitempty"`
	Transactions        *int     `json:"transactions,omitempty"`
	ResponseContains    []string `json:"response_contains,omitempty"`
	ResponseNotContains []string `json:"response_not_contains,omitempty"`
	ResponseRegex       string   `json:"response_regex,omitempty"`
}

// TestResult contains the outcome of running a test step
type TestResult struct {
	TestName     string
	StepName     string
	Success      bool
	Error        error
	Duration     time.Duration
	ResponseText string
	IsReset      bool // True if this was a RESET_GAMESTATE step (should not count toward pass/fail metrics)
}

// TestJob represents a test suite to be executed
type TestJob struct {
	Name     string
	Suite    TestSuite
	CaseFile string
}

// TestRunResult contains the results of running an entire test suite
type TestRunResult struct {
	Job       TestJob
	Results   []TestResult
	Error     error
	Duration  time.Duration
	GameState uuid.UUID // ID of the last gamestate used for this test
}
