package txsim

import (
	"context"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/sha3"
)

// Kind is the type of simulated blockchain transaction.
type Kind string

const (
	KindMint         Kind = "mint"
	KindTrade        Kind = "trade"
	KindQuestReward  Kind = "quest_reward"
	KindBattleReward Kind = "battle_reward"
)

// DefaultGasFee is shown when a request carries no gas fee.
const DefaultGasFee = 0.001

// Network is the (fictional) network every transaction is shown on.
const Network = "Ethereum Mainnet"

// Request describes a transaction the game wants to show the player.
type Request struct {
	ID        uuid.UUID `json:"id"`
	Kind      Kind      `json:"kind"`
	Item      string    `json:"item,omitempty"`
	Amount    int       `json:"amount,omitempty"`
	Recipient string    `json:"recipient,omitempty"`
	GasFee    float64   `json:"gas_fee,omitempty"`
}

// NewRequest creates a request with a fresh ID.
func NewRequest(kind Kind, item string, amount int) Request {
	return Request{
		ID:     uuid.New(),
		Kind:   kind,
		Item:   item,
		Amount: amount,
	}
}

// Fee returns the gas fee, falling back to DefaultGasFee.
func (r Request) Fee() float64 {
	if r.GasFee <= 0 {
		return DefaultGasFee
	}
	return r.GasFee
}

// Title is the headline shown while the transaction runs.
func (r Request) Title() string {
	switch r.Kind {
	case KindMint:
		return "Minting Character NFT"
	case KindTrade:
		return "Trading Item"
	case KindQuestReward:
		return "Claiming Quest Reward"
	case KindBattleReward:
		return "Claiming Battle Reward"
	default:
		return "Blockchain Transaction"
	}
}

// Description is the one-line explanation shown under the title.
func (r Request) Description() string {
	switch r.Kind {
	case KindMint:
		return "Creating your character as an NFT on the blockchain..."
	case KindTrade:
		return fmt.Sprintf("Trading %s with another player...", r.Item)
	case KindQuestReward:
		return "Claiming your quest completion rewards..."
	case KindBattleReward:
		return "Claiming your battle victory rewards..."
	default:
		return "Processing blockchain transaction..."
	}
}

// Stage is a step of the simulated confirmation.
type Stage string

const (
	StagePending    Stage = "pending"
	StageConfirming Stage = "confirming"
	StageConfirmed  Stage = "confirmed"
	// StageFailed exists for display; the simulator never produces it.
	StageFailed Stage = "failed"
)

// Label is the human readable stage text.
func (s Stage) Label() string {
	switch s {
	case StagePending:
		return "Transaction Pending"
	case StageConfirming:
		return "Confirming on Blockchain"
	case StageConfirmed:
		return "Transaction Confirmed"
	case StageFailed:
		return "Transaction Failed"
	default:
		return "Processing..."
	}
}

// Progress is one report from a running simulation.
type Progress struct {
	TxID    uuid.UUID `json:"tx_id"`
	Kind    Kind      `json:"kind"`
	Hash    string    `json:"hash"`
	Stage   Stage     `json:"stage"`
	Percent int       `json:"percent"`
	Done    bool      `json:"done"` // the modal would close now
}

// Schedule sets the delay after each progress step.
type Schedule struct {
	PendingStep    time.Duration
	ConfirmingStep time.Duration
	ConfirmedStep  time.Duration
	CloseDelay     time.Duration
}

// DefaultSchedule matches the timing players see in the terminal.
var DefaultSchedule = Schedule{
	PendingStep:    200 * time.Millisecond,
	ConfirmingStep: 300 * time.Millisecond,
	ConfirmedStep:  150 * time.Millisecond,
	CloseDelay:     2 * time.Second,
}

// Scaled returns the schedule with every delay multiplied by factor.
// A factor of 0 produces an instant schedule.
func (s Schedule) Scaled(factor float64) Schedule {
	scale := func(d time.Duration) time.Duration {
		return time.Duration(float64(d) * factor)
	}
	return Schedule{
		PendingStep:    scale(s.PendingStep),
		ConfirmingStep: scale(s.ConfirmingStep),
		ConfirmedStep:  scale(s.ConfirmedStep),
		CloseDelay:     scale(s.CloseDelay),
	}
}

// Total is how long a full simulation takes, close delay included.
func (s Schedule) Total() time.Duration {
	total := s.CloseDelay
	for _, ph := range s.phases() {
		steps := (ph.to-ph.from)/ph.step + 1
		total += time.Duration(steps) * ph.stepTimeout
	}
	return total
}

type phase struct {
	stage       Stage
	from, to    int
	step        int
	stepTimeout time.Duration
}

func (s Schedule) phases() []phase {
	return []phase{
		{stage: StagePending, from: 0, to: 30, step: 5, stepTimeout: s.PendingStep},
		{stage: StageConfirming, from: 30, to: 80, step: 10, stepTimeout: s.ConfirmingStep},
		{stage: StageConfirmed, from: 80, to: 100, step: 5, stepTimeout: s.ConfirmedStep},
	}
}

// Simulator fakes the confirmation of a transaction.
type Simulator struct {
	schedule Schedule
	logger   *slog.Logger
	now      func() time.Time
}

// NewSimulator creates a simulator with the given schedule.
func NewSimulator(schedule Schedule, logger *slog.Logger) *Simulator {
	return &Simulator{
		schedule: schedule,
		logger:   logger,
		now:      time.Now,
	}
}

// Schedule returns the simulator's timing.
func (s *Simulator) Schedule() Schedule {
	return s.schedule
}

// Run reports the staged progression of req until it is confirmed, then
// waits the close delay and sends a final report with Done set.
// Cancelling ctx stops the progression early; the error is ctx.Err().
func (s *Simulator) Run(ctx context.Context, req Request, report func(Progress)) error {
	hash := Hash(req, s.now().UnixNano())
	s.logger.Debug("Transaction simulation started", "tx_id", req.ID, "kind", req.Kind, "hash", hash)

	last := Progress{TxID: req.ID, Kind: req.Kind, Hash: hash}
	for _, ph := range s.schedule.phases() {
		for pct := ph.from; pct <= ph.to; pct += ph.step {
			last.Stage = ph.stage
			last.Percent = pct
			report(last)
			if err := sleep(ctx, ph.stepTimeout); err != nil {
				s.logger.Debug("Transaction simulation cancelled", "tx_id", req.ID, "stage", ph.stage, "percent", pct)
				return err
			}
		}
	}

	if err := sleep(ctx, s.schedule.CloseDelay); err != nil {
		return err
	}
	last.Done = true
	report(last)

	s.logger.Debug("Transaction simulation finished", "tx_id", req.ID, "hash", hash)
	return nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Hash derives a 32-byte keccak-256 transaction hash from the request and a nonce.
func Hash(req Request, nonce int64) string {
	h := sha3.NewLegacyKeccak256()
	h.Write(req.ID[:])
	h.Write([]byte(req.Kind))
	h.Write([]byte(req.Item))
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(req.Amount))
	h.Write(buf[:])
	binary.BigEndian.PutUint64(buf[:], uint64(nonce))
	h.Write(buf[:])
	return "0x" + hex.EncodeToString(h.Sum(nil))
}
