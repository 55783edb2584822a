package queue

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/dungeon-hunt/pkg/txsim"
)

// Job is a transaction simulation waiting for a worker
type Job struct {
	JobID       string        `json:"job_id"`
	GameStateID uuid.UUID     `json:"game_state_id"`
	Request     txsim.Request `json:"request"`
	EnqueuedAt  time.Time     `json:"enqueued_at"`
}

// NewJob wraps a transaction request emitted by a game
func NewJob(gameStateID uuid.UUID, req txsim.Request) *Job {
	return &Job{
		JobID:       uuid.New().String(),
		GameStateID: gameStateID,
		Request:     req,
		EnqueuedAt:  time.Now(),
	}
}

// Validate checks that a worker can run the job
func (j *Job) Validate() error {
	if j.GameStateID == uuid.Nil {
		return errors.New("job has no game state id")
	}
	if j.Request.ID == uuid.Nil {
		return errors.New("job has no transaction id")
	}
	if j.Request.Kind == "" {
		return errors.New("job has no transaction kind")
	}
	return nil
}

// ToJSON converts the job to JSON bytes for Redis
func (j *Job) ToJSON() ([]byte, error) {
	return json.Marshal(j)
}

// FromJSON parses and validates a job from JSON bytes
func FromJSON(data []byte) (*Job, error) {
	var job Job
	if err := json.Unmarshal(data, &job); err != nil {
		return nil, err
	}
	if err := job.Validate(); err != nil {
		return nil, err
	}
	return &job, nil
}
