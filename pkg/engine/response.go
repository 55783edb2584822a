package engine

import (
	"strings"

	"github.com/jwebster45206/dungeon-hunt/pkg/txsim"
)

// Tone tells the presentation layer how to colour a response.
type Tone string

const (
	ToneInfo    Tone = "info"
	ToneSuccess Tone = "success"
	ToneFailure Tone = "failure"
	ToneCombat  Tone = "combat"
	ToneReward  Tone = "reward"
)

// Response is the rendered result of one command.
type Response struct {
	Command      string          `json:"command"`
	Tone         Tone            `json:"tone"`
	Title        string          `json:"title"`
	Lines        []string        `json:"lines,omitempty"`
	Transactions []txsim.Request `json:"transactions,omitempty"`
	ClearHistory bool            `json:"clear_history,omitempty"`
}

// Failed reports whether the command was rejected. Rejected commands never
// change state.
func (r *Response) Failed() bool {
	return r.Tone == ToneFailure
}

// Text renders the response as plain text: the title, then each line indented.
func (r *Response) Text() string {
	var sb strings.Builder
	sb.WriteString(r.Title)
	for _, line := range r.Lines {
		sb.WriteString("\n  ")
		sb.WriteString(line)
	}
	return sb.String()
}

func (r *Response) add(lines ...string) {
	r.Lines = append(r.Lines, lines...)
}
