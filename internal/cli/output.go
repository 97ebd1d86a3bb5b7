package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case Session:
		o.printSession(v)
	case SessionList:
		o.printSessionList(v)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// Player response type (matches API)
type Player struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"display_name"`
	IsReady     bool      `json:"is_ready"`
	JoinedAt    time.Time `json:"joined_at"`
}

// Guess response type
type Guess struct {
	PlayerID         string `json:"player_id"`
	PlayerName       string `json:"player_name,omitempty"`
	Guess            string `json:"guess"`
	CorrectDigits    int    `json:"correct_digits"`
	CorrectPositions int    `json:"correct_positions"`
	Seq              int    `json:"seq"`
}

// Session response type
type Session struct {
	ID          string    `json:"id"`
	Players     []Player  `json:"players"`
	Status      string    `json:"status"`
	CurrentTurn *string   `json:"current_turn"`
	Guesses     []Guess   `json:"guesses"`
	Winner      *string   `json:"winner"`
	CreatedAt   time.Time `json:"created_at"`
}

// SessionSummary response type
type SessionSummary struct {
	ID          string `json:"id"`
	PlayerCount int    `json:"player_count"`
	Status      string `json:"status"`
}

// SessionList response type
type SessionList struct {
	Sessions []SessionSummary `json:"sessions"`
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

func (o *Output) printSession(s Session) {
	fmt.Printf("Session: %s\n", s.ID)
	fmt.Printf("Status: %s\n", s.Status)
	if s.CurrentTurn != nil {
		fmt.Printf("Current Turn: %s\n", *s.CurrentTurn)
	}
	if s.Winner != nil {
		fmt.Printf("Winner: %s\n", *s.Winner)
	}

	fmt.Printf("Players (%d):\n", len(s.Players))
	for _, p := range s.Players {
		readyStr := ""
		if p.IsReady {
			readyStr = " [ready]"
		}
		fmt.Printf("  - %s (%s)%s\n", p.DisplayName, p.ID, readyStr)
	}

	if len(s.Guesses) > 0 {
		fmt.Printf("Guesses (%d):\n", len(s.Guesses))
		for _, g := range s.Guesses {
			name := g.PlayerName
			if name == "" {
				name = g.PlayerID
			}
			fmt.Printf("  %d. %s guessed %s: %d digits, %d in place\n",
				g.Seq, name, g.Guess, g.CorrectDigits, g.CorrectPositions)
		}
	}
}

func (o *Output) printSessionList(l SessionList) {
	if len(l.Sessions) == 0 {
		fmt.Println("No sessions")
		return
	}

	fmt.Printf("Sessions (%d):\n", len(l.Sessions))
	for _, s := range l.Sessions {
		fmt.Printf("  %s - %s (%d/2 players)\n", s.ID, s.Status, s.PlayerCount)
	}
}

func (o *Output) printHealthResult(h HealthResult) {
	fmt.Printf("Status: %s\n", h.Status)
}
