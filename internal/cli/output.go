package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	out    io.Writer
	errOut io.Writer
}

// NewOutput creates a new Output formatter
func NewOutput(format string, out, errOut io.Writer) *Output {
	return &Output{format: format, out: out, errOut: errOut}
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
		fmt.Fprintln(o.errOut, string(data))
	} else {
		fmt.Fprintf(o.errOut, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Fprintln(o.out, string(data))
	} else {
		fmt.Fprintln(o.out, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.out)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case Team:
		o.printTeam(v)
	case []Team:
		o.printTeams(v)
	case Challenge:
		o.printChallenge(v)
	case []Challenge:
		o.printChallenges(v)
	case []Standing:
		o.printStandings(v)
	case DeleteTeamResult:
		fmt.Fprintf(o.out, "%s: %s (%s)\n", v.Message, v.Team.Name, v.Team.ID)
	case DeleteChallengeResult:
		fmt.Fprintf(o.out, "%s: %s (%s)\n", v.Message, v.Challenge.Title, v.Challenge.ID)
	case User:
		o.printUser(v)
	case AuthResult:
		o.printAuthResult(v)
	case VerifyResult:
		fmt.Fprintf(o.out, "Valid: %t\n", v.Valid)
		o.printUser(v.User)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// Team response type (matches API)
type Team struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Points    int64     `json:"points"`
	Status    string    `json:"status"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DeleteTeamResult response type
type DeleteTeamResult struct {
	Message string `json:"message"`
	Team    Team   `json:"team"`
}

// Challenge response type
type Challenge struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Points      int64     `json:"points"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// DeleteChallengeResult response type
type DeleteChallengeResult struct {
	Message   string    `json:"message"`
	Challenge Challenge `json:"challenge"`
}

// Standing is a leaderboard row
type Standing struct {
	Rank int  `json:"rank"`
	Team Team `json:"team"`
}

// User response type
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// AuthResult combines the account and its token
type AuthResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      User      `json:"user"`
}

// VerifyResult response type
type VerifyResult struct {
	Valid bool `json:"valid"`
	User  User `json:"user"`
}

// HealthResult response type
type HealthResult struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

func (o *Output) table() *tabwriter.Writer {
	return tabwriter.NewWriter(o.out, 0, 4, 2, ' ', 0)
}

func (o *Output) printTeam(t Team) {
	fmt.Fprintf(o.out, "Team: %s (%s)\n", t.Name, t.ID)
	fmt.Fprintf(o.out, "Points: %d\n", t.Points)
	fmt.Fprintf(o.out, "Status: %s\n", t.Status)
	fmt.Fprintf(o.out, "Color: %s\n", t.Color)
}

func (o *Output) printTeams(teams []Team) {
	if len(teams) == 0 {
		fmt.Fprintln(o.out, "No teams")
		return
	}
	w := o.table()
	fmt.Fprintln(w, "ID\tNAME\tPOINTS\tSTATUS")
	for _, t := range teams {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", t.ID, t.Name, t.Points, t.Status)
	}
	_ = w.Flush()
}

func (o *Output) printChallenge(c Challenge) {
	fmt.Fprintf(o.out, "Challenge: %s (%s)\n", c.Title, c.ID)
	if c.Description != "" {
		fmt.Fprintf(o.out, "Description: %s\n", c.Description)
	}
	fmt.Fprintf(o.out, "Points: %d\n", c.Points)
	fmt.Fprintf(o.out, "Status: %s\n", c.Status)
}

func (o *Output) printChallenges(challenges []Challenge) {
	if len(challenges) == 0 {
		fmt.Fprintln(o.out, "No challenges")
		return
	}
	w := o.table()
	fmt.Fprintln(w, "ID\tTITLE\tPOINTS\tSTATUS")
	for _, c := range challenges {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", c.ID, c.Title, c.Points, c.Status)
	}
	_ = w.Flush()
}

func (o *Output) printStandings(standings []Standing) {
	if len(standings) == 0 {
		fmt.Fprintln(o.out, "No teams")
		return
	}
	w := o.table()
	fmt.Fprintln(w, "RANK\tTEAM\tPOINTS")
	for _, s := range standings {
		fmt.Fprintf(w, "%d\t%s\t%d\n", s.Rank, s.Team.Name, s.Team.Points)
	}
	_ = w.Flush()
}

func (o *Output) printUser(u User) {
	fmt.Fprintf(o.out, "User: %s (%s)\n", u.Username, u.ID)
	fmt.Fprintf(o.out, "Email: %s\n", u.Email)
	fmt.Fprintf(o.out, "Role: %s\n", u.Role)
}

func (o *Output) printAuthResult(a AuthResult) {
	o.printUser(a.User)
	fmt.Fprintf(o.out, "Token: %s\n", a.Token)
	fmt.Fprintf(o.out, "Expires: %s\n", a.ExpiresAt.Format(time.RFC3339))
}

func (o *Output) printHealthResult(h HealthResult) {
	fmt.Fprintf(o.out, "Status: %s\n", h.Status)
	fmt.Fprintf(o.out, "Server time: %s\n", h.Timestamp.Format(time.RFC3339))
}
