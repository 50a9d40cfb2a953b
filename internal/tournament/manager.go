// Package tournament runs round-robin tournaments between decks. Each pairing is one
// simulated game; standings use 3 points for a win and 1 for a draw.
package tournament

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// TournamentState represents the state of a tournament
type TournamentState int

const (
	TournamentStateWaiting TournamentState = iota
	TournamentStateInProgress
	TournamentStateFinished
)

func (s TournamentState) String() string {
	switch s {
	case TournamentStateWaiting:
		return "WAITING"
	case TournamentStateInProgress:
		return "IN_PROGRESS"
	case TournamentStateFinished:
		return "FINISHED"
	default:
		return "UNKNOWN"
	}
}

// Points awarded per match.
const (
	PointsWin  = 3
	PointsDraw = 1
)

var (
	ErrAlreadyStarted = errors.New("tournament already started")
	ErrNotStarted     = errors.New("tournament not started")
	ErrNotEnough      = errors.New("not enough entrants")
)

// Entrant is a deck taking part in the tournament.
type Entrant struct {
	Name   string
	Points int
	Wins   int
	Losses int
	Draws  int
	Byes   int
}

// Pairing is one match in a round. An empty Player2 is a bye.
type Pairing struct {
	Player1  string
	Player2  string
	GameID   string
	Winner   string
	Turns    int
	Finished bool
}

// Bye reports whether Player1 sits the round out.
func (p *Pairing) Bye() bool {
	return p.Player2 == ""
}

// Round represents a tournament round
type Round struct {
	Number   int
	Pairings []*Pairing
	Finished bool
}

// MatchResult is what a MatchFunc reports for one game.
type MatchResult struct {
	GameID string
	Winner string // entrant name, empty for a draw
	Turns  int
}

// MatchFunc plays player1's deck against player2's deck.
type MatchFunc func(ctx context.Context, round int, player1, player2 string) (MatchResult, error)

// EntrantSnapshot captures entrant data for external use.
type EntrantSnapshot struct {
	Name   string
	Points int
	Wins   int
	Losses int
	Draws  int
	Byes   int
}

// PairingSnapshot captures pairing data for external use.
type PairingSnapshot struct {
	Player1  string
	Player2  string
	GameID   string
	Winner   string
	Turns    int
	Finished bool
}

// RoundSnapshot captures round data for external use.
type RoundSnapshot struct {
	Number   int
	Finished bool
	Pairings []PairingSnapshot
}

// TournamentSnapshot captures a consistent view of a tournament.
type TournamentSnapshot struct {
	ID           string
	Name         string
	State        TournamentState
	Standings    []EntrantSnapshot
	Rounds       []RoundSnapshot
	CurrentRound int
	CreateTime   time.Time
	StartTime    *time.Time
	EndTime      *time.Time
}

// Tournament represents a tournament
type Tournament struct {
	ID           string
	Name         string
	State        TournamentState
	Entrants     map[string]*Entrant
	EntrantOrder []string // Maintains insertion order
	Rounds       []*Round
	CurrentRound int
	CreateTime   time.Time
	StartTime    *time.Time
	EndTime      *time.Time
	mu           sync.RWMutex
}

// NewTournament creates a new tournament
func NewTournament(name string) *Tournament {
	return &Tournament{
		ID:           uuid.New().String(),
		Name:         name,
		State:        TournamentStateWaiting,
		Entrants:     make(map[string]*Entrant),
		EntrantOrder: make([]string, 0),
		Rounds:       make([]*Round, 0),
		CreateTime:   time.Now(),
	}
}

// AddEntrant adds a deck to the tournament
func (t *Tournament) AddEntrant(name string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.State != TournamentStateWaiting {
		return ErrAlreadyStarted
	}
	if name == "" {
		return fmt.Errorf("entrant name is required")
	}
	if _, exists := t.Entrants[name]; exists {
		return fmt.Errorf("entrant %q already joined", name)
	}

	t.Entrants[name] = &Entrant{Name: name}
	t.EntrantOrder = append(t.EntrantOrder, name)
	return nil
}

// RemoveEntrant removes a deck from the tournament
func (t *Tournament) RemoveEntrant(name string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.State != TournamentStateWaiting {
		return ErrAlreadyStarted
	}
	if _, exists := t.Entrants[name]; !exists {
		return fmt.Errorf("entrant %q not found", name)
	}

	delete(t.Entrants, name)

	// Remove from order
	for i, n := range t.EntrantOrder {
		if n == name {
			t.EntrantOrder = append(t.EntrantOrder[:i], t.EntrantOrder[i+1:]...)
			break
		}
	}
	return nil
}

// GetEntrantCount returns the number of entrants
func (t *Tournament) GetEntrantCount() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.Entrants)
}

// GetState returns the current tournament state
func (t *Tournament) GetState() TournamentState {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.State
}

// Start schedules every round and moves the tournament into progress.
func (t *Tournament) Start() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.State != TournamentStateWaiting {
		return ErrAlreadyStarted
	}
	if len(t.Entrants) < 2 {
		return ErrNotEnough
	}

	now := time.Now()
	t.StartTime = &now
	t.State = TournamentStateInProgress
	t.Rounds = roundRobin(t.EntrantOrder)
	t.CurrentRound = 0
	return nil
}

// roundRobin pairs every entrant with every other exactly once using the circle
// method. With an odd count each entrant gets one bye.
func roundRobin(names []string) []*Round {
	ring := append([]string(nil), names...)
	if len(ring)%2 == 1 {
		ring = append(ring, "")
	}
	n := len(ring)

	rounds := make([]*Round, 0, n-1)
	for r := 0; r < n-1; r++ {
		round := &Round{Number: r + 1}
		for i := 0; i < n/2; i++ {
			p1, p2 := ring[i], ring[n-1-i]
			if p1 == "" {
				p1, p2 = p2, p1
			}
			round.Pairings = append(round.Pairings, &Pairing{Player1: p1, Player2: p2})
		}
		rounds = append(rounds, round)

		// Keep the first slot fixed and rotate the rest one step.
		last := ring[n-1]
		copy(ring[2:], ring[1:n-1])
		ring[1] = last
	}
	return rounds
}

// RecordMatchResult records the result of a match. An empty winner is a draw.
func (t *Tournament) RecordMatchResult(roundNum int, player1, player2 string, result MatchResult) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.State != TournamentStateInProgress {
		return ErrNotStarted
	}
	if roundNum <= 0 || roundNum > len(t.Rounds) {
		return fmt.Errorf("invalid round number %d", roundNum)
	}
	if player1 == "" || player2 == "" {
		return fmt.Errorf("byes are not recorded as matches")
	}
	if result.Winner != "" && result.Winner != player1 && result.Winner != player2 {
		return fmt.Errorf("winner %q is not in the pairing", result.Winner)
	}

	round := t.Rounds[roundNum-1]

	// Find the pairing
	for _, pairing := range round.Pairings {
		if (pairing.Player1 == player1 && pairing.Player2 == player2) ||
			(pairing.Player1 == player2 && pairing.Player2 == player1) {
			if pairing.Finished {
				return fmt.Errorf("pairing %s vs %s already recorded", player1, player2)
			}
			pairing.Finished = true
			pairing.GameID = result.GameID
			pairing.Winner = result.Winner
			pairing.Turns = result.Turns

			// Update entrant stats
			switch result.Winner {
			case player1:
				t.Entrants[player1].Wins++
				t.Entrants[player1].Points += PointsWin
				t.Entrants[player2].Losses++
			case player2:
				t.Entrants[player2].Wins++
				t.Entrants[player2].Points += PointsWin
				t.Entrants[player1].Losses++
			default:
				t.Entrants[player1].Draws++
				t.Entrants[player1].Points += PointsDraw
				t.Entrants[player2].Draws++
				t.Entrants[player2].Points += PointsDraw
			}

			t.finishRoundIfDone(round)
			return nil
		}
	}

	return fmt.Errorf("pairing %s vs %s not found in round %d", player1, player2, roundNum)
}

func (t *Tournament) finishRoundIfDone(round *Round) {
	for _, p := range round.Pairings {
		if !p.Finished {
			return
		}
	}
	round.Finished = true
	t.CurrentRound = round.Number

	if round.Number == len(t.Rounds) {
		now := time.Now()
		t.EndTime = &now
		t.State = TournamentStateFinished
	}
}

// recordBye awards the sitting-out entrant a win.
func (t *Tournament) recordBye(roundNum int, pairing *Pairing) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if pairing.Finished {
		return
	}
	pairing.Finished = true
	pairing.Winner = pairing.Player1

	e := t.Entrants[pairing.Player1]
	e.Byes++
	e.Wins++
	e.Points += PointsWin

	t.finishRoundIfDone(t.Rounds[roundNum-1])
}

// Play runs every unfinished pairing in round order and records the results.
func (t *Tournament) Play(ctx context.Context, play MatchFunc) error {
	rounds, err := t.playableRounds()
	if err != nil {
		return err
	}

	for _, round := range rounds {
		for _, pairing := range round.Pairings {
			if err := ctx.Err(); err != nil {
				return err
			}
			if t.settled(round, pairing) {
				continue
			}
			if err := t.playPairing(ctx, round.Number, pairing, play); err != nil {
				return err
			}
		}
	}
	return nil
}

// PlayParallel is Play with the pairings of a round running concurrently, at most
// limit at a time (limit <= 0 means unbounded). Rounds still run in order and the first
// failing match cancels the rest of its round.
func (t *Tournament) PlayParallel(ctx context.Context, play MatchFunc, limit int) error {
	rounds, err := t.playableRounds()
	if err != nil {
		return err
	}

	for _, round := range rounds {
		if err := ctx.Err(); err != nil {
			return err
		}

		g, gctx := errgroup.WithContext(ctx)
		if limit > 0 {
			g.SetLimit(limit)
		}
		for _, pairing := range round.Pairings {
			if t.settled(round, pairing) {
				continue
			}
			g.Go(func() error {
				return t.playPairing(gctx, round.Number, pairing, play)
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}
	}
	return nil
}

func (t *Tournament) playableRounds() ([]*Round, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.State != TournamentStateInProgress {
		return nil, ErrNotStarted
	}
	return t.Rounds, nil
}

// settled reports whether pairing needs no match, recording it first when it is a bye.
func (t *Tournament) settled(round *Round, pairing *Pairing) bool {
	t.mu.RLock()
	done := pairing.Finished
	t.mu.RUnlock()
	if done {
		return true
	}
	if pairing.Bye() {
		t.recordBye(round.Number, pairing)
		return true
	}
	return false
}

func (t *Tournament) playPairing(ctx context.Context, roundNum int, pairing *Pairing, play MatchFunc) error {
	result, err := play(ctx, roundNum, pairing.Player1, pairing.Player2)
	if err != nil {
		return fmt.Errorf("round %d %s vs %s: %w", roundNum, pairing.Player1, pairing.Player2, err)
	}
	return t.RecordMatchResult(roundNum, pairing.Player1, pairing.Player2, result)
}

// Standings returns entrants ordered by points, then wins, then name.
func (t *Tournament) Standings() []EntrantSnapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.standings()
}

func (t *Tournament) standings() []EntrantSnapshot {
	out := make([]EntrantSnapshot, 0, len(t.EntrantOrder))
	for _, name := range t.EntrantOrder {
		if e, ok := t.Entrants[name]; ok {
			out = append(out, EntrantSnapshot{
				Name:   e.Name,
				Points: e.Points,
				Wins:   e.Wins,
				Losses: e.Losses,
				Draws:  e.Draws,
				Byes:   e.Byes,
			})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Points != out[j].Points {
			return out[i].Points > out[j].Points
		}
		if out[i].Wins != out[j].Wins {
			return out[i].Wins > out[j].Wins
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Snapshot returns a consistent copy of the tournament state.
func (t *Tournament) Snapshot() TournamentSnapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()

	rounds := make([]RoundSnapshot, 0, len(t.Rounds))
	for _, r := range t.Rounds {
		pairings := make([]PairingSnapshot, 0, len(r.Pairings))
		for _, p := range r.Pairings {
			pairings = append(pairings, PairingSnapshot{
				Player1:  p.Player1,
				Player2:  p.Player2,
				GameID:   p.GameID,
				Winner:   p.Winner,
				Turns:    p.Turns,
				Finished: p.Finished,
			})
		}

		rounds = append(rounds, RoundSnapshot{
			Number:   r.Number,
			Finished: r.Finished,
			Pairings: pairings,
		})
	}

	return TournamentSnapshot{
		ID:           t.ID,
		Name:         t.Name,
		State:        t.State,
		Standings:    t.standings(),
		Rounds:       rounds,
		CurrentRound: t.CurrentRound,
		CreateTime:   t.CreateTime,
		StartTime:    cloneTime(t.StartTime),
		EndTime:      cloneTime(t.EndTime),
	}
}

func cloneTime(src *time.Time) *time.Time {
	if src == nil {
		return nil
	}
	cp := *src
	return &cp
}

// Manager manages tournaments
type Manager struct {
	tournaments map[string]*Tournament
	mu          sync.RWMutex
	logger      *zap.Logger
}

// NewManager creates a new tournament manager
func NewManager(logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		tournaments: make(map[string]*Tournament),
		logger:      logger,
	}
}

// CreateTournament creates a new tournament
func (m *Manager) CreateTournament(name string) *Tournament {
	m.mu.Lock()
	defer m.mu.Unlock()

	tournament := NewTournament(name)
	m.tournaments[tournament.ID] = tournament

	m.logger.Info("tournament created",
		zap.String("tournament_id", tournament.ID),
		zap.String("name", name),
	)

	return tournament
}

// GetTournament retrieves a tournament by ID
func (m *Manager) GetTournament(tournamentID string) (*Tournament, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	tournament, ok := m.tournaments[tournamentID]
	return tournament, ok
}

// RemoveTournament removes a tournament
func (m *Manager) RemoveTournament(tournamentID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.tournaments, tournamentID)

	m.logger.Info("tournament removed", zap.String("tournament_id", tournamentID))
}

// GetAllTournaments returns all tournaments
func (m *Manager) GetAllTournaments() []*Tournament {
	m.mu.RLock()
	defer m.mu.RUnlock()

	tournaments := make([]*Tournament, 0, len(m.tournaments))
	for _, tournament := range m.tournaments {
		tournaments = append(tournaments, tournament)
	}
	return tournaments
}

// GetActiveTournamentCount returns the count of active tournaments
func (m *Manager) GetActiveTournamentCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, tournament := range m.tournaments {
		if tournament.GetState() != TournamentStateFinished {
			count++
		}
	}
	return count
}
