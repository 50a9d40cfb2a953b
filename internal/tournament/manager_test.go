package tournament

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newStarted(t *testing.T, names ...string) *Tournament {
	t.Helper()
	tour := NewTournament("test")
	for _, n := range names {
		require.NoError(t, tour.AddEntrant(n))
	}
	require.NoError(t, tour.Start())
	return tour
}

// alphabetical makes the alphabetically first deck win every match.
func alphabetical(played *[]string) MatchFunc {
	return func(_ context.Context, round int, p1, p2 string) (MatchResult, error) {
		*played = append(*played, fmt.Sprintf("%d:%s-%s", round, p1, p2))
		winner := p1
		if p2 < p1 {
			winner = p2
		}
		return MatchResult{GameID: fmt.Sprintf("g%d", len(*played)), Winner: winner, Turns: 5}, nil
	}
}

func TestRoundRobinEven(t *testing.T) {
	rounds := roundRobin([]string{"a", "b", "c", "d"})
	require.Len(t, rounds, 3)

	seen := make(map[string]int)
	for _, r := range rounds {
		require.Len(t, r.Pairings, 2)
		inRound := make(map[string]bool)
		for _, p := range r.Pairings {
			assert.False(t, p.Bye())
			assert.False(t, inRound[p.Player1] || inRound[p.Player2], "entrant twice in round %d", r.Number)
			inRound[p.Player1], inRound[p.Player2] = true, true

			key := p.Player1 + p.Player2
			if p.Player2 < p.Player1 {
				key = p.Player2 + p.Player1
			}
			seen[key]++
		}
	}
	assert.Len(t, seen, 6)
	for key, n := range seen {
		assert.Equal(t, 1, n, key)
	}
}

func TestRoundRobinOddGivesEachEntrantOneBye(t *testing.T) {
	rounds := roundRobin([]string{"a", "b", "c"})
	require.Len(t, rounds, 3)

	byes := make(map[string]int)
	for _, r := range rounds {
		for _, p := range r.Pairings {
			assert.NotEmpty(t, p.Player1)
			if p.Bye() {
				byes[p.Player1]++
			}
		}
	}
	assert.Equal(t, map[string]int{"a": 1, "b": 1, "c": 1}, byes)
}

func TestPlayRecordsStandings(t *testing.T) {
	tour := newStarted(t, "delta", "alpha", "charlie", "bravo")

	var played []string
	require.NoError(t, tour.Play(context.Background(), alphabetical(&played)))
	assert.Len(t, played, 6)

	assert.Equal(t, TournamentStateFinished, tour.GetState())
	standings := tour.Standings()
	require.Len(t, standings, 4)
	assert.Equal(t, "alpha", standings[0].Name)
	assert.Equal(t, 9, standings[0].Points)
	assert.Equal(t, "bravo", standings[1].Name)
	assert.Equal(t, 6, standings[1].Points)
	assert.Equal(t, "delta", standings[3].Name)
	assert.Equal(t, 3, standings[3].Losses)

	snap := tour.Snapshot()
	assert.Equal(t, 3, snap.CurrentRound)
	assert.NotNil(t, snap.EndTime)
	for _, r := range snap.Rounds {
		assert.True(t, r.Finished)
		for _, p := range r.Pairings {
			assert.NotEmpty(t, p.GameID)
			assert.Equal(t, 5, p.Turns)
		}
	}
}

func TestPlayWithByesAndDraws(t *testing.T) {
	tour := newStarted(t, "a", "b", "c")

	draw := func(context.Context, int, string, string) (MatchResult, error) {
		return MatchResult{GameID: "g"}, nil
	}
	require.NoError(t, tour.Play(context.Background(), draw))

	for _, e := range tour.Standings() {
		assert.Equal(t, 1, e.Byes, e.Name)
		assert.Equal(t, 2, e.Draws, e.Name)
		assert.Equal(t, PointsWin+2*PointsDraw, e.Points, e.Name)
	}
}

func TestPlayStopsOnError(t *testing.T) {
	tour := newStarted(t, "a", "b", "c", "d")

	boom := errors.New("engine failure")
	calls := 0
	err := tour.Play(context.Background(), func(context.Context, int, string, string) (MatchResult, error) {
		calls++
		if calls == 2 {
			return MatchResult{}, boom
		}
		return MatchResult{Winner: ""}, nil
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, TournamentStateInProgress, tour.GetState())

	// Resuming plays only the remaining pairings.
	var played []string
	require.NoError(t, tour.Play(context.Background(), alphabetical(&played)))
	assert.Len(t, played, 5)
	assert.Equal(t, TournamentStateFinished, tour.GetState())
}

func TestPlayParallel(t *testing.T) {
	tour := newStarted(t, "e", "d", "c", "b", "a")

	var (
		mu     sync.Mutex
		played []string
	)
	err := tour.PlayParallel(context.Background(), func(ctx context.Context, round int, p1, p2 string) (MatchResult, error) {
		mu.Lock()
		defer mu.Unlock()
		return alphabetical(&played)(ctx, round, p1, p2)
	}, 2)
	require.NoError(t, err)
	assert.Len(t, played, 10)
	assert.Equal(t, TournamentStateFinished, tour.GetState())

	standings := tour.Standings()
	require.Len(t, standings, 5)
	assert.Equal(t, "a", standings[0].Name)
	assert.Equal(t, 5*PointsWin, standings[0].Points)
	for _, e := range standings {
		assert.Equal(t, 1, e.Byes, e.Name)
	}
}

func TestPlayParallelStopsOnError(t *testing.T) {
	tour := newStarted(t, "a", "b", "c", "d")

	boom := errors.New("engine failure")
	var calls atomic.Int32
	err := tour.PlayParallel(context.Background(), func(context.Context, int, string, string) (MatchResult, error) {
		calls.Add(1)
		return MatchResult{}, boom
	}, 0)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, TournamentStateInProgress, tour.GetState())
	assert.LessOrEqual(t, calls.Load(), int32(2), "later rounds never start")

	assert.ErrorIs(t, NewTournament("idle").PlayParallel(context.Background(), nil, 1), ErrNotStarted)
}

func TestTournamentLifecycleErrors(t *testing.T) {
	tour := NewTournament("errors")
	assert.ErrorIs(t, tour.Start(), ErrNotEnough)
	assert.ErrorIs(t, tour.Play(context.Background(), nil), ErrNotStarted)

	require.NoError(t, tour.AddEntrant("a"))
	assert.Error(t, tour.AddEntrant("a"))
	assert.Error(t, tour.AddEntrant(""))
	require.NoError(t, tour.AddEntrant("b"))
	require.NoError(t, tour.AddEntrant("c"))
	require.NoError(t, tour.RemoveEntrant("c"))
	assert.Error(t, tour.RemoveEntrant("c"))
	assert.Equal(t, 2, tour.GetEntrantCount())

	require.NoError(t, tour.Start())
	assert.ErrorIs(t, tour.Start(), ErrAlreadyStarted)
	assert.ErrorIs(t, tour.AddEntrant("d"), ErrAlreadyStarted)

	assert.Error(t, tour.RecordMatchResult(0, "a", "b", MatchResult{}))
	assert.Error(t, tour.RecordMatchResult(1, "a", "b", MatchResult{Winner: "z"}))
	assert.Error(t, tour.RecordMatchResult(1, "a", "z", MatchResult{}))
	require.NoError(t, tour.RecordMatchResult(1, "b", "a", MatchResult{Winner: "b"}))
	assert.Error(t, tour.RecordMatchResult(1, "a", "b", MatchResult{Winner: "a"}), "pairing recorded twice")
	assert.Equal(t, TournamentStateFinished, tour.GetState())
}

func TestManager(t *testing.T) {
	m := NewManager(zaptest.NewLogger(t))
	first := m.CreateTournament("one")
	second := m.CreateTournament("two")

	got, ok := m.GetTournament(first.ID)
	require.True(t, ok)
	assert.Same(t, first, got)
	assert.Len(t, m.GetAllTournaments(), 2)
	assert.Equal(t, 2, m.GetActiveTournamentCount())

	require.NoError(t, second.AddEntrant("a"))
	require.NoError(t, second.AddEntrant("b"))
	require.NoError(t, second.Start())
	require.NoError(t, second.Play(context.Background(), func(context.Context, int, string, string) (MatchResult, error) {
		return MatchResult{Winner: "a"}, nil
	}))
	assert.Equal(t, 1, m.GetActiveTournamentCount())

	m.RemoveTournament(first.ID)
	_, ok = m.GetTournament(first.ID)
	assert.False(t, ok)
}
