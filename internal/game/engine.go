package game

import (
	"fmt"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ufsim/ufsim-server-go/internal/game/card"
	"github.com/ufsim/ufsim-server-go/internal/game/check"
	"github.com/ufsim/ufsim-server-go/internal/game/player"
	"github.com/ufsim/ufsim-server-go/internal/game/rules"
	"github.com/ufsim/ufsim-server-go/internal/game/watchers"
	"github.com/ufsim/ufsim-server-go/internal/random"
)

// Status is the lifecycle state of a game.
type Status int

const (
	StatusSetup Status = iota
	StatusInProgress
	StatusFinished
)

var statusNames = map[Status]string{
	StatusSetup:      "SETUP",
	StatusInProgress: "IN_PROGRESS",
	StatusFinished:   "FINISHED",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("STATUS_%d", int(s))
}

// Options configures a new engine.
type Options struct {
	GameID         string // generated when empty
	Player1Name    string
	Player2Name    string
	StartingPlayer int   // 1 or 2, anything else means 1
	Seed           int64 // 0 picks a crypto seed
}

// Attack is the single combat slot: at most one attack is in flight.
type Attack struct {
	Card       *card.Card
	AttackerID int
	Block      *card.Card
	DefenderID int
}

// GameState is the read-only view of the turn structure.
type GameState struct {
	Phase          rules.Phase
	Step           rules.Step
	TurnNumber     int
	ActivePlayerID int
	Status         Status
	Winner         int // 0 while playing or on a draw
}

// pendingCheck is a single-reveal check that fell short but can still be covered by
// committing foundations.
type pendingCheck struct {
	card      *card.Card
	required  int
	revealed  int
	committed int
}

func (pc *pendingCheck) outcome(available int) check.Outcome {
	return check.Evaluate(pc.required, pc.revealed, available+pc.committed).WithCommitted(pc.committed)
}

// Engine runs one two-player game. Public methods are safe for concurrent use. Events
// are delivered after the engine lock is released, one at a time and in the order they
// happened, so listeners may call back into the engine.
type Engine struct {
	id     string
	logger *zap.Logger
	mu     sync.Mutex

	players  map[int]*player.Player
	phases   *Phases
	bus      *rules.EventBus
	watchers *rules.WatcherRegistry
	replay   *Replay

	combat  *Attack
	pending map[int]*pendingCheck
	status  Status
	winner  int

	queued     []rules.Event
	delivering bool
}

// NewEngine creates a game in setup. Both players still need SetupPlayer before
// StartGame.
func NewEngine(logger *zap.Logger, opts Options) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.GameID == "" {
		opts.GameID = uuid.NewString()
	}
	if opts.Player1Name == "" {
		opts.Player1Name = "Player 1"
	}
	if opts.Player2Name == "" {
		opts.Player2Name = "Player 2"
	}

	seeds := random.NewRand(opts.Seed)
	p1 := player.New(1, opts.Player1Name, rand.New(rand.NewSource(seeds.Int63())))
	p2 := player.New(2, opts.Player2Name, rand.New(rand.NewSource(seeds.Int63())))

	first, second := p1, p2
	if opts.StartingPlayer == 2 {
		first, second = p2, p1
	}

	e := &Engine{
		id:       opts.GameID,
		logger:   logger.With(zap.String("game_id", opts.GameID)),
		players:  map[int]*player.Player{1: p1, 2: p2},
		phases:   NewPhases(first, second),
		bus:      rules.NewEventBus(),
		watchers: rules.NewWatcherRegistry(),
		replay:   NewReplay(opts.GameID),
		pending:  make(map[int]*pendingCheck),
	}

	e.watchers.AddWatcher(watchers.NewChecksWatcher())
	e.watchers.AddWatcher(watchers.NewCardsPlayedWatcher())
	e.watchers.AddWatcher(watchers.NewCardsDrawnWatcher())
	e.watchers.AddWatcher(watchers.NewDamageWatcher())
	e.bus.Subscribe(e.watchers.NotifyWatchers)
	e.bus.SubscribeTyped(rules.EventTurnStarted, func(rules.Event) {
		e.watchers.ResetTurnWatchers()
	})

	return e
}

// ID returns the game id.
func (e *Engine) ID() string {
	return e.id
}

// unlock releases the engine lock and delivers queued events outside it. One
// goroutine delivers at a time, in queue order; events queued while a delivery is
// running, including by listeners calling back into the engine, are handed to that
// delivery.
func (e *Engine) unlock() {
	if e.delivering || len(e.queued) == 0 {
		e.mu.Unlock()
		return
	}

	e.delivering = true
	for len(e.queued) > 0 {
		events := e.queued
		e.queued = nil
		e.mu.Unlock()
		e.publish(events)
		e.mu.Lock()
	}
	e.delivering = false
	e.mu.Unlock()
}

// publish hands events to the bus. A panicking listener releases the delivery role so
// later actions still deliver.
func (e *Engine) publish(events []rules.Event) {
	delivered := false
	defer func() {
		if !delivered {
			e.mu.Lock()
			e.delivering = false
			e.mu.Unlock()
		}
	}()
	for _, evt := range events {
		e.bus.Publish(evt)
	}
	delivered = true
}

// SetupPlayer installs a player's character and shuffles their deck. It is only
// valid before StartGame.
func (e *Engine) SetupPlayer(playerID int, character *card.Card, deck []*card.Card) error {
	e.mu.Lock()
	defer e.unlock()

	if e.status != StatusSetup {
		e.logger.Error("setup after game start", zap.Int("player_id", playerID))
		return ErrGameAlreadyStarted
	}
	p, ok := e.players[playerID]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownPlayer, playerID)
	}
	if character == nil || character.Kind() != card.KindCharacter {
		return fmt.Errorf("%w: player %d needs a character card", ErrWrongCardKind, playerID)
	}

	p.SetCharacter(character)
	p.SetupGame(deck)

	e.logger.Info("player ready",
		zap.Int("player_id", playerID),
		zap.String("character", character.Name()),
		zap.Int("deck_size", p.Deck.Count()),
	)
	return nil
}

// StartGame draws each player's opening hand and starts turn 1. Calling it twice is
// a programmer error.
func (e *Engine) StartGame() error {
	e.mu.Lock()
	defer e.unlock()

	if e.status != StatusSetup {
		e.logger.Error("start game called on a started game", zap.String("status", e.status.String()))
		return ErrGameAlreadyStarted
	}
	for _, id := range []int{1, 2} {
		if e.players[id].Character == nil {
			e.logger.Error("start game without character", zap.Int("player_id", id))
			return fmt.Errorf("%w: player %d", ErrPlayerNotReady, id)
		}
	}

	e.status = StatusInProgress
	e.emit(rules.NewEvent(rules.EventGameStarted, "", 0))

	for _, p := range []*player.Player{e.phases.ActivePlayer(), e.phases.OpponentPlayer()} {
		e.emitDrawn(p, p.DrawCards(p.HandSize()))
	}

	e.startTurn()
	e.record()

	e.logger.Info("game started",
		zap.Int("starting_player", e.phases.ActivePlayer().ID),
		zap.Int("player1_hand", e.players[1].Hand.Count()),
		zap.Int("player2_hand", e.players[2].Hand.Count()),
	)
	return nil
}

// PlayFoundation moves a foundation from hand to the play area during Ready.
func (e *Engine) PlayFoundation(playerID int, c *card.Card) error {
	return e.playToArea("play_foundation", playerID, c, card.KindFoundation)
}

// PlayAsset moves an asset from hand to the play area during Ready.
func (e *Engine) PlayAsset(playerID int, c *card.Card) error {
	return e.playToArea("play_asset", playerID, c, card.KindAsset)
}

func (e *Engine) playToArea(action string, playerID int, c *card.Card, kind card.Kind) error {
	e.mu.Lock()
	defer e.unlock()

	p, err := e.actor(playerID)
	if err != nil {
		return e.reject(action, playerID, err)
	}
	if err := e.requirePhase(rules.PhaseReady); err != nil {
		return e.reject(action, playerID, err)
	}
	if err := inHand(p, c); err != nil {
		return e.reject(action, playerID, err)
	}
	if c.Kind() != kind {
		return e.reject(action, playerID, fmt.Errorf("%w: %s is %s, want %s", ErrWrongCardKind, c.Name(), c.Kind(), kind))
	}

	e.move(p, c, card.ZonePlayArea)
	e.logger.Debug("card played",
		zap.String("action", action),
		zap.Int("player_id", playerID),
		zap.String("card_id", c.ID()),
		zap.String("card", c.Name()),
	)
	return nil
}

// DeclareAttack stages an attack from hand during Combat and opens the combat slot.
// A second declaration replaces the open attack, which is closed first.
func (e *Engine) DeclareAttack(attackerID int, c *card.Card) error {
	e.mu.Lock()
	defer e.unlock()

	p, err := e.actor(attackerID)
	if err != nil {
		return e.reject("declare_attack", attackerID, err)
	}
	if err := e.requirePhase(rules.PhaseCombat); err != nil {
		return e.reject("declare_attack", attackerID, err)
	}
	if err := inHand(p, c); err != nil {
		return e.reject("declare_attack", attackerID, err)
	}
	if c.Kind() != card.KindAttack {
		return e.reject("declare_attack", attackerID, fmt.Errorf("%w: %s is not an attack", ErrWrongCardKind, c.Name()))
	}

	if e.combat != nil {
		e.logger.Debug("open attack replaced", zap.String("card_id", e.combat.Card.ID()))
		e.closeAttack()
	}

	e.move(p, c, card.ZoneStaging)
	e.combat = &Attack{
		Card:       c,
		AttackerID: p.ID,
		DefenderID: opponentOf(p.ID),
	}
	e.phases.SetStep(rules.StepDeclareAttack)

	evt := rules.NewEventWithAmount(rules.EventAttackDeclared, c.ID(), p.ID, c.AttackDamage())
	evt.Metadata["zone"] = c.AttackZone().String()
	evt.Description = fmt.Sprintf("%s attacks with %s", p.Name, c.Name())
	e.emit(evt)
	return nil
}

// DeclareBlock stages a block from the defender's hand against the open attack.
func (e *Engine) DeclareBlock(defenderID int, c *card.Card) error {
	e.mu.Lock()
	defer e.unlock()

	p, err := e.actor(defenderID)
	if err != nil {
		return e.reject("declare_block", defenderID, err)
	}
	if e.combat == nil {
		return e.reject("declare_block", defenderID, ErrNoOpenAttack)
	}
	if e.combat.Block != nil {
		return e.reject("declare_block", defenderID, fmt.Errorf("%w: attack is already blocked", ErrNoOpenAttack))
	}
	if e.combat.DefenderID != p.ID {
		return e.reject("declare_block", defenderID, fmt.Errorf("%w: player %d is not defending", ErrNoOpenAttack, p.ID))
	}
	if err := inHand(p, c); err != nil {
		return e.reject("declare_block", defenderID, err)
	}

	e.move(p, c, card.ZoneStaging)
	e.combat.Block = c
	e.phases.SetStep(rules.StepBlock)

	evt := rules.NewEvent(rules.EventBlockDeclared, c.ID(), p.ID)
	evt.Metadata["zone"] = c.BaseBlockZone().String()
	evt.Description = fmt.Sprintf("%s blocks %s with %s", p.Name, e.combat.Card.Name(), c.Name())
	e.emit(evt)
	return nil
}

// CurrentAttack returns the open attack, if any.
func (e *Engine) CurrentAttack() (Attack, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.combat == nil {
		return Attack{}, false
	}
	return *e.combat, true
}

// ResolveAttack closes the combat slot. Attack and block cards still staged go to
// their owners' discard piles.
func (e *Engine) ResolveAttack() error {
	e.mu.Lock()
	defer e.unlock()

	if err := e.requireInProgress(); err != nil {
		return e.reject("resolve_attack", 0, err)
	}
	if e.combat == nil {
		return e.reject("resolve_attack", 0, ErrNoOpenAttack)
	}
	e.closeAttack()
	return nil
}

func (e *Engine) closeAttack() {
	atk := e.combat
	e.combat = nil
	e.phases.SetStep(rules.StepCombatEnd)

	e.discardStaged(e.players[atk.AttackerID], atk.Card)
	if atk.Block != nil {
		e.discardStaged(e.players[atk.DefenderID], atk.Block)
	}
}

func (e *Engine) discardStaged(p *player.Player, c *card.Card) {
	if c.Zone != card.ZoneStaging {
		return
	}
	if pc := e.pending[p.ID]; pc != nil && pc.card == c {
		e.settleCheck(p, pc, false)
		return
	}
	e.move(p, c, card.ZoneDiscard)
}

// AttemptCheck plays c from hand (or from staging, for a declared attack) through a
// single-reveal check. The required difficulty includes the card's progressive
// difficulty from the current card pool. A passed check puts c in the card pool, a
// failed one in discard; a shortfall that foundations can cover leaves c staged until
// CommitToCheck, CommitFoundations or ForfeitCheck.
func (e *Engine) AttemptCheck(playerID int, c *card.Card) (check.Outcome, error) {
	e.mu.Lock()
	defer e.unlock()

	p, err := e.actor(playerID)
	if err != nil {
		return check.Outcome{}, e.reject("attempt_check", playerID, err)
	}
	if e.pending[p.ID] != nil {
		return check.Outcome{}, e.reject("attempt_check", playerID, ErrCheckPending)
	}
	if c == nil || (c.Zone != card.ZoneHand && c.Zone != card.ZoneStaging) || !p.Owns(c) {
		return check.Outcome{}, e.reject("attempt_check", playerID, fmt.Errorf("%w: %s", ErrCardNotInHand, cardName(c)))
	}

	if c.Zone == card.ZoneHand {
		e.move(p, c, card.ZoneStaging)
	}

	required := check.ApplyProgressive(c, p.CardPool)
	revealed, value := check.Reveal(p)
	e.emitReveal(p, revealed, value)

	pc := &pendingCheck{card: c, required: required, revealed: value}
	outcome := pc.outcome(check.AvailableFoundations(p))

	switch outcome.Status {
	case check.StatusPassed:
		e.settleCheck(p, pc, true)
	case check.StatusFailed:
		e.settleCheck(p, pc, false)
	default:
		e.pending[p.ID] = pc
		e.logger.Debug("check waiting for foundations",
			zap.Int("player_id", p.ID),
			zap.String("card_id", c.ID()),
			zap.Int("required", required),
			zap.Int("revealed", value),
			zap.Int("min_commit", outcome.MinCommit()),
		)
	}
	return outcome, nil
}

// PendingCheck returns the outcome of the player's check waiting for foundations.
func (e *Engine) PendingCheck(playerID int) (check.Outcome, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	p, ok := e.players[playerID]
	if !ok {
		return check.Outcome{}, false
	}
	pc := e.pending[playerID]
	if pc == nil {
		return check.Outcome{}, false
	}
	return pc.outcome(check.AvailableFoundations(p)), true
}

// CommitToCheck commits n uncommitted foundations to the player's pending check and
// resolves it once the total reaches the difficulty.
func (e *Engine) CommitToCheck(playerID, n int) (check.Outcome, error) {
	e.mu.Lock()
	defer e.unlock()

	p, err := e.actor(playerID)
	if err != nil {
		return check.Outcome{}, e.reject("commit_to_check", playerID, err)
	}
	pc := e.pending[p.ID]
	if pc == nil {
		return check.Outcome{}, e.reject("commit_to_check", playerID, ErrNoPendingCheck)
	}
	if n <= 0 {
		return pc.outcome(check.AvailableFoundations(p)), nil
	}

	committed := check.CommitFoundations(p, n)
	if committed == nil {
		err := fmt.Errorf("%w: want %d, have %d", ErrInsufficientFoundations, n, check.AvailableFoundations(p))
		return check.Outcome{}, e.reject("commit_to_check", playerID, err)
	}
	e.emitCommitted(p, committed)

	return e.contribute(p, pc, len(committed)), nil
}

// CommitFoundations commits the listed foundations. Every card must be an
// uncommitted foundation in the player's play area; otherwise nothing is committed.
// When the player has a pending check the foundations count towards it.
func (e *Engine) CommitFoundations(playerID int, foundations []*card.Card) error {
	e.mu.Lock()
	defer e.unlock()

	p, err := e.actor(playerID)
	if err != nil {
		return e.reject("commit_foundations", playerID, err)
	}

	seen := make(map[string]bool, len(foundations))
	for _, c := range foundations {
		if c == nil || c.Zone != card.ZonePlayArea || !p.PlayArea.Contains(c) ||
			c.Kind() != card.KindFoundation || c.IsCommitted() || seen[c.ID()] {
			return e.reject("commit_foundations", playerID, fmt.Errorf("%w: %s", ErrCardNotInPlay, cardName(c)))
		}
		seen[c.ID()] = true
	}

	for _, c := range foundations {
		c.Commit()
	}
	e.emitCommitted(p, foundations)

	if pc := e.pending[p.ID]; pc != nil {
		e.contribute(p, pc, len(foundations))
	}
	return nil
}

func (e *Engine) contribute(p *player.Player, pc *pendingCheck, n int) check.Outcome {
	pc.committed += n
	outcome := pc.outcome(check.AvailableFoundations(p))
	if outcome.Passed() {
		e.settleCheck(p, pc, true)
	}
	return outcome
}

// ForfeitCheck gives up the player's pending check; the card goes to discard.
func (e *Engine) ForfeitCheck(playerID int) error {
	e.mu.Lock()
	defer e.unlock()

	p, err := e.actor(playerID)
	if err != nil {
		return e.reject("forfeit_check", playerID, err)
	}
	pc := e.pending[p.ID]
	if pc == nil {
		return e.reject("forfeit_check", playerID, ErrNoPendingCheck)
	}
	e.settleCheck(p, pc, false)
	return nil
}

func (e *Engine) settleCheck(p *player.Player, pc *pendingCheck, passed bool) {
	delete(e.pending, p.ID)

	dest := card.ZoneDiscard
	if passed {
		dest = card.ZoneCardPool
	}
	e.move(p, pc.card, dest)

	evt := rules.NewEventWithAmount(rules.EventCheckResolved, pc.card.ID(), p.ID, pc.revealed+pc.committed)
	evt.Flag = passed
	evt.Metadata["required"] = strconv.Itoa(pc.required)
	evt.Metadata["committed"] = strconv.Itoa(pc.committed)
	evt.Description = fmt.Sprintf("%s check for %s: %d against %d", p.Name, pc.card.Name(), pc.revealed+pc.committed, pc.required)
	e.emit(evt)

	e.logger.Debug("check resolved",
		zap.Int("player_id", p.ID),
		zap.String("card_id", pc.card.ID()),
		zap.Bool("passed", passed),
		zap.Int("required", pc.required),
		zap.Int("total", pc.revealed+pc.committed),
	)
}

// PerformCheck reveals cards from the player's deck into the card pool until their
// check values reach difficulty or the deck runs out. Foundations play no part.
func (e *Engine) PerformCheck(playerID, difficulty int) (check.Result, error) {
	e.mu.Lock()
	defer e.unlock()

	p, err := e.actor(playerID)
	if err != nil {
		return check.Result{}, e.reject("perform_check", playerID, err)
	}

	res := check.RevealUntil(p, difficulty)
	for _, c := range res.Revealed {
		e.emitReveal(p, c, c.Check())
	}

	evt := rules.NewEventWithAmount(rules.EventCheckResolved, "", p.ID, res.Total)
	evt.Flag = res.Success
	evt.Metadata["required"] = strconv.Itoa(difficulty)
	e.emit(evt)

	e.logger.Debug("batch check",
		zap.Int("player_id", p.ID),
		zap.Int("difficulty", difficulty),
		zap.Int("total", res.Total),
		zap.Int("revealed", len(res.Revealed)),
		zap.Bool("success", res.Success),
	)
	return res, nil
}

// Mill discards up to n cards from the top of the player's deck.
func (e *Engine) Mill(playerID, n int) ([]*card.Card, error) {
	e.mu.Lock()
	defer e.unlock()

	p, err := e.actor(playerID)
	if err != nil {
		return nil, e.reject("mill", playerID, err)
	}
	milled := check.Mill(p, n)
	for _, c := range milled {
		e.emitZoneChange(p, c, card.ZoneDeck)
	}
	return milled, nil
}

// ReshuffleDiscard puts the player's discard pile under their deck and shuffles.
func (e *Engine) ReshuffleDiscard(playerID int) error {
	e.mu.Lock()
	defer e.unlock()

	p, err := e.actor(playerID)
	if err != nil {
		return e.reject("reshuffle_discard", playerID, err)
	}
	moved := p.Discard.Count()
	p.ShuffleDiscardIntoDeck()
	e.logger.Debug("discard reshuffled", zap.Int("player_id", p.ID), zap.Int("cards", moved))
	return nil
}

// DealDamage damages the player's character, returns its remaining health and ends
// the game if a character is defeated. Amounts <= 0 change nothing and emit no event.
func (e *Engine) DealDamage(playerID, amount int) (int, error) {
	e.mu.Lock()
	defer e.unlock()

	p, err := e.actor(playerID)
	if err != nil {
		return 0, e.reject("deal_damage", playerID, err)
	}
	if p.Character == nil {
		return 0, fmt.Errorf("%w: player %d", ErrPlayerNotReady, playerID)
	}

	if amount <= 0 {
		return p.Character.Health(), nil
	}

	health := p.Character.Damage(amount)
	evt := rules.NewEventWithAmount(rules.EventDamageDealt, p.Character.ID(), p.ID, amount)
	evt.Description = fmt.Sprintf("%s takes %d damage", p.Name, amount)
	e.emit(evt)

	e.checkWinConditions()
	return health, nil
}

// AdvancePhase moves to the next phase and runs what happens on entering it: Review
// discards and redraws for the new active player, Ready readies the play area, End
// closes combat and checks for a winner.
func (e *Engine) AdvancePhase() (GameState, error) {
	e.mu.Lock()
	defer e.unlock()

	if err := e.requireInProgress(); err != nil {
		return e.gameState(), e.reject("advance_phase", 0, err)
	}

	switch e.phases.State().Phase {
	case rules.PhaseEnd:
		e.startTurn()
		e.processReview()
		e.record()
	case rules.PhaseCombat:
		e.endTurn()
	default:
		e.forfeitPending()
		state := e.phases.AdvancePhase()
		e.emitPhaseChange(state)
		if state.Phase == rules.PhaseReady {
			e.processReady()
		}
		e.record()
	}
	return e.gameState(), nil
}

// EndTurn ends the active player's turn from any phase but End and checks for a
// winner.
func (e *Engine) EndTurn() (GameState, error) {
	e.mu.Lock()
	defer e.unlock()

	if err := e.requireInProgress(); err != nil {
		return e.gameState(), e.reject("end_turn", 0, err)
	}
	if err := e.requirePhase(rules.PhaseReview, rules.PhaseReady, rules.PhaseCombat); err != nil {
		return e.gameState(), e.reject("end_turn", 0, err)
	}
	e.endTurn()
	return e.gameState(), nil
}

func (e *Engine) startTurn() {
	state := e.phases.StartTurn()
	evt := rules.NewEventWithAmount(rules.EventTurnStarted, "", state.ActivePlayer, state.TurnNumber)
	e.emit(evt)
	e.emitPhaseChange(state)
	e.logger.Debug("turn started", zap.Int("turn", state.TurnNumber), zap.Int("player_id", state.ActivePlayer))
}

func (e *Engine) endTurn() {
	if e.combat != nil {
		e.closeAttack()
	}
	e.forfeitPending()

	finished := e.phases.ActivePlayer().ID
	state := e.phases.EndTurn()
	e.emit(rules.NewEventWithAmount(rules.EventTurnEnded, "", finished, state.TurnNumber))
	e.emitPhaseChange(state)

	if !e.checkWinConditions() {
		e.record()
	}
}

// forfeitPending fails every check still waiting for foundations. Pending checks do
// not survive a phase change.
func (e *Engine) forfeitPending() {
	for _, id := range []int{1, 2} {
		if pc := e.pending[id]; pc != nil {
			e.settleCheck(e.players[id], pc, false)
		}
	}
}

func (e *Engine) processReview() {
	p := e.phases.ActivePlayer()
	discarded, drawn := e.phases.ProcessReviewPhase()
	for _, c := range discarded {
		e.emitZoneChange(p, c, card.ZoneHand)
	}
	e.emitDrawn(p, drawn)
}

func (e *Engine) processReady() {
	p := e.phases.ActivePlayer()
	readied := e.phases.ProcessReadyPhase()
	e.logger.Debug("play area readied", zap.Int("player_id", p.ID), zap.Int("cards", len(readied)))
}

// checkWinConditions finishes the game when a character is defeated. Both
// characters falling together is a draw.
func (e *Engine) checkWinConditions() bool {
	if e.status == StatusFinished {
		return true
	}
	if e.status != StatusInProgress {
		return false
	}

	defeated1 := e.players[1].IsDefeated()
	defeated2 := e.players[2].IsDefeated()
	switch {
	case defeated1 && defeated2:
		e.finish(0)
	case defeated1:
		e.finish(2)
	case defeated2:
		e.finish(1)
	default:
		return false
	}
	return true
}

func (e *Engine) finish(winner int) {
	e.status = StatusFinished
	e.winner = winner

	evt := rules.NewEvent(rules.EventGameOver, "", winner)
	if winner == 0 {
		evt.Description = "game ended in a draw"
		e.logger.Info("game ended in draw", zap.Int("turn", e.phases.State().TurnNumber))
	} else {
		evt.Description = fmt.Sprintf("%s wins the game", e.players[winner].Name)
		e.logger.Info("game ended",
			zap.Int("winner", winner),
			zap.String("winner_name", e.players[winner].Name),
			zap.Int("turn", e.phases.State().TurnNumber),
		)
	}
	e.emit(evt)
	e.record()
}

// GameState returns the current phase, step, turn, active player and status.
func (e *Engine) GameState() GameState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.gameState()
}

func (e *Engine) gameState() GameState {
	state := e.phases.State()
	return GameState{
		Phase:          state.Phase,
		Step:           state.Step,
		TurnNumber:     state.TurnNumber,
		ActivePlayerID: state.ActivePlayer,
		Status:         e.status,
		Winner:         e.winner,
	}
}

// Status returns the game's lifecycle state.
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status
}

// Winner returns the winning player id, 0 while playing or after a draw.
func (e *Engine) Winner() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.winner
}

// Cards returns a copy of the cards in one of a player's zones.
func (e *Engine) Cards(playerID int, z card.Zone) ([]*card.Card, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	p, ok := e.players[playerID]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownPlayer, playerID)
	}
	container := p.Zone(z)
	if container == nil {
		return nil, fmt.Errorf("unknown zone %d", int(z))
	}
	return container.Cards(), nil
}

// Snapshot returns a copy of the whole game state.
func (e *Engine) Snapshot() *Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshot()
}

func (e *Engine) snapshot() *Snapshot {
	s := &Snapshot{
		GameID:    e.id,
		Status:    e.status,
		Winner:    e.winner,
		Turn:      e.phases.State(),
		Timestamp: time.Now(),
	}
	for _, id := range []int{1, 2} {
		s.Players = append(s.Players, snapshotPlayer(e.players[id]))
	}
	return s
}

func (e *Engine) record() {
	e.replay.RecordState(e.snapshot())
}

// Replay returns the snapshots recorded at every phase change and at game end.
func (e *Engine) Replay() *Replay {
	return e.replay
}

// Subscribe registers a listener for every game event and returns its handle.
func (e *Engine) Subscribe(listener rules.Listener) int {
	return e.bus.Subscribe(listener)
}

// SubscribeTyped registers a listener for one event type and returns its handle.
func (e *Engine) SubscribeTyped(eventType rules.EventType, callback func(rules.Event)) int {
	return e.bus.SubscribeTyped(eventType, callback)
}

// Unsubscribe removes a listener.
func (e *Engine) Unsubscribe(handle int) {
	e.bus.Unsubscribe(handle)
}

// Watchers returns the per-turn watchers fed by the game's events.
func (e *Engine) Watchers() *rules.WatcherRegistry {
	return e.watchers
}

func (e *Engine) actor(playerID int) (*player.Player, error) {
	if err := e.requireInProgress(); err != nil {
		return nil, err
	}
	p, ok := e.players[playerID]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownPlayer, playerID)
	}
	return p, nil
}

func (e *Engine) requireInProgress() error {
	if e.status != StatusInProgress {
		return fmt.Errorf("%w: %s", ErrGameNotInProgress, e.status)
	}
	return nil
}

func (e *Engine) requirePhase(allowed ...rules.Phase) error {
	current := e.phases.State().Phase
	for _, phase := range allowed {
		if current == phase {
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrWrongPhase, current)
}

func (e *Engine) reject(action string, playerID int, err error) error {
	e.logger.Debug("action rejected",
		zap.String("action", action),
		zap.Int("player_id", playerID),
		zap.Error(err),
	)
	return err
}

func (e *Engine) move(p *player.Player, c *card.Card, to card.Zone) bool {
	from := c.Zone
	if !p.MoveCard(c, to) {
		return false
	}
	e.emitZoneChange(p, c, from)
	return true
}

func (e *Engine) emit(evt rules.Event) {
	evt.Turn = e.phases.State().TurnNumber
	e.queued = append(e.queued, evt)
}

func (e *Engine) emitZoneChange(p *player.Player, c *card.Card, from card.Zone) {
	evt := rules.NewEvent(rules.EventZoneChange, c.ID(), p.ID)
	evt.Metadata[watchers.MetaFromZone] = from.String()
	evt.Metadata[watchers.MetaToZone] = c.Zone.String()
	evt.Description = fmt.Sprintf("%s moved from %s to %s", c.Name(), from, c.Zone)
	e.emit(evt)
}

func (e *Engine) emitDrawn(p *player.Player, drawn []*card.Card) {
	for _, c := range drawn {
		e.emit(rules.NewEvent(rules.EventCardDrawn, c.ID(), p.ID))
	}
}

func (e *Engine) emitReveal(p *player.Player, c *card.Card, value int) {
	cardID := ""
	if c != nil {
		cardID = c.ID()
	}
	evt := rules.NewEventWithAmount(rules.EventCardRevealed, cardID, p.ID, value)
	if c == nil {
		evt.Metadata["deck_empty"] = "true"
	}
	e.emit(evt)
}

func (e *Engine) emitCommitted(p *player.Player, committed []*card.Card) {
	if len(committed) == 0 {
		return
	}
	e.emit(rules.NewEventWithAmount(rules.EventFoundationsCommitted, "", p.ID, len(committed)))
}

func (e *Engine) emitPhaseChange(state rules.TurnState) {
	evt := rules.NewEvent(rules.EventPhaseChanged, "", state.ActivePlayer)
	evt.Metadata["phase"] = state.Phase.String()
	evt.Metadata["step"] = state.Step.String()
	e.emit(evt)
	e.logger.Debug("phase changed",
		zap.String("phase", state.Phase.String()),
		zap.Int("turn", state.TurnNumber),
		zap.Int("player_id", state.ActivePlayer),
	)
}

func inHand(p *player.Player, c *card.Card) error {
	if c == nil || c.Zone != card.ZoneHand || !p.Hand.Contains(c) {
		return fmt.Errorf("%w: %s", ErrCardNotInHand, cardName(c))
	}
	return nil
}

func cardName(c *card.Card) string {
	if c == nil {
		return "<nil>"
	}
	return c.Name()
}

func opponentOf(playerID int) int {
	return 3 - playerID
}
