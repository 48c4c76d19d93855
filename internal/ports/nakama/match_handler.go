package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"pili/internal/app"
	"pili/internal/bot"
	"pili/internal/config"
	"pili/internal/domain"
	"pili/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
)

// tableSize is the seat count bots fill a solo lobby up to.
const tableSize = 4

// MatchState holds the authoritative runtime state for one pili room. All
// mutation happens on the match goroutine, so no locking is needed.
type MatchState struct {
	Tick      int64                       `json:"tick"`
	Presences map[string]runtime.Presence `json:"-"` // userID -> presence, humans only
	App       *app.Service                `json:"-"`
	Game      *domain.Game                `json:"-"` // always non-nil; lobby phase between games
	Bots      map[string]*bot.Agent       `json:"-"` // agents acting for bot seats and vacated humans
	Economy   ports.EconomyPort           `json:"-"`

	BotsEnabled       bool  `json:"bots_enabled"`
	BotAutoFillDelay  int   `json:"bot_auto_fill_delay"` // seconds a solo human waits before bots join
	RoundGrace        int   `json:"round_grace"`         // seconds between rounds
	LastSoloHumanTick int64 `json:"last_solo_human_tick"`

	// Tick deadlines. Zero means inactive. The engine re-checks phase on
	// every call, so a deadline firing late is a harmless no-op.
	BotActAt    map[string]int64 `json:"-"`
	PeekUntil   int64            `json:"peek_until"`
	NextRoundAt int64            `json:"next_round_at"`
	LobbyAt     int64            `json:"lobby_at"`

	botSeq int
}

func (ms *MatchState) openSeats() int {
	if ms.Game.Phase() != domain.PhaseLobby {
		return 0
	}
	return ms.Game.Settings.MaxPlayers - len(ms.Game.Players)
}

func (ms *MatchState) humanCount() int {
	count := 0
	for _, p := range ms.Game.Players {
		if !p.IsBot {
			count++
		}
	}
	return count
}

func (ms *MatchState) connectedHumanCount() int {
	count := 0
	for _, p := range ms.Game.Players {
		if !p.IsBot && p.Connected {
			count++
		}
	}
	return count
}

func (ms *MatchState) firstBotID() string {
	for _, p := range ms.Game.Players {
		if p.IsBot {
			return p.ID
		}
	}
	return ""
}

// newMatchHandler is the factory registered with Nakama.
func newMatchHandler() runtime.Match {
	return &matchHandler{}
}

type matchHandler struct{}

func (mh *matchHandler) MatchInit(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, params map[string]interface{}) (interface{}, int, string) {
	if err := bot.LoadIdentities("data/bot_identities.json"); err != nil {
		logger.Warn("MatchInit: Could not load bot identities: %v", err)
	}
	if err := config.LoadGameConfig("data/game_config.json"); err != nil {
		logger.Warn("MatchInit: Could not load game config: %v", err)
	}

	settings := config.Settings()

	service := app.NewService(nil)
	state := &MatchState{
		Presences:   make(map[string]runtime.Presence),
		App:         service,
		Bots:        make(map[string]*bot.Agent),
		Economy:     NewNakamaEconomyAdapter(nk),
		BotsEnabled: true,
		BotActAt:    make(map[string]int64),
	}

	if env, ok := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string); ok {
		if val, ok := env["pili_bots_enabled"]; ok {
			state.BotsEnabled = val == "true"
		}
		if val, ok := env["pili_bot_auto_fill_delay_sec"]; ok {
			if i, err := strconv.Atoi(val); err == nil {
				state.BotAutoFillDelay = i
			}
		}
		if val, ok := env["pili_round_grace_sec"]; ok {
			if i, err := strconv.Atoi(val); err == nil {
				state.RoundGrace = i
			}
		}
		if val, ok := env["pili_limit"]; ok {
			if i, err := strconv.Atoi(val); err == nil && i > 0 {
				settings.PiliLimit = i
			}
		}
		if val, ok := env["pili_max_players"]; ok {
			if i, err := strconv.Atoi(val); err == nil && i >= 2 && i <= 8 {
				settings.MaxPlayers = i
			}
		}
		if val, ok := env["pili_expert_missions"]; ok {
			settings.ExpertMissions = val == "true"
		}
		if val, ok := env["pili_default_bot_difficulty"]; ok && val != "" {
			settings.DefaultBotDifficulty = domain.Difficulty(val)
		}
	}
	state.Game = service.NewGame(settings)
	if cfg := config.GetGameConfig(); cfg != nil {
		if state.BotAutoFillDelay == 0 {
			state.BotAutoFillDelay = cfg.BotAutoFillDelaySeconds
		}
		if state.RoundGrace == 0 {
			state.RoundGrace = cfg.RoundGraceSeconds
		}
	}
	if state.BotAutoFillDelay == 0 {
		state.BotAutoFillDelay = 5
	}
	if state.RoundGrace == 0 {
		state.RoundGrace = 6
	}

	labelBytes, err := json.Marshal(MatchLabel{Game: "pili", Phase: string(domain.PhaseLobby), Open: state.openSeats()})
	if err != nil {
		logger.Error("MatchInit: Failed to marshal label: %v", err)
		return nil, 0, ""
	}

	tickRate := 1
	return state, tickRate, string(labelBytes)
}

func (mh *matchHandler) MatchJoinAttempt(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presence runtime.Presence, metadata map[string]string) (interface{}, bool, string) {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state, false, "state not found"
	}

	// Bot accounts never join over the socket; a seated bot's ID would
	// otherwise pass the reconnect check below.
	if bot.IsBot(presence.GetUserId()) {
		return matchState, false, "bot accounts cannot join"
	}

	// Reconnects are always allowed.
	if _, exists := matchState.Game.PlayerByID(presence.GetUserId()); exists {
		return matchState, true, ""
	}

	if matchState.Game.Phase() != domain.PhaseLobby {
		return matchState, false, "game in progress"
	}
	if matchState.openSeats() <= 0 && matchState.firstBotID() == "" {
		return matchState, false, "match full"
	}
	return matchState, true, ""
}

func (mh *matchHandler) MatchJoin(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchJoin: state not found")
		return state
	}

	for _, p := range presences {
		userID := p.GetUserId()
		matchState.Presences[userID] = p

		if _, exists := matchState.Game.PlayerByID(userID); exists {
			// Reconnect: resume control from the autopilot agent.
			delete(matchState.Bots, userID)
			delete(matchState.BotActAt, userID)
			if err := matchState.App.SetConnected(matchState.Game, userID, true); err != nil {
				logger.Warn("MatchJoin: reconnect %s: %v", userID, err)
			}
			mh.sendState(matchState, dispatcher, logger, userID)
			continue
		}

		// A full lobby gives the human a bot's seat.
		if matchState.openSeats() <= 0 {
			if botID := matchState.firstBotID(); botID != "" {
				logger.Info("MatchJoin: Replacing bot %s with human %s", botID, userID)
				delete(matchState.Bots, botID)
				delete(matchState.BotActAt, botID)
				if events, err := matchState.App.RemovePlayer(matchState.Game, botID); err == nil {
					mh.dispatchEvents(ctx, matchState, dispatcher, logger, events)
				}
			}
		}

		events, err := matchState.App.AddPlayer(matchState.Game, userID, p.GetUsername(), false, "")
		if err != nil {
			logger.Warn("MatchJoin: User %s joined but could not be seated: %v", userID, err)
			continue
		}
		mh.dispatchEvents(ctx, matchState, dispatcher, logger, events)
		mh.sendState(matchState, dispatcher, logger, userID)
	}

	mh.updateLabel(matchState, dispatcher, logger)
	return matchState
}

func (mh *matchHandler) MatchLeave(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchLeave: state not found")
		return state
	}

	for _, p := range presences {
		userID := p.GetUserId()
		delete(matchState.Presences, userID)

		if matchState.Game.Phase() == domain.PhaseLobby {
			if events, err := matchState.App.RemovePlayer(matchState.Game, userID); err == nil {
				mh.dispatchEvents(ctx, matchState, dispatcher, logger, events)
			}
			continue
		}

		// Mid-game leavers are put on autopilot so the round can finish.
		if err := matchState.App.SetConnected(matchState.Game, userID, false); err == nil {
			if agent, err := bot.NewAgent(userID, p.GetUsername(), domain.DifficultyEasy, matchState.App.Rng()); err == nil {
				matchState.Bots[userID] = agent
				logger.Info("MatchLeave: User %s left mid-game, autopilot engaged.", userID)
			}
		}
	}

	if matchState.connectedHumanCount() == 0 {
		logger.Info("MatchLeave: Terminating match with no humans.")
		return nil
	}

	mh.updateLabel(matchState, dispatcher, logger)
	return matchState
}

func (mh *matchHandler) MatchLoop(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, messages []runtime.MatchData) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state
	}
	matchState.Tick = tick

	for _, msg := range messages {
		mh.handleMessage(ctx, matchState, dispatcher, logger, msg)
	}

	mh.fireTimers(ctx, matchState, dispatcher, logger)

	if matchState.BotsEnabled {
		mh.processBots(ctx, matchState, dispatcher, logger)
	}

	return matchState
}

func (mh *matchHandler) handleMessage(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()
	g := state.Game

	var events []app.Event
	var err error

	switch msg.GetOpCode() {
	case OpSetReady:
		var req SetReadyRequest
		if err = json.Unmarshal(msg.GetData(), &req); err == nil {
			events, err = state.App.SetReady(g, senderID, req.Ready)
		}
	case OpStartGame:
		events, err = state.App.StartGame(g)
	case OpPlaceBet:
		var req PlaceBetRequest
		if err = json.Unmarshal(msg.GetData(), &req); err == nil {
			events, err = state.App.PlaceBet(g, senderID, req.Bet)
		}
	case OpPlayCard:
		var req PlayCardRequest
		if err = json.Unmarshal(msg.GetData(), &req); err == nil {
			events, err = state.App.PlayCard(g, senderID, req.CardID, req.JokerValue)
		}
	case OpSubmitPass:
		var req PassCardsRequest
		if err = json.Unmarshal(msg.GetData(), &req); err == nil {
			events, err = state.App.SubmitPassCards(g, senderID, req.CardIDs)
		}
	case OpSubmitDesignation:
		var req DesignationRequest
		if err = json.Unmarshal(msg.GetData(), &req); err == nil {
			events, err = state.App.SubmitDesignation(g, senderID, req.TargetID)
		}
	case OpSubmitExchange:
		var req ExchangeRequest
		if err = json.Unmarshal(msg.GetData(), &req); err == nil {
			events, err = state.App.SubmitExchange(g, senderID, req.CardID, req.TargetID)
		}
	case OpAddBot:
		var req AddBotRequest
		if err = json.Unmarshal(msg.GetData(), &req); err == nil {
			difficulty := g.Settings.DefaultBotDifficulty
			if req.Difficulty != "" {
				difficulty = domain.Difficulty(req.Difficulty)
			}
			events, err = mh.addBot(state, difficulty)
		}
	case OpRequestState:
		mh.sendState(state, dispatcher, logger, senderID)
		return
	default:
		logger.Warn("MatchLoop: Unknown opcode received: %d", msg.GetOpCode())
		return
	}

	if err != nil {
		if app.IsPlayerError(err) {
			logger.Debug("handleMessage: User %s op %d rejected: %v", senderID, msg.GetOpCode(), err)
			mh.sendError(state, dispatcher, logger, senderID, 400, err.Error())
		} else {
			logger.Error("handleMessage: User %s op %d failed: %v", senderID, msg.GetOpCode(), err)
			mh.sendError(state, dispatcher, logger, senderID, 500, "internal error")
		}
		return
	}

	mh.dispatchEvents(ctx, state, dispatcher, logger, events)
}

// fireTimers runs the tick-deadline actions. Every engine call re-checks
// the phase, so a deadline that outlived its phase resolves to a player
// error and is dropped.
func (mh *matchHandler) fireTimers(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	if state.PeekUntil > 0 && state.Tick >= state.PeekUntil {
		state.PeekUntil = 0
		mh.runTimer(ctx, state, dispatcher, logger, "peek", state.App.EndPeek)
	}
	if state.NextRoundAt > 0 && state.Tick >= state.NextRoundAt {
		state.NextRoundAt = 0
		mh.runTimer(ctx, state, dispatcher, logger, "next_round", state.App.BeginNextRound)
	}
	if state.LobbyAt > 0 && state.Tick >= state.LobbyAt {
		state.LobbyAt = 0
		mh.runTimer(ctx, state, dispatcher, logger, "lobby", state.App.ReturnToLobby)
	}
}

func (mh *matchHandler) runTimer(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, name string, fn func(*domain.Game) ([]app.Event, error)) {
	events, err := fn(state.Game)
	if err != nil {
		if !errors.Is(err, app.ErrWrongPhase) {
			logger.Error("fireTimers: %s: %v", name, err)
		}
		return
	}
	mh.dispatchEvents(ctx, state, dispatcher, logger, events)
}

func (mh *matchHandler) processBots(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	g := state.Game

	// Auto-fill a solo lobby after a delay.
	if g.Phase() == domain.PhaseLobby {
		if state.humanCount() == 1 && len(g.Players) < tableSize {
			if state.LastSoloHumanTick == 0 {
				state.LastSoloHumanTick = state.Tick
			}
			if state.Tick-state.LastSoloHumanTick >= int64(state.BotAutoFillDelay) {
				state.LastSoloHumanTick = 0
				for len(g.Players) < tableSize {
					events, err := mh.addBot(state, g.Settings.DefaultBotDifficulty)
					if err != nil {
						logger.Error("processBots: auto-fill: %v", err)
						break
					}
					mh.dispatchEvents(ctx, state, dispatcher, logger, events)
				}
				mh.updateLabel(state, dispatcher, logger)
			}
		} else {
			state.LastSoloHumanTick = 0
		}
		return
	}

	pending := state.App.PendingActorIDs(g)
	pendingSet := make(map[string]bool, len(pending))
	for _, id := range pending {
		pendingSet[id] = true
	}
	for id := range state.BotActAt {
		if !pendingSet[id] {
			delete(state.BotActAt, id)
		}
	}

	for _, id := range pending {
		agent, isAgent := state.Bots[id]
		if !isAgent {
			continue
		}
		deadline, scheduled := state.BotActAt[id]
		if !scheduled {
			wait := int64(agent.Strategy.ThinkDelay() / time.Second)
			if wait < 1 {
				wait = 1
			}
			state.BotActAt[id] = state.Tick + wait
			continue
		}
		if state.Tick < deadline {
			continue
		}
		delete(state.BotActAt, id)
		mh.actAsBot(ctx, state, dispatcher, logger, agent)
	}
}

// actAsBot maps the agent's decision for the current phase onto an engine
// call.
func (mh *matchHandler) actAsBot(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, agent *bot.Agent) {
	g := state.Game
	p, ok := g.PlayerByID(agent.ID)
	if !ok {
		return
	}

	var events []app.Event
	var err error

	switch g.Phase() {
	case domain.PhaseBetting:
		var betCtx domain.BetContext
		betCtx, err = state.App.BetContext(g, agent.ID)
		if err == nil {
			bet, legal := agent.Strategy.DecideBet(g, p, betCtx)
			if !legal {
				logger.Warn("actAsBot: Bot %s found no legal bet, falling back to %d", agent.ID, bet)
			}
			events, err = state.App.PlaceBet(g, agent.ID, bet)
		}
	case domain.PhaseTrickPlay:
		cardID, jokerValue := agent.Strategy.DecideCard(g, p)
		events, err = state.App.PlayCard(g, agent.ID, cardID, jokerValue)
	case domain.PhasePostBetMission:
		switch {
		case g.Mission.PassesCards():
			events, err = state.App.SubmitPassCards(g, agent.ID, agent.Strategy.DecidePassCards(g, p))
		case g.Mission.RequiresDesignation():
			events, err = state.App.SubmitDesignation(g, agent.ID, agent.Strategy.DecideDesignation(g, p))
		}
	case domain.PhaseTrickResolution:
		cardID, targetID := agent.Strategy.DecideExchange(g, p)
		events, err = state.App.SubmitExchange(g, agent.ID, cardID, targetID)
	default:
		return
	}

	if err != nil {
		if !errors.Is(err, app.ErrWrongPhase) {
			logger.Warn("actAsBot: Bot %s failed to act in %s: %v", agent.ID, g.Phase(), err)
		}
		return
	}
	mh.dispatchEvents(ctx, state, dispatcher, logger, events)
}

func (mh *matchHandler) addBot(state *MatchState, difficulty domain.Difficulty) ([]app.Event, error) {
	identity := bot.IdentityForSeat(state.botSeq, difficulty)
	state.botSeq++

	agent, err := bot.NewAgent(identity.UserID, identity.DisplayName, identity.Difficulty, state.App.Rng())
	if err != nil {
		return nil, err
	}

	events, err := state.App.AddPlayer(state.Game, identity.UserID, identity.DisplayName, true, identity.Difficulty)
	if err != nil {
		return nil, err
	}
	state.Bots[identity.UserID] = agent
	return events, nil
}

// dispatchEvents pushes engine events to clients and applies their side
// effects on room timers, labels and wallets.
func (mh *matchHandler) dispatchEvents(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, events []app.Event) {
	for _, ev := range events {
		mh.applySideEffects(ctx, state, dispatcher, logger, ev)
		mh.broadcastEvent(state, dispatcher, logger, ev)
	}
}

func (mh *matchHandler) applySideEffects(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, ev app.Event) {
	switch ev.Kind {
	case app.EventPeekStarted:
		if p, ok := ev.Payload.(app.PeekStartedPayload); ok {
			secs := int64(p.Duration / time.Second)
			if secs < 1 {
				secs = 1
			}
			state.PeekUntil = state.Tick + secs
		}
	case app.EventRoundEnded:
		state.NextRoundAt = state.Tick + int64(state.RoundGrace)
	case app.EventGameOver:
		if p, ok := ev.Payload.(app.GameOverPayload); ok {
			mh.settleWallets(ctx, state, logger, p)
		}
		state.LobbyAt = state.Tick + 2*int64(state.RoundGrace)
		mh.updateLabel(state, dispatcher, logger)
	case app.EventPhaseChanged:
		mh.updateLabel(state, dispatcher, logger)
	}
}

// settleWallets credits the winner and fines the eliminated player. Bots
// hold no wallets.
func (mh *matchHandler) settleWallets(ctx context.Context, state *MatchState, logger runtime.Logger, p app.GameOverPayload) {
	if state.Economy == nil || len(p.Standings) == 0 {
		return
	}
	matchID, _ := ctx.Value(runtime.RUNTIME_CTX_MATCH_ID).(string)

	var updates []ports.WalletUpdate
	winner := p.Standings[0]
	if gp, ok := state.Game.PlayerByID(winner.PlayerID); ok && !gp.IsBot {
		updates = append(updates, ports.WalletUpdate{
			UserID: winner.PlayerID,
			Amount: config.GetWinReward(),
			Metadata: map[string]interface{}{
				"match_id": matchID,
				"reason":   "game_won",
			},
		})
	}
	if gp, ok := state.Game.PlayerByID(p.EliminatedID); ok && !gp.IsBot {
		balance, err := state.Economy.GetBalance(ctx, p.EliminatedID)
		if err != nil {
			logger.Warn("settleWallets: balance for %s: %v", p.EliminatedID, err)
			balance = 0
		}
		if fine := config.GetEliminationFine(balance); fine > 0 {
			updates = append(updates, ports.WalletUpdate{
				UserID: p.EliminatedID,
				Amount: -fine,
				Metadata: map[string]interface{}{
					"match_id": matchID,
					"reason":   "eliminated",
				},
			})
		}
	}
	if err := state.Economy.UpdateBalances(ctx, updates); err != nil {
		logger.Error("settleWallets: %v", err)
	}
}

func (mh *matchHandler) broadcastEvent(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, ev app.Event) {
	bytes, err := json.Marshal(EventEnvelope{Kind: ev.Kind, Payload: ev.Payload})
	if err != nil {
		logger.Error("Failed to marshal event %v: %v", ev.Kind, err)
		return
	}

	var recipients []runtime.Presence
	if len(ev.Recipients) > 0 {
		for _, uid := range ev.Recipients {
			if p, ok := state.Presences[uid]; ok {
				recipients = append(recipients, p)
			}
		}
		// A targeted event whose recipients are all offline or bots must
		// not fall back to a broadcast.
		if len(recipients) == 0 {
			return
		}
	}

	dispatcher.BroadcastMessage(OpServerEvent, bytes, recipients, nil, true)
}

// sendState sends a full visibility-filtered snapshot to one player.
func (mh *matchHandler) sendState(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, userID string) {
	presence, ok := state.Presences[userID]
	if !ok {
		return
	}
	snapshot := state.App.ClientState(state.Game, userID)
	bytes, err := json.Marshal(snapshot)
	if err != nil {
		logger.Error("sendState: marshal for %s: %v", userID, err)
		return
	}
	dispatcher.BroadcastMessage(OpServerState, bytes, []runtime.Presence{presence}, nil, true)
}

func (mh *matchHandler) sendError(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, userID string, code int, message string) {
	presence, ok := state.Presences[userID]
	if !ok {
		return
	}
	bytes, err := json.Marshal(ErrorMessage{Code: code, Message: message})
	if err != nil {
		logger.Error("sendError: marshal: %v", err)
		return
	}
	dispatcher.BroadcastMessage(OpServerError, bytes, []runtime.Presence{presence}, nil, true)
}

func (mh *matchHandler) updateLabel(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	label := MatchLabel{
		Game:  "pili",
		Phase: string(state.Game.Phase()),
		Open:  state.openSeats(),
	}
	labelBytes, err := json.Marshal(label)
	if err != nil {
		logger.Error("UpdateLabel: Failed to marshal: %v", err)
		return
	}
	if err := dispatcher.MatchLabelUpdate(string(labelBytes)); err != nil {
		logger.Error("UpdateLabel: Failed to update: %v", err)
	}
}

func (mh *matchHandler) MatchTerminate(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, reason int) interface{} {
	logger.Debug("MatchTerminate: Match terminated for reason %d", reason)
	return state
}

func (mh *matchHandler) MatchSignal(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, data string) (interface{}, string) {
	return state, ""
}
