package nakama

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"pili/internal/app"
	"pili/internal/bot"
	"pili/internal/domain"
	"pili/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
)

// noopLogger implements runtime.Logger for tests that only need to satisfy
// the interface.
type noopLogger struct{}

func (noopLogger) Debug(string, ...interface{}) {}
func (noopLogger) Info(string, ...interface{})  {}
func (noopLogger) Warn(string, ...interface{})  {}
func (noopLogger) Error(string, ...interface{}) {}
func (noopLogger) WithField(string, interface{}) runtime.Logger {
	return noopLogger{}
}
func (noopLogger) WithFields(map[string]interface{}) runtime.Logger {
	return noopLogger{}
}
func (noopLogger) Fields() map[string]interface{} {
	return nil
}

// mockDispatcher records match dispatcher calls for assertions.
type mockDispatcher struct {
	broadcastCount int
	labelUpdates   int
	lastLabel      string
	lastOpCode     int64
	lastData       []byte
	opCodes        []int64
}

func (md *mockDispatcher) BroadcastMessage(opCode int64, data []byte, presences []runtime.Presence, sender runtime.Presence, reliable bool) error {
	md.broadcastCount++
	md.lastOpCode = opCode
	md.lastData = append([]byte(nil), data...)
	md.opCodes = append(md.opCodes, opCode)
	return nil
}

func (md *mockDispatcher) BroadcastMessageDeferred(opCode int64, data []byte, presences []runtime.Presence, sender runtime.Presence, reliable bool) error {
	return nil
}

func (md *mockDispatcher) MatchKick(presences []runtime.Presence) error {
	return nil
}

func (md *mockDispatcher) MatchLabelUpdate(label string) error {
	md.labelUpdates++
	md.lastLabel = label
	return nil
}

// mockPresence is a minimal runtime.Presence for seat bookkeeping.
type mockPresence struct {
	userID   string
	username string
}

func (mp *mockPresence) GetUserId() string    { return mp.userID }
func (mp *mockPresence) GetSessionId() string { return "session-" + mp.userID }
func (mp *mockPresence) GetNodeId() string    { return "node-1" }
func (mp *mockPresence) GetHidden() bool      { return false }
func (mp *mockPresence) GetPersistence() bool { return true }
func (mp *mockPresence) GetUsername() string  { return mp.username }
func (mp *mockPresence) GetStatus() string    { return "" }
func (mp *mockPresence) GetReason() runtime.PresenceReason {
	return runtime.PresenceReasonJoin
}

// mockMatchData wraps a client message for MatchLoop.
type mockMatchData struct {
	mockPresence
	opCode int64
	data   []byte
}

func (md *mockMatchData) GetOpCode() int64      { return md.opCode }
func (md *mockMatchData) GetData() []byte       { return md.data }
func (md *mockMatchData) GetReliable() bool     { return true }
func (md *mockMatchData) GetReceiveTime() int64 { return 0 }

type mockEconomy struct {
	balances map[string]int64
	updates  [][]ports.WalletUpdate
}

func (me *mockEconomy) GetBalance(ctx context.Context, userID string) (int64, error) {
	if balance, ok := me.balances[userID]; ok {
		return balance, nil
	}
	return 0, errors.New("balance not found")
}

func (me *mockEconomy) UpdateBalances(ctx context.Context, updates []ports.WalletUpdate) error {
	me.updates = append(me.updates, updates)
	return nil
}

func newTestMatch(t *testing.T) (*matchHandler, *MatchState) {
	t.Helper()
	mh := &matchHandler{}
	service := app.NewService(nil)
	state := &MatchState{
		Presences:        make(map[string]runtime.Presence),
		App:              service,
		Game:             service.NewGame(domain.DefaultSettings()),
		Bots:             make(map[string]*bot.Agent),
		Economy:          &mockEconomy{balances: map[string]int64{}},
		BotsEnabled:      true,
		BotAutoFillDelay: 3,
		RoundGrace:       2,
		BotActAt:         make(map[string]int64),
	}
	return mh, state
}

func joinHuman(t *testing.T, mh *matchHandler, state *MatchState, userID string) *mockPresence {
	t.Helper()
	p := &mockPresence{userID: userID, username: "u-" + userID}
	_, allowed, reason := mh.MatchJoinAttempt(context.Background(), noopLogger{}, nil, nil, &mockDispatcher{}, state.Tick, state, p, nil)
	if !allowed {
		t.Fatalf("join attempt for %s rejected: %s", userID, reason)
	}
	mh.MatchJoin(context.Background(), noopLogger{}, nil, nil, &mockDispatcher{}, state.Tick, state, []runtime.Presence{p})
	return p
}

func loopUntil(t *testing.T, mh *matchHandler, state *MatchState, ticks int) {
	t.Helper()
	for i := 0; i < ticks; i++ {
		state2 := mh.MatchLoop(context.Background(), noopLogger{}, nil, nil, &mockDispatcher{}, state.Tick+1, state, nil)
		if state2 == nil {
			t.Fatal("match terminated unexpectedly")
		}
	}
}

func TestMatchInitLabel(t *testing.T) {
	mh := &matchHandler{}
	stateI, tickRate, label := mh.MatchInit(context.Background(), noopLogger{}, nil, nil, nil)
	if stateI == nil {
		t.Fatal("MatchInit returned nil state")
	}
	if tickRate != 1 {
		t.Fatalf("tick rate = %d, want 1", tickRate)
	}

	var parsed MatchLabel
	if err := json.Unmarshal([]byte(label), &parsed); err != nil {
		t.Fatalf("label is not JSON: %v", err)
	}
	if parsed.Game != "pili" || parsed.Phase != string(domain.PhaseLobby) {
		t.Fatalf("label = %+v", parsed)
	}
	if parsed.Open <= 0 {
		t.Fatalf("fresh lobby advertises %d open seats", parsed.Open)
	}
}

func TestJoinSeatsPlayerAndSendsState(t *testing.T) {
	mh, state := newTestMatch(t)
	dispatcher := &mockDispatcher{}

	p := &mockPresence{userID: "u1", username: "Alice"}
	mh.MatchJoin(context.Background(), noopLogger{}, nil, nil, dispatcher, 1, state, []runtime.Presence{p})

	gp, ok := state.Game.PlayerByID("u1")
	if !ok {
		t.Fatal("player not seated")
	}
	if gp.IsBot || gp.Name != "Alice" {
		t.Fatalf("seated player = %+v", gp)
	}
	if dispatcher.lastOpCode != OpServerState {
		t.Fatalf("last opcode = %d, want state snapshot %d", dispatcher.lastOpCode, OpServerState)
	}
	var snapshot app.ClientState
	if err := json.Unmarshal(dispatcher.lastData, &snapshot); err != nil {
		t.Fatalf("snapshot is not JSON: %v", err)
	}
	if snapshot.Phase != domain.PhaseLobby {
		t.Fatalf("snapshot phase = %s", snapshot.Phase)
	}
}

func TestJoinAttemptRejectedMidGame(t *testing.T) {
	mh, state := newTestMatch(t)
	joinHuman(t, mh, state, "u1")
	joinHuman(t, mh, state, "u2")

	startMatchGame(t, mh, state)

	p := &mockPresence{userID: "u3"}
	_, allowed, reason := mh.MatchJoinAttempt(context.Background(), noopLogger{}, nil, nil, &mockDispatcher{}, state.Tick, state, p, nil)
	if allowed {
		t.Fatal("mid-game join allowed")
	}
	if reason == "" {
		t.Fatal("rejection carries no reason")
	}

	// The seated players may always come back.
	rejoin := &mockPresence{userID: "u1"}
	if _, allowed, _ := mh.MatchJoinAttempt(context.Background(), noopLogger{}, nil, nil, &mockDispatcher{}, state.Tick, state, rejoin, nil); !allowed {
		t.Fatal("reconnect rejected")
	}
}

func TestJoinAttemptRejectsBotAccounts(t *testing.T) {
	mh, state := newTestMatch(t)
	joinHuman(t, mh, state, "u1")

	p := &mockPresence{userID: "bot-7", username: "Marin"}
	_, allowed, reason := mh.MatchJoinAttempt(context.Background(), noopLogger{}, nil, nil, &mockDispatcher{}, state.Tick, state, p, nil)
	if allowed {
		t.Fatal("bot account admitted over the socket")
	}
	if reason == "" {
		t.Fatal("rejection carries no reason")
	}
}

// TestPeekEndsOnlyOnDeadline pins the peek window to the server timer: no
// client message may cut it short.
func TestPeekEndsOnlyOnDeadline(t *testing.T) {
	mh, state := newTestMatch(t)
	joinHuman(t, mh, state, "u1")
	joinHuman(t, mh, state, "u2")

	g := state.Game
	for _, phase := range []domain.Phase{domain.PhaseRoundStart, domain.PhaseMissionReveal, domain.PhaseDealing, domain.PhasePreBetMission} {
		if err := g.Machine.Transition(phase); err != nil {
			t.Fatal(err)
		}
	}
	g.Mission = &domain.Mission{ID: "peek", Name: "Quick Look", CardsPerPlayer: 3, Effect: domain.EffectPeekThenHide, PeekDuration: 5 * time.Second}
	g.RoundNumber = 1
	g.TrickTarget = 3
	g.Round = domain.NewRoundState()
	state.PeekUntil = state.Tick + 5

	// Every client opcode bounces off the window.
	var messages []runtime.MatchData
	for op := OpSetReady; op <= OpRequestState; op++ {
		messages = append(messages, &mockMatchData{mockPresence: mockPresence{userID: "u2"}, opCode: op, data: []byte("{}")})
	}
	state.Tick++
	if mh.MatchLoop(context.Background(), noopLogger{}, nil, nil, &mockDispatcher{}, state.Tick, state, messages) == nil {
		t.Fatal("match terminated")
	}
	if g.Round.PeekEnded {
		t.Fatal("a client message ended the peek")
	}
	if g.Phase() != domain.PhasePreBetMission {
		t.Fatalf("phase = %s, want %s", g.Phase(), domain.PhasePreBetMission)
	}

	// The tick deadline still closes it.
	loopUntil(t, mh, state, 6)
	if !g.Round.PeekEnded {
		t.Fatal("deadline did not end the peek")
	}
	if g.Phase() != domain.PhaseBetting {
		t.Fatalf("phase = %s, want %s", g.Phase(), domain.PhaseBetting)
	}
}

// startMatchGame drives ready messages and the start message through the
// loop the way a client would.
func startMatchGame(t *testing.T, mh *matchHandler, state *MatchState) {
	t.Helper()
	var messages []runtime.MatchData
	for id := range state.Presences {
		body, _ := json.Marshal(SetReadyRequest{Ready: true})
		messages = append(messages, &mockMatchData{
			mockPresence: mockPresence{userID: id},
			opCode:       OpSetReady,
			data:         body,
		})
	}
	host := messages[0].GetUserId()
	messages = append(messages, &mockMatchData{
		mockPresence: mockPresence{userID: host},
		opCode:       OpStartGame,
	})

	state.Tick++
	if mh.MatchLoop(context.Background(), noopLogger{}, nil, nil, &mockDispatcher{}, state.Tick, state, messages) == nil {
		t.Fatal("match terminated during start")
	}
	if state.Game.Phase() == domain.PhaseLobby {
		t.Fatal("game did not start")
	}
}

func TestMessageFlowStartsGame(t *testing.T) {
	mh, state := newTestMatch(t)
	joinHuman(t, mh, state, "u1")
	joinHuman(t, mh, state, "u2")

	startMatchGame(t, mh, state)

	if state.Game.RoundNumber != 1 {
		t.Fatalf("round = %d, want 1", state.Game.RoundNumber)
	}
	for _, p := range state.Game.Players {
		if len(p.Hand) == 0 {
			t.Fatalf("player %s has no cards after start", p.ID)
		}
	}
}

func TestRejectedMessageSendsErrorToSender(t *testing.T) {
	mh, state := newTestMatch(t)
	joinHuman(t, mh, state, "u1")
	dispatcher := &mockDispatcher{}

	// Betting while still in the lobby is a player error.
	body, _ := json.Marshal(PlaceBetRequest{Bet: 2})
	msg := &mockMatchData{mockPresence: mockPresence{userID: "u1"}, opCode: OpPlaceBet, data: body}
	mh.handleMessage(context.Background(), state, dispatcher, noopLogger{}, msg)

	if dispatcher.lastOpCode != OpServerError {
		t.Fatalf("last opcode = %d, want error %d", dispatcher.lastOpCode, OpServerError)
	}
	var errMsg ErrorMessage
	if err := json.Unmarshal(dispatcher.lastData, &errMsg); err != nil {
		t.Fatalf("error payload is not JSON: %v", err)
	}
	if errMsg.Code != 400 {
		t.Fatalf("error code = %d, want 400", errMsg.Code)
	}
}

func TestSoloLobbyAutoFills(t *testing.T) {
	mh, state := newTestMatch(t)
	joinHuman(t, mh, state, "u1")

	// Below the delay nothing happens.
	loopUntil(t, mh, state, state.BotAutoFillDelay)
	if len(state.Game.Players) != 1 {
		t.Fatalf("bots joined early: %d players", len(state.Game.Players))
	}

	loopUntil(t, mh, state, 2)
	if len(state.Game.Players) != tableSize {
		t.Fatalf("players after auto-fill = %d, want %d", len(state.Game.Players), tableSize)
	}
	botCount := 0
	for _, p := range state.Game.Players {
		if p.IsBot {
			botCount++
			if _, ok := state.Bots[p.ID]; !ok {
				t.Fatalf("bot seat %s has no agent", p.ID)
			}
		}
	}
	if botCount != tableSize-1 {
		t.Fatalf("bot count = %d, want %d", botCount, tableSize-1)
	}
}

func TestAutoFillSkippedWithTwoHumans(t *testing.T) {
	mh, state := newTestMatch(t)
	joinHuman(t, mh, state, "u1")
	joinHuman(t, mh, state, "u2")

	loopUntil(t, mh, state, state.BotAutoFillDelay+3)
	if len(state.Game.Players) != 2 {
		t.Fatalf("bots filled a two-human lobby: %d players", len(state.Game.Players))
	}
}

func TestHumanTakesBotSeatInFullLobby(t *testing.T) {
	mh, state := newTestMatch(t)
	joinHuman(t, mh, state, "u1")
	state.Game.Settings.MaxPlayers = tableSize
	loopUntil(t, mh, state, state.BotAutoFillDelay+2)
	if len(state.Game.Players) != tableSize {
		t.Fatalf("auto-fill incomplete: %d players", len(state.Game.Players))
	}

	joinHuman(t, mh, state, "u2")
	if len(state.Game.Players) != tableSize {
		t.Fatalf("players after takeover = %d, want %d", len(state.Game.Players), tableSize)
	}
	if _, ok := state.Game.PlayerByID("u2"); !ok {
		t.Fatal("human did not get a seat")
	}
	botCount := 0
	for _, p := range state.Game.Players {
		if p.IsBot {
			botCount++
		}
	}
	if botCount != tableSize-2 {
		t.Fatalf("bot count = %d, want %d", botCount, tableSize-2)
	}
}

func TestLeaveInLobbyFreesSeat(t *testing.T) {
	mh, state := newTestMatch(t)
	joinHuman(t, mh, state, "u1")
	p2 := joinHuman(t, mh, state, "u2")

	result := mh.MatchLeave(context.Background(), noopLogger{}, nil, nil, &mockDispatcher{}, state.Tick, state, []runtime.Presence{p2})
	if result == nil {
		t.Fatal("match terminated with a human still seated")
	}
	if _, ok := state.Game.PlayerByID("u2"); ok {
		t.Fatal("lobby leaver still seated")
	}
}

func TestLeaveMidGameEngagesAutopilot(t *testing.T) {
	mh, state := newTestMatch(t)
	joinHuman(t, mh, state, "u1")
	p2 := joinHuman(t, mh, state, "u2")
	startMatchGame(t, mh, state)

	result := mh.MatchLeave(context.Background(), noopLogger{}, nil, nil, &mockDispatcher{}, state.Tick, state, []runtime.Presence{p2})
	if result == nil {
		t.Fatal("match terminated with a human still connected")
	}
	gp, ok := state.Game.PlayerByID("u2")
	if !ok {
		t.Fatal("mid-game leaver lost their seat")
	}
	if gp.Connected {
		t.Fatal("leaver still marked connected")
	}
	if _, ok := state.Bots["u2"]; !ok {
		t.Fatal("no autopilot agent for the leaver")
	}
}

func TestLastHumanLeavingTerminates(t *testing.T) {
	mh, state := newTestMatch(t)
	p1 := joinHuman(t, mh, state, "u1")

	result := mh.MatchLeave(context.Background(), noopLogger{}, nil, nil, &mockDispatcher{}, state.Tick, state, []runtime.Presence{p1})
	if result != nil {
		t.Fatal("empty match kept running")
	}
}

func TestReconnectDisengagesAutopilot(t *testing.T) {
	mh, state := newTestMatch(t)
	joinHuman(t, mh, state, "u1")
	p2 := joinHuman(t, mh, state, "u2")
	startMatchGame(t, mh, state)
	mh.MatchLeave(context.Background(), noopLogger{}, nil, nil, &mockDispatcher{}, state.Tick, state, []runtime.Presence{p2})

	mh.MatchJoin(context.Background(), noopLogger{}, nil, nil, &mockDispatcher{}, state.Tick, state, []runtime.Presence{p2})

	gp, _ := state.Game.PlayerByID("u2")
	if !gp.Connected {
		t.Fatal("reconnect did not restore connectivity")
	}
	if _, ok := state.Bots["u2"]; ok {
		t.Fatal("autopilot agent survived the reconnect")
	}
}

// TestBotsPlayThroughFullGame fills a solo lobby with agents, puts the one
// human on autopilot as the disconnect-grace flow would, and ticks the loop
// until the agents carry the game to completion and back to the lobby.
func TestBotsPlayThroughFullGame(t *testing.T) {
	mh, state := newTestMatch(t)
	joinHuman(t, mh, state, "h1")
	loopUntil(t, mh, state, state.BotAutoFillDelay+2)
	if len(state.Game.Players) != tableSize {
		t.Fatalf("auto-fill incomplete: %d players", len(state.Game.Players))
	}
	startMatchGame(t, mh, state)

	agent, err := bot.NewAgent("h1", "h1", domain.DifficultyEasy, state.App.Rng())
	if err != nil {
		t.Fatal(err)
	}
	state.Bots["h1"] = agent

	const maxTicks = 20000
	for i := 0; i < maxTicks && state.Game.Phase() != domain.PhaseGameOver; i++ {
		state.Tick++
		mh.MatchLoop(context.Background(), noopLogger{}, nil, nil, &mockDispatcher{}, state.Tick, state, nil)
	}
	if state.Game.Phase() != domain.PhaseGameOver {
		t.Fatalf("no game over after %d ticks, phase %s", maxTicks, state.Game.Phase())
	}

	// After the lobby timer fires the room resets for a rematch.
	for i := 0; i < 3*state.RoundGrace && state.Game.Phase() != domain.PhaseLobby; i++ {
		state.Tick++
		mh.MatchLoop(context.Background(), noopLogger{}, nil, nil, &mockDispatcher{}, state.Tick, state, nil)
	}
	if state.Game.Phase() != domain.PhaseLobby {
		t.Fatal("room did not return to the lobby")
	}
}

func TestAddBotMessage(t *testing.T) {
	mh, state := newTestMatch(t)
	joinHuman(t, mh, state, "u1")
	joinHuman(t, mh, state, "u2")

	body, _ := json.Marshal(AddBotRequest{Difficulty: string(domain.DifficultyHard)})
	msg := &mockMatchData{mockPresence: mockPresence{userID: "u1"}, opCode: OpAddBot, data: body}
	mh.handleMessage(context.Background(), state, &mockDispatcher{}, noopLogger{}, msg)

	if len(state.Game.Players) != 3 {
		t.Fatalf("players = %d, want 3", len(state.Game.Players))
	}
	var added *domain.Player
	for _, p := range state.Game.Players {
		if p.IsBot {
			added = p
		}
	}
	if added == nil {
		t.Fatal("no bot seated")
	}
	if added.Difficulty != domain.DifficultyHard {
		t.Fatalf("difficulty = %q, want hard", added.Difficulty)
	}
}

func TestLabelTracksPhase(t *testing.T) {
	mh, state := newTestMatch(t)
	dispatcher := &mockDispatcher{}
	p1 := &mockPresence{userID: "u1", username: "A"}
	p2 := &mockPresence{userID: "u2", username: "B"}
	mh.MatchJoin(context.Background(), noopLogger{}, nil, nil, dispatcher, 1, state, []runtime.Presence{p1, p2})

	if dispatcher.labelUpdates == 0 {
		t.Fatal("join did not refresh the label")
	}

	var messages []runtime.MatchData
	for _, id := range []string{"u1", "u2"} {
		body, _ := json.Marshal(SetReadyRequest{Ready: true})
		messages = append(messages, &mockMatchData{mockPresence: mockPresence{userID: id}, opCode: OpSetReady, data: body})
	}
	messages = append(messages, &mockMatchData{mockPresence: mockPresence{userID: "u1"}, opCode: OpStartGame})
	mh.MatchLoop(context.Background(), noopLogger{}, nil, nil, dispatcher, 2, state, messages)

	var parsed MatchLabel
	if err := json.Unmarshal([]byte(dispatcher.lastLabel), &parsed); err != nil {
		t.Fatalf("label is not JSON: %v", err)
	}
	if parsed.Phase == string(domain.PhaseLobby) {
		t.Fatal("label still advertises the lobby")
	}
	if parsed.Open != 0 {
		t.Fatalf("in-game label advertises %d open seats", parsed.Open)
	}
}
