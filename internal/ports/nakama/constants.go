package nakama

const (
	// RpcQuickMatch is the Nakama RPC id clients call to find or create a
	// lobby-phase match with open seats.
	RpcQuickMatch = "quick_match"

	// RpcCreatePrivate creates a fresh match without matchmaking, for
	// invite-only tables.
	RpcCreatePrivate = "create_private_match"

	// MatchNamePili is the authoritative match handler name registered
	// with Nakama.
	MatchNamePili = "pili_match"
)

// Op codes for client messages and server events.
const (
	// Client -> Server. Peek windows have no opcode: they end only on the
	// server's tick deadline.
	OpSetReady          int64 = 1
	OpStartGame         int64 = 2
	OpPlaceBet          int64 = 3
	OpPlayCard          int64 = 4
	OpSubmitPass        int64 = 5
	OpSubmitDesignation int64 = 6
	OpSubmitExchange    int64 = 7
	OpAddBot            int64 = 8
	OpRequestState      int64 = 9

	// Server -> Client
	OpServerEvent int64 = 101 // EventEnvelope
	OpServerState int64 = 102 // app.ClientState snapshot
	OpServerError int64 = 103 // ErrorMessage
)
