package app

// MinPlayersToStart defines the minimum number of seated players required
// to leave the lobby. Centralized so tests or local runs can adjust the
// rule in one place.
const MinPlayersToStart = 2
