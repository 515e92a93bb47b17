package stats

const (
	RoomsCreated     = "rooms_created"
	RoomsRemoved     = "rooms_removed"
	PlayersJoined    = "players_joined"
	PlayersConnected = "players_connected"
	ChatMessages     = "chat_messages"
	StatusBroadcasts = "status_broadcasts"
	StatusSuppressed = "status_suppressed"
)
