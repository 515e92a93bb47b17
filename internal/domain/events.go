package domain

const (
	ColorGreen = "#00FF00"
	ColorRed   = "#FF0000"
)

const (
	EventPlayerJoined    = "PLAYER_JOINED"
	EventPlayerConnected = "PLAYER_CONNECTED"
	EventPlayerLeft      = "PLAYER_LEFT"
	EventPlayerRemoved   = "PLAYER_REMOVED"
	EventStatusUpdate    = "STATUS_UPDATE"
	EventChatMessage     = "CHAT_MESSAGE"
)

// Event is anything that can be broadcast to a room.
type Event interface {
	EventType() string
}

type PlayerJoined struct {
	Player Player       `json:"player"`
	Room   RoomSnapshot `json:"room"`
}

type PlayerConnected struct {
	Player Player       `json:"player"`
	Room   RoomSnapshot `json:"room"`
}

type PlayerLeft struct {
	Player Player       `json:"player"`
	Room   RoomSnapshot `json:"room"`
}

type PlayerRemoved struct {
	Player Player       `json:"player"`
	Room   RoomSnapshot `json:"room"`
}

type StatusUpdate struct {
	Playing      bool   `json:"playing"`
	PositionSecs uint64 `json:"position_secs"`
}

type ChatMessage struct {
	Player  Player  `json:"player"`
	Message string  `json:"message"`
	Color   *string `json:"color"`
}

func (PlayerJoined) EventType() string    { return EventPlayerJoined }
func (PlayerConnected) EventType() string { return EventPlayerConnected }
func (PlayerLeft) EventType() string      { return EventPlayerLeft }
func (PlayerRemoved) EventType() string   { return EventPlayerRemoved }
func (StatusUpdate) EventType() string    { return EventStatusUpdate }
func (ChatMessage) EventType() string     { return EventChatMessage }

// Notice builds a system chat message attributed to player.
func Notice(player Player, message, color string) ChatMessage {
	return ChatMessage{
		Player:  player,
		Message: message,
		Color:   &color,
	}
}
