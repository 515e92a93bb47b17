package room

import "github.com/sharetube/watchparty/internal/domain"

type CreateRoomParams struct {
	PlayerID           string
	PlayerName         string
	DriftThresholdSecs uint64
}

type CreateRoomResponse struct {
	RoomID string
	Room   domain.RoomSnapshot
}

type JoinRoomParams struct {
	PlayerID   string
	PlayerName string
	RoomID     string
}

type JoinRoomResponse struct {
	JoinedPlayer domain.Player
	Room         domain.RoomSnapshot
}

type ConnectMemberParams struct {
	PlayerID string
	RoomID   string
}

type DisconnectMemberParams struct {
	PlayerID string
	RoomID   string
}

type DisconnectMemberResponse struct {
	RemovedPlayer domain.Player
	IsRoomDeleted bool
}

type SendChatParams struct {
	PlayerID string
	RoomID   string
	Message  string
}

type UpdateStatusParams struct {
	PlayerID     string
	RoomID       string
	Playing      bool
	PositionSecs uint64
}

type UpdateStatusResponse struct {
	State       domain.Ready
	Broadcasted bool
}

type PauseParams struct {
	PlayerID     string
	RoomID       string
	PositionSecs uint64
}

type ResumeParams struct {
	PlayerID     string
	RoomID       string
	PositionSecs uint64
}
