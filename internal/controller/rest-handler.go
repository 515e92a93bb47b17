package controller

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sharetube/watchparty/internal/domain"
	"github.com/sharetube/watchparty/internal/service/room"
	"github.com/sharetube/watchparty/pkg/rest"
)

// readInput decodes and validates the request body, writing the error
// response itself when it fails.
func (c controller) readInput(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := rest.ReadJSON(r, dst); err != nil {
		c.logger.InfoContext(r.Context(), "failed to read json", "error", err)
		rest.WriteJSON(w, http.StatusUnprocessableEntity, rest.Envelope{"error": err.Error()})
		return false
	}

	if validationErrors, ok := c.validate.Validate(dst); !ok {
		c.logger.InfoContext(r.Context(), "validation failed", "errors", validationErrors)
		rest.WriteJSON(w, http.StatusBadRequest, rest.Envelope{"errors": validationErrors})
		return false
	}

	return true
}

func (c controller) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, room.ErrRoomNotFound):
		status = http.StatusNotFound
	case errors.Is(err, room.ErrMemberNotFound):
		status = http.StatusNotFound
	case errors.Is(err, room.ErrIDCollision):
		status = http.StatusConflict
	}

	if status == http.StatusInternalServerError {
		c.logger.ErrorContext(r.Context(), "request failed", "error", err)
	} else {
		c.logger.InfoContext(r.Context(), "request rejected", "status", status, "error", err)
	}

	rest.WriteJSON(w, status, rest.Envelope{"error": err.Error()})
}

func (c controller) healthz(w http.ResponseWriter, r *http.Request) {
	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"data": map[string]string{"status": "ok"}})
}

type createRoomInput struct {
	PlayerID           string `json:"player_id" validate:"required,max=64"`
	PlayerName         string `json:"player_name" validate:"required,max=32"`
	DriftThresholdSecs uint64 `json:"drift_threshold_secs"`
}

type createRoomOutput struct {
	RoomID string              `json:"room_id"`
	Room   domain.RoomSnapshot `json:"room"`
}

func (c controller) createRoom(w http.ResponseWriter, r *http.Request) {
	var input createRoomInput
	if !c.readInput(w, r, &input) {
		return
	}

	createRoomResp, err := c.roomService.CreateRoom(r.Context(), &room.CreateRoomParams{
		PlayerID:           input.PlayerID,
		PlayerName:         input.PlayerName,
		DriftThresholdSecs: input.DriftThresholdSecs,
	})
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}

	rest.WriteJSON(w, http.StatusCreated, rest.Envelope{"data": createRoomOutput{
		RoomID: createRoomResp.RoomID,
		Room:   createRoomResp.Room,
	}})
}

func (c controller) getRoom(w http.ResponseWriter, r *http.Request) {
	snapshot, err := c.roomService.GetRoom(r.Context(), chi.URLParam(r, "room-id"))
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"data": snapshot})
}

type joinRoomInput struct {
	PlayerID   string `json:"player_id" validate:"required,max=64"`
	PlayerName string `json:"player_name" validate:"required,max=32"`
}

type joinRoomOutput struct {
	JoinedPlayer domain.Player       `json:"joined_player"`
	Room         domain.RoomSnapshot `json:"room"`
}

func (c controller) joinRoom(w http.ResponseWriter, r *http.Request) {
	var input joinRoomInput
	if !c.readInput(w, r, &input) {
		return
	}

	joinRoomResp, err := c.roomService.JoinRoom(r.Context(), &room.JoinRoomParams{
		PlayerID:   input.PlayerID,
		PlayerName: input.PlayerName,
		RoomID:     chi.URLParam(r, "room-id"),
	})
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"data": joinRoomOutput{
		JoinedPlayer: joinRoomResp.JoinedPlayer,
		Room:         joinRoomResp.Room,
	}})
}

type disconnectMemberInput struct {
	PlayerID string `json:"player_id" validate:"required"`
}

type disconnectMemberOutput struct {
	RemovedPlayer domain.Player `json:"removed_player"`
	IsRoomDeleted bool          `json:"is_room_deleted"`
}

func (c controller) disconnectMember(w http.ResponseWriter, r *http.Request) {
	var input disconnectMemberInput
	if !c.readInput(w, r, &input) {
		return
	}

	disconnectResp, err := c.roomService.DisconnectMember(r.Context(), &room.DisconnectMemberParams{
		PlayerID: input.PlayerID,
		RoomID:   chi.URLParam(r, "room-id"),
	})
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"data": disconnectMemberOutput{
		RemovedPlayer: disconnectResp.RemovedPlayer,
		IsRoomDeleted: disconnectResp.IsRoomDeleted,
	}})
}

type sendChatInput struct {
	PlayerID string `json:"player_id" validate:"required"`
	Message  string `json:"message" validate:"required,max=500"`
}

func (c controller) sendChat(w http.ResponseWriter, r *http.Request) {
	var input sendChatInput
	if !c.readInput(w, r, &input) {
		return
	}

	if err := c.roomService.SendChat(r.Context(), &room.SendChatParams{
		PlayerID: input.PlayerID,
		RoomID:   chi.URLParam(r, "room-id"),
		Message:  input.Message,
	}); err != nil {
		c.writeServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type updateStatusInput struct {
	PlayerID     string `json:"player_id" validate:"required"`
	IsPlaying    bool   `json:"is_playing"`
	PositionSecs uint64 `json:"position_secs"`
}

type statusOutput struct {
	State       domain.Ready `json:"state"`
	Broadcasted bool         `json:"broadcasted"`
}

func (c controller) updateStatus(w http.ResponseWriter, r *http.Request) {
	var input updateStatusInput
	if !c.readInput(w, r, &input) {
		return
	}

	updateStatusResp, err := c.roomService.UpdateStatus(r.Context(), &room.UpdateStatusParams{
		PlayerID:     input.PlayerID,
		RoomID:       chi.URLParam(r, "room-id"),
		Playing:      input.IsPlaying,
		PositionSecs: input.PositionSecs,
	})
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"data": statusOutput(updateStatusResp)})
}

type positionInput struct {
	PlayerID     string `json:"player_id" validate:"required"`
	PositionSecs uint64 `json:"position_secs"`
}

func (c controller) pause(w http.ResponseWriter, r *http.Request) {
	var input positionInput
	if !c.readInput(w, r, &input) {
		return
	}

	pauseResp, err := c.roomService.Pause(r.Context(), &room.PauseParams{
		PlayerID:     input.PlayerID,
		RoomID:       chi.URLParam(r, "room-id"),
		PositionSecs: input.PositionSecs,
	})
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"data": statusOutput(pauseResp)})
}

func (c controller) resume(w http.ResponseWriter, r *http.Request) {
	var input positionInput
	if !c.readInput(w, r, &input) {
		return
	}

	resumeResp, err := c.roomService.Resume(r.Context(), &room.ResumeParams{
		PlayerID:     input.PlayerID,
		RoomID:       chi.URLParam(r, "room-id"),
		PositionSecs: input.PositionSecs,
	})
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"data": statusOutput(resumeResp)})
}

func (c controller) getStats(w http.ResponseWriter, r *http.Request) {
	counters, err := c.roomService.GetStats(r.Context())
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"data": counters})
}
