package controller

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/syncstream/server/internal/domain"
	"github.com/syncstream/server/internal/service/room"
)

func (c controller) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (c controller) writeError(w http.ResponseWriter, status int, message string) {
	c.writeJSON(w, status, map[string]string{"error": message})
}

func (c controller) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, room.ErrRoomNotFound):
		c.writeError(w, http.StatusNotFound, "room not found")
	case errors.Is(err, room.ErrPermissionDenied):
		c.writeError(w, http.StatusForbidden, "permission denied")
	default:
		c.logger.ErrorContext(r.Context(), "request failed", "err", err)
		c.writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func (c controller) decodeAndValidate(w http.ResponseWriter, r *http.Request, input any) bool {
	if err := json.NewDecoder(r.Body).Decode(input); err != nil {
		c.writeError(w, http.StatusBadRequest, "malformed request body")
		return false
	}

	if validationErrs, ok := c.validate.Validate(input); !ok {
		c.writeJSON(w, http.StatusBadRequest, map[string]any{"error": "validation failed", "details": validationErrs})
		return false
	}

	return true
}

type CreateRoomInput struct {
	Name     string `json:"name" validate:"required,min=1,max=50"`
	Tier     string `json:"tier" validate:"omitempty,oneof=free premium"`
	IsPublic *bool  `json:"isPublic"`
}

func (c controller) createRoom(w http.ResponseWriter, r *http.Request) {
	var input CreateRoomInput
	if !c.decodeAndValidate(w, r, &input) {
		return
	}

	isPublic := true
	if input.IsPublic != nil {
		isPublic = *input.IsPublic
	}

	resp, err := c.roomService.CreateRoom(r.Context(), &room.CreateRoomParams{
		UserId:   c.getUserIdFromCtx(r.Context()),
		Name:     input.Name,
		Tier:     domain.RoomTier(input.Tier),
		IsPublic: isPublic,
	})
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}

	c.writeJSON(w, http.StatusCreated, resp)
}

func (c controller) getRoom(w http.ResponseWriter, r *http.Request) {
	resp, err := c.roomService.GetRoom(r.Context(), chi.URLParam(r, "room-id"))
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}

	c.writeJSON(w, http.StatusOK, resp)
}

func (c controller) deleteRoom(w http.ResponseWriter, r *http.Request) {
	err := c.roomService.DeleteRoom(r.Context(), &room.DeleteRoomParams{
		UserId: c.getUserIdFromCtx(r.Context()),
		RoomId: chi.URLParam(r, "room-id"),
	})
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}

	c.writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

type UpdatePermissionsInput struct {
	CanPlay            *domain.PermissionLevel `json:"canPlay" validate:"omitempty,oneof=everyone members moderators owner"`
	CanPause           *domain.PermissionLevel `json:"canPause" validate:"omitempty,oneof=everyone members moderators owner"`
	CanSeek            *domain.PermissionLevel `json:"canSeek" validate:"omitempty,oneof=everyone members moderators owner"`
	CanChangeVideo     *domain.PermissionLevel `json:"canChangeVideo" validate:"omitempty,oneof=everyone members moderators owner"`
	CanAddToQueue      *domain.PermissionLevel `json:"canAddToQueue" validate:"omitempty,oneof=everyone members moderators owner"`
	CanRemoveFromQueue *domain.PermissionLevel `json:"canRemoveFromQueue" validate:"omitempty,oneof=everyone members moderators owner"`
	CanReorderQueue    *domain.PermissionLevel `json:"canReorderQueue" validate:"omitempty,oneof=everyone members moderators owner"`
	CanClearQueue      *domain.PermissionLevel `json:"canClearQueue" validate:"omitempty,oneof=everyone members moderators owner"`
	CanInviteUsers     *domain.PermissionLevel `json:"canInviteUsers" validate:"omitempty,oneof=everyone members moderators owner"`
	CanKickUsers       *domain.PermissionLevel `json:"canKickUsers" validate:"omitempty,oneof=everyone members moderators owner"`
	CanChangeSettings  *domain.PermissionLevel `json:"canChangeSettings" validate:"omitempty,oneof=everyone members moderators owner"`
}

func (c controller) updatePermissions(w http.ResponseWriter, r *http.Request) {
	var input UpdatePermissionsInput
	if !c.decodeAndValidate(w, r, &input) {
		return
	}

	permissions, err := c.roomService.UpdatePermissions(r.Context(), &room.UpdatePermissionsParams{
		UserId:             c.getUserIdFromCtx(r.Context()),
		RoomId:             chi.URLParam(r, "room-id"),
		CanPlay:            input.CanPlay,
		CanPause:           input.CanPause,
		CanSeek:            input.CanSeek,
		CanChangeVideo:     input.CanChangeVideo,
		CanAddToQueue:      input.CanAddToQueue,
		CanRemoveFromQueue: input.CanRemoveFromQueue,
		CanReorderQueue:    input.CanReorderQueue,
		CanClearQueue:      input.CanClearQueue,
		CanInviteUsers:     input.CanInviteUsers,
		CanKickUsers:       input.CanKickUsers,
		CanChangeSettings:  input.CanChangeSettings,
	})
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}

	c.writeJSON(w, http.StatusOK, map[string]any{"permissions": permissions})
}

type AddMemberInput struct {
	UserId string `json:"userId" validate:"required"`
	Role   string `json:"role" validate:"required,oneof=viewer member moderator"`
}

func (c controller) addMember(w http.ResponseWriter, r *http.Request) {
	var input AddMemberInput
	if !c.decodeAndValidate(w, r, &input) {
		return
	}

	err := c.roomService.AddMember(r.Context(), &room.AddMemberParams{
		UserId:       c.getUserIdFromCtx(r.Context()),
		RoomId:       chi.URLParam(r, "room-id"),
		TargetUserId: input.UserId,
		Role:         domain.Role(input.Role),
	})
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}

	c.writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (c controller) createConnectToken(w http.ResponseWriter, r *http.Request) {
	token, err := c.roomService.CreateConnectToken(r.Context(), c.getUserIdFromCtx(r.Context()))
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}

	c.writeJSON(w, http.StatusCreated, map[string]string{"ticket": token})
}
