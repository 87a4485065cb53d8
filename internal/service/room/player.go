package room

import (
	"context"
	"fmt"

	"github.com/gorilla/websocket"

	"github.com/syncstream/server/internal/domain"
	"github.com/syncstream/server/internal/repository"
)

// Playback actions are broadcast to every room member except the sender: the
// initiator already applied the change locally, and echoing it back would
// double-apply the intent. Queue actions (queue.go) include the sender.

type PlayParams struct {
	Conn      *websocket.Conn
	RoomId    string
	Timestamp float64
}

func (s service) Play(ctx context.Context, params *PlayParams) error {
	userId, roomId, err := s.connInfo(params.Conn, params.RoomId)
	if err != nil {
		return err
	}

	return s.withRoomState(ctx, roomId, func(st *roomState) error {
		if err := s.authorize(ctx, st, roomId, userId, domain.ActionPlay); err != nil {
			return err
		}

		isPlaying := true
		if err := s.roomRepo.UpdateRoomPlayback(ctx, &repository.UpdateRoomPlaybackParams{
			RoomId:           roomId,
			IsPlaying:        &isPlaying,
			CurrentTimestamp: &params.Timestamp,
		}); err != nil {
			return fmt.Errorf("failed to update room playback: %w", err)
		}

		st.isPlaying = true
		st.currentTimestamp = params.Timestamp

		s.broadcast(ctx, roomId, params.Conn, &Message{
			Type:    "play",
			Payload: PlaybackPayload{Timestamp: params.Timestamp},
		})

		return nil
	})
}

type PauseParams struct {
	Conn      *websocket.Conn
	RoomId    string
	Timestamp float64
}

func (s service) Pause(ctx context.Context, params *PauseParams) error {
	userId, roomId, err := s.connInfo(params.Conn, params.RoomId)
	if err != nil {
		return err
	}

	return s.withRoomState(ctx, roomId, func(st *roomState) error {
		if err := s.authorize(ctx, st, roomId, userId, domain.ActionPause); err != nil {
			return err
		}

		isPlaying := false
		if err := s.roomRepo.UpdateRoomPlayback(ctx, &repository.UpdateRoomPlaybackParams{
			RoomId:           roomId,
			IsPlaying:        &isPlaying,
			CurrentTimestamp: &params.Timestamp,
		}); err != nil {
			return fmt.Errorf("failed to update room playback: %w", err)
		}

		st.isPlaying = false
		st.currentTimestamp = params.Timestamp

		s.broadcast(ctx, roomId, params.Conn, &Message{
			Type:    "pause",
			Payload: PlaybackPayload{Timestamp: params.Timestamp},
		})

		return nil
	})
}

type SeekParams struct {
	Conn      *websocket.Conn
	RoomId    string
	Timestamp float64
}

func (s service) Seek(ctx context.Context, params *SeekParams) error {
	userId, roomId, err := s.connInfo(params.Conn, params.RoomId)
	if err != nil {
		return err
	}

	return s.withRoomState(ctx, roomId, func(st *roomState) error {
		if err := s.authorize(ctx, st, roomId, userId, domain.ActionSeek); err != nil {
			return err
		}

		if err := s.roomRepo.UpdateRoomPlayback(ctx, &repository.UpdateRoomPlaybackParams{
			RoomId:           roomId,
			CurrentTimestamp: &params.Timestamp,
		}); err != nil {
			return fmt.Errorf("failed to update room playback: %w", err)
		}

		st.currentTimestamp = params.Timestamp

		s.broadcast(ctx, roomId, params.Conn, &Message{
			Type:    "seek",
			Payload: PlaybackPayload{Timestamp: params.Timestamp},
		})

		return nil
	})
}

type ChangeVideoParams struct {
	Conn      *websocket.Conn
	RoomId    string
	VideoId   string
	Timestamp float64
}

func (s service) ChangeVideo(ctx context.Context, params *ChangeVideoParams) error {
	userId, roomId, err := s.connInfo(params.Conn, params.RoomId)
	if err != nil {
		return err
	}

	return s.withRoomState(ctx, roomId, func(st *roomState) error {
		if err := s.authorize(ctx, st, roomId, userId, domain.ActionChangeVideo); err != nil {
			return err
		}

		if err := s.roomRepo.UpdateRoomPlayback(ctx, &repository.UpdateRoomPlaybackParams{
			RoomId:           roomId,
			CurrentVideoId:   &params.VideoId,
			CurrentTimestamp: &params.Timestamp,
		}); err != nil {
			return fmt.Errorf("failed to update room playback: %w", err)
		}

		st.currentVideoId = &params.VideoId
		st.currentTimestamp = params.Timestamp

		s.broadcast(ctx, roomId, params.Conn, &Message{
			Type:    "change_video",
			Payload: ChangeVideoPayload{VideoId: params.VideoId, Timestamp: params.Timestamp},
		})

		return nil
	})
}
