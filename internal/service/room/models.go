package room

import "github.com/syncstream/server/internal/domain"

// Message is the wire envelope for every server-to-client event.
type Message struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

type RoomStatePayload struct {
	CurrentVideoId   *string            `json:"currentVideoId"`
	CurrentTimestamp float64            `json:"currentTimestamp"`
	IsPlaying        bool               `json:"isPlaying"`
	Queue            []domain.QueueItem `json:"queue"`
}

type PlaybackPayload struct {
	Timestamp float64 `json:"timestamp"`
}

type ChangeVideoPayload struct {
	VideoId   string  `json:"videoId"`
	Timestamp float64 `json:"timestamp"`
}

type QueueUpdatedPayload struct {
	Queue []domain.QueueItem `json:"queue"`
}

type PresencePayload struct {
	UserId string `json:"userId"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}
