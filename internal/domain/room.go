package domain

// RoomTier affects the default permission template only.
type RoomTier string

const (
	TierFree    RoomTier = "free"
	TierPremium RoomTier = "premium"
)

func (t RoomTier) IsValid() bool {
	return t == TierFree || t == TierPremium
}

type Room struct {
	Id               string   `json:"id"`
	Name             string   `json:"name"`
	OwnerId          string   `json:"ownerId"`
	Tier             RoomTier `json:"tier"`
	IsPublic         bool     `json:"isPublic"`
	CurrentVideoId   *string  `json:"currentVideoId"`
	CurrentTimestamp float64  `json:"currentTimestamp"`
	IsPlaying        bool     `json:"isPlaying"`
}

// QueueItem is one entry of a room's playback queue. Order values of a room's
// queue always form a contiguous zero-based permutation.
type QueueItem struct {
	Id         string  `json:"id"`
	RoomId     string  `json:"-"`
	VideoId    string  `json:"videoId"`
	VideoTitle string  `json:"videoTitle"`
	Order      int     `json:"order"`
	AddedBy    *string `json:"addedBy"`
}
