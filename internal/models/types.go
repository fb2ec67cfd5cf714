package models

import "time"

// ActivityKind classifies a single user contribution.
type ActivityKind string

const (
	// KindText is a plain text message.
	KindText ActivityKind = "text"

	// KindLink is a text message whose content points to a known
	// video-sharing host (classified by content, not by entities).
	KindLink ActivityKind = "link"

	// KindPhoto is a photo upload; content holds the file ID of the
	// highest-resolution variant.
	KindPhoto ActivityKind = "photo"

	// KindVideo is a video upload.
	KindVideo ActivityKind = "video"

	// KindDocument is a file upload; content holds the file name.
	KindDocument ActivityKind = "document"

	// KindAudio is a voice or audio message.
	KindAudio ActivityKind = "audio"
)

// String returns string representation of ActivityKind
func (k ActivityKind) String() string {
	return string(k)
}

// Kinds lists every activity kind in report order.
var Kinds = []ActivityKind{KindText, KindLink, KindPhoto, KindVideo, KindDocument, KindAudio}

// IsTextLike reports whether the kind carries natural-language content
// eligible for summarization. Binary media kinds are count-only.
func (k ActivityKind) IsTextLike() bool {
	return k == KindText || k == KindLink || k == KindDocument
}

// Chat represents a conversation the bot has seen.
// At most one record exists per chat ID; repeated sightings upsert.
type Chat struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title,omitempty"`
	Kind        string    `json:"kind"` // "group" or "private"
	FirstSeenAt time.Time `json:"first_seen_at"`
}

// ActivityRecord is one observed contribution from one user.
// Content is never empty; events without derivable content are dropped
// before storage.
type ActivityRecord struct {
	ID          int64        `json:"id,omitempty"`
	UserID      int64        `json:"user_id"`
	DisplayName string       `json:"display_name,omitempty"`
	Kind        ActivityKind `json:"kind"`
	Content     string       `json:"content"`
	OccurredOn  string       `json:"occurred_on"` // Format: YYYY-MM-DD in configured timezone
	CreatedAt   time.Time    `json:"created_at"`
}

// UserActivity is one user's aggregated activity for a reporting window.
// Computed fresh per run, never persisted.
type UserActivity struct {
	UserID      int64
	DisplayName string
	Records     []ActivityRecord
	Counts      map[ActivityKind]int
	Total       int
}

// Report is the composed per-user report text, ready for delivery.
type Report struct {
	UserID      int64
	DisplayName string
	Text        string
}

// BatchOutcome summarizes one complete dispatch run.
type BatchOutcome struct {
	Sent   int
	Failed int
}

// BotConfig represents bot configuration
type BotConfig struct {
	// Telegram settings
	TelegramToken string
	GroupChatID   int64
	AdminChatID   int64 // 0 disables the batch outcome notice

	// Gemini API settings
	GeminiAPIKey  string
	GeminiTimeout int

	// Supabase settings
	SupabaseURL     string
	SupabaseKey     string
	SupabaseTimeout int

	// App settings
	Timezone    string
	LogLevel    string
	Environment string
	HealthAddr  string

	// Reporting
	DailyCronSpec  string
	WeeklyCronSpec string
	MaxPromptItems int
	SendIntervalMs int
}
