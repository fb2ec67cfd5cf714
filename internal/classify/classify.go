package classify

import (
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/telegram-activity-bot/internal/models"
)

// videoHosts are substrings that reclassify a text message as a link.
// Matching is content-based, not entity-based.
var videoHosts = []string{"youtube.com", "youtu.be"}

// audioPlaceholder is stored as content for voice and audio messages,
// which carry no text of their own.
const audioPlaceholder = "[audio message]"

// Payload is the tagged union of inbound event contents. An event carries
// at most one payload; events with none classify as a skip.
type Payload interface {
	isPayload()
}

// TextPayload is a plain text message body.
type TextPayload struct {
	Text string
}

// PhotoPayload is an ordered sequence of photo size variants; the last
// entry is the highest-resolution one.
type PhotoPayload struct {
	SizeFileIDs []string
}

// VideoPayload references an uploaded video.
type VideoPayload struct {
	FileID string
}

// DocumentPayload references an uploaded file.
type DocumentPayload struct {
	FileName string
}

// AudioPayload references a voice or audio message.
type AudioPayload struct {
	FileID string
}

func (TextPayload) isPayload()     {}
func (PhotoPayload) isPayload()    {}
func (VideoPayload) isPayload()    {}
func (DocumentPayload) isPayload() {}
func (AudioPayload) isPayload()    {}

// Event is one inbound contribution, already reduced to the fields the
// classifier and the ingestion path care about.
type Event struct {
	UserID      int64
	DisplayName string
	ChatID      int64
	Payload     Payload
}

// Classify derives the activity kind and canonical content for an event.
// It returns ok=false when no branch yields non-empty content; the caller
// must then skip the event without writing anything. An unmatched payload
// shape is a skip, never an error.
func Classify(ev Event) (kind models.ActivityKind, content string, ok bool) {
	switch p := ev.Payload.(type) {
	case TextPayload:
		if p.Text == "" {
			return "", "", false
		}
		kind = models.KindText
		for _, host := range videoHosts {
			if strings.Contains(p.Text, host) {
				kind = models.KindLink
				break
			}
		}
		return kind, p.Text, true

	case PhotoPayload:
		if len(p.SizeFileIDs) == 0 {
			return "", "", false
		}
		// Telegram orders photo sizes ascending; the last one is the
		// highest-resolution variant.
		return models.KindPhoto, p.SizeFileIDs[len(p.SizeFileIDs)-1], true

	case VideoPayload:
		if p.FileID == "" {
			return "", "", false
		}
		return models.KindVideo, p.FileID, true

	case DocumentPayload:
		if p.FileName == "" {
			return "", "", false
		}
		return models.KindDocument, p.FileName, true

	case AudioPayload:
		return models.KindAudio, audioPlaceholder, true

	default:
		return "", "", false
	}
}

// EventFromMessage adapts a Telegram message into an Event. Payload
// precedence follows the classification rules: text first, then photo,
// video, document, audio/voice.
func EventFromMessage(msg *tgbotapi.Message) Event {
	ev := Event{
		UserID:      msg.From.ID,
		DisplayName: displayName(msg.From),
		ChatID:      msg.Chat.ID,
	}

	switch {
	case msg.Text != "":
		ev.Payload = TextPayload{Text: msg.Text}
	case len(msg.Photo) > 0:
		ids := make([]string, 0, len(msg.Photo))
		for _, size := range msg.Photo {
			ids = append(ids, size.FileID)
		}
		ev.Payload = PhotoPayload{SizeFileIDs: ids}
	case msg.Video != nil:
		ev.Payload = VideoPayload{FileID: msg.Video.FileID}
	case msg.Document != nil:
		ev.Payload = DocumentPayload{FileName: msg.Document.FileName}
	case msg.Voice != nil:
		ev.Payload = AudioPayload{FileID: msg.Voice.FileID}
	case msg.Audio != nil:
		ev.Payload = AudioPayload{FileID: msg.Audio.FileID}
	}

	return ev
}

// displayName picks the best available name for a user
func displayName(user *tgbotapi.User) string {
	if user == nil {
		return ""
	}
	if user.UserName != "" {
		return user.UserName
	}
	return user.FirstName
}
