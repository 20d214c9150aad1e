package diagnostics

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/wolfman30/careapp/pkg/logging"
)

// ErrEmptyMessage rejects blank chat input.
var ErrEmptyMessage = errors.New("diagnostics: please enter a value before submitting")

// Speech tells the device to read text aloud.
type Speech struct {
	Text     string `json:"text"`
	Language string `json:"language"`
}

// Speaker turns a reply into a speech instruction.
type Speaker interface {
	Speak(ctx context.Context, text string) (*Speech, error)
}

// DirectiveSpeaker returns the text for on-device synthesis in a fixed language.
type DirectiveSpeaker struct {
	Language string
}

func (s DirectiveSpeaker) Speak(_ context.Context, text string) (*Speech, error) {
	lang := s.Language
	if lang == "" {
		lang = "en"
	}
	return &Speech{Text: text, Language: lang}, nil
}

// Exchange is the result of one Send.
type Exchange struct {
	Request Message `json:"request"`
	Reply   Message `json:"reply"`
	Speech  *Speech `json:"speech,omitempty"`
}

// Chat ties the transcript, responder and speaker together.
type Chat struct {
	store     TranscriptStore
	responder Responder
	speaker   Speaker
	logger    *logging.Logger
	now       func() time.Time
}

// NewChat constructs a diagnostic chat. speaker may be nil.
func NewChat(store TranscriptStore, responder Responder, speaker Speaker, logger *logging.Logger) *Chat {
	if store == nil {
		store = NewMemoryTranscripts()
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Chat{
		store:     store,
		responder: responder,
		speaker:   speaker,
		logger:    logger.Component("diagnostics"),
		now:       time.Now,
	}
}

// Send records the user's message, asks the responder and records the reply.
// The user's message stays in the transcript when the responder fails.
func (c *Chat) Send(ctx context.Context, chatID, body string) (*Exchange, error) {
	if strings.TrimSpace(body) == "" {
		return nil, ErrEmptyMessage
	}
	history, err := c.store.Load(ctx, chatID)
	if err != nil {
		return nil, err
	}
	req := Message{TimeStamp: c.now().UTC(), Body: body, IsRequest: true}
	if err := c.store.Append(ctx, chatID, req); err != nil {
		return nil, err
	}

	reply, err := c.responder.Respond(ctx, history, req)
	if err != nil {
		c.logger.Warn("diagnostic responder failed", "chat_id", chatID, "error", err)
		return nil, err
	}
	reply.IsRequest = false
	if err := c.store.Append(ctx, chatID, reply); err != nil {
		return nil, err
	}

	ex := &Exchange{Request: req, Reply: reply}
	if c.speaker != nil {
		speech, err := c.speaker.Speak(ctx, reply.Body)
		if err != nil {
			c.logger.Warn("speech synthesis failed", "chat_id", chatID, "error", err)
		} else {
			ex.Speech = speech
		}
	}
	return ex, nil
}

// Transcript returns the chat's messages.
func (c *Chat) Transcript(ctx context.Context, chatID string) ([]Message, error) {
	return c.store.Load(ctx, chatID)
}

// Clear empties the chat.
func (c *Chat) Clear(ctx context.Context, chatID string) error {
	return c.store.Clear(ctx, chatID)
}
