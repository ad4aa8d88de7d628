// Package bot is the Telegram surface of the file catalog: it decodes
// incoming updates into actions, feeds them to the session machine, and
// renders the resulting response descriptors back through telebot.
package bot

import (
	"log/slog"
	"strconv"
	"sync"

	tele "gopkg.in/telebot.v4"

	"github.com/mmdyrbwtat-lang/cloud-bot/catalog"
	"github.com/mmdyrbwtat-lang/cloud-bot/core/logger"
	"github.com/mmdyrbwtat-lang/cloud-bot/core/telegram/callbacks"
	tghelpers "github.com/mmdyrbwtat-lang/cloud-bot/core/telegram/helpers"
	"github.com/mmdyrbwtat-lang/cloud-bot/flow"
)

// Handlers decodes telebot updates into machine actions. It also tracks the
// running upload confirmation per user so successive saves edit one message
// instead of flooding the chat.
type Handlers struct {
	machine          *flow.Machine
	archiveChannelID int64

	mu     sync.Mutex
	status map[int64]*tele.StoredMessage
}

// NewHandlers builds the update decoders around the machine. archiveChannelID
// may be zero, in which case stored files point back at the user's own chat.
func NewHandlers(machine *flow.Machine, archiveChannelID int64) *Handlers {
	return &Handlers{
		machine:          machine,
		archiveChannelID: archiveChannelID,
		status:           make(map[int64]*tele.StoredMessage),
	}
}

// InProgress implements router.Conversation.
func (h *Handlers) InProgress(userID int64) bool {
	return h.machine.Sessions().InProgress(userID)
}

// Handle implements router.Conversation: mid-conversation text goes straight
// into the machine.
func (h *Handlers) Handle(c tele.Context) error {
	return h.OnText(c)
}

// Command returns a handler that feeds the canonical command string to the
// machine, regardless of mentions or arguments in the raw text.
func (h *Handlers) Command(name string) tele.HandlerFunc {
	return func(c tele.Context) error {
		return h.dispatch(c, flow.TextReceived{Text: name})
	}
}

// Callback returns a handler for one inline-button tag.
func (h *Handlers) Callback(tag flow.ButtonTag) tele.HandlerFunc {
	return func(c tele.Context) error {
		return h.dispatch(c, flow.ButtonPressed{
			Tag:     tag,
			Payload: callbacks.CallbackPayload(c),
		})
	}
}

// OnText feeds plain text to the machine.
func (h *Handlers) OnText(c tele.Context) error {
	return h.dispatch(c, flow.TextReceived{Text: c.Text()})
}

// OnMedia archives the inbound media item and feeds the resulting storage
// pointer to the machine.
func (h *Handlers) OnMedia(c tele.Context) error {
	msg := c.Message()
	if msg == nil || c.Sender() == nil {
		return nil
	}

	kind, displayName := classifyMedia(msg)
	ptrChat, ptrID := msg.Chat.ID, msg.ID
	if h.archiveChannelID != 0 {
		copiedID, err := archiveCopy(c.Bot(), h.archiveChannelID, msg.Chat.ID, msg.ID)
		if err != nil {
			// The file stays reachable through the user's own chat.
			ctx := tghelpers.BuildContext(c)
			logger.Warn(ctx, "tg", "archive.copy_failed",
				slog.Int64("user_id", c.Sender().ID),
				slog.String("err", err.Error()),
			)
		} else {
			ptrChat, ptrID = h.archiveChannelID, copiedID
		}
	}

	action := flow.MediaReceived{
		Kind:        kind,
		Pointer:     encodePointer(ptrChat, ptrID),
		DisplayName: displayName,
	}

	ctx := tghelpers.BuildContext(c)
	resp := h.machine.HandleAction(ctx, c.Sender().ID, action)
	return h.renderMediaResponse(c, resp)
}

// dispatch runs the machine for a non-media update and renders the result.
func (h *Handlers) dispatch(c tele.Context, action flow.Action) error {
	if c.Sender() == nil {
		return nil
	}
	userID := c.Sender().ID
	h.clearStatus(userID)

	ctx := tghelpers.BuildContext(c)
	resp := h.machine.HandleAction(ctx, userID, action)
	return respond(c, resp)
}

// renderMediaResponse edits the running upload confirmation in place when the
// machine asks for it, creating the confirmation message on the first save.
func (h *Handlers) renderMediaResponse(c tele.Context, resp flow.Response) error {
	userID := c.Sender().ID
	if !resp.EditInPlace || resp.Text == "" {
		h.clearStatus(userID)
		return respond(c, resp)
	}

	opts := &tele.SendOptions{ParseMode: tele.ModeMarkdown, ReplyMarkup: markupFor(resp)}
	if stored := h.statusOf(userID); stored != nil {
		if _, err := c.Bot().Edit(stored, resp.Text, opts); err == nil {
			return nil
		}
	}
	m, err := c.Bot().Send(c.Chat(), resp.Text, opts)
	if err != nil {
		return err
	}
	h.setStatus(userID, &tele.StoredMessage{
		MessageID: strconv.Itoa(m.ID),
		ChatID:    m.Chat.ID,
	})
	return nil
}

func (h *Handlers) statusOf(userID int64) *tele.StoredMessage {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.status[userID]
}

func (h *Handlers) setStatus(userID int64, msg *tele.StoredMessage) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.status[userID] = msg
}

func (h *Handlers) clearStatus(userID int64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.status, userID)
}

// classifyMedia maps a telebot message to a file kind and display name.
// Animation is checked before Document: Telegram sets both on GIFs.
func classifyMedia(m *tele.Message) (catalog.FileKind, string) {
	switch {
	case m.Photo != nil:
		return catalog.KindPhoto, ""
	case m.Video != nil:
		return catalog.KindVideo, m.Video.FileName
	case m.Animation != nil:
		return catalog.KindAnimation, m.Animation.FileName
	case m.Document != nil:
		return catalog.KindDocument, m.Document.FileName
	case m.Audio != nil:
		return catalog.KindAudio, m.Audio.FileName
	case m.Voice != nil:
		return catalog.KindVoice, ""
	}
	return catalog.KindDocument, ""
}
