package bot

import (
	"encoding/json"
	"fmt"
	"strconv"

	tele "gopkg.in/telebot.v4"

	tghelpers "github.com/mmdyrbwtat-lang/cloud-bot/core/telegram/helpers"
	"github.com/mmdyrbwtat-lang/cloud-bot/core/telegram/keyboard"
	"github.com/mmdyrbwtat-lang/cloud-bot/flow"
)

// markupFor converts the machine's keyboard layout into an inline markup.
// Button tags become callback uniques; payloads ride along in the data part.
func markupFor(resp flow.Response) *tele.ReplyMarkup {
	if len(resp.Keyboard) == 0 {
		return nil
	}
	rows := make([][]keyboard.InlineBtn, 0, len(resp.Keyboard))
	for _, row := range resp.Keyboard {
		btns := make([]keyboard.InlineBtn, 0, len(row))
		for _, b := range row {
			btns = append(btns, keyboard.InlineBtn{
				Text:   b.Label,
				Unique: string(b.Tag),
				Data:   b.Payload,
			})
		}
		rows = append(rows, btns)
	}
	return keyboard.InlineButtonsRows(rows...)
}

// copyStored re-sends a stored message to the recipient via copyMessage,
// optionally overriding the caption. telebot's Copy helper cannot set a
// caption, so this goes through the raw API.
func copyStored(b tele.API, to tele.Recipient, pointer, caption string) error {
	fromChat, messageID, err := decodePointer(pointer)
	if err != nil {
		return err
	}
	params := map[string]string{
		"chat_id":      to.Recipient(),
		"from_chat_id": strconv.FormatInt(fromChat, 10),
		"message_id":   strconv.Itoa(messageID),
	}
	if caption != "" {
		params["caption"] = caption
	}
	_, err = b.Raw("copyMessage", params)
	if err != nil {
		return fmt.Errorf("copy stored message: %w", err)
	}
	return nil
}

// archiveCopy copies the inbound media message into the archive chat and
// returns the id of the new message there.
func archiveCopy(b tele.API, archiveChatID int64, fromChatID int64, messageID int) (int, error) {
	params := map[string]string{
		"chat_id":      strconv.FormatInt(archiveChatID, 10),
		"from_chat_id": strconv.FormatInt(fromChatID, 10),
		"message_id":   strconv.Itoa(messageID),
	}
	data, err := b.Raw("copyMessage", params)
	if err != nil {
		return 0, fmt.Errorf("archive copy: %w", err)
	}
	var reply struct {
		Result struct {
			MessageID int `json:"message_id"`
		} `json:"result"`
	}
	if err := json.Unmarshal(data, &reply); err != nil {
		return 0, fmt.Errorf("archive copy response: %w", err)
	}
	if reply.Result.MessageID == 0 {
		return 0, fmt.Errorf("archive copy: empty message id")
	}
	return reply.Result.MessageID, nil
}

// deliver replays every requested stored media item to the current chat.
func deliver(c tele.Context, deliveries []flow.Delivery) error {
	for _, d := range deliveries {
		if err := copyStored(c.Bot(), c.Chat(), d.Pointer, d.Caption); err != nil {
			return err
		}
	}
	return nil
}

// respond renders the machine's response: deliveries first, then the message.
// Callback-triggered responses marked EditInPlace edit the pressed message.
func respond(c tele.Context, resp flow.Response) error {
	if err := deliver(c, resp.Deliveries); err != nil {
		return err
	}
	if resp.Text == "" {
		return nil
	}
	markup := markupFor(resp)
	if resp.EditInPlace && c.Callback() != nil {
		return tghelpers.EditOrSendMD(c, resp.Text, markup)
	}
	return tghelpers.SendMD(c, resp.Text, markup)
}
