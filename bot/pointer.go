package bot

import (
	"fmt"
	"strconv"
	"strings"
)

// Storage pointers are "chatID:messageID": the chat the original media lives
// in (the archive channel when configured, the user's own chat otherwise) and
// the message carrying it. Re-delivery copies that message back to the user.

func encodePointer(chatID int64, messageID int) string {
	return strconv.FormatInt(chatID, 10) + ":" + strconv.Itoa(messageID)
}

func decodePointer(p string) (int64, int, error) {
	chatPart, msgPart, ok := strings.Cut(p, ":")
	if !ok {
		return 0, 0, fmt.Errorf("malformed storage pointer %q", p)
	}
	chatID, err := strconv.ParseInt(chatPart, 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("malformed storage pointer %q: %w", p, err)
	}
	messageID, err := strconv.Atoi(msgPart)
	if err != nil {
		return 0, 0, fmt.Errorf("malformed storage pointer %q: %w", p, err)
	}
	return chatID, messageID, nil
}
