package flow

// Button describes one inline button for the transport to render. Payload is
// carried back verbatim inside the matching ButtonPressed action.
type Button struct {
	Label   string
	Tag     ButtonTag
	Payload string
}

// Delivery asks the transport to re-deliver one stored media item by its
// opaque pointer, with the given caption.
type Delivery struct {
	Pointer string
	Caption string
}

// Response is what the machine hands back to the transport: a message text,
// an inline keyboard layout, optionally a batch of media to re-deliver
// before the message. EditInPlace hints that the triggering message (a
// button press or a running upload confirmation) should be edited rather
// than answered with a new message.
type Response struct {
	Text        string
	Keyboard    [][]Button
	Deliveries  []Delivery
	EditInPlace bool
}

// Row builds a keyboard row.
func Row(buttons ...Button) []Button {
	return buttons
}
