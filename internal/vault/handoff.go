package vault

// EditHandoff is the payload the mediator's edit path (and the provisioner's
// generate path) passes to the editor: decrypted content plus the passphrase
// that authorized the fetch, carried forward so the later save does not
// re-prompt. It lives in memory only.
type EditHandoff struct {
	Project    string
	Passphrase string
	Content    string
}

func (h EditHandoff) valid() bool {
	return h.Project != "" && h.Passphrase != ""
}

// HandoffSlot is a single-use mailbox between views. Take clears the slot,
// so re-entering the editor via back-navigation cannot replay a stale
// payload; the editor redirects away instead.
type HandoffSlot struct {
	payload EditHandoff
	full    bool
}

func NewHandoffSlot() *HandoffSlot {
	return &HandoffSlot{}
}

// Put stores a payload, replacing whatever was there.
func (s *HandoffSlot) Put(h EditHandoff) {
	s.payload = h
	s.full = true
}

// Take returns the stored payload and empties the slot. The second return
// is false when the slot is empty or the payload is incomplete.
func (s *HandoffSlot) Take() (EditHandoff, bool) {
	h, ok := s.payload, s.full
	s.payload = EditHandoff{}
	s.full = false
	if !ok || !h.valid() {
		return EditHandoff{}, false
	}
	return h, true
}
