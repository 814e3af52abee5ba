package swarm

import (
	"github.com/BaSui01/swarmflow/types"
)

// Transcript is the append-only ordered message log of a session.
// Messages are never mutated or removed once appended.
type Transcript struct {
	messages []types.Message
}

// NewTranscript creates an empty transcript.
func NewTranscript() *Transcript {
	return &Transcript{}
}

// Append adds messages to the end of the transcript.
func (t *Transcript) Append(msgs ...types.Message) {
	t.messages = append(t.messages, msgs...)
}

// Messages returns a copy of the transcript. Callers may not mutate the
// log through the returned slice.
func (t *Transcript) Messages() []types.Message {
	return types.CopyMessages(t.messages)
}

// Last returns the most recent message, if any.
func (t *Transcript) Last() (types.Message, bool) {
	if len(t.messages) == 0 {
		return types.Message{}, false
	}
	return t.messages[len(t.messages)-1], true
}

// Len returns the number of messages in the transcript.
func (t *Transcript) Len() int {
	return len(t.messages)
}
