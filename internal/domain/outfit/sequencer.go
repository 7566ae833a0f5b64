package outfit

import "sync/atomic"

// Token identifies one refresh. Tokens grow monotonically per Sequencer.
type Token uint64

// Sequencer stamps refreshes so that results of superseded ones can be
// discarded. The zero value is ready to use.
type Sequencer struct {
	seq atomic.Uint64
}

// Next issues a new token, superseding every earlier one.
func (s *Sequencer) Next() Token {
	return Token(s.seq.Add(1))
}

// Current reports whether t is still the latest token.
func (s *Sequencer) Current(t Token) bool {
	return s.seq.Load() == uint64(t)
}
