package ruleexpr

// Tokenizer is a cursor over an input string. It yields raw bytes and
// predicate-bounded substrings; there is no backtracking store beyond the
// cursor itself, so callers that need to look ahead save and restore
// GetPos.
type Tokenizer struct {
	str string
	pos int
}

// Restart points the tokenizer at a new input with the cursor at 0.
func (t *Tokenizer) Restart(s string) {
	t.str = s
	t.pos = 0
}

// Clear drops the input.
func (t *Tokenizer) Clear() {
	t.str = ""
	t.pos = 0
}

// GetChar returns the byte under the cursor, or 0 at end of input.
func (t *Tokenizer) GetChar() byte {
	if t.pos >= len(t.str) {
		return 0
	}
	return t.str[t.pos]
}

// Done reports whether the cursor has passed the end of the input.
func (t *Tokenizer) Done() bool {
	return t.pos >= len(t.str)
}

// NextChar advances the cursor by n bytes.
func (t *Tokenizer) NextChar(n int) {
	t.pos += n
}

// GetPos returns the cursor position.
func (t *Tokenizer) GetPos() int {
	return t.pos
}

// GetChars consumes and returns the maximal run of bytes satisfying cond,
// starting at the cursor. The first non-matching byte is not consumed.
func (t *Tokenizer) GetChars(cond func(byte) bool) string {
	start := t.pos
	for t.pos < len(t.str) && cond(t.str[t.pos]) {
		t.pos++
	}
	return t.str[start:t.pos]
}

// MatchAhead reports whether the input at the cursor equals match and the
// byte following it satisfies stopCond (end of input always does). The
// cursor does not move.
func (t *Tokenizer) MatchAhead(match string, stopCond func(byte) bool) bool {
	end := t.pos + len(match)
	if end > len(t.str) {
		return false
	}
	if t.str[t.pos:end] != match {
		return false
	}
	if end == len(t.str) {
		return true
	}
	return stopCond(t.str[end])
}
