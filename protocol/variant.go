// Defines the two protocol variants.

package protocol

// A Variant selects which version of the handshake a session speaks.
type Variant int

const (
	// P9SK1 is the full protocol.
	P9SK1 Variant = iota + 1

	// P9SK2 is an incomplete, flawed variant of P9SK1: the client
	// generates no challenge of its own and adopts the one from the
	// server's ticket request. It is kept only for compatibility.
	P9SK2
)

// Name returns the protocol name of the variant.
func (v Variant) Name() string {
	switch v {
	case P9SK1:
		return "p9sk1"
	case P9SK2:
		return "p9sk2"
	}
	return "unknown variant"
}

// KeyPrompt returns the credential prompt template the key store may
// use to ask a human for the client's secret. Only the full variant
// supports prompting.
func (v Variant) KeyPrompt() string {
	if v == P9SK1 {
		return "user? !password?"
	}
	return ""
}
