package core

import "fmt"

// Payer is one of the two parties sharing the household card.
type Payer int

const (
	Husband Payer = iota + 1
	Wife
)

// Tokens are stored verbatim in the row store and typed in chat commands.
const (
	husbandToken = "夫"
	wifeToken    = "妻"
)

// ParsePayer maps a stored or typed token to a Payer.
func ParsePayer(s string) (Payer, error) {
	switch s {
	case husbandToken:
		return Husband, nil
	case wifeToken:
		return Wife, nil
	}
	return 0, fmt.Errorf("%w: Invalid payer value: %s", ErrInvalidArgument, s)
}

// String returns the stored token ("夫" or "妻").
func (p Payer) String() string {
	switch p {
	case Husband:
		return husbandToken
	case Wife:
		return wifeToken
	}
	return fmt.Sprintf("Payer(%d)", int(p))
}

// Icon returns the emoji used in chat replies.
func (p Payer) Icon() string {
	if p == Husband {
		return "👨"
	}
	return "👩"
}

// Other returns the opposite party.
func (p Payer) Other() Payer {
	if p == Husband {
		return Wife
	}
	return Husband
}

// IsValid reports whether p is one of the two declared parties.
func (p Payer) IsValid() bool {
	return p == Husband || p == Wife
}
