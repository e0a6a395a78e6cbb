package engine

import (
	"errors"
	"fmt"
	"slices"
)

var (
	ErrNotLoaded      = errors.New("no content loaded")
	ErrUnknownToken   = errors.New("unknown token")
	ErrUnknownSlot    = errors.New("unknown slot")
	ErrNotAccepted    = errors.New("token not accepted by slot")
	ErrNotInteractive = errors.New("content is not interactive")
	ErrInvalidBoard   = errors.New("invalid board")
)

// PredicateKind selects how a slot judges a placed token.
type PredicateKind string

const (
	PredicateEquals     PredicateKind = "equals"
	PredicateOneOf      PredicateKind = "one_of"
	PredicateAtPosition PredicateKind = "at_position"
)

// Predicate is a pure correctness test over a single token. It never looks at
// interaction history.
type Predicate struct {
	Kind PredicateKind `json:"kind"`
	// Values holds the expected key for Equals, the accepted keys for OneOf and the
	// full ordering for AtPosition.
	Values   []string `json:"values"`
	Position int      `json:"position,omitempty"`
	// ByText compares the token's display text instead of its id.
	ByText bool `json:"byText,omitempty"`
}

func Equals(value string, byText bool) Predicate {
	return Predicate{Kind: PredicateEquals, Values: []string{value}, ByText: byText}
}

func OneOf(values []string, byText bool) Predicate {
	return Predicate{Kind: PredicateOneOf, Values: slices.Clone(values), ByText: byText}
}

// AtPosition holds when the token is the one listed at position in order.
func AtPosition(position int, order []string) Predicate {
	return Predicate{Kind: PredicateAtPosition, Values: slices.Clone(order), Position: position}
}

// Holds reports whether token satisfies the predicate.
func (p Predicate) Holds(token Token) bool {
	key := token.ID
	if p.ByText {
		key = token.Text
	}

	switch p.Kind {
	case PredicateEquals:
		return len(p.Values) == 1 && p.Values[0] == key
	case PredicateOneOf:
		return slices.Contains(p.Values, key)
	case PredicateAtPosition:
		return p.Position >= 0 && p.Position < len(p.Values) && p.Values[p.Position] == key
	default:
		return false
	}
}

// Token is a draggable or selectable unit. Its identity does not depend on placement.
type Token struct {
	ID       string `json:"id"`
	Text     string `json:"text"`
	ImageURL string `json:"imageUrl,omitempty"`
	AudioURL string `json:"audioUrl,omitempty"`
}

// Slot is a named placement destination.
type Slot struct {
	ID    string `json:"id"`
	Label string `json:"label,omitempty"`
	// Capacity is the number of tokens the slot holds when full. Zero means 1.
	Capacity int `json:"capacity"`
	// Accepts restricts which tokens may be dropped here. Empty means any token.
	Accepts   []string  `json:"accepts,omitempty"`
	Predicate Predicate `json:"predicate"`
}

func (s Slot) capacity() int {
	if s.Capacity < 1 {
		return 1
	}
	return s.Capacity
}

func (s Slot) accepts(tokenID string) bool {
	return len(s.Accepts) == 0 || slices.Contains(s.Accepts, tokenID)
}

// Policy captures the drop behavior of a variant.
type Policy struct {
	// Swap sends a displaced token to the slot the incoming token came from, when
	// there is one, instead of back to the pool.
	Swap bool `json:"swap"`
	// RejectMismatch refuses drops whose token fails the slot predicate.
	RejectMismatch bool `json:"rejectMismatch"`
}

// Board is the interactive shape of one exercise: its tokens, slots and drop policy.
type Board struct {
	Tokens []Token `json:"tokens"`
	Slots  []Slot  `json:"slots"`
	Policy Policy  `json:"policy"`
}

// Validate checks that token and slot ids are unique and that every Accepts entry
// names a declared token.
func (b *Board) Validate() error {
	if b == nil {
		return fmt.Errorf("%w: board is nil", ErrInvalidBoard)
	}
	if len(b.Slots) == 0 {
		return fmt.Errorf("%w: board has no slots", ErrInvalidBoard)
	}

	tokens := make(map[string]bool, len(b.Tokens))
	for _, t := range b.Tokens {
		if t.ID == "" {
			return fmt.Errorf("%w: token without id", ErrInvalidBoard)
		}
		if tokens[t.ID] {
			return fmt.Errorf("%w: duplicate token %q", ErrInvalidBoard, t.ID)
		}
		tokens[t.ID] = true
	}

	slots := make(map[string]bool, len(b.Slots))
	for _, s := range b.Slots {
		if s.ID == "" {
			return fmt.Errorf("%w: slot without id", ErrInvalidBoard)
		}
		if slots[s.ID] {
			return fmt.Errorf("%w: duplicate slot %q", ErrInvalidBoard, s.ID)
		}
		slots[s.ID] = true
		for _, id := range s.Accepts {
			if !tokens[id] {
				return fmt.Errorf("%w: slot %q accepts unknown token %q", ErrInvalidBoard, s.ID, id)
			}
		}
	}
	return nil
}

func (b *Board) token(id string) (Token, bool) {
	for _, t := range b.Tokens {
		if t.ID == id {
			return t, true
		}
	}
	return Token{}, false
}

func (b *Board) slot(id string) (Slot, bool) {
	for _, s := range b.Slots {
		if s.ID == id {
			return s, true
		}
	}
	return Slot{}, false
}
