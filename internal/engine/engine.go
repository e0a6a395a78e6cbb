package engine

import (
	"fmt"
	"slices"

	"github.com/SAP-F-2025/exercise-authoring-service/internal/models"
)

// Status is the derived completion state of a board.
type Status string

const (
	StatusIncomplete   Status = "incomplete"
	StatusWrongButFull Status = "wrong_but_full"
	StatusSolved       Status = "solved"
)

// SlotResult is the correctness of one slot.
type SlotResult struct {
	SlotID  string   `json:"slotId"`
	Tokens  []string `json:"tokens"`
	Filled  bool     `json:"filled"`
	Correct bool     `json:"correct"`
}

// Evaluation is derived from a board and its placements and never stored.
type Evaluation struct {
	Slots      []SlotResult `json:"slots"`
	AllFilled  bool         `json:"allFilled"`
	AllCorrect bool         `json:"allCorrect"`
	Status     Status       `json:"status"`
}

// Outcome describes what a Place call did.
type Outcome struct {
	Token string `json:"token"`
	Slot  string `json:"slot"`
	// From is the slot the token was moved out of, if any.
	From string `json:"from,omitempty"`
	// Displaced is the token pushed out of a full slot.
	Displaced string `json:"displaced,omitempty"`
	// SwappedTo is set when Displaced went to From instead of the pool.
	SwappedTo string `json:"swappedTo,omitempty"`
	Rejected  bool   `json:"rejected,omitempty"`
}

// Evaluate scores placements against board. It is a pure function: it reads both
// arguments and writes neither.
func Evaluate(board *Board, placements map[string][]string) Evaluation {
	eval := Evaluation{AllFilled: true, AllCorrect: true}
	if board == nil {
		return Evaluation{Status: StatusIncomplete}
	}

	tokens := make(map[string]Token, len(board.Tokens))
	for _, t := range board.Tokens {
		tokens[t.ID] = t
	}

	for _, slot := range board.Slots {
		placed := placements[slot.ID]
		res := SlotResult{
			SlotID: slot.ID,
			Tokens: slices.Clone(placed),
			Filled: len(placed) >= slot.capacity(),
		}
		if res.Tokens == nil {
			res.Tokens = []string{}
		}

		res.Correct = len(placed) > 0
		for _, id := range placed {
			if !slot.Predicate.Holds(tokens[id]) {
				res.Correct = false
				break
			}
		}

		if !res.Filled {
			eval.AllFilled = false
		}
		if len(placed) > 0 && !res.Correct {
			eval.AllCorrect = false
		}
		eval.Slots = append(eval.Slots, res)
	}

	switch {
	case eval.AllFilled && eval.AllCorrect:
		eval.Status = StatusSolved
	case eval.AllFilled:
		eval.Status = StatusWrongButFull
	default:
		eval.Status = StatusIncomplete
	}
	return eval
}

// Engine tracks the placements of one exercise instance. It is not safe for
// concurrent use; callers serialize access through a dispatch queue.
type Engine struct {
	board    *Board
	identity models.ContentIdentity

	// placements maps slot id to its tokens in arrival order.
	placements map[string][]string
	// location maps token id to the slot holding it.
	location map[string]string
}

func New() *Engine {
	return &Engine{
		placements: make(map[string][]string),
		location:   make(map[string]string),
	}
}

// Load builds the board of content and discards every previous placement.
func (e *Engine) Load(content models.Content, identity models.ContentIdentity, opts ...BuildOption) error {
	board, err := Build(content, opts...)
	if err != nil {
		e.clear()
		return err
	}
	return e.LoadBoard(board, identity)
}

// LoadBoard installs a prepared board and discards every previous placement.
func (e *Engine) LoadBoard(board *Board, identity models.ContentIdentity) error {
	e.clear()
	if err := board.Validate(); err != nil {
		return err
	}
	e.board = board
	e.identity = identity
	return nil
}

func (e *Engine) clear() {
	e.board = nil
	e.identity = models.ContentIdentity{}
	e.placements = make(map[string][]string)
	e.location = make(map[string]string)
}

func (e *Engine) Identity() models.ContentIdentity {
	return e.identity
}

func (e *Engine) Board() *Board {
	return e.board
}

// Place drops tokenID on slotID. A token already in another slot is moved. When the
// slot is full its oldest token is displaced: to the mover's former slot under a swap
// policy, to the pool otherwise.
func (e *Engine) Place(slotID, tokenID string) (Outcome, error) {
	out := Outcome{Token: tokenID, Slot: slotID}
	if e.board == nil {
		return out, ErrNotLoaded
	}

	token, ok := e.board.token(tokenID)
	if !ok {
		return out, fmt.Errorf("%w: %s", ErrUnknownToken, tokenID)
	}
	slot, ok := e.board.slot(slotID)
	if !ok {
		return out, fmt.Errorf("%w: %s", ErrUnknownSlot, slotID)
	}
	if !slot.accepts(tokenID) {
		return out, fmt.Errorf("%w: %s into %s", ErrNotAccepted, tokenID, slotID)
	}

	if e.board.Policy.RejectMismatch && !slot.Predicate.Holds(token) {
		out.Rejected = true
		return out, nil
	}

	from, placed := e.location[tokenID]
	if placed && from == slotID {
		return out, nil
	}
	if placed {
		out.From = from
		e.detach(tokenID)
	}

	if current := e.placements[slotID]; len(current) >= slot.capacity() {
		displaced := current[0]
		e.detach(displaced)
		out.Displaced = displaced

		if e.board.Policy.Swap && out.From != "" {
			if fromSlot, ok := e.board.slot(out.From); ok && fromSlot.accepts(displaced) {
				e.attach(out.From, displaced)
				out.SwappedTo = out.From
			}
		}
	}

	e.attach(slotID, tokenID)
	return out, nil
}

// Remove clears a slot and returns the tokens it held to the pool.
func (e *Engine) Remove(slotID string) ([]string, error) {
	if e.board == nil {
		return nil, ErrNotLoaded
	}
	if _, ok := e.board.slot(slotID); !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSlot, slotID)
	}

	freed := slices.Clone(e.placements[slotID])
	for _, id := range freed {
		e.detach(id)
	}
	return freed, nil
}

// RemoveToken returns one token to the pool wherever it is placed.
func (e *Engine) RemoveToken(tokenID string) error {
	if e.board == nil {
		return ErrNotLoaded
	}
	if _, ok := e.board.token(tokenID); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownToken, tokenID)
	}
	e.detach(tokenID)
	return nil
}

// Evaluate scores the current placements without changing them.
func (e *Engine) Evaluate() Evaluation {
	return Evaluate(e.board, e.placements)
}

// Retry frees exactly the tokens that fail their slot predicate and keeps the rest.
func (e *Engine) Retry() []string {
	if e.board == nil {
		return nil
	}

	var freed []string
	for _, slot := range e.board.Slots {
		for _, id := range slices.Clone(e.placements[slot.ID]) {
			token, _ := e.board.token(id)
			if !slot.Predicate.Holds(token) {
				e.detach(id)
				freed = append(freed, id)
			}
		}
	}
	return freed
}

// Reset empties every slot regardless of correctness.
func (e *Engine) Reset() {
	e.placements = make(map[string][]string)
	e.location = make(map[string]string)
}

// Pool lists the unplaced tokens in board order.
func (e *Engine) Pool() []Token {
	if e.board == nil {
		return nil
	}
	pool := make([]Token, 0, len(e.board.Tokens))
	for _, t := range e.board.Tokens {
		if _, placed := e.location[t.ID]; !placed {
			pool = append(pool, t)
		}
	}
	return pool
}

// Placements returns a copy of the slot to tokens mapping.
func (e *Engine) Placements() map[string][]string {
	out := make(map[string][]string, len(e.placements))
	for slot, tokens := range e.placements {
		out[slot] = slices.Clone(tokens)
	}
	return out
}

// SlotOf returns the slot holding tokenID.
func (e *Engine) SlotOf(tokenID string) (string, bool) {
	slot, ok := e.location[tokenID]
	return slot, ok
}

func (e *Engine) attach(slotID, tokenID string) {
	e.placements[slotID] = append(e.placements[slotID], tokenID)
	e.location[tokenID] = slotID
}

func (e *Engine) detach(tokenID string) {
	slotID, ok := e.location[tokenID]
	if !ok {
		return
	}
	delete(e.location, tokenID)

	tokens := slices.DeleteFunc(e.placements[slotID], func(id string) bool { return id == tokenID })
	if len(tokens) == 0 {
		delete(e.placements, slotID)
		return
	}
	e.placements[slotID] = tokens
}
