package models

import "encoding/json"

// Content is the closed set of exercise content shapes. Only types declared in this
// package implement it.
type Content interface {
	Kind() ExerciseKind
	sealed()
}

// Source holds the document a content value was parsed from, so fields the schema does
// not model survive a rewrite. It must not outlive edits to the value.
type Source struct {
	raw json.RawMessage
}

func (s *Source) SetSource(raw json.RawMessage) {
	s.raw = raw
}

func (s *Source) SourceJSON() json.RawMessage {
	return s.raw
}

// Choice is a draggable or selectable token. Its identity is the ID, independent of
// where it is placed.
type Choice struct {
	ID       string `json:"id"`
	Text     string `json:"text"`
	ImageURL string `json:"imageUrl,omitempty"`
	AudioURL string `json:"audioUrl,omitempty"`
}

type FillBlankContent struct {
	Source

	Instructions  string   `json:"instructions,omitempty"`
	Sentence      string   `json:"sentence"`
	Choices       []Choice `json:"choices"`
	CorrectAnswer string   `json:"correctAnswer"`
	ImageURL      string   `json:"imageUrl,omitempty"`
	AudioURL      string   `json:"audioUrl,omitempty"`
}

// Blank is one gap of a multi blank text; Answers holds every accepted display value.
type Blank struct {
	ID      string   `json:"id"`
	Answers []string `json:"answers"`
}

type MultiBlankContent struct {
	Source

	Instructions string   `json:"instructions,omitempty"`
	Text         string   `json:"text"`
	Choices      []Choice `json:"choices"`
	Blanks       []Blank  `json:"blanks"`
	AudioURL     string   `json:"audioUrl,omitempty"`
}

type MatchPair struct {
	SourceID string `json:"sourceId"`
	TargetID string `json:"targetId"`
}

type MatchingContent struct {
	Source

	Instructions string      `json:"instructions,omitempty"`
	Sources      []Choice    `json:"sources"`
	Targets      []Choice    `json:"targets"`
	Pairs        []MatchPair `json:"pairs"`
}

type Category struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ImageURL string `json:"imageUrl,omitempty"`
}

type CategoryItem struct {
	ID         string `json:"id"`
	Text       string `json:"text"`
	CategoryID string `json:"categoryId"`
	ImageURL   string `json:"imageUrl,omitempty"`
	AudioURL   string `json:"audioUrl,omitempty"`
}

type CategorizationContent struct {
	Source

	Instructions string         `json:"instructions,omitempty"`
	Categories   []Category     `json:"categories"`
	Items        []CategoryItem `json:"items"`
}

type OrderingContent struct {
	Source

	Instructions string   `json:"instructions,omitempty"`
	Items        []Choice `json:"items"`
	CorrectOrder []string `json:"correctOrder"`
	AudioURL     string   `json:"audioUrl,omitempty"`
}

type Statement struct {
	ID       string `json:"id"`
	Text     string `json:"text"`
	Answer   bool   `json:"answer"`
	ImageURL string `json:"imageUrl,omitempty"`
	AudioURL string `json:"audioUrl,omitempty"`
}

type TrueFalseContent struct {
	Source

	Instructions string      `json:"instructions,omitempty"`
	Statements   []Statement `json:"statements"`
}

type MultipleChoiceContent struct {
	Source

	Instructions    string   `json:"instructions,omitempty"`
	Question        string   `json:"question"`
	Options         []Choice `json:"options"`
	CorrectAnswers  []string `json:"correctAnswers"`
	MultipleCorrect bool     `json:"multipleCorrect,omitempty"`
	ImageURL        string   `json:"imageUrl,omitempty"`
	AudioURL        string   `json:"audioUrl,omitempty"`
}

// SequenceStep is one timed unit of a dialogue, song, story or decomposition.
// DurationMs is used when the step has no audio, or when its audio fails.
type SequenceStep struct {
	ID         string `json:"id"`
	Text       string `json:"text"`
	Speaker    string `json:"speaker,omitempty"`
	AudioURL   string `json:"audioUrl,omitempty"`
	ImageURL   string `json:"imageUrl,omitempty"`
	DurationMs int    `json:"durationMs,omitempty"`
}

type SequenceContent struct {
	Source

	Title    string         `json:"title,omitempty"`
	Word     string         `json:"word,omitempty"`
	Steps    []SequenceStep `json:"steps"`
	AudioURL string         `json:"audioUrl,omitempty"`
}

// UnsupportedContent keeps the raw document of a type outside the registry so it can
// be shown as an inert placeholder and written back untouched.
type UnsupportedContent struct {
	TypeID ExerciseTypeID  `json:"-"`
	Raw    json.RawMessage `json:"-"`
}

// MarshalJSON writes the original document back unchanged.
func (c *UnsupportedContent) MarshalJSON() ([]byte, error) {
	if len(c.Raw) == 0 {
		return []byte("{}"), nil
	}
	return c.Raw, nil
}

func (*FillBlankContent) Kind() ExerciseKind      { return KindFillBlank }
func (*MultiBlankContent) Kind() ExerciseKind     { return KindMultiBlank }
func (*MatchingContent) Kind() ExerciseKind       { return KindMatching }
func (*CategorizationContent) Kind() ExerciseKind { return KindCategorization }
func (*OrderingContent) Kind() ExerciseKind       { return KindOrdering }
func (*TrueFalseContent) Kind() ExerciseKind      { return KindTrueFalse }
func (*MultipleChoiceContent) Kind() ExerciseKind { return KindMultipleChoice }
func (*SequenceContent) Kind() ExerciseKind       { return KindSequence }
func (*UnsupportedContent) Kind() ExerciseKind    { return KindUnsupported }

func (*FillBlankContent) sealed()      {}
func (*MultiBlankContent) sealed()     {}
func (*MatchingContent) sealed()       {}
func (*CategorizationContent) sealed() {}
func (*OrderingContent) sealed()       {}
func (*TrueFalseContent) sealed()      {}
func (*MultipleChoiceContent) sealed() {}
func (*SequenceContent) sealed()       {}
func (*UnsupportedContent) sealed()    {}
