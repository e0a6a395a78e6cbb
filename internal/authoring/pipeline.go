package authoring

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	apperrors "github.com/SAP-F-2025/exercise-authoring-service/internal/errors"
	"github.com/SAP-F-2025/exercise-authoring-service/internal/models"
	"github.com/SAP-F-2025/exercise-authoring-service/internal/schema"
)

var ErrIndexOutOfRange = errors.New("document index out of range")

// ContentValidator checks the semantic rules of a parsed document.
type ContentValidator interface {
	ValidateContent(content models.Content) error
}

// Document is one raw exercise document of an activity. Documents are identified by
// position only; Revision changes on every edit.
type Document struct {
	Index    int                          `json:"index"`
	Text     string                       `json:"text"`
	Revision uint64                       `json:"revision"`
	Content  models.Content               `json:"-"`
	Err      *apperrors.ContentParseError `json:"error,omitempty"`
}

func (d Document) Identity() models.ContentIdentity {
	return models.ContentIdentity{Document: d.Index, Revision: d.Revision}
}

func (d Document) Valid() bool {
	return d.Err == nil && d.Content != nil
}

// Pipeline holds the ordered documents of one activity. Each document parses on its
// own; a broken document never blocks its siblings.
type Pipeline struct {
	typeID    models.ExerciseTypeID
	validator ContentValidator
	docs      []Document
	revision  uint64
}

type Option func(*Pipeline)

// WithValidator runs semantic validation after a document parses.
func WithValidator(v ContentValidator) Option {
	return func(p *Pipeline) {
		p.validator = v
	}
}

func NewPipeline(typeID models.ExerciseTypeID, opts ...Option) *Pipeline {
	p := &Pipeline{typeID: typeID}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Pipeline) TypeID() models.ExerciseTypeID {
	return p.typeID
}

// Load replaces every document with the elements of contentJSON. Text that is not a
// JSON array is kept as a single document so the author can fix it.
func (p *Pipeline) Load(contentJSON string) {
	p.docs = nil
	if strings.TrimSpace(contentJSON) == "" {
		return
	}

	var elements []json.RawMessage
	if err := json.Unmarshal([]byte(contentJSON), &elements); err != nil {
		p.Add(contentJSON)
		return
	}

	for _, element := range elements {
		var buf bytes.Buffer
		if err := json.Indent(&buf, element, "", schema.Indent); err != nil {
			p.Add(string(element))
			continue
		}
		p.Add(buf.String())
	}
}

// Add appends a document and returns it parsed.
func (p *Pipeline) Add(text string) Document {
	doc := p.parse(len(p.docs), text)
	p.docs = append(p.docs, doc)
	return doc
}

// Update replaces the text at index and re-parses that document only.
func (p *Pipeline) Update(index int, text string) (Document, error) {
	if index < 0 || index >= len(p.docs) {
		return Document{}, fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
	}
	doc := p.parse(index, text)
	p.docs[index] = doc
	return doc, nil
}

// Remove deletes the document at index. Later documents shift down one position.
func (p *Pipeline) Remove(index int) error {
	if index < 0 || index >= len(p.docs) {
		return fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
	}
	p.docs = append(p.docs[:index], p.docs[index+1:]...)
	for i := index; i < len(p.docs); i++ {
		p.docs[i].Index = i
		if p.docs[i].Err != nil {
			p.docs[i].Err.Index = i
		}
	}
	return nil
}

func (p *Pipeline) Len() int {
	return len(p.docs)
}

func (p *Pipeline) Document(index int) (Document, error) {
	if index < 0 || index >= len(p.docs) {
		return Document{}, fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
	}
	return p.docs[index], nil
}

func (p *Pipeline) Documents() []Document {
	return append([]Document(nil), p.docs...)
}

// Errors returns the parse errors of every broken document in order.
func (p *Pipeline) Errors() []*apperrors.ContentParseError {
	var errs []*apperrors.ContentParseError
	for _, d := range p.docs {
		if d.Err != nil {
			errs = append(errs, d.Err)
		}
	}
	return errs
}

// Combined always returns text: the canonical array when every document parses, the
// raw documents joined into an array otherwise.
func (p *Pipeline) Combined() string {
	if payload, err := p.Payload(); err == nil {
		return string(payload)
	}

	texts := make([]string, 0, len(p.docs))
	for _, d := range p.docs {
		texts = append(texts, d.Text)
	}
	return "[\n" + strings.Join(texts, ",\n") + "\n]"
}

// Payload returns the canonical indented array of every document, each rendered by
// schema.Stringify. It fails when any document does not parse.
func (p *Pipeline) Payload() ([]byte, error) {
	if errs := p.Errors(); len(errs) > 0 {
		joined := make([]error, 0, len(errs))
		for _, e := range errs {
			joined = append(joined, e)
		}
		return nil, errors.Join(joined...)
	}

	var compact bytes.Buffer
	compact.WriteByte('[')
	for i, d := range p.docs {
		if i > 0 {
			compact.WriteByte(',')
		}
		text, err := schema.Stringify(d.Content)
		if err != nil {
			return nil, fmt.Errorf("failed to render document %d: %w", i+1, err)
		}
		if err := json.Compact(&compact, text); err != nil {
			return nil, fmt.Errorf("failed to compact document %d: %w", i+1, err)
		}
	}
	compact.WriteByte(']')

	var out bytes.Buffer
	if err := json.Indent(&out, compact.Bytes(), "", schema.Indent); err != nil {
		return nil, fmt.Errorf("failed to indent payload: %w", err)
	}
	return out.Bytes(), nil
}

// Contents returns the parsed content of every document. It fails when any document
// does not parse.
func (p *Pipeline) Contents() ([]models.Content, error) {
	contents := make([]models.Content, 0, len(p.docs))
	for _, d := range p.docs {
		if d.Err != nil {
			return nil, d.Err
		}
		contents = append(contents, d.Content)
	}
	return contents, nil
}

func (p *Pipeline) parse(index int, text string) Document {
	p.revision++
	doc := Document{Index: index, Text: text, Revision: p.revision}

	content, err := schema.Parse(p.typeID, []byte(text))
	if err != nil {
		doc.Err = parseError(index, p.typeID, text, err)
		return doc
	}
	if p.validator != nil {
		if err := p.validator.ValidateContent(content); err != nil {
			doc.Err = &apperrors.ContentParseError{
				Index:  index,
				TypeID: int(p.typeID),
				Reason: err.Error(),
				Err:    err,
			}
			return doc
		}
	}
	doc.Content = content
	return doc
}

func parseError(index int, typeID models.ExerciseTypeID, text string, err error) *apperrors.ContentParseError {
	pe := &apperrors.ContentParseError{
		Index:  index,
		TypeID: int(typeID),
		Reason: err.Error(),
		Err:    err,
	}
	var syn *schema.SyntaxError
	if errors.As(err, &syn) {
		pe.Line, pe.Column = schema.Position([]byte(text), syn.Offset)
	}
	return pe
}
