package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	apperrors "github.com/SAP-F-2025/exercise-authoring-service/internal/errors"
	"github.com/SAP-F-2025/exercise-authoring-service/internal/models"
)

// Indent is the indentation used for every document written back to authors.
const Indent = "  "

// Parse decodes raw into the content shape registered for typeID. Types outside the
// registry decode to an inert *models.UnsupportedContent without error.
func Parse(typeID models.ExerciseTypeID, raw []byte) (models.Content, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("document is empty")
	}
	if trimmed[0] != '{' {
		if !json.Valid(raw) {
			return nil, decodeError(raw)
		}
		return nil, fmt.Errorf("document must be a JSON object")
	}

	desc := Lookup(typeID)
	var content models.Content
	switch desc.Kind {
	case models.KindFillBlank:
		content = &models.FillBlankContent{}
	case models.KindMultiBlank:
		content = &models.MultiBlankContent{}
	case models.KindMatching:
		content = &models.MatchingContent{}
	case models.KindCategorization:
		content = &models.CategorizationContent{}
	case models.KindOrdering:
		content = &models.OrderingContent{}
	case models.KindTrueFalse:
		content = &models.TrueFalseContent{}
	case models.KindMultipleChoice:
		content = &models.MultipleChoiceContent{}
	case models.KindSequence:
		content = &models.SequenceContent{}
	default:
		if !json.Valid(raw) {
			return nil, decodeError(raw)
		}
		compact := &bytes.Buffer{}
		if err := json.Compact(compact, trimmed); err != nil {
			return nil, err
		}
		return &models.UnsupportedContent{TypeID: typeID, Raw: compact.Bytes()}, nil
	}

	if err := json.Unmarshal(raw, content); err != nil {
		return nil, decodeErrorFrom(err)
	}
	compact := &bytes.Buffer{}
	if err := json.Compact(compact, trimmed); err != nil {
		return nil, err
	}
	if s, ok := content.(sourced); ok {
		s.SetSource(compact.Bytes())
	}
	return content, nil
}

type sourced interface {
	SetSource(raw json.RawMessage)
	SourceJSON() json.RawMessage
}

// Stringify renders content with stable indentation. Content parsed from a document
// keeps that document's key order, its unknown fields and its explicit zero values.
func Stringify(content models.Content) ([]byte, error) {
	if content == nil {
		return nil, fmt.Errorf("content cannot be nil")
	}
	if u, ok := content.(*models.UnsupportedContent); ok {
		var buf bytes.Buffer
		raw, _ := u.MarshalJSON()
		if err := json.Indent(&buf, raw, "", Indent); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}

	out, err := marshal(content)
	if err != nil {
		return nil, err
	}
	if s, ok := content.(sourced); ok && len(s.SourceJSON()) > 0 {
		if out, err = merge(out, s.SourceJSON()); err != nil {
			return nil, fmt.Errorf("failed to merge source document: %w", err)
		}
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, out, "", Indent); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSpace(buf.Bytes()), nil
}

type member struct {
	key   string
	value json.RawMessage
}

// merge overlays the modeled values onto source. Keys missing from modeled were either
// unknown to the schema or omitted as zero values, so the source value is kept.
func merge(modeled, source json.RawMessage) (json.RawMessage, error) {
	switch {
	case isJSON(modeled, '{') && isJSON(source, '{'):
		return mergeObjects(modeled, source)
	case isJSON(modeled, '[') && isJSON(source, '['):
		var m, s []json.RawMessage
		if err := json.Unmarshal(modeled, &m); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(source, &s); err != nil {
			return nil, err
		}
		if len(m) != len(s) {
			return modeled, nil
		}
		var buf bytes.Buffer
		buf.WriteByte('[')
		for i := range m {
			if i > 0 {
				buf.WriteByte(',')
			}
			v, err := merge(m[i], s[i])
			if err != nil {
				return nil, err
			}
			buf.Write(v)
		}
		buf.WriteByte(']')
		return buf.Bytes(), nil
	default:
		return modeled, nil
	}
}

func mergeObjects(modeled, source json.RawMessage) (json.RawMessage, error) {
	known, err := members(modeled)
	if err != nil {
		return nil, err
	}
	original, err := members(source)
	if err != nil {
		return nil, err
	}

	values := make(map[string]json.RawMessage, len(known))
	for _, m := range known {
		values[m.key] = m.value
	}

	merged := make([]member, 0, len(original)+len(known))
	seen := make(map[string]bool, len(original)+len(known))
	for _, m := range original {
		if seen[m.key] {
			continue
		}
		seen[m.key] = true
		value, ok := values[m.key]
		if !ok {
			merged = append(merged, m)
			continue
		}
		if value, err = merge(value, m.value); err != nil {
			return nil, err
		}
		merged = append(merged, member{key: m.key, value: value})
	}
	for _, m := range known {
		if !seen[m.key] {
			seen[m.key] = true
			merged = append(merged, m)
		}
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, m := range merged {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := marshal(m.key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(m.value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// members decodes a JSON object keeping its key order.
func members(raw json.RawMessage) ([]member, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	var out []member
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("object key must be a string")
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, err
		}
		out = append(out, member{key: key, value: value})
	}
	return out, nil
}

func isJSON(raw json.RawMessage, open byte) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == open
}

// Check returns an *errors.UnsupportedTypeError for ids outside the registry.
func Check(typeID models.ExerciseTypeID) error {
	if IsRegistered(typeID) {
		return nil
	}
	return &apperrors.UnsupportedTypeError{TypeID: int(typeID)}
}

// SyntaxError carries the byte offset of a malformed document so callers can report a
// line and column.
type SyntaxError struct {
	Offset int64
	Msg    string
}

func (e *SyntaxError) Error() string {
	return e.Msg
}

func decodeError(raw []byte) error {
	var v any
	return decodeErrorFrom(json.Unmarshal(raw, &v))
}

func decodeErrorFrom(err error) error {
	if err == nil {
		return nil
	}
	var syn *json.SyntaxError
	var typ *json.UnmarshalTypeError
	switch {
	case errors.As(err, &syn):
		return &SyntaxError{Offset: syn.Offset, Msg: syn.Error()}
	case errors.As(err, &typ):
		return &SyntaxError{
			Offset: typ.Offset,
			Msg:    fmt.Sprintf("field %q must be %s, got %s", typ.Field, typ.Type.String(), typ.Value),
		}
	default:
		return err
	}
}

// Position converts a byte offset into a 1-based line and column.
func Position(raw []byte, offset int64) (line, column int) {
	if offset > int64(len(raw)) {
		offset = int64(len(raw))
	}
	line, column = 1, 1
	for _, b := range raw[:offset] {
		if b == '\n' {
			line++
			column = 1
			continue
		}
		column++
	}
	return line, column
}
