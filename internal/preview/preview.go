package preview

import (
	"errors"
	"fmt"

	"github.com/SAP-F-2025/exercise-authoring-service/internal/engine"
	"github.com/SAP-F-2025/exercise-authoring-service/internal/models"
	"github.com/SAP-F-2025/exercise-authoring-service/internal/schema"
	"github.com/SAP-F-2025/exercise-authoring-service/internal/sequencer"
)

var (
	ErrNoSession    = errors.New("nothing is being previewed")
	ErrWrongSession = errors.New("previewed exercise does not support this operation")
)

type Options struct {
	Sequencer sequencer.Options
	// Autoplay starts sequences as soon as they are shown.
	Autoplay bool
}

// Preview shows one document at a time with no persistence side effects. Showing a
// document with a new identity tears the previous session down.
type Preview struct {
	opts    Options
	typeID  models.ExerciseTypeID
	session Session
}

func New(opts Options) *Preview {
	return &Preview{opts: opts}
}

// Show returns the session for content. The current session is kept when typeID and
// identity are unchanged; otherwise it is rebuilt from scratch.
func (p *Preview) Show(typeID models.ExerciseTypeID, content models.Content, identity models.ContentIdentity) (Session, error) {
	if p.session != nil && p.typeID == typeID && p.session.Identity() == identity {
		return p.session, nil
	}
	p.Close()

	session, err := p.build(typeID, content, identity)
	if err != nil {
		return nil, err
	}
	p.typeID = typeID
	p.session = session
	return session, nil
}

func (p *Preview) build(typeID models.ExerciseTypeID, content models.Content, identity models.ContentIdentity) (Session, error) {
	desc := schema.Lookup(typeID)
	if !desc.Supported || content == nil || content.Kind() == models.KindUnsupported {
		return &PlaceholderSession{typeID: typeID, name: desc.Name, identity: identity}, nil
	}
	if content.Kind() != desc.Kind {
		return nil, fmt.Errorf("content kind %s does not match type %d (%s)", content.Kind(), typeID, desc.Kind)
	}

	switch c := content.(type) {
	case *models.SequenceContent:
		seq := sequencer.New(p.opts.Sequencer)
		if err := seq.Load(c.Steps, identity); err != nil {
			return nil, err
		}
		session := &SequenceSession{typeID: typeID, name: desc.Name, sequencer: seq}
		if p.opts.Autoplay {
			if err := seq.Start(); err != nil {
				return nil, err
			}
		}
		return session, nil
	default:
		e := engine.New()
		if err := e.Load(content, identity, engine.ForType(typeID)); err != nil {
			return nil, err
		}
		return &InteractionSession{typeID: typeID, name: desc.Name, kind: desc.Kind, engine: e}, nil
	}
}

// Session returns the current session, if any.
func (p *Preview) Session() (Session, error) {
	if p.session == nil {
		return nil, ErrNoSession
	}
	return p.session, nil
}

func (p *Preview) Interaction() (*InteractionSession, error) {
	session, err := p.Session()
	if err != nil {
		return nil, err
	}
	s, ok := session.(*InteractionSession)
	if !ok {
		return nil, ErrWrongSession
	}
	return s, nil
}

func (p *Preview) Sequence() (*SequenceSession, error) {
	session, err := p.Session()
	if err != nil {
		return nil, err
	}
	s, ok := session.(*SequenceSession)
	if !ok {
		return nil, ErrWrongSession
	}
	return s, nil
}

// Close tears down the current session.
func (p *Preview) Close() {
	if p.session != nil {
		p.session.Close()
		p.session = nil
	}
}
