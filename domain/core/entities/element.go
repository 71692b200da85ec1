package entities

import (
	"github.com/varangian-core/magical-board/domain/config"
	"github.com/varangian-core/magical-board/domain/core/valueobjects"
	pkgerrors "github.com/varangian-core/magical-board/pkg/errors"
)

// BoardElement is a positioned, sized and rotated item on a board
type BoardElement struct {
	id          valueobjects.ElementID
	elementType ElementType
	position    valueobjects.Position
	size        valueobjects.Size
	rotation    float64
	zIndex      int
	content     Content
	createdBy   string
	lockedBy    *string
}

// ElementDraft is a partial element supplied by a caller. Nil fields are
// filled with defaults by NewBoardElement.
type ElementDraft struct {
	ID       *valueobjects.ElementID
	Type     ElementType
	Position *valueobjects.Position
	Size     *valueobjects.Size
	Rotation *float64
	Content  Content
	LockedBy *string
}

// ElementDefaults is the context a new element is defaulted from
type ElementDefaults struct {
	Config *config.DomainConfig
	User   *User
	ZIndex int
}

// NewBoardElement builds a complete element from a draft. It never fails:
// anything missing gets a type-appropriate default and the size is
// clamped to the minimum dimension.
func NewBoardElement(draft ElementDraft, defaults ElementDefaults) *BoardElement {
	cfg := defaults.Config
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}

	el := &BoardElement{
		id:        valueobjects.NewElementID(),
		position:  valueobjects.NewPosition(cfg.DefaultElementX, cfg.DefaultElementY),
		size:      valueobjects.NewSize(cfg.DefaultElementWidth, cfg.DefaultElementHeight),
		zIndex:    defaults.ZIndex,
		createdBy: cfg.AnonymousUserID,
		lockedBy:  draft.LockedBy,
	}
	if draft.ID != nil && !draft.ID.IsZero() {
		el.id = *draft.ID
	}
	if draft.Position != nil {
		el.position = *draft.Position
	}
	if draft.Size != nil {
		el.size = valueobjects.NewSize(draft.Size.Width(), draft.Size.Height())
	}
	if draft.Rotation != nil {
		el.rotation = *draft.Rotation
	}
	if defaults.User != nil {
		el.createdBy = defaults.User.ID()
	}

	kind := draft.Type
	if draft.Content != nil {
		kind = draft.Content.Kind()
	}
	if !kind.IsValid() {
		kind = ElementTypeCard
	}
	el.elementType = kind
	el.content = defaultContent(kind, draft.Content, defaults.User, cfg)
	if kind == ElementTypeTimeline {
		el.size = el.size.AtLeast(cfg.TimelineMinWidth, cfg.TimelineMinHeight)
	}
	return el
}

func defaultContent(kind ElementType, supplied Content, user *User, cfg *config.DomainConfig) Content {
	switch kind {
	case ElementTypeImage:
		if c, ok := supplied.(ImageContent); ok {
			return c
		}
		return ImageContent{}
	case ElementTypeTimeline:
		if c, ok := supplied.(TimelineContent); ok {
			return c.Clone()
		}
		return NewTimelineContent(VerticalTemplate, user, cfg)
	default:
		card, hasCard := supplied.(CardContent)
		if user == nil {
			if hasCard {
				return card
			}
			return CardContent{Text: cfg.DefaultCardText, Color: cfg.DefaultCardColor}
		}
		avatar := user.Avatar()
		if card.Header == "" {
			card.Header = cfg.DefaultCardText
		}
		if card.Color == "" {
			card.Color = avatar.Color
		}
		if card.UserIcon == "" {
			card.UserIcon = avatar.Emoji
		}
		if card.UserName == "" {
			card.UserName = user.Name()
		}
		return card
	}
}

// NewTimelineContent returns an empty timeline for the given template
func NewTimelineContent(template TimelineTemplate, user *User, cfg *config.DomainConfig) TimelineContent {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	color := cfg.DefaultCardColor
	if user != nil && user.Avatar().Color != "" {
		color = user.Avatar().Color
	}
	return TimelineContent{
		Template:  template,
		Title:     template.Name,
		Nodes:     []TimelineNode{},
		UserColor: color,
	}
}

// ReconstructElement rebuilds an element from persisted data
func ReconstructElement(
	id valueobjects.ElementID,
	position valueobjects.Position,
	size valueobjects.Size,
	rotation float64,
	zIndex int,
	content Content,
	createdBy string,
	lockedBy *string,
) (*BoardElement, error) {
	if id.IsZero() {
		return nil, pkgerrors.NewValidationError("element id cannot be empty")
	}
	if content == nil {
		return nil, pkgerrors.NewValidationError("element content cannot be empty")
	}
	return &BoardElement{
		id:          id,
		elementType: content.Kind(),
		position:    position,
		size:        valueobjects.NewSize(size.Width(), size.Height()),
		rotation:    rotation,
		zIndex:      zIndex,
		content:     CloneContent(content),
		createdBy:   createdBy,
		lockedBy:    lockedBy,
	}, nil
}

// Getters

func (e *BoardElement) ID() valueobjects.ElementID      { return e.id }
func (e *BoardElement) Type() ElementType               { return e.elementType }
func (e *BoardElement) Position() valueobjects.Position { return e.position }
func (e *BoardElement) Size() valueobjects.Size         { return e.size }
func (e *BoardElement) Rotation() float64               { return e.rotation }
func (e *BoardElement) ZIndex() int                     { return e.zIndex }
func (e *BoardElement) CreatedBy() string               { return e.createdBy }
func (e *BoardElement) Content() Content                { return CloneContent(e.content) }

// LockedBy returns the reserved lock holder, if any
func (e *BoardElement) LockedBy() *string {
	if e.lockedBy == nil {
		return nil
	}
	v := *e.lockedBy
	return &v
}

// Resizable reports whether transform gestures may change the size.
// Timelines size themselves to their nodes and cards keep their size.
func (e *BoardElement) Resizable() bool {
	return e.elementType == ElementTypeImage
}

// Timeline returns the timeline content when the element is a timeline
func (e *BoardElement) Timeline() (TimelineContent, bool) {
	tl, ok := e.content.(TimelineContent)
	if !ok {
		return TimelineContent{}, false
	}
	return tl.Clone(), true
}

// Mutators. Callers outside the board state store should go through
// BoardState.UpdateElement.

func (e *BoardElement) MoveTo(p valueobjects.Position) { e.position = p }

func (e *BoardElement) Resize(s valueobjects.Size) {
	e.size = valueobjects.NewSize(s.Width(), s.Height())
}

func (e *BoardElement) Rotate(degrees float64) { e.rotation = degrees }

func (e *BoardElement) SetZIndex(z int) { e.zIndex = z }

// ReplaceContent swaps the content wholesale; the element type follows it
func (e *BoardElement) ReplaceContent(c Content) {
	if c == nil {
		return
	}
	e.content = CloneContent(c)
	e.elementType = c.Kind()
}

func (e *BoardElement) SetLockedBy(userID *string) { e.lockedBy = userID }

// Clone returns a deep copy of the element
func (e *BoardElement) Clone() *BoardElement {
	out := *e
	out.content = CloneContent(e.content)
	out.lockedBy = e.LockedBy()
	return &out
}
