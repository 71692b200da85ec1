package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/varangian-core/magical-board/application/canvas"
	"github.com/varangian-core/magical-board/application/commands"
	"github.com/varangian-core/magical-board/application/commands/bus"
	"github.com/varangian-core/magical-board/application/queries"
	"github.com/varangian-core/magical-board/application/sessions"
	"github.com/varangian-core/magical-board/domain/core/entities"
	"github.com/varangian-core/magical-board/domain/core/valueobjects"
	"github.com/varangian-core/magical-board/domain/services"
	"github.com/varangian-core/magical-board/interfaces/http/rest/middleware"
	pkgerrors "github.com/varangian-core/magical-board/pkg/errors"
	"github.com/varangian-core/magical-board/pkg/utils"
)

// SessionHandler exposes the canvas gestures of open boards
type SessionHandler struct {
	responder
	sessions   *sessions.Manager
	commandBus *bus.CommandBus
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(sessionManager *sessions.Manager, commandBus *bus.CommandBus, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{
		responder:  responder{logger: logger},
		sessions:   sessionManager,
		commandBus: commandBus,
	}
}

// SessionResponse is the state of an open board
type SessionResponse struct {
	BoardID           string                  `json:"boardId"`
	Elements          []queries.ElementResult `json:"elements"`
	SelectedElementID *string                 `json:"selectedElementId"`
	Editing           *EditingResponse        `json:"editing"`
	PendingConnection *PendingResponse        `json:"pendingConnection"`
	OpenedAt          string                  `json:"openedAt"`
}

// EditingResponse is the inline edit in progress
type EditingResponse struct {
	ElementID    string  `json:"elementId"`
	Field        string  `json:"field"`
	NodeID       *string `json:"nodeId,omitempty"`
	PendingValue string  `json:"pendingValue"`
}

// PendingResponse is the source of a half-finished connect gesture
type PendingResponse struct {
	ElementID string `json:"elementId"`
	NodeID    string `json:"nodeId"`
}

// AddElementRequest represents the request body for adding an element.
// Content, when present, must match the type.
type AddElementRequest struct {
	Type     string                 `json:"type" validate:"omitempty,oneof=card image timeline"`
	Position *valueobjects.Position `json:"position,omitempty"`
	Size     *valueobjects.Size     `json:"size,omitempty"`
	Rotation *float64               `json:"rotation,omitempty"`
	Content  json.RawMessage        `json:"content,omitempty"`
}

// AddTimelineRequest represents the request body for adding a timeline
type AddTimelineRequest struct {
	TemplateID string                 `json:"templateId" validate:"required"`
	Position   *valueobjects.Position `json:"position,omitempty"`
}

// PointRequest carries the end coordinates of a drag
type PointRequest struct {
	X *float64 `json:"x" validate:"required"`
	Y *float64 `json:"y" validate:"required"`
}

// EditRequest opens an inline edit
type EditRequest struct {
	ElementID string `json:"elementId" validate:"required"`
	Field     string `json:"field" validate:"required,oneof=card.header card.text timeline.title node.title node.date"`
	NodeID    string `json:"nodeId,omitempty"`
}

// EditInputRequest carries typed text
type EditInputRequest struct {
	Value string `json:"value"`
}

// EditKeyRequest carries a key press during an edit
type EditKeyRequest struct {
	Key string `json:"key" validate:"required,oneof=Enter Escape"`
}

// AddNodeRequest represents the request body for adding a timeline node
type AddNodeRequest struct {
	Type  string `json:"type" validate:"omitempty,oneof=time milestone"`
	Title string `json:"title,omitempty" validate:"omitempty,max=200"`
	Date  string `json:"date,omitempty" validate:"omitempty,max=100"`
	Icon  string `json:"icon,omitempty"`
	Color string `json:"color,omitempty"`
}

// OpenSession handles POST /boards/{boardID}/session. An identified
// caller joins the board.
func (h *SessionHandler) OpenSession(w http.ResponseWriter, r *http.Request) {
	boardID := chi.URLParam(r, "boardID")
	session, err := h.sessions.Open(r.Context(), boardID)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}

	if user := middleware.UserFromContext(r.Context()); user != nil {
		cmd := commands.JoinBoardCommand{BoardID: boardID, UserID: user.ID()}
		if err := h.commandBus.Send(r.Context(), cmd); err != nil {
			h.logger.Warn("Failed to join board", zap.String("board_id", boardID), zap.String("user_id", user.ID()), zap.Error(err))
		}
	}
	h.respondSnapshot(w, r, session)
}

// GetSession handles GET /boards/{boardID}/session
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.sessions.Get(chi.URLParam(r, "boardID"))
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	h.respondSnapshot(w, r, session)
}

// CloseSession handles DELETE /boards/{boardID}/session
func (h *SessionHandler) CloseSession(w http.ResponseWriter, r *http.Request) {
	boardID := chi.URLParam(r, "boardID")
	if err := h.sessions.Close(r.Context(), boardID); err != nil {
		h.respondErr(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]string{
		"boardId": boardID,
		"message": "Session closed",
	})
}

// AddElement handles POST /session/elements
func (h *SessionHandler) AddElement(w http.ResponseWriter, r *http.Request) {
	var req AddElementRequest
	if !h.bind(w, r, &req) {
		return
	}
	draft, err := req.draft()
	if err != nil {
		h.respondErr(w, r, err)
		return
	}

	h.gesture(w, r, http.StatusCreated, func(c *canvas.Controller) (interface{}, error) {
		return queries.NewElementResult(c.AddElement(draft)), nil
	})
}

func (req AddElementRequest) draft() (entities.ElementDraft, error) {
	draft := entities.ElementDraft{
		Type:     entities.ElementType(req.Type),
		Position: req.Position,
		Size:     req.Size,
		Rotation: req.Rotation,
	}
	if len(req.Content) == 0 || string(req.Content) == "null" {
		return draft, nil
	}
	if req.Type == "" {
		return draft, pkgerrors.NewValidationError("type is required when content is given")
	}
	content, err := entities.UnmarshalContent(draft.Type, req.Content)
	if err != nil {
		return draft, pkgerrors.NewValidationError("Invalid content").WithCause(err)
	}
	draft.Content = content
	return draft, nil
}

// AddTimeline handles POST /session/timelines
func (h *SessionHandler) AddTimeline(w http.ResponseWriter, r *http.Request) {
	var req AddTimelineRequest
	if !h.bind(w, r, &req) {
		return
	}

	h.gesture(w, r, http.StatusCreated, func(c *canvas.Controller) (interface{}, error) {
		el, ok := c.AddTimeline(req.TemplateID, req.Position)
		if !ok {
			return nil, pkgerrors.NewValidationError("Unknown timeline template: " + req.TemplateID)
		}
		return queries.NewElementResult(el), nil
	})
}

// ClickBackground handles POST /session/background/click
func (h *SessionHandler) ClickBackground(w http.ResponseWriter, r *http.Request) {
	h.gesture(w, r, http.StatusOK, func(c *canvas.Controller) (interface{}, error) {
		c.ClickBackground()
		return selection(c), nil
	})
}

// ClickElement handles POST /session/elements/{elementID}/click
func (h *SessionHandler) ClickElement(w http.ResponseWriter, r *http.Request) {
	id, err := elementID(r)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	h.gesture(w, r, http.StatusOK, func(c *canvas.Controller) (interface{}, error) {
		c.ClickElement(id)
		return selection(c), nil
	})
}

// DragElement handles POST /session/elements/{elementID}/drag
func (h *SessionHandler) DragElement(w http.ResponseWriter, r *http.Request) {
	id, err := elementID(r)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	var req PointRequest
	if !h.bind(w, r, &req) {
		return
	}

	h.gesture(w, r, http.StatusOK, func(c *canvas.Controller) (interface{}, error) {
		if !c.DragEnd(id, *req.X, *req.Y) {
			return nil, pkgerrors.NewNotFoundError("element")
		}
		return currentElement(c, id)
	})
}

// TransformElement handles POST /session/elements/{elementID}/transform
func (h *SessionHandler) TransformElement(w http.ResponseWriter, r *http.Request) {
	id, err := elementID(r)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	ev := canvas.TransformEvent{ScaleX: 1, ScaleY: 1}
	if err := h.decode(r, &ev); err != nil {
		h.respondErr(w, r, err)
		return
	}

	h.gesture(w, r, http.StatusOK, func(c *canvas.Controller) (interface{}, error) {
		el, ok := c.State().Element(id)
		if !ok {
			return nil, pkgerrors.NewNotFoundError("element")
		}
		if !el.Resizable() {
			return nil, pkgerrors.NewConflictError("Only images can be resized")
		}
		result, ok := c.TransformEnd(id, ev)
		if !ok {
			return nil, pkgerrors.NewNotFoundError("element")
		}
		return result, nil
	})
}

// DeleteElement handles POST /session/elements/{elementID}/delete
func (h *SessionHandler) DeleteElement(w http.ResponseWriter, r *http.Request) {
	id, err := elementID(r)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	h.gesture(w, r, http.StatusOK, func(c *canvas.Controller) (interface{}, error) {
		if !c.PressDelete(id) {
			return nil, pkgerrors.NewNotFoundError("element")
		}
		return selection(c), nil
	})
}

// BeginEdit handles POST /session/edit
func (h *SessionHandler) BeginEdit(w http.ResponseWriter, r *http.Request) {
	var req EditRequest
	if !h.bind(w, r, &req) {
		return
	}
	target, err := req.target()
	if err != nil {
		h.respondErr(w, r, err)
		return
	}

	h.gesture(w, r, http.StatusOK, func(c *canvas.Controller) (interface{}, error) {
		if !c.DoubleClick(target) {
			return nil, pkgerrors.NewValidationError("Field cannot be edited on this element")
		}
		return editing(c), nil
	})
}

func (req EditRequest) target() (entities.EditTarget, error) {
	elID, err := valueobjects.ElementIDFrom(req.ElementID)
	if err != nil {
		return entities.EditTarget{}, pkgerrors.NewValidationError(err.Error())
	}
	target := entities.EditTarget{ElementID: elID, Field: entities.EditField(req.Field)}
	if req.NodeID != "" {
		nodeID, err := valueobjects.NodeIDFrom(req.NodeID)
		if err != nil {
			return entities.EditTarget{}, pkgerrors.NewValidationError(err.Error())
		}
		target.NodeID = &nodeID
	}
	return target, nil
}

// EditInput handles POST /session/edit/input
func (h *SessionHandler) EditInput(w http.ResponseWriter, r *http.Request) {
	var req EditInputRequest
	if !h.bind(w, r, &req) {
		return
	}
	h.gesture(w, r, http.StatusOK, func(c *canvas.Controller) (interface{}, error) {
		if !c.EditInput(req.Value) {
			return nil, pkgerrors.NewConflictError("No edit in progress")
		}
		return editing(c), nil
	})
}

// EditKey handles POST /session/edit/key
func (h *SessionHandler) EditKey(w http.ResponseWriter, r *http.Request) {
	var req EditKeyRequest
	if !h.bind(w, r, &req) {
		return
	}
	h.gesture(w, r, http.StatusOK, func(c *canvas.Controller) (interface{}, error) {
		committed := c.EditKey(canvas.Key(req.Key))
		return map[string]interface{}{"committed": committed, "editing": editing(c)}, nil
	})
}

// Blur handles POST /session/edit/blur
func (h *SessionHandler) Blur(w http.ResponseWriter, r *http.Request) {
	h.gesture(w, r, http.StatusOK, func(c *canvas.Controller) (interface{}, error) {
		return map[string]interface{}{"committed": c.Blur(), "editing": editing(c)}, nil
	})
}

// AddNode handles POST /session/elements/{elementID}/nodes
func (h *SessionHandler) AddNode(w http.ResponseWriter, r *http.Request) {
	id, err := elementID(r)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	var req AddNodeRequest
	if !h.bind(w, r, &req) {
		return
	}
	draft := services.NodeDraft{Title: req.Title, Date: req.Date, Icon: req.Icon, Color: req.Color}

	h.gesture(w, r, http.StatusCreated, func(c *canvas.Controller) (interface{}, error) {
		node, ok := c.AddTimelineNode(id, entities.NodeType(req.Type), draft)
		if !ok {
			return nil, pkgerrors.NewNotFoundError("timeline")
		}
		return node, nil
	})
}

// DragNode handles POST /session/elements/{elementID}/nodes/{nodeID}/drag
func (h *SessionHandler) DragNode(w http.ResponseWriter, r *http.Request) {
	id, node, err := nodePath(r)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	var req PointRequest
	if !h.bind(w, r, &req) {
		return
	}

	h.gesture(w, r, http.StatusOK, func(c *canvas.Controller) (interface{}, error) {
		if !c.DragTimelineNode(id, node, *req.X, *req.Y) {
			return nil, pkgerrors.NewNotFoundError("timeline node")
		}
		return currentElement(c, id)
	})
}

// ConnectNode handles POST /session/elements/{elementID}/nodes/{nodeID}/connect
func (h *SessionHandler) ConnectNode(w http.ResponseWriter, r *http.Request) {
	id, node, err := nodePath(r)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	h.gesture(w, r, http.StatusOK, func(c *canvas.Controller) (interface{}, error) {
		outcome := c.ClickNodeForConnect(id, node)
		if outcome == canvas.ConnectIgnored {
			return nil, pkgerrors.NewNotFoundError("timeline node")
		}
		return map[string]interface{}{
			"outcome":           outcome,
			"pendingConnection": pending(c),
		}, nil
	})
}

// RemoveNode handles DELETE /session/elements/{elementID}/nodes/{nodeID}
func (h *SessionHandler) RemoveNode(w http.ResponseWriter, r *http.Request) {
	id, node, err := nodePath(r)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	h.gesture(w, r, http.StatusOK, func(c *canvas.Controller) (interface{}, error) {
		if !c.RemoveTimelineNode(id, node) {
			return nil, pkgerrors.NewNotFoundError("timeline node")
		}
		return currentElement(c, id)
	})
}

// Connections handles GET /session/elements/{elementID}/connections
func (h *SessionHandler) Connections(w http.ResponseWriter, r *http.Request) {
	id, err := elementID(r)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	session, err := h.sessions.Get(chi.URLParam(r, "boardID"))
	if err != nil {
		h.respondErr(w, r, err)
		return
	}

	var (
		conns []services.Connection
		found bool
	)
	if err := session.View(func(c *canvas.Controller) {
		conns, found = c.Connections(id)
	}); err != nil {
		h.respondErr(w, r, err)
		return
	}
	if !found {
		h.respondErr(w, r, pkgerrors.NewNotFoundError("timeline"))
		return
	}
	h.respondJSON(w, http.StatusOK, conns)
}

// gesture runs fn on the board's session as the identified user and
// responds with its result
func (h *SessionHandler) gesture(w http.ResponseWriter, r *http.Request, status int, fn func(c *canvas.Controller) (interface{}, error)) {
	session, err := h.sessions.Get(chi.URLParam(r, "boardID"))
	if err != nil {
		h.respondErr(w, r, err)
		return
	}

	var result interface{}
	err = session.Do(r.Context(), middleware.UserFromContext(r.Context()), func(c *canvas.Controller) error {
		var ferr error
		result, ferr = fn(c)
		return ferr
	})
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	h.respondJSON(w, status, result)
}

// bind decodes and validates a request body, responding on failure
func (h *SessionHandler) bind(w http.ResponseWriter, r *http.Request, req interface{}) bool {
	if err := h.decode(r, req); err != nil {
		h.respondErr(w, r, err)
		return false
	}
	if err := utils.ValidateStruct(req); err != nil {
		h.respondErr(w, r, err)
		return false
	}
	return true
}

func (h *SessionHandler) respondSnapshot(w http.ResponseWriter, r *http.Request, session *sessions.Session) {
	snap, err := session.Snapshot()
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, NewSessionResponse(snap))
}

// NewSessionResponse converts a session snapshot
func NewSessionResponse(snap sessions.Snapshot) SessionResponse {
	resp := SessionResponse{
		BoardID:  snap.BoardID,
		Elements: queries.NewElementResults(snap.Elements),
		OpenedAt: snap.OpenedAt.Format(time.RFC3339Nano),
	}
	if snap.Selected != nil {
		id := snap.Selected.String()
		resp.SelectedElementID = &id
	}
	if snap.Editing != nil {
		resp.Editing = newEditingResponse(snap.Editing)
	}
	if snap.PendingConnection != nil {
		resp.PendingConnection = &PendingResponse{
			ElementID: snap.PendingConnection.ElementID.String(),
			NodeID:    snap.PendingConnection.NodeID.String(),
		}
	}
	return resp
}

func newEditingResponse(e *entities.EditingState) *EditingResponse {
	resp := &EditingResponse{
		ElementID:    e.Target.ElementID.String(),
		Field:        string(e.Target.Field),
		PendingValue: e.PendingValue,
	}
	if e.Target.NodeID != nil {
		id := e.Target.NodeID.String()
		resp.NodeID = &id
	}
	return resp
}

func selection(c *canvas.Controller) map[string]interface{} {
	var selected *string
	if id := c.State().SelectedElement(); id != nil {
		s := id.String()
		selected = &s
	}
	return map[string]interface{}{"selectedElementId": selected}
}

func editing(c *canvas.Controller) *EditingResponse {
	e := c.State().Editing()
	if e == nil {
		return nil
	}
	return newEditingResponse(e)
}

func pending(c *canvas.Controller) *PendingResponse {
	p := c.State().PendingConnection()
	if p == nil {
		return nil
	}
	return &PendingResponse{ElementID: p.ElementID.String(), NodeID: p.NodeID.String()}
}

func currentElement(c *canvas.Controller, id valueobjects.ElementID) (interface{}, error) {
	el, ok := c.State().Element(id)
	if !ok {
		return nil, pkgerrors.NewNotFoundError("element")
	}
	return queries.NewElementResult(el), nil
}

func elementID(r *http.Request) (valueobjects.ElementID, error) {
	id, err := valueobjects.ElementIDFrom(chi.URLParam(r, "elementID"))
	if err != nil {
		return id, pkgerrors.NewValidationError(err.Error())
	}
	return id, nil
}

func nodePath(r *http.Request) (valueobjects.ElementID, valueobjects.NodeID, error) {
	id, err := elementID(r)
	if err != nil {
		return id, valueobjects.NodeID{}, err
	}
	node, err := valueobjects.NodeIDFrom(chi.URLParam(r, "nodeID"))
	if err != nil {
		return id, node, pkgerrors.NewValidationError(err.Error())
	}
	return id, node, nil
}
