package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync"

	"esg-assessment-service/internal/app"
	"esg-assessment-service/internal/domain"
	"esg-assessment-service/internal/validation"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

type WSHandler struct {
	service  *app.AssessmentService
	upgrader websocket.Upgrader

	mu    sync.Mutex
	conns map[string]int
}

func NewWSHandler(service *app.AssessmentService) *WSHandler {
	return &WSHandler{
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		conns: make(map[string]int),
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type answerPayload struct {
	QuestionID string       `json:"questionId"`
	Value      domain.Value `json:"value"`
}

type filePayload struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	Size    int64  `json:"size"`
	Content []byte `json:"content"`
}

type attachPayload struct {
	QuestionID  string        `json:"questionId"`
	Description string        `json:"description"`
	Files       []filePayload `json:"files"`
}

type sectionPayload struct {
	Index int `json:"index"`
}

type progressPayload struct {
	Value int `json:"value"`
}

type resumePayload struct {
	AssessmentID string `json:"assessmentId"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message    string `json:"message"`
	QuestionID string `json:"questionId,omitempty"`
	Kind       string `json:"kind,omitempty"`
}

type warningPayload struct {
	Message string `json:"message"`
}

type unloadPayload struct {
	NeedsConfirmation bool `json:"needsConfirmation"`
}

type startedPayload struct {
	SessionID string                 `json:"sessionId"`
	State     domain.AssessmentState `json:"state"`
}

func errorMessage(err error) outboundMessage[any] {
	p := errorPayload{Message: err.Error()}
	var fe *validation.FieldError
	if errors.As(err, &fe) {
		p.QuestionID = fe.QuestionID
		p.Kind = string(fe.Kind)
	}
	return outboundMessage[any]{Type: "error", Payload: p}
}

// ServeWS upgrades HTTP requests to websockets and wires them into the assessment use cases.
// A missing sessionId starts a new session.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("sessionId")
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		http.Error(w, "missing userId", http.StatusBadRequest)
		return
	}
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	ctx := r.Context()
	h.attach(sessionID)
	defer h.detach(sessionID)

	started, err := h.service.Start(ctx, sessionID, userID)
	if err != nil {
		_ = conn.WriteJSON(errorMessage(err))
		return
	}

	updates, cancel, err := h.service.Subscribe(ctx, sessionID)
	if err != nil {
		_ = conn.WriteJSON(errorMessage(err))
		return
	}
	defer cancel()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		}
	}()

	send <- outboundMessage[any]{Type: "started", Payload: startedPayload{SessionID: sessionID, State: started}}

	go func() {
		defer close(updatesDone)
		// the first update repeats the state already sent with "started"
		first := true
		for {
			select {
			case update, ok := <-updates:
				if !ok {
					return
				}
				if first {
					first = false
					continue
				}
				msgs := []outboundMessage[any]{{Type: "state", Payload: update.State}}
				if update.Warning != "" {
					msgs = append(msgs, outboundMessage[any]{Type: "warning", Payload: warningPayload{Message: update.Warning}})
				}
				for _, m := range msgs {
					select {
					case send <- m:
					case <-closeSignals:
						return
					}
				}
			case <-closeSignals:
				return
			}
		}
	}()

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		if reply, ok := h.handle(ctx, sessionID, userID, inbound); ok {
			send <- reply
		}
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}

// handle runs one inbound command. State changes reach the client through the
// subscription, so only results and errors are replied to directly.
func (h *WSHandler) handle(ctx context.Context, sessionID, userID string, in inboundMessage) (outboundMessage[any], bool) {
	var err error
	switch in.Type {
	case "answer":
		var p answerPayload
		if err := decode(in.Payload, &p); err != nil {
			return errorMessage(errors.New("invalid answer payload")), true
		}
		_, err = h.service.Answer(ctx, sessionID, p.QuestionID, domain.Response{Value: p.Value})
	case "attach":
		var p attachPayload
		if err := decode(in.Payload, &p); err != nil {
			return errorMessage(errors.New("invalid attach payload")), true
		}
		files := make([]domain.FileHandle, 0, len(p.Files))
		for _, f := range p.Files {
			size := f.Size
			if size == 0 {
				size = int64(len(f.Content))
			}
			files = append(files, domain.FileHandle{Name: f.Name, Type: f.Type, Size: size, Body: bytes.NewReader(f.Content)})
		}
		_, err = h.service.Attach(ctx, sessionID, p.QuestionID, files, p.Description)
	case "section":
		var p sectionPayload
		if err := decode(in.Payload, &p); err != nil {
			return errorMessage(errors.New("invalid section payload")), true
		}
		_, err = h.service.GoToSection(ctx, sessionID, p.Index)
	case "advance":
		_, err = h.service.Advance(ctx, sessionID)
	case "progress":
		var p progressPayload
		if err := decode(in.Payload, &p); err != nil {
			return errorMessage(errors.New("invalid progress payload")), true
		}
		_, err = h.service.Dispatch(ctx, sessionID, app.UpdateProgress{Value: p.Value})
	case "save":
		_, err = h.service.SaveDraft(ctx, sessionID)
	case "reset":
		_, err = h.service.Reset(ctx, sessionID)
	case "score":
		score, err := h.service.Score(ctx, sessionID)
		if err != nil {
			return errorMessage(err), true
		}
		return outboundMessage[any]{Type: "score", Payload: score}, true
	case "report":
		report, err := h.service.Report(ctx, sessionID)
		if err != nil {
			return errorMessage(err), true
		}
		return outboundMessage[any]{Type: "report", Payload: report}, true
	case "sync":
		_, err = h.service.Sync(ctx, sessionID)
	case "resume":
		var p resumePayload
		if err := decode(in.Payload, &p); err != nil {
			return errorMessage(errors.New("invalid resume payload")), true
		}
		_, err = h.service.Resume(ctx, sessionID, p.AssessmentID)
	case "submit":
		report, err := h.service.Submit(ctx, sessionID)
		if err != nil {
			return errorMessage(err), true
		}
		return outboundMessage[any]{Type: "report", Payload: report}, true
	case "history":
		reports, err := h.service.History(ctx, userID)
		if err != nil {
			return errorMessage(err), true
		}
		return outboundMessage[any]{Type: "history", Payload: reports}, true
	case "unload":
		return outboundMessage[any]{Type: "unload", Payload: unloadPayload{
			NeedsConfirmation: h.service.NeedsUnloadConfirmation(sessionID),
		}}, true
	default:
		return errorMessage(errors.New("unsupported message type")), true
	}
	if err != nil {
		return errorMessage(err), true
	}
	return outboundMessage[any]{}, false
}

func (h *WSHandler) attach(sessionID string) {
	h.mu.Lock()
	h.conns[sessionID]++
	h.mu.Unlock()
}

// detach releases the session once its last connection is gone. Unsaved
// changes are written to the draft first so a reconnect restores them.
func (h *WSHandler) detach(sessionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[sessionID]--
	if h.conns[sessionID] > 0 {
		return
	}
	delete(h.conns, sessionID)

	if h.service.NeedsUnloadConfirmation(sessionID) {
		if _, err := h.service.SaveDraft(context.Background(), sessionID); err != nil {
			log.Printf("save draft on disconnect: %v", err)
		}
	}
	h.service.End(sessionID)
}

func decode(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		return errors.New("empty payload")
	}
	return json.Unmarshal(raw, v)
}
