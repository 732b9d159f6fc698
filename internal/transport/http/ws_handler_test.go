package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"esg-assessment-service/internal/app"
	"esg-assessment-service/internal/domain"
	"esg-assessment-service/internal/infra/memory"
	"esg-assessment-service/internal/telemetry"
	"github.com/gorilla/websocket"
)

func newService(withRecords bool, rec *telemetry.Recorder) *app.AssessmentService {
	deps := app.Dependencies{
		Sessions: memory.NewSessionStore(),
		Catalogs: memory.NewCatalogRepository(memory.NewStaticCatalogLoader(sampleCatalog()), time.Minute),
		Drafts:   memory.NewDraftStore(),
		Uploader: memory.NewUploader(),
		Recorder: rec,
	}
	if withRecords {
		deps.Records = memory.NewAssessmentRepository()
	}
	return app.NewAssessmentService(deps, app.Settings{CatalogID: "esg-core", Industry: "Technology"})
}

func TestWebSocketAnswerFlow(t *testing.T) {
	service := newService(true, nil)
	wsHandler := NewWSHandler(service)
	defer service.End("s1")

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", wsHandler.ServeWS)
	server := httptest.NewServer(mux)
	defer server.Close()

	u := "ws" + server.URL[len("http"):] + "/ws?sessionId=s1&userId=u1"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// Expect started event first.
	msg := readNext(conn, t)
	if msg.Type != "started" {
		t.Fatalf("expected started, got %s", msg.Type)
	}

	send(t, conn, "answer", map[string]any{"questionId": "q1", "value": "Fully"})
	readUntil(conn, t, "state", func(raw json.RawMessage) bool {
		var s domain.AssessmentState
		_ = json.Unmarshal(raw, &s)
		return s.Progress == 50 && s.HasUnsavedChanges
	})

	send(t, conn, "answer", map[string]any{"questionId": "q2", "value": 500})
	errMsg := readUntil(conn, t, "error", nil)
	var ep errorPayload
	_ = json.Unmarshal(errMsg.Payload, &ep)
	if ep.QuestionID != "q2" || ep.Kind != "out_of_range" {
		t.Fatalf("unexpected error payload %+v", ep)
	}

	send(t, conn, "unload", nil)
	unload := readUntil(conn, t, "unload", nil)
	var up unloadPayload
	_ = json.Unmarshal(unload.Payload, &up)
	if !up.NeedsConfirmation {
		t.Fatalf("expected unload confirmation with unsaved changes")
	}

	send(t, conn, "score", nil)
	scoreMsg := readUntil(conn, t, "score", nil)
	var score domain.ScoreResult
	_ = json.Unmarshal(scoreMsg.Payload, &score)
	if score.CompletionRate != 50 || score.Benchmarks.Industry != "Technology" {
		t.Fatalf("unexpected score %+v", score)
	}

	send(t, conn, "submit", nil)
	readUntil(conn, t, "error", nil)

	send(t, conn, "answer", map[string]any{"questionId": "q2", "value": 75})
	send(t, conn, "submit", nil)
	report := readUntil(conn, t, "report", nil)
	var r domain.Report
	_ = json.Unmarshal(report.Payload, &r)
	if r.AssessmentID == "" || r.Score.CompletionRate != 100 {
		t.Fatalf("unexpected report %+v", r)
	}

	send(t, conn, "bogus", nil)
	readUntil(conn, t, "error", nil)
}

func TestWebSocketRequiresUser(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(NewWSHandler(newService(false, nil)).ServeWS))
	defer server.Close()

	resp, err := http.Get(server.URL + "?sessionId=s1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestWebSocketReleasesSessionOnDisconnect(t *testing.T) {
	drafts := memory.NewDraftStore()
	service := app.NewAssessmentService(app.Dependencies{
		Sessions: memory.NewSessionStore(),
		Catalogs: memory.NewCatalogRepository(memory.NewStaticCatalogLoader(sampleCatalog()), time.Minute),
		Drafts:   drafts,
	}, app.Settings{CatalogID: "esg-core"})

	server := httptest.NewServer(http.HandlerFunc(NewWSHandler(service).ServeWS))
	defer server.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+server.URL[len("http"):]+"?sessionId=s2&userId=u1", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	readNext(conn, t)
	send(t, conn, "answer", map[string]any{"questionId": "q1", "value": 1})
	readUntil(conn, t, "state", nil)
	conn.Close()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if _, err := service.State("s2"); err != nil {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if _, err := service.State("s2"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected session released after last disconnect, got %v", err)
	}
	data, err := drafts.GetDraft(context.Background(), app.DraftKey("s2"))
	if err != nil {
		t.Fatalf("expected draft saved on disconnect: %v", err)
	}
	snapshot, err := app.DecodeDraft(data)
	if err != nil {
		t.Fatalf("decode draft: %v", err)
	}
	if _, ok := snapshot.Responses["q1"]; !ok {
		t.Fatalf("expected answer in draft, got %+v", snapshot)
	}
}

type wsMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func send(t *testing.T, conn *websocket.Conn, typ string, payload any) {
	t.Helper()
	msg := map[string]any{"type": typ}
	if payload != nil {
		msg["payload"] = payload
	}
	if err := conn.WriteJSON(msg); err != nil {
		t.Fatalf("write %s: %v", typ, err)
	}
}

func readNext(conn *websocket.Conn, t *testing.T) wsMessage {
	t.Helper()
	var msg wsMessage
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read json: %v", err)
	}
	return msg
}

// readUntil skips messages until one of type typ satisfies match.
func readUntil(conn *websocket.Conn, t *testing.T, typ string, match func(json.RawMessage) bool) wsMessage {
	t.Helper()
	for i := 0; i < 32; i++ {
		msg := readNext(conn, t)
		if msg.Type == typ && (match == nil || match(msg.Payload)) {
			return msg
		}
	}
	t.Fatalf("no %s message received", typ)
	return wsMessage{}
}

func sampleCatalog() domain.Catalog {
	hi := 100.0
	return domain.Catalog{
		ID: "esg-core",
		Sections: []domain.Section{
			{
				ID:    "env",
				Title: "Environment",
				Questions: []domain.Question{
					{ID: "q1", Prompt: "Do you track emissions?", Type: domain.LikertScale, Required: true,
						Options: []string{"No", "Partially", "Fully"}, ImpactAreas: []domain.Category{domain.Environmental}},
					{ID: "q2", Prompt: "Renewable share (%)", Type: domain.NumberInput, Required: true,
						Validation: &domain.NumberRange{Max: &hi}, ImpactAreas: []domain.Category{domain.Environmental}},
				},
			},
		},
	}
}
