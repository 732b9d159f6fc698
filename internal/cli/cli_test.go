package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"esg-assessment-service/internal/app"
	"esg-assessment-service/internal/config"
	"esg-assessment-service/internal/domain"
)

var shippedCatalog = filepath.Join("..", "..", "config", "catalog.yaml")

func TestRunScoreFromValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "responses.json")
	body := `{
		"env-renewable-share": 60,
		"env-emissions-tracking": "Mostly",
		"soc-diversity-policy": "Yes",
		"gov-board-oversight": "Owns targets",
		"soc-supplier-code": null
	}`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write responses: %v", err)
	}

	var out bytes.Buffer
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	err := runScore(scoreOptions{catalogPath: shippedCatalog, responsesPath: path, industry: "Technology"}, &out, now)
	if err != nil {
		t.Fatalf("run score: %v", err)
	}

	var report domain.Report
	if err := json.Unmarshal(out.Bytes(), &report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if report.CatalogID != "esg-core" || report.Industry != "Technology" || !report.GeneratedAt.Equal(now) {
		t.Fatalf("unexpected report header %+v", report)
	}
	// four of eight questions answered; the null entry is skipped
	if report.Score.CompletionRate != 50 {
		t.Fatalf("expected 50%% completion, got %d", report.Score.CompletionRate)
	}
	if len(report.Improvement) != 3 {
		t.Fatalf("expected improvement for every category, got %d", len(report.Improvement))
	}
}

func TestRunScoreFromDraft(t *testing.T) {
	state := domain.NewAssessmentState()
	state.Responses["gov-board-oversight"] = domain.Response{QuestionID: "gov-board-oversight", Value: domain.NumberValue(4)}
	data, err := app.EncodeDraft(state)
	if err != nil {
		t.Fatalf("encode draft: %v", err)
	}
	path := filepath.Join(t.TempDir(), "draft.json")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write draft: %v", err)
	}

	var out bytes.Buffer
	if err := runScore(scoreOptions{catalogPath: shippedCatalog, responsesPath: path}, &out, time.Now()); err != nil {
		t.Fatalf("run score: %v", err)
	}
	var report domain.Report
	_ = json.Unmarshal(out.Bytes(), &report)
	if report.Industry != "Other" || len(report.Score.QuestionScores) != 1 {
		t.Fatalf("unexpected report %+v", report)
	}
}

func TestParseResponsesRejectsGarbage(t *testing.T) {
	if _, err := parseResponses([]byte("[1,2")); err == nil {
		t.Fatalf("expected error")
	}
}

func TestBuildStackWithLocalBackends(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Config{}
	cfg.Catalog.ID = "esg-core"
	cfg.Catalog.Path = shippedCatalog
	cfg.Assessment.Industry = "Technology"
	cfg.Assessment.AutoSave = "1h"
	cfg.Drafts.Backend = config.DraftsFile
	cfg.Drafts.Dir = filepath.Join(dir, "drafts")
	cfg.Uploads.Dir = filepath.Join(dir, "uploads")

	ctx := context.Background()
	st, err := buildStack(ctx, cfg)
	if err != nil {
		t.Fatalf("build stack: %v", err)
	}
	defer st.Close()

	if _, err := st.service.Start(ctx, "s1", "u1"); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer st.service.End("s1")
	if _, err := st.service.Answer(ctx, "s1", "env-renewable-share", domain.Response{Value: domain.NumberValue(40)}); err != nil {
		t.Fatalf("answer: %v", err)
	}
	if _, err := st.service.SaveDraft(ctx, "s1"); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := os.Stat(filepath.Join(cfg.Drafts.Dir, "assessment_draft%3As1.json")); err != nil {
		t.Fatalf("expected draft file: %v", err)
	}
	if _, err := st.service.Sync(ctx, "s1"); err != nil {
		t.Fatalf("sync with in-memory records: %v", err)
	}

	server := httptest.NewServer(newMux(st))
	defer server.Close()
	resp, err := http.Get(server.URL + "/healthz")
	if err != nil {
		t.Fatalf("healthz: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	cmd := newRootCmd()
	for _, name := range []string{"start", "migrate", "score", "catalog"} {
		if sub, _, err := cmd.Find([]string{name}); err != nil || sub.Name() != name {
			t.Fatalf("expected %s subcommand", name)
		}
	}
}
