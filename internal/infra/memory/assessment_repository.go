package memory

import (
	"context"
	"sort"
	"sync"

	"esg-assessment-service/internal/domain"
	"github.com/google/uuid"
)

// AssessmentRepository keeps assessments and submitted reports in memory.
type AssessmentRepository struct {
	mu          sync.RWMutex
	assessments map[string]domain.AssessmentRecord
	reports     map[string][]domain.Report
}

func NewAssessmentRepository() *AssessmentRepository {
	return &AssessmentRepository{
		assessments: make(map[string]domain.AssessmentRecord),
		reports:     make(map[string][]domain.Report),
	}
}

func (r *AssessmentRepository) SaveAssessment(_ context.Context, record domain.AssessmentRecord) (string, error) {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	responses := make(map[string]domain.Response, len(record.Responses))
	for k, v := range record.Responses {
		responses[k] = v
	}
	record.Responses = responses

	r.mu.Lock()
	r.assessments[record.ID] = record
	r.mu.Unlock()
	return record.ID, nil
}

func (r *AssessmentRepository) GetAssessment(_ context.Context, assessmentID string) (domain.AssessmentRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	record, ok := r.assessments[assessmentID]
	if !ok {
		return domain.AssessmentRecord{}, domain.ErrAssessmentNotFound
	}
	return record, nil
}

func (r *AssessmentRepository) SaveReport(_ context.Context, report domain.Report) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	record, ok := r.assessments[report.AssessmentID]
	if !ok {
		return domain.ErrAssessmentNotFound
	}
	r.reports[record.OwnerID] = append(r.reports[record.OwnerID], report)
	return nil
}

func (r *AssessmentRepository) ListReports(_ context.Context, ownerID string) ([]domain.Report, error) {
	r.mu.RLock()
	out := make([]domain.Report, len(r.reports[ownerID]))
	copy(out, r.reports[ownerID])
	r.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].GeneratedAt.After(out[j].GeneratedAt)
	})
	return out, nil
}
