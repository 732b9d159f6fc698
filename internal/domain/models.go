package domain

import (
	"io"
	"time"
)

// QuestionType selects how a response is validated and scored.
type QuestionType string

const (
	MultipleChoice QuestionType = "multiple_choice"
	LikertScale    QuestionType = "likert_scale"
	NumberInput    QuestionType = "number"
	FileUpload     QuestionType = "file"
	TextInput      QuestionType = "text"
)

// Category is one of the three ESG scoring buckets.
type Category string

const (
	Environmental Category = "environmental"
	Social        Category = "social"
	Governance    Category = "governance"
)

// Categories lists the scoring categories in processing order.
var Categories = []Category{Environmental, Social, Governance}

// NumberRange bounds a numeric answer. Either side may be unset.
type NumberRange struct {
	Min *float64 `json:"min,omitempty" yaml:"min,omitempty"`
	Max *float64 `json:"max,omitempty" yaml:"max,omitempty"`
}

// Risk annotates a question with a risk that applies when it scores poorly.
type Risk struct {
	Level       string `json:"level" yaml:"level"`
	Description string `json:"description" yaml:"description"`
}

// ComplianceRequirement ties a question to a regulation.
type ComplianceRequirement struct {
	Regulation  string `json:"regulation" yaml:"regulation"`
	Requirement string `json:"requirement" yaml:"requirement"`
}

// Question is a static catalog entry.
type Question struct {
	ID          string                  `json:"id" yaml:"id"`
	Prompt      string                  `json:"prompt" yaml:"prompt"`
	Type        QuestionType            `json:"type" yaml:"type"`
	Options     []string                `json:"options,omitempty" yaml:"options,omitempty"`
	MultiSelect bool                    `json:"multiSelect,omitempty" yaml:"multiSelect,omitempty"`
	Validation  *NumberRange            `json:"validation,omitempty" yaml:"validation,omitempty"`
	Weight      float64                 `json:"weight,omitempty" yaml:"weight,omitempty"` // defaults to 1 if zero
	ImpactAreas []Category              `json:"impactAreas,omitempty" yaml:"impactAreas,omitempty"`
	Required    bool                    `json:"required,omitempty" yaml:"required,omitempty"`
	Risks       []Risk                  `json:"risks,omitempty" yaml:"risks,omitempty"`
	Compliance  []ComplianceRequirement `json:"compliance,omitempty" yaml:"compliance,omitempty"`
}

// Category returns the scoring category: the first impact area, or governance.
func (q Question) Category() Category {
	if len(q.ImpactAreas) > 0 && q.ImpactAreas[0] != "" {
		return q.ImpactAreas[0]
	}
	return Governance
}

// EffectiveWeight returns the weight used for aggregation.
func (q Question) EffectiveWeight() float64 {
	if q.Weight <= 0 {
		return 1
	}
	return q.Weight
}

// Section groups questions shown together.
type Section struct {
	ID          string     `json:"id" yaml:"id"`
	Title       string     `json:"title" yaml:"title"`
	Description string     `json:"description,omitempty" yaml:"description,omitempty"`
	Questions   []Question `json:"questions" yaml:"questions"`
}

// Catalog is the full questionnaire.
type Catalog struct {
	ID       string    `json:"id" yaml:"id"`
	Title    string    `json:"title,omitempty" yaml:"title,omitempty"`
	Sections []Section `json:"sections" yaml:"sections"`
}

// Questions flattens all sections in order.
func (c Catalog) Questions() []Question {
	var out []Question
	for _, s := range c.Sections {
		out = append(out, s.Questions...)
	}
	return out
}

// Question looks up a question by ID.
func (c Catalog) Question(id string) (Question, bool) {
	for _, s := range c.Sections {
		for _, q := range s.Questions {
			if q.ID == id {
				return q, true
			}
		}
	}
	return Question{}, false
}

// MaxSectionIndex is the highest valid section index (0 for an empty catalog).
func (c Catalog) MaxSectionIndex() int {
	if len(c.Sections) == 0 {
		return 0
	}
	return len(c.Sections) - 1
}

// Attachment is persisted metadata for an uploaded file.
type Attachment struct {
	Name        string    `json:"name"`
	Type        string    `json:"type"`
	Size        int64     `json:"size"`
	URL         string    `json:"url"`
	UploadedAt  time.Time `json:"uploadedAt"`
	Description string    `json:"description,omitempty"`
}

// FileHandle is a file waiting to be uploaded. The core only reads its metadata.
type FileHandle struct {
	Name string
	Type string
	Size int64
	Body io.Reader
}

// Response is one answer to one question.
type Response struct {
	QuestionID  string       `json:"questionId"`
	Value       Value        `json:"value"`
	Timestamp   time.Time    `json:"timestamp"`
	Files       []FileHandle `json:"-"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

// AssessmentState is the full mutable session owned by one assessment host.
type AssessmentState struct {
	CurrentSection    int                 `json:"currentSection"`
	Responses         map[string]Response `json:"responses"`
	Progress          int                 `json:"progress"`
	Errors            map[string]string   `json:"errors"`
	LastSaved         string              `json:"lastSaved"`
	LastActive        int64               `json:"lastActive"`
	HasUnsavedChanges bool                `json:"hasUnsavedChanges"`
	AssessmentID      string              `json:"assessmentId,omitempty"`
}

// NewAssessmentState returns the fresh, empty state.
func NewAssessmentState() AssessmentState {
	return AssessmentState{
		Responses: make(map[string]Response),
		Errors:    make(map[string]string),
	}
}

// IsValid reports whether no validation errors are recorded.
func (s AssessmentState) IsValid() bool {
	return len(s.Errors) == 0
}

// Clone copies the maps so the result can be handed out without sharing.
func (s AssessmentState) Clone() AssessmentState {
	out := s
	out.Responses = make(map[string]Response, len(s.Responses))
	for k, v := range s.Responses {
		out.Responses[k] = v
	}
	out.Errors = make(map[string]string, len(s.Errors))
	for k, v := range s.Errors {
		out.Errors[k] = v
	}
	return out
}

// AssessmentRecord is the remotely persisted form of an assessment.
type AssessmentRecord struct {
	ID        string              `json:"id"`
	OwnerID   string              `json:"ownerId"`
	SessionID string              `json:"sessionId"`
	CatalogID string              `json:"catalogId"`
	Industry  string              `json:"industry"`
	Responses map[string]Response `json:"responses"`
	Progress  int                 `json:"progress"`
	UpdatedAt time.Time           `json:"updatedAt"`
}
