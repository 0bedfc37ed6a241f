package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned by lookups for records that do not exist.
var ErrNotFound = errors.New("record not found")

// Content is one production record driven through the pipeline. It is created
// once at stage "pending" with zero accumulated cost, mutated in place by
// successive pipeline advances, and never deleted by the pipeline.
type Content struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	ContentType   string    `json:"content_type"` // video, blog, sns
	Language      string    `json:"language"`     // ja, ko, en
	Topic         string    `json:"topic"`
	Script        string    `json:"script"`
	Status        string    `json:"status"`
	PipelineStage string    `json:"pipeline_stage"`
	CostUSD       float64   `json:"cost_usd"`
	PublishURL    string    `json:"publish_url"`
	ErrorMessage  string    `json:"error_message"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// NewContent builds a record at the start of the pipeline.
func NewContent(title, contentType, language, topic string) *Content {
	now := time.Now().UTC()
	if contentType == "" {
		contentType = "video"
	}
	if language == "" {
		language = "ja"
	}
	return &Content{
		ID:            uuid.NewString(),
		Title:         title,
		ContentType:   contentType,
		Language:      language,
		Topic:         topic,
		Status:        "draft",
		PipelineStage: "pending",
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// Schedule describes a recurring content production template. The core only
// stores schedules; executing them is a collaborator's concern.
type Schedule struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	ContentType   string     `json:"content_type"`
	TopicTemplate string     `json:"topic_template"`
	Language      string     `json:"language"`
	CronExpr      string     `json:"cron_expression"`
	Active        bool       `json:"is_active"`
	LastRunAt     *time.Time `json:"last_run_at,omitempty"`
}

// NewSchedule builds an active schedule with a fresh id.
func NewSchedule(name, contentType, topicTemplate, language, cronExpr string) *Schedule {
	return &Schedule{
		ID:            uuid.NewString(),
		Name:          name,
		ContentType:   contentType,
		TopicTemplate: topicTemplate,
		Language:      language,
		CronExpr:      cronExpr,
		Active:        true,
	}
}

// ContentFilter narrows ListContents results. Zero values match everything.
type ContentFilter struct {
	Status      string
	ContentType string
}

// Store is the persistence boundary for content records and schedules.
type Store interface {
	CreateContent(ctx context.Context, c *Content) error
	GetContent(ctx context.Context, id string) (*Content, error)
	ListContents(ctx context.Context, filter ContentFilter) ([]*Content, error)
	UpdateContent(ctx context.Context, c *Content) error

	CreateSchedule(ctx context.Context, s *Schedule) error
	GetSchedule(ctx context.Context, id string) (*Schedule, error)
	ListSchedules(ctx context.Context, activeOnly bool) ([]*Schedule, error)
	UpdateSchedule(ctx context.Context, s *Schedule) error
	DeleteSchedule(ctx context.Context, id string) error
}
