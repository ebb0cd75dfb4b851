package service

import (
	"context"
	"errors"
	"math"

	"polling-service/internal/apperr"
	"polling-service/internal/event"
	"polling-service/internal/model"
	"polling-service/internal/store"

	"github.com/google/uuid"
)

// QuestionService manages poll questions and their aggregated results.
type QuestionService struct {
	parts store.Opener
	bus   *event.Bus
}

func NewQuestionService(parts store.Opener, bus *event.Bus) *QuestionService {
	return &QuestionService{parts: parts, bus: bus}
}

type OptionInput struct {
	Text string `json:"text"`
}

type UpdateQuestionInput struct {
	Text     *string       `json:"text"`
	IsActive *bool         `json:"is_active"`
	Options  []OptionInput `json:"options"`
}

// OptionStat is the aggregated result for one option. Percentages are rounded
// per option independently and may not sum to exactly 100.
type OptionStat struct {
	OptionID   string `json:"option_id"`
	OptionText string `json:"option_text"`
	Count      int    `json:"count"`
	Percentage int    `json:"percentage"`
}

type QuestionStats struct {
	Question       *model.Question `json:"question"`
	TotalResponses int             `json:"total_responses"`
	Stats          []OptionStat    `json:"stats"`
}

func buildOptions(inputs []OptionInput) []model.Option {
	options := make([]model.Option, len(inputs))
	for i, in := range inputs {
		options[i] = model.Option{
			ID:    uuid.NewString(),
			Text:  in.Text,
			Order: i + 1,
		}
	}
	return options
}

func (s *QuestionService) Create(ctx context.Context, tenantKey, createdBy, text string, options []OptionInput) (*model.Question, error) {
	if text == "" || len(options) < 2 {
		return nil, apperr.New(apperr.Validation, "Question text and at least 2 options required")
	}

	questions, err := s.questions(tenantKey)
	if err != nil {
		return nil, err
	}

	question := &model.Question{
		Text:      text,
		Options:   buildOptions(options),
		IsActive:  true,
		CreatedBy: createdBy,
	}
	if err := questions.Create(ctx, question); err != nil {
		return nil, apperr.Wrap(apperr.Internal, "Internal server error", err)
	}

	s.bus.Publish(tenantKey, "question:new", map[string]interface{}{"question": question})
	return question, nil
}

func (s *QuestionService) List(ctx context.Context, tenantKey string) ([]model.Question, error) {
	questions, err := s.questions(tenantKey)
	if err != nil {
		return nil, err
	}
	list, err := questions.List(ctx)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "Internal server error", err)
	}
	return list, nil
}

func (s *QuestionService) Get(ctx context.Context, tenantKey, id string) (*model.Question, error) {
	questions, err := s.questions(tenantKey)
	if err != nil {
		return nil, err
	}
	return s.byID(ctx, questions, id)
}

// Update applies a partial update. A non-nil option list replaces the whole
// list and generates fresh option ids; earlier responses keep their snapshots.
func (s *QuestionService) Update(ctx context.Context, tenantKey, id string, in UpdateQuestionInput) (*model.Question, error) {
	questions, err := s.questions(tenantKey)
	if err != nil {
		return nil, err
	}

	question, err := s.byID(ctx, questions, id)
	if err != nil {
		return nil, err
	}

	if in.Text != nil {
		question.Text = *in.Text
	}
	if in.IsActive != nil {
		question.IsActive = *in.IsActive
	}
	if in.Options != nil {
		question.Options = buildOptions(in.Options)
	}

	if err := questions.Update(ctx, question); err != nil {
		return nil, apperr.Wrap(apperr.Internal, "Internal server error", err)
	}

	s.bus.Publish(tenantKey, "question:updated", map[string]interface{}{"question": question})
	return question, nil
}

// Delete removes a question. Deleting an unknown id succeeds; the deleted
// event is only broadcast in-process.
func (s *QuestionService) Delete(ctx context.Context, tenantKey, id string) error {
	questions, err := s.questions(tenantKey)
	if err != nil {
		return err
	}
	if err := questions.Delete(ctx, id); err != nil {
		return apperr.Wrap(apperr.Internal, "Internal server error", err)
	}

	s.bus.PublishLocal(tenantKey, "question:deleted", map[string]interface{}{"question_id": id})
	return nil
}

// Stats aggregates responses per option: count and a rounded percentage of
// the total, zero when the question has no responses yet.
func (s *QuestionService) Stats(ctx context.Context, tenantKey, id string) (*QuestionStats, error) {
	part, err := s.parts.Open(tenantKey)
	if err != nil {
		return nil, err
	}
	questions, err := part.Questions()
	if err != nil {
		return nil, err
	}
	responses, err := part.Responses()
	if err != nil {
		return nil, err
	}

	question, err := s.byID(ctx, questions, id)
	if err != nil {
		return nil, err
	}

	list, err := responses.ListByQuestion(ctx, id)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "Internal server error", err)
	}

	total := len(list)
	counts := make(map[string]int, len(question.Options))
	for _, r := range list {
		counts[r.SelectedOptionID]++
	}

	stats := make([]OptionStat, len(question.Options))
	for i, opt := range question.Options {
		count := counts[opt.ID]
		pct := 0
		if total > 0 {
			pct = int(math.Round(float64(count) / float64(total) * 100))
		}
		stats[i] = OptionStat{
			OptionID:   opt.ID,
			OptionText: opt.Text,
			Count:      count,
			Percentage: pct,
		}
	}

	return &QuestionStats{
		Question:       question,
		TotalResponses: total,
		Stats:          stats,
	}, nil
}

func (s *QuestionService) byID(ctx context.Context, questions store.QuestionStore, id string) (*model.Question, error) {
	question, err := questions.ByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.New(apperr.NotFound, "Question not found")
		}
		return nil, apperr.Wrap(apperr.Internal, "Internal server error", err)
	}
	return question, nil
}

func (s *QuestionService) questions(tenantKey string) (store.QuestionStore, error) {
	part, err := s.parts.Open(tenantKey)
	if err != nil {
		return nil, err
	}
	return part.Questions()
}
