package service

import (
	"context"
	"errors"

	"polling-service/internal/apperr"
	"polling-service/internal/event"
	"polling-service/internal/model"
	"polling-service/internal/store"
)

// ResponseService enforces the one-response-per-user invariant and snapshots
// the chosen option text at submission time.
type ResponseService struct {
	parts store.Opener
	bus   *event.Bus
}

func NewResponseService(parts store.Opener, bus *event.Bus) *ResponseService {
	return &ResponseService{parts: parts, bus: bus}
}

// Submit records a user's answer. The existence check gives duplicates a
// friendly Conflict; the unique index behind the insert closes the race two
// concurrent submissions could otherwise slip through.
func (s *ResponseService) Submit(ctx context.Context, tenantKey, userID, userEmail, questionID, selectedOptionID string) (*model.Response, error) {
	if questionID == "" || selectedOptionID == "" {
		return nil, apperr.New(apperr.Validation, "Question ID and selected option required")
	}

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

	question, err := questions.ByID(ctx, questionID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.New(apperr.NotFound, "Question not found")
		}
		return nil, apperr.Wrap(apperr.Internal, "Internal server error", err)
	}

	option := question.OptionByID(selectedOptionID)
	if option == nil {
		return nil, apperr.New(apperr.Validation, "Invalid option selected")
	}

	if _, err := responses.ByQuestionAndUser(ctx, questionID, userID); err == nil {
		return nil, apperr.New(apperr.Conflict, "You have already responded to this question")
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, apperr.Wrap(apperr.Internal, "Internal server error", err)
	}

	userName := userEmail
	if users, err := part.Users(); err == nil {
		if user, err := users.ByID(ctx, userID); err == nil && user.Name != "" {
			userName = user.Name
		}
	}

	response := &model.Response{
		QuestionID:         questionID,
		UserID:             userID,
		UserEmail:          userEmail,
		UserName:           userName,
		SelectedOptionID:   option.ID,
		SelectedOptionText: option.Text,
	}
	if err := responses.Create(ctx, response); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, apperr.New(apperr.Conflict, "You have already responded to this question")
		}
		return nil, apperr.Wrap(apperr.Internal, "Internal server error", err)
	}

	s.bus.PublishUser(tenantKey, userID, "response:new", map[string]interface{}{
		"question_id":          questionID,
		"response":             response,
		"user_name":            userName,
		"selected_option_text": option.Text,
	})

	return response, nil
}

func (s *ResponseService) ListAll(ctx context.Context, tenantKey string) ([]model.Response, error) {
	responses, err := s.responses(tenantKey)
	if err != nil {
		return nil, err
	}
	list, err := responses.List(ctx)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "Internal server error", err)
	}
	return list, nil
}

func (s *ResponseService) ListByQuestion(ctx context.Context, tenantKey, questionID string) ([]model.Response, error) {
	responses, err := s.responses(tenantKey)
	if err != nil {
		return nil, err
	}
	list, err := responses.ListByQuestion(ctx, questionID)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "Internal server error", err)
	}
	return list, nil
}

// OwnResponse returns the caller's response to a question, or nil when the
// caller has not responded yet.
func (s *ResponseService) OwnResponse(ctx context.Context, tenantKey, userID, questionID string) (*model.Response, error) {
	responses, err := s.responses(tenantKey)
	if err != nil {
		return nil, err
	}
	response, err := responses.ByQuestionAndUser(ctx, questionID, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil
		}
		return nil, apperr.Wrap(apperr.Internal, "Internal server error", err)
	}
	return response, nil
}

func (s *ResponseService) responses(tenantKey string) (store.ResponseStore, error) {
	part, err := s.parts.Open(tenantKey)
	if err != nil {
		return nil, err
	}
	return part.Responses()
}
