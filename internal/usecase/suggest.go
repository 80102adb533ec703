package usecase

import (
	"context"
	"errors"
	"strings"

	"whisperbox/pkg/ai"
)

// SuggestUsecase produces question suggestions for message senders. It is a
// pure convenience capability backed by an external text-generation provider;
// failures here never touch account or inbox state.
type SuggestUsecase interface {
	SuggestQuestions(ctx context.Context) ([]string, error)
}

var ErrSuggestionsUnavailable = errors.New("question suggestions are not configured")

const suggestPrompt = "Create a list of three open-ended and engaging questions formatted as a single string. " +
	"Each question should be separated by '||'. These questions are for an anonymous social messaging platform " +
	"and should be suitable for a diverse audience. Avoid personal or sensitive topics, focusing instead on " +
	"universal themes that encourage friendly interaction. For example, your output should be structured like " +
	"this: 'What's a hobby you've recently started?||If you could have dinner with any historical figure, who " +
	"would it be?||What's a simple thing that makes you happy?'. Ensure the questions are intriguing, foster " +
	"curiosity, and contribute to a positive and welcoming conversational environment."

type suggestUsecase struct {
	generator ai.TextGenerator
}

// NewSuggestUsecase creates a new instance of SuggestUsecase. The generator
// may be nil, in which case every call reports ErrSuggestionsUnavailable.
func NewSuggestUsecase(generator ai.TextGenerator) SuggestUsecase {
	return &suggestUsecase{generator: generator}
}

func (u *suggestUsecase) SuggestQuestions(ctx context.Context) ([]string, error) {
	if u.generator == nil {
		return nil, ErrSuggestionsUnavailable
	}

	text, err := u.generator.GenerateText(ctx, "", suggestPrompt)
	if err != nil {
		return nil, err
	}

	var questions []string
	for _, part := range strings.Split(text, "||") {
		if q := strings.TrimSpace(part); q != "" {
			questions = append(questions, q)
		}
	}

	if len(questions) == 0 {
		return nil, errors.New("provider returned no questions")
	}

	return questions, nil
}
