package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGenerator struct {
	text string
	err  error
}

func (f *fakeGenerator) GenerateText(_ context.Context, _, _ string) (string, error) {
	return f.text, f.err
}

func TestSuggestQuestions_SplitsOnDelimiter(t *testing.T) {
	uc := NewSuggestUsecase(&fakeGenerator{
		text: "What's a hobby you've recently started?|| If you could travel anywhere, where? ||What makes you laugh?",
	})

	questions, err := uc.SuggestQuestions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{
		"What's a hobby you've recently started?",
		"If you could travel anywhere, where?",
		"What makes you laugh?",
	}, questions)
}

func TestSuggestQuestions_NoGeneratorConfigured(t *testing.T) {
	uc := NewSuggestUsecase(nil)

	_, err := uc.SuggestQuestions(context.Background())
	assert.ErrorIs(t, err, ErrSuggestionsUnavailable)
}

func TestSuggestQuestions_ProviderError(t *testing.T) {
	providerErr := errors.New("rate limited")
	uc := NewSuggestUsecase(&fakeGenerator{err: providerErr})

	_, err := uc.SuggestQuestions(context.Background())
	assert.ErrorIs(t, err, providerErr)
}

func TestSuggestQuestions_BlankOutput(t *testing.T) {
	uc := NewSuggestUsecase(&fakeGenerator{text: " || || "})

	_, err := uc.SuggestQuestions(context.Background())
	assert.Error(t, err)
}
