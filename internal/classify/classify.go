// Package classify picks catalog tags and a catalog type for a book by asking
// a text-generation model to choose from closed vocabularies.
package classify

import (
	"context"
	"errors"
	"log/slog"

	"kindlesync/internal/retry"
)

// MaxTags is the most tags a book receives.
const MaxTags = 2

// ErrInvalidResponse is returned when the model's answer is not usable.
var ErrInvalidResponse = errors.New("classify: invalid model response")

// Generator produces a completion for prompt. With search set, the backend
// may ground the answer in web search results.
type Generator interface {
	Generate(ctx context.Context, prompt string, search bool) (string, error)
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, prompt string, search bool) (string, error)

func (f GeneratorFunc) Generate(ctx context.Context, prompt string, search bool) (string, error) {
	return f(ctx, prompt, search)
}

type Request struct {
	Title string
	// Description is empty when no metadata was found; the search-assisted
	// prompt is used then.
	Description string
	Tags        []string
	Types       []string
}

// SearchAssisted reports whether the request relies on web search.
func (r Request) SearchAssisted() bool { return r.Description == "" }

type Result struct {
	Tags []string `json:"tags" jsonschema:"maxItems=2,description=Zero to two tags chosen from the allowed tags"`
	Type string   `json:"type" jsonschema:"description=Exactly one type chosen from the allowed types"`
}

type Classifier struct {
	gen    Generator
	policy retry.Policy
	logger *slog.Logger
}

func New(gen Generator, policy retry.Policy, logger *slog.Logger) *Classifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Classifier{gen: gen, policy: policy.With(nil), logger: logger}
}

// Classify asks the model and validates the answer against the request's
// vocabularies. Any failure, including an unusable answer, is retried under
// the policy.
func (c *Classifier) Classify(ctx context.Context, req Request) (Result, error) {
	prompt, err := BuildPrompt(req)
	if err != nil {
		return Result{}, err
	}
	search := req.SearchAssisted()

	return retry.Do(ctx, c.policy, "classify", func(ctx context.Context) (Result, error) {
		raw, err := c.gen.Generate(ctx, prompt, search)
		if err != nil {
			return Result{}, err
		}
		res, err := Parse(raw, req)
		if err != nil {
			c.logger.Debug("unusable classification", "title", req.Title, "response", raw)
			return Result{}, err
		}
		return res, nil
	})
}
