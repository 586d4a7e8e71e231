package audit

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	"github.com/bryanwahyu/automaton-a11y/internal/domain/ai"
	domain "github.com/bryanwahyu/automaton-a11y/internal/domain/audit"
	"github.com/bryanwahyu/automaton-a11y/internal/infra/ai/prompt"
)

const missingCredentialMessage = "Error: MODELS_TOKEN environment variable not set. Please configure the GitHub Models API token in repository secrets."

var errInvalidUTF8 = errors.New("content is not valid UTF-8")

// Service is the analysis backend. Remote is decided once per process from the
// captured credential; the Client is built from the same credential.
type Service struct {
	Client ai.Client
	Remote bool
	Out    io.Writer
}

func NewService(client ai.Client, remote bool, out io.Writer) *Service {
	if out == nil {
		out = io.Discard
	}
	return &Service{Client: client, Remote: remote, Out: out}
}

// AnalyzeFile reads filename and analyzes it. It always returns a result whose
// File is filename; read failures become the analysis text.
func (s *Service) AnalyzeFile(ctx context.Context, filename string) domain.AnalysisResult {
	data, err := os.ReadFile(filename)
	if err == nil && !utf8.Valid(data) {
		err = errInvalidUTF8
	}
	if err != nil {
		return domain.AnalysisResult{
			File:     filename,
			Analysis: fmt.Sprintf("Error reading file: %v", err),
			Failure:  &domain.Failure{Kind: domain.FailureRead, Err: err},
		}
	}
	return s.Analyze(ctx, domain.AnalysisRequest{Filename: filename, Content: string(data)})
}

// Analyze runs the mock template or the remote model over already loaded content.
func (s *Service) Analyze(ctx context.Context, req domain.AnalysisRequest) domain.AnalysisResult {
	if !s.Remote {
		fmt.Fprintf(s.Out, "No MODELS_TOKEN found - using mock analysis for %s\n", req.Filename)
		return domain.AnalysisResult{
			File:     req.Filename,
			Analysis: prompt.MockAnalysis(req.Filename, req.Content),
			Mock:     true,
		}
	}

	text, failure := s.CallRemoteModel(ctx, prompt.GetUserPrompt(req.Content))
	return domain.AnalysisResult{File: req.Filename, Analysis: text, Failure: failure}
}

// CallRemoteModel never returns a Go error: every outcome is report text, with
// a Failure describing anything that was not a model answer.
func (s *Service) CallRemoteModel(ctx context.Context, userPrompt string) (string, *domain.Failure) {
	if s.Client == nil {
		return missingCredentialMessage, &domain.Failure{Kind: domain.FailureCredential, Err: ai.ErrMissingCredential}
	}
	out, err := s.Client.Complete(ctx, userPrompt)
	if err == nil {
		return out, nil
	}

	var se *ai.StatusError
	switch {
	case errors.Is(err, ai.ErrMissingCredential):
		return missingCredentialMessage, &domain.Failure{Kind: domain.FailureCredential, Err: err}
	case errors.As(err, &se):
		return fmt.Sprintf("API Error %d: %s", se.StatusCode, se.Body),
			&domain.Failure{Kind: domain.FailureAPI, StatusCode: se.StatusCode, Err: err}
	default:
		return fmt.Sprintf("Error calling GitHub Models: %v", err),
			&domain.Failure{Kind: domain.FailureTransport, Err: err}
	}
}
