// Package summary writes a short narrative of the billing figures using a
// generative model. Summaries are advisory; failures never reach callers.
package summary

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/diewo77/school-billing/internal/billing"
	"github.com/diewo77/school-billing/internal/display"
)

const (
	UnavailableMessage = "AI service is unavailable. Please configure the API Key."
	FailedMessage      = "An error occurred while generating the AI summary. Please try again later."
)

var ErrUnavailable = errors.New("summary service not configured")

// Summarizer turns report figures into prose.
type Summarizer interface {
	Summarize(ctx context.Context, f billing.Figures) (string, error)
}

// Prompt renders the instruction sent to the model.
func Prompt(f billing.Figures, currency string) string {
	var b strings.Builder
	b.WriteString("You are an expert school administrator analyzing a monthly billing report for a Montessori school.\n")
	b.WriteString("Given the following data, provide a concise, insightful summary in a few bullet points.\n")
	b.WriteString("Focus on the financial health and key action items for the administration.\n\n")
	b.WriteString("Data:\n")
	fmt.Fprintf(&b, "- Total Students: %d\n", f.TotalStudents)
	fmt.Fprintf(&b, "- Total Amount Collected: %s\n", display.Amount(currency, f.TotalCollected))
	fmt.Fprintf(&b, "- Total Amount Due: %s\n", display.Amount(currency, f.TotalDue))
	fmt.Fprintf(&b, "- Number of Invoices with Pending Dues: %d\n\n", f.PendingInvoices)
	b.WriteString("Generate the summary.")
	return b.String()
}

// Gemini summarizes through the Gemini API.
type Gemini struct {
	client   *genai.Client
	model    string
	currency string
}

func NewGemini(ctx context.Context, apiKey, model, currency string) (*Gemini, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	return &Gemini{client: client, model: model, currency: currency}, nil
}

func (g *Gemini) Summarize(ctx context.Context, f billing.Figures) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(Prompt(f, g.currency)), nil)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", errors.New("empty response")
	}
	return text, nil
}

// Unavailable is used when no API key is configured.
type Unavailable struct{}

func (Unavailable) Summarize(context.Context, billing.Figures) (string, error) {
	return "", ErrUnavailable
}

// New picks Gemini when apiKey is set.
func New(ctx context.Context, apiKey, model, currency string, log *zap.Logger) Summarizer {
	if strings.TrimSpace(apiKey) == "" {
		log.Warn("summary API key not set, narrative summaries disabled")
		return Unavailable{}
	}
	g, err := NewGemini(ctx, apiKey, model, currency)
	if err != nil {
		log.Error("summary client init failed", zap.Error(err))
		return Unavailable{}
	}
	return g
}

// Describe always returns text to show: the summary, or a fixed message
// when the service is off or failed.
func Describe(ctx context.Context, s Summarizer, f billing.Figures, log *zap.Logger) string {
	if s == nil {
		return UnavailableMessage
	}
	text, err := s.Summarize(ctx, f)
	switch {
	case errors.Is(err, ErrUnavailable):
		return UnavailableMessage
	case err != nil:
		log.Error("report summary failed", zap.Error(err))
		return FailedMessage
	}
	return text
}
