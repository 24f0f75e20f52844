package letter

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"log"
	"os"
	"text/template"

	"github.com/justsurfingit/Agentic-Job-Applier/internal/config"
	"github.com/justsurfingit/Agentic-Job-Applier/internal/models"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
)

//go:embed cover_letter.tmpl
var defaultTemplate string

const polishPrompt = `You are helping tailor a cover letter. Rewrite the letter below so its
opening paragraph speaks specifically to the role of %s at %s, keeping the
same tone, length and sign-off. Return only the letter text, no preamble.

%s`

// Fields is the data a template can reference.
type Fields struct {
	Company       string
	Position      string
	ApplicantName string
	Skills        string
}

// Renderer produces a cover letter per job: a text/template base,
// optionally polished by Gemini when an API key is configured.
type Renderer struct {
	tmpl          *template.Template
	llm           llms.Model
	applicantName string
	skills        string
}

// NewRenderer loads the template (custom file when configured, the
// embedded default otherwise) and, if GEMINI_API_KEY is set, the LLM
// client. An unreachable LLM downgrades to plain templating rather
// than failing startup.
func NewRenderer(ctx context.Context, cfg *config.Config) (*Renderer, error) {
	text := defaultTemplate
	if cfg.CoverLetterTemplate != "" {
		b, err := os.ReadFile(cfg.CoverLetterTemplate)
		if err != nil {
			return nil, fmt.Errorf("reading cover letter template: %w", err)
		}
		text = string(b)
	}

	tmpl, err := template.New("cover_letter").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parsing cover letter template: %w", err)
	}

	r := &Renderer{
		tmpl:          tmpl,
		applicantName: cfg.ApplicantName,
		skills:        cfg.ApplicantSkills,
	}

	if cfg.GeminiAPIKey != "" {
		llm, err := googleai.New(ctx,
			googleai.WithAPIKey(cfg.GeminiAPIKey),
			googleai.WithDefaultModel("gemini-2.5-flash"),
		)
		if err != nil {
			log.Printf("Gemini client unavailable, using plain template: %v", err)
		} else {
			r.llm = llm
		}
	}
	return r, nil
}

// Render produces the letter for one job.
func (r *Renderer) Render(ctx context.Context, job models.JobRecord) (string, error) {
	fields := Fields{
		Company:       orDefault(job.Company, "the company"),
		Position:      orDefault(job.Position, "the position"),
		ApplicantName: r.applicantName,
		Skills:        r.skills,
	}

	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, fields); err != nil {
		return "", fmt.Errorf("rendering cover letter: %w", err)
	}
	base := buf.String()

	if r.llm == nil {
		return base, nil
	}

	prompt := fmt.Sprintf(polishPrompt, fields.Position, fields.Company, base)
	polished, err := llms.GenerateFromSinglePrompt(ctx, r.llm, prompt)
	if err != nil || polished == "" {
		log.Printf("Cover letter polish failed, using template output: %v", err)
		return base, nil
	}
	return polished, nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
