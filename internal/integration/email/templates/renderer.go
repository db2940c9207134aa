// Package templates renders the alert emails.
package templates

import (
	"bytes"
	"embed"
	"fmt"
	htmltemplate "html/template"
	texttemplate "text/template"
)

//go:embed over_budget_alert.html over_budget_alert.txt
var templateFS embed.FS

// Renderer holds the parsed over-budget alert templates.
type Renderer struct {
	html *htmltemplate.Template
	text *texttemplate.Template
}

// NewRenderer parses the embedded templates.
func NewRenderer() (*Renderer, error) {
	html, err := htmltemplate.ParseFS(templateFS, "over_budget_alert.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML alert template: %w", err)
	}

	text, err := texttemplate.ParseFS(templateFS, "over_budget_alert.txt")
	if err != nil {
		return nil, fmt.Errorf("failed to parse text alert template: %w", err)
	}

	return &Renderer{html: html, text: text}, nil
}

// OverBudgetAlertData contains data for the over-budget alert template.
// Amounts are preformatted with two decimals.
type OverBudgetAlertData struct {
	BudgetName     string
	TotalBudget    string
	TotalAllocated string
	OverBy         string
	BudgetURL      string
}

// RenderOverBudgetAlert returns the HTML and plain text bodies.
func (r *Renderer) RenderOverBudgetAlert(data OverBudgetAlertData) (html string, text string, err error) {
	var htmlBuf, textBuf bytes.Buffer

	if err := r.html.Execute(&htmlBuf, data); err != nil {
		return "", "", fmt.Errorf("failed to render HTML alert: %w", err)
	}
	if err := r.text.Execute(&textBuf, data); err != nil {
		return "", "", fmt.Errorf("failed to render text alert: %w", err)
	}

	return htmlBuf.String(), textBuf.String(), nil
}
