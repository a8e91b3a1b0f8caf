package notification

import (
	"bytes"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"

	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Renderer executes stored email templates against send data.
// A template that fails to parse or execute renders as its raw content.
type Renderer struct {
	printer *message.Printer
	logger  *zap.Logger
}

// NewRenderer creates a Renderer formatting amounts the French way
func NewRenderer(logger *zap.Logger) *Renderer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Renderer{
		printer: message.NewPrinter(language.French),
		logger:  logger,
	}
}

func (r *Renderer) funcs() map[string]any {
	return map[string]any{
		"fcfa":  r.FormatFCFA,
		"upper": strings.ToUpper,
		"int":   cast.ToInt,
	}
}

// FormatFCFA renders an amount rounded to the franc, e.g. "25 000 FCFA"
func (r *Renderer) FormatFCFA(v any) string {
	amount, err := toDecimal(v)
	if err != nil {
		return cast.ToString(v) + " FCFA"
	}
	return r.printer.Sprintf("%d FCFA", amount.Round(0).IntPart())
}

// Check parses both contents without executing them
func (r *Renderer) Check(html, text string) error {
	if _, err := htmltemplate.New("email").Funcs(r.funcs()).Parse(html); err != nil {
		return err
	}
	_, err := texttemplate.New("email").Funcs(r.funcs()).Parse(text)
	return err
}

// RenderHTML executes content as an html/template
func (r *Renderer) RenderHTML(content string, data map[string]any) string {
	tmpl, err := htmltemplate.New("email").Funcs(r.funcs()).Parse(content)
	if err != nil {
		r.logger.Warn("Failed to parse HTML email template", zap.Error(err))
		return content
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		r.logger.Warn("Failed to render HTML email template", zap.Error(err))
		return content
	}
	return buf.String()
}

// RenderText executes content as a text/template
func (r *Renderer) RenderText(content string, data map[string]any) string {
	tmpl, err := texttemplate.New("email").Funcs(r.funcs()).Parse(content)
	if err != nil {
		r.logger.Warn("Failed to parse text email template", zap.Error(err))
		return content
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		r.logger.Warn("Failed to render text email template", zap.Error(err))
		return content
	}
	return buf.String()
}

func toDecimal(v any) (decimal.Decimal, error) {
	switch amount := v.(type) {
	case decimal.Decimal:
		return amount, nil
	case *decimal.Decimal:
		if amount == nil {
			return decimal.Zero, nil
		}
		return *amount, nil
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return decimal.Zero, err
	}
	return decimal.NewFromString(s)
}
