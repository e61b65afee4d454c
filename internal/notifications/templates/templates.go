package templates

import (
	"bytes"
	"embed"
	"fmt"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"
	"time"

	"lilo/pkg/model"
)

//go:embed files/*.tmpl
var files embed.FS

// Vars are the fields every email template may reference.
type Vars struct {
	BookingID          string
	FullName           string
	BusinessName       string
	Email              string
	Phone              string
	PreferredDate      string
	PreferredTime      string
	Services           string
	Notes              string
	Status             string
	CancellationReason string
	CompanyName        string
	LogoURL            string
}

type Rendered struct {
	Subject string
	Text    string
	HTML    string
}

type Renderer struct {
	text *texttemplate.Template
	html *htmltemplate.Template
}

func NewRenderer() (*Renderer, error) {
	text, err := texttemplate.ParseFS(files, "files/*.txt.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to parse text templates: %w", err)
	}
	html, err := htmltemplate.ParseFS(files, "files/*.html.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to parse html templates: %w", err)
	}
	return &Renderer{text: text, html: html}, nil
}

// Render executes the subject, text and html parts of kind.
func (r *Renderer) Render(kind string, vars Vars) (Rendered, error) {
	var out Rendered
	var buf bytes.Buffer

	if err := r.text.ExecuteTemplate(&buf, kind+".subject", vars); err != nil {
		return out, fmt.Errorf("failed to render %s subject: %w", kind, err)
	}
	out.Subject = strings.TrimSpace(buf.String())

	buf.Reset()
	if err := r.text.ExecuteTemplate(&buf, kind+".text", vars); err != nil {
		return out, fmt.Errorf("failed to render %s text: %w", kind, err)
	}
	out.Text = buf.String()

	buf.Reset()
	if err := r.html.ExecuteTemplate(&buf, kind+".html", vars); err != nil {
		return out, fmt.Errorf("failed to render %s html: %w", kind, err)
	}
	out.HTML = buf.String()

	return out, nil
}

// VarsFor formats booking fields for display: long date, 12-hour time.
func VarsFor(b model.Booking, companyName, logoURL string) Vars {
	date := b.RequestedDate
	if d, err := time.Parse(model.DateLayout, b.RequestedDate); err == nil {
		date = d.Format("Monday, January 2, 2006")
	}

	return Vars{
		BookingID:          b.ID,
		FullName:           b.FullName,
		BusinessName:       b.BusinessName,
		Email:              b.Email,
		Phone:              b.Phone,
		PreferredDate:      date,
		PreferredTime:      model.FormatClock12(b.RequestedTime),
		Services:           strings.Join(b.ServicesRequested, ", "),
		Notes:              b.Notes,
		Status:             strings.ReplaceAll(string(b.Status), "_", " "),
		CancellationReason: b.CancellationReason,
		CompanyName:        companyName,
		LogoURL:            logoURL,
	}
}
