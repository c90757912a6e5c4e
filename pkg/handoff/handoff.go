package handoff

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/phdev/briefing/pkg/domain"
)

const (
	// DefaultBaseURL is the WhatsApp click-to-chat endpoint.
	DefaultBaseURL = "https://wa.me"
	// DefaultRecipient is the studio's WhatsApp number.
	DefaultRecipient = "5511999999999"
	// DefaultTimezone is used for the capture timestamp.
	DefaultTimezone = "America/Sao_Paulo"

	line         = "━━━━━━━━━━━━━━━━━━━━━━━━━━"
	sectionSpace = "\n\n"
	stampLayout  = "02/01/2006 às 15:04"
)

// ErrInvalidTarget is returned for a misconfigured messaging target.
var ErrInvalidTarget = errors.New("invalid handoff target")

// Format renders the brief into the message the recipient processes by hand.
// The same brief always yields the same text apart from the timestamp line.
func Format(b domain.Brief, capturedAt time.Time) string {
	var m strings.Builder

	fmt.Fprintf(&m, "🎯 *NOVO LEAD - BRIEFING COMPLETO*\n%s\n", line)

	m.WriteString("\n📋 *DADOS DO CLIENTE*\n")
	fmt.Fprintf(&m, "┃ 👤 Nome: *%s*\n", b.Name)
	fmt.Fprintf(&m, "┃ 🎯 Público-Alvo: %s\n", orDefault(b.TargetAudience, "Não especificado"))
	m.WriteString("┃ 📞 Via: Portfolio Chat\n")

	section(&m, "💼 *ESCOPO DO PROJETO*")
	fmt.Fprintf(&m, "┃ 📦 Pacote: *%s*\n", b.ProjectType)
	fmt.Fprintf(&m, "┃ 🎨 Design: %s\n", b.DesignStatus)
	fmt.Fprintf(&m, "┃ ⏰ Prazo Desejado: %s\n", b.Timeline)
	fmt.Fprintf(&m, "┃ 💰 Budget: *%s*\n", b.BudgetRange)

	section(&m, "⚙️ *FUNCIONALIDADES REQUISITADAS*")
	if len(b.Functionalities) > 0 {
		for _, f := range b.Functionalities {
			fmt.Fprintf(&m, "┃ ✅ %s\n", f)
		}
	} else {
		m.WriteString("┃ 📌 Funcionalidades padrão do pacote\n")
	}

	section(&m, "🌐 *INFRAESTRUTURA*")
	fmt.Fprintf(&m, "┃ 🔗 Domínio: %s\n", owned(b.OwnsDomain, "❌ Precisa adquirir"))
	fmt.Fprintf(&m, "┃ 🖥️ Hospedagem: %s\n", owned(b.OwnsHosting, "❌ Precisa contratar"))

	if len(b.ReferenceLinks) > 0 {
		section(&m, "🔗 *REFERÊNCIAS VISUAIS*")
		for _, link := range b.ReferenceLinks {
			fmt.Fprintf(&m, "┃ 🌐 %s\n", link)
		}
	}

	if strings.TrimSpace(b.Details) != "" {
		section(&m, "📝 *OBSERVAÇÕES DO CLIENTE*")
		fmt.Fprintf(&m, "┃ %s\n", b.Details)
	}

	section(&m, "✅ *Cliente ciente:*")
	m.WriteString("┃ • Sinal de 50% para início\n")
	m.WriteString("┃ • Foco em Frontend/UI\n")
	m.WriteString("┃ • Restante na entrega\n")
	fmt.Fprintf(&m, "\n📅 Lead capturado: %s\n", capturedAt.Format(stampLayout))

	return m.String()
}

func section(m *strings.Builder, title string) {
	fmt.Fprintf(m, "%s%s\n\n%s\n", sectionSpace, line, title)
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func owned(yes bool, missing string) string {
	if yes {
		return "✅ Cliente possui"
	}
	return missing
}

// Target is the messaging deep link destination.
type Target struct {
	BaseURL   string
	Recipient string
	// Location sets the timezone of the capture timestamp. Nil means UTC.
	Location *time.Location
}

// NewTarget builds a Target resolving the timezone name.
func NewTarget(baseURL, recipient, timezone string) (Target, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timezone == "" {
		timezone = DefaultTimezone
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return Target{}, fmt.Errorf("%w: timezone %q: %v", ErrInvalidTarget, timezone, err)
	}
	t := Target{BaseURL: baseURL, Recipient: recipient, Location: loc}
	if err := t.Validate(); err != nil {
		return Target{}, err
	}
	return t, nil
}

// Validate rejects an empty or non-numeric recipient and a malformed base URL.
func (t Target) Validate() error {
	if t.Recipient == "" {
		return fmt.Errorf("%w: recipient is empty", ErrInvalidTarget)
	}
	for _, r := range t.Recipient {
		if r < '0' || r > '9' {
			return fmt.Errorf("%w: recipient %q must contain digits only", ErrInvalidTarget, t.Recipient)
		}
	}
	u, err := url.Parse(t.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: base url %q", ErrInvalidTarget, t.BaseURL)
	}
	return nil
}

// Link formats the brief and encodes it into the deep link.
func (t Target) Link(b domain.Brief, capturedAt time.Time) string {
	if t.Location != nil {
		capturedAt = capturedAt.In(t.Location)
	}
	return t.Encode(Format(b, capturedAt))
}

// Encode builds `<base>/<recipient>?text=<message>` with spaces as %20.
func (t Target) Encode(message string) string {
	base := strings.TrimRight(t.BaseURL, "/")
	text := strings.ReplaceAll(url.QueryEscape(message), "+", "%20")
	return fmt.Sprintf("%s/%s?text=%s", base, t.Recipient, text)
}

// Decode extracts the message text from a deep link.
func Decode(link string) (string, error) {
	u, err := url.Parse(link)
	if err != nil {
		return "", err
	}
	return u.Query().Get("text"), nil
}
