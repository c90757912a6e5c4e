package handoff

import (
	"strings"
	"testing"
	"time"

	"github.com/phdev/briefing/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var capturedAt = time.Date(2025, time.March, 7, 14, 5, 0, 0, time.UTC)

func minimalBrief() domain.Brief {
	return domain.Brief{
		Name:         "Ana",
		ProjectType:  "Landing Page Express",
		DesignStatus: "Criação do Zero",
		Timeline:     "Urgente (7 dias)",
		BudgetRange:  "Até R$ 1.500",
	}
}

func TestFormat_Exact(t *testing.T) {
	b := minimalBrief()
	b.Functionalities = []string{"Básico"}

	want := "🎯 *NOVO LEAD - BRIEFING COMPLETO*\n" + line + "\n" +
		"\n📋 *DADOS DO CLIENTE*\n" +
		"┃ 👤 Nome: *Ana*\n" +
		"┃ 🎯 Público-Alvo: Não especificado\n" +
		"┃ 📞 Via: Portfolio Chat\n" +
		"\n\n" + line + "\n" +
		"\n💼 *ESCOPO DO PROJETO*\n" +
		"┃ 📦 Pacote: *Landing Page Express*\n" +
		"┃ 🎨 Design: Criação do Zero\n" +
		"┃ ⏰ Prazo Desejado: Urgente (7 dias)\n" +
		"┃ 💰 Budget: *Até R$ 1.500*\n" +
		"\n\n" + line + "\n" +
		"\n⚙️ *FUNCIONALIDADES REQUISITADAS*\n" +
		"┃ ✅ Básico\n" +
		"\n\n" + line + "\n" +
		"\n🌐 *INFRAESTRUTURA*\n" +
		"┃ 🔗 Domínio: ❌ Precisa adquirir\n" +
		"┃ 🖥️ Hospedagem: ❌ Precisa contratar\n" +
		"\n\n" + line + "\n" +
		"\n✅ *Cliente ciente:*\n" +
		"┃ • Sinal de 50% para início\n" +
		"┃ • Foco em Frontend/UI\n" +
		"┃ • Restante na entrega\n" +
		"\n📅 Lead capturado: 07/03/2025 às 14:05\n"

	assert.Equal(t, want, Format(b, capturedAt))
}

func TestFormat_OptionalSections(t *testing.T) {
	b := minimalBrief()
	b.TargetAudience = "Clínicas"
	b.OwnsDomain = true
	b.OwnsHosting = true
	b.ReferenceLinks = []string{"https://a.com", "https://b.com/x"}
	b.Details = "Cores da marca: azul"

	got := Format(b, capturedAt)
	assert.Contains(t, got, "┃ 🎯 Público-Alvo: Clínicas\n")
	assert.Contains(t, got, "┃ 📌 Funcionalidades padrão do pacote\n")
	assert.Contains(t, got, "┃ 🔗 Domínio: ✅ Cliente possui\n")
	assert.Contains(t, got, "┃ 🖥️ Hospedagem: ✅ Cliente possui\n")
	assert.Contains(t, got, "🔗 *REFERÊNCIAS VISUAIS*\n┃ 🌐 https://a.com\n┃ 🌐 https://b.com/x\n")
	assert.Contains(t, got, "📝 *OBSERVAÇÕES DO CLIENTE*\n┃ Cores da marca: azul\n")

	// Notes come after references and before the footer.
	assert.Less(t, strings.Index(got, "REFERÊNCIAS"), strings.Index(got, "OBSERVAÇÕES"))
	assert.Less(t, strings.Index(got, "OBSERVAÇÕES"), strings.Index(got, "Cliente ciente"))
}

func TestFormat_BlankNotesOmitted(t *testing.T) {
	b := minimalBrief()
	b.Details = "   "
	assert.NotContains(t, Format(b, capturedAt), "OBSERVAÇÕES")
}

func TestFormat_Deterministic(t *testing.T) {
	b := minimalBrief()
	assert.Equal(t, Format(b, capturedAt), Format(b, capturedAt))
}

func TestTarget_Link(t *testing.T) {
	target, err := NewTarget("", "5511999999999", "America/Sao_Paulo")
	require.NoError(t, err)

	link := target.Link(minimalBrief(), capturedAt)
	assert.True(t, strings.HasPrefix(link, "https://wa.me/5511999999999?text="))
	assert.NotContains(t, link, "+", "spaces are percent-encoded")
	assert.Contains(t, link, "%20")

	text, err := Decode(link)
	require.NoError(t, err)
	assert.Contains(t, text, "┃ 👤 Nome: *Ana*")
	assert.Contains(t, text, "┃ • Sinal de 50% para início")
	// 14:05 UTC is 11:05 in São Paulo.
	assert.Contains(t, text, "📅 Lead capturado: 07/03/2025 às 11:05")
}

func TestTarget_Encode(t *testing.T) {
	target := Target{BaseURL: "https://wa.me/", Recipient: "123"}
	assert.Equal(t, "https://wa.me/123?text=a%20b%2Bc%0Ad", target.Encode("a b+c\nd"))
}

func TestTarget_Validate(t *testing.T) {
	tests := []struct {
		name   string
		target Target
	}{
		{"Empty recipient", Target{BaseURL: DefaultBaseURL}},
		{"Formatted recipient", Target{BaseURL: DefaultBaseURL, Recipient: "+55 11 9999"}},
		{"Relative base", Target{BaseURL: "wa.me", Recipient: "55"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.target.Validate(), ErrInvalidTarget)
		})
	}

	_, err := NewTarget("", "55", "Mars/Olympus")
	assert.ErrorIs(t, err, ErrInvalidTarget)
}
