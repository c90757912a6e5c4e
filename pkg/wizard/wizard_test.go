package wizard

import (
	"testing"

	"github.com/phdev/briefing/pkg/domain"
	"github.com/phdev/briefing/pkg/flow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlow_Integrity(t *testing.T) {
	table, err := Flow()
	require.NoError(t, err)

	var ids []domain.StepID
	for _, s := range table.Steps() {
		ids = append(ids, s.ID)
	}
	assert.ElementsMatch(t, []domain.StepID{
		StepStart, StepStartContext, StepWelcomeBack, StepSelectPackage,
		StepMethodology, StepDefineAudience, StepDesignApproach,
		StepCollectReferences, StepSelectFeatures, StepDefineTimeline,
		StepCheckDomain, StepCheckHosting, StepDefineBudget,
		StepAdditionalDetails, StepShowSummary, StepFinalize,
	}, ids)
	assert.Equal(t, StepFinalize, table.Terminal())

	// Every successor resolves or the step is the unique terminal step.
	for _, s := range table.Steps() {
		succ := s.Successors()
		if s.ID == table.Terminal() {
			assert.Empty(t, succ)
			continue
		}
		assert.NotEmpty(t, succ, "step %s has no successor", s.ID)
		for _, next := range succ {
			_, err := table.Step(next)
			assert.NoError(t, err, "step %s -> %s", s.ID, next)
		}
	}
}

func TestFlow_SeededStartSkipsPackageSelection(t *testing.T) {
	table := MustFlow()
	s, err := table.Step(StepStartContext)
	require.NoError(t, err)
	assert.Equal(t, StepMethodology, s.Next)

	msg := flow.ResolveMessage(s, domain.Draft{ProjectType: Professional})
	assert.Contains(t, msg, "interesse no pacote Site Profissional")
}

func TestFlow_StartMessagePersonalised(t *testing.T) {
	s, err := MustFlow().Step(StepStart)
	require.NoError(t, err)

	assert.Contains(t, flow.ResolveMessage(s, domain.Draft{}), "Como posso te chamar?")
	assert.Contains(t, flow.ResolveMessage(s, domain.Draft{Name: "Ana"}), "Olá novamente, Ana!")
}

func TestFlow_PackageMenuMessage(t *testing.T) {
	s, err := MustFlow().Step(StepSelectPackage)
	require.NoError(t, err)

	want := "Prazer, Ana! 🤝\n\n📦 ESCOLHA O PACOTE IDEAL\n\nQual solução se encaixa melhor no seu projeto?\n" +
		"\n🔸 Landing Page Express — Páginas de conversão rápidas (7-10 dias)" +
		"\n🔸 Site Profissional — Sites institucionais completos (15-20 dias)" +
		"\n🔸 Projeto Sob Medida — Soluções customizadas e complexas"
	assert.Equal(t, want, flow.ResolveMessage(s, domain.Draft{Name: "Ana"}))
}

func TestFlow_ReviewEntryIsNotNameInput(t *testing.T) {
	s, err := MustFlow().Step(Entries.Review)
	require.NoError(t, err)
	assert.Equal(t, domain.ModeSingleChoice, s.Mode)
	assert.Equal(t, domain.FieldProjectType, s.Answer)
}

func TestFeatures(t *testing.T) {
	tests := []struct {
		projectType string
		count       int
		has         string
	}{
		{LandingPage, 9, "Formulário de Captura"},
		{Professional, 11, "Seção Blog"},
		{Custom, 11, "Dashboards"},
		{"", 11, "Dashboards"},
	}

	for _, tt := range tests {
		t.Run(tt.projectType, func(t *testing.T) {
			opts := Features(tt.projectType)
			require.Len(t, opts, tt.count)
			assert.Equal(t, "Design Responsivo", opts[0].Value, "baseline comes first")

			var values []string
			for _, o := range opts {
				values = append(values, o.Value)
				assert.Empty(t, o.Next, "checklist options declare no edges")
			}
			assert.Contains(t, values, tt.has)
			assert.Contains(t, values, "Botão WhatsApp")
		})
	}

	assert.NotContains(t, Features(LandingPage), domain.Option{Label: "📰 Seção Blog/Notícias", Value: "Seção Blog"})
}

func TestLookupPackage(t *testing.T) {
	for _, key := range []string{"business", "Site Profissional", "site profissional", "  Site Profissional "} {
		p, ok := LookupPackage(key)
		require.True(t, ok, key)
		assert.Equal(t, Professional, p.Title)
	}

	p, ok := LookupPackage("Sob Medida")
	require.True(t, ok)
	assert.Equal(t, Custom, p.Title)

	_, ok = LookupPackage("Aplicativo")
	assert.False(t, ok)
	_, ok = LookupPackage("")
	assert.False(t, ok)

	assert.Len(t, Packages(), 3)
}

func TestSummary(t *testing.T) {
	d := domain.Draft{
		Name:            "Ana",
		ProjectType:     LandingPage,
		DesignStatus:    "Criação do Zero",
		Functionalities: []string{domain.DefaultFunctionality},
		Timeline:        "Urgente (7 dias)",
		BudgetRange:     "Até R$ 1.500",
		HasDomain:       domain.AnswerNo,
		HasHosting:      domain.AnswerYes,
	}

	got := Summary(d)
	for _, want := range []string{
		"• Nome: Ana",
		"• Público: Não especificado",
		"• Pacote: Landing Page Express",
		"• Básico",
		"• Prazo: Urgente (7 dias)",
		"• Budget: Até R$ 1.500",
		"• Domínio: ❌ Precisa adquirir",
		"• Hospedagem: ✅ Possui",
		"**sinal de 50%**",
	} {
		assert.Contains(t, got, want)
	}
	assert.NotContains(t, got, "OBSERVAÇÕES")
	assert.Equal(t, got, Summary(d), "summary is deterministic")

	d.Details = "Cores azul e branco"
	d.Functionalities = nil
	got = Summary(d)
	assert.Contains(t, got, "📝 OBSERVAÇÕES\nCores azul e branco\n")
	assert.Contains(t, got, "• Padrão do pacote")
}

func TestProcessSteps(t *testing.T) {
	steps := ProcessSteps()
	require.Len(t, steps, 4)
	assert.Equal(t, "Briefing & Conversa", steps[0].Title)

	steps[0].Checklist[0] = "changed"
	assert.NotEqual(t, "changed", ProcessSteps()[0].Checklist[0])

	card := ProcessCard()
	assert.Contains(t, card, "1. Briefing & Conversa")
	assert.Contains(t, card, "4. Entrega & Publicação")
}
