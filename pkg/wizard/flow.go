package wizard

import (
	"fmt"
	"strings"

	"github.com/phdev/briefing/pkg/domain"
	"github.com/phdev/briefing/pkg/dsl"
	"github.com/phdev/briefing/pkg/flow"
)

// Step ids of the briefing flow.
const (
	StepStart             domain.StepID = "start"
	StepStartContext      domain.StepID = "start_context"
	StepWelcomeBack       domain.StepID = "welcome_back"
	StepSelectPackage     domain.StepID = "select_package"
	StepMethodology       domain.StepID = "methodology_intro"
	StepDefineAudience    domain.StepID = "define_audience"
	StepDesignApproach    domain.StepID = "design_approach"
	StepCollectReferences domain.StepID = "collect_references"
	StepSelectFeatures    domain.StepID = "select_features"
	StepDefineTimeline    domain.StepID = "define_timeline"
	StepCheckDomain       domain.StepID = "check_domain"
	StepCheckHosting      domain.StepID = "check_hosting"
	StepDefineBudget      domain.StepID = "define_budget"
	StepAdditionalDetails domain.StepID = "additional_details"
	StepShowSummary       domain.StepID = "show_summary"
	StepFinalize          domain.StepID = "finalize"
)

// Entries are the three ways into the briefing.
var Entries = flow.Entries{
	Cold:   StepStart,
	Seeded: StepStartContext,
	Review: StepWelcomeBack,
}

const namePlaceholder = "Digite seu nome completo"

// Answer size caps in bytes. Names are validated to 50 characters; links
// rarely exceed a few hundred bytes each.
const (
	nameInputLimit       = 256
	referencesInputLimit = 2048
)

// Flow builds the briefing conversation graph.
func Flow() (*flow.Table, error) {
	return builder().Build(Entries)
}

// MustFlow is like Flow but panics on an integrity error.
func MustFlow() *flow.Table {
	t, err := Flow()
	if err != nil {
		panic(err)
	}
	return t
}

func builder() *dsl.Builder {
	b := dsl.New()

	b.Add(StepStart).
		SayFunc(func(d domain.Draft) string {
			if d.Name != "" {
				return fmt.Sprintf("Olá novamente, %s! 👋\n\nVamos reiniciar o processo para ajustar o que você precisa.\n\nComo posso te ajudar desta vez?", d.Name)
			}
			return "👋 Olá! Seja bem-vindo(a)!\n\nSou o assistente virtual do PH Development.\n\nVou te guiar por um briefing rápido e inteligente para entender exatamente o que você precisa.\n\nComo posso te chamar?"
		}).
		Input(domain.FieldName).
		Placeholder(namePlaceholder).
		MaxLength(nameInputLimit).
		Validate(domain.ValidateName).
		Go(StepSelectPackage)

	b.Add(StepStartContext).
		SayFunc(func(d domain.Draft) string {
			return fmt.Sprintf("👋 Olá! Que bom ver você por aqui!\n\nVi que você demonstrou interesse no pacote %s.\n\nÓtima escolha! Vamos personalizar tudo para você.\n\nPrimeiro, qual é o seu nome?", d.ProjectType)
		}).
		Input(domain.FieldName).
		Placeholder(namePlaceholder).
		MaxLength(nameInputLimit).
		Validate(domain.ValidateName).
		Go(StepMethodology)

	b.Add(StepWelcomeBack).
		SayFunc(func(d domain.Draft) string {
			return fmt.Sprintf("Olá novamente, %s! 👋\n\nVamos reiniciar para ajustar o que você precisa.\n\nQual solução se encaixa melhor agora?", d.Name)
		}).
		Choice(domain.FieldProjectType, packageOptions(StepMethodology)...)

	b.Add(StepSelectPackage).
		SayFunc(func(d domain.Draft) string {
			var lines strings.Builder
			for _, p := range catalog {
				fmt.Fprintf(&lines, "\n🔸 %s — %s", p.Title, p.Summary)
			}
			return fmt.Sprintf("Prazer, %s! 🤝\n\n📦 ESCOLHA O PACOTE IDEAL\n\nQual solução se encaixa melhor no seu projeto?\n%s", d.Name, lines.String())
		}).
		Choice(domain.FieldProjectType, packageOptions(StepMethodology)...)

	b.Add(StepMethodology).
		Say("Ótima escolha! 🚀\n\nAntes de continuarmos com os detalhes, é importante que você conheça como eu trabalho.\n\nPrezo muito pela transparência e organização.").
		Info().
		Go(StepDefineAudience)

	b.Add(StepDefineAudience).
		Say("🎯 PÚBLICO-ALVO\n\nPara quem estamos criando esse projeto?\n\nIsso me ajuda a entender o tom, estilo e funcionalidades ideais.").
		Input(domain.FieldTargetAudience).
		Placeholder("Ex: Clientes finais, Empresas B2B, Pacientes de clínica...").
		Go(StepDesignApproach)

	b.Add(StepDesignApproach).
		Say("🎨 VISUAL & IDENTIDADE\n\nComo estamos em relação ao design do projeto?").
		Choice(domain.FieldDesignStatus,
			dsl.Opt("🔗 Tenho sites de referência", "Possui Referências", StepCollectReferences),
			dsl.Opt("✨ Preciso de criação completa", "Criação do Zero", StepSelectFeatures),
			dsl.Opt("📋 Ainda não defini", "Indefinido", StepSelectFeatures),
		)

	b.Add(StepCollectReferences).
		Say("🔗 REFERÊNCIAS VISUAIS\n\nPerfeito! Cole aqui os links dos sites que você gostou.\n\nPode ser pelo design, cores, layout ou funcionalidades.").
		Input(domain.FieldReferenceLinks).
		MaxLength(referencesInputLimit).
		Placeholder("https://exemplo1.com, https://exemplo2.com").
		Validate(domain.ValidateURLs).
		Go(StepSelectFeatures)

	b.Add(StepSelectFeatures).
		Say("⚙️ FUNCIONALIDADES ESSENCIAIS\n\nSelecione tudo que é fundamental para o sucesso do projeto:\n\nEscolha quantas quiser. As opções variam de acordo com o pacote selecionado.").
		Checklist(domain.FieldFunctionalities, func(d domain.Draft) []domain.Option {
			return Features(d.ProjectType)
		}).
		Go(StepDefineTimeline)

	b.Add(StepDefineTimeline).
		Say("⏰ PRAZO DE ENTREGA\n\nQuando você precisa do projeto finalizado?").
		Choice(domain.FieldTimeline,
			dsl.Opt("🔥 Urgente (7 dias)", "Urgente (7 dias)", StepCheckDomain),
			dsl.Opt("📅 Normal (15-20 dias)", "Normal (15-20 dias)", StepCheckDomain),
			dsl.Opt("⏳ Flexível (sem pressa)", "Flexível", StepCheckDomain),
		)

	b.Add(StepCheckDomain).
		Say("🌐 DOMÍNIO\n\nVocê já possui um domínio registrado?\n\n(Ex: seusite.com.br)").
		Choice(domain.FieldHasDomain,
			dsl.Opt("✅ Sim, já tenho", domain.AnswerYes, StepCheckHosting),
			dsl.Opt("❌ Não, vou precisar de um", domain.AnswerNo, StepCheckHosting),
		)

	b.Add(StepCheckHosting).
		Say("🖥️ HOSPEDAGEM\n\nE quanto à hospedagem (servidor)?\n\nObs: Entrego o código pronto, mas posso orientar sobre hospedagem.").
		Choice(domain.FieldHasHosting,
			dsl.Opt("✅ Já tenho", domain.AnswerYes, StepDefineBudget),
			dsl.Opt("❌ Vou precisar contratar", domain.AnswerNo, StepDefineBudget),
		)

	b.Add(StepDefineBudget).
		Say("💰 INVESTIMENTO\n\nQual sua expectativa de investimento para este projeto?\n\nIsso me ajuda a criar uma proposta adequada ao seu orçamento.").
		Choice(domain.FieldBudgetRange,
			dsl.Opt("Até R$ 1.500", "Até R$ 1.500", StepAdditionalDetails),
			dsl.Opt("R$ 1.500 - R$ 3.000", "R$ 1.500 - R$ 3.000", StepAdditionalDetails),
			dsl.Opt("R$ 3.000 - R$ 6.000", "R$ 3.000 - R$ 6.000", StepAdditionalDetails),
			dsl.Opt("Acima de R$ 6.000", "Acima de R$ 6.000", StepAdditionalDetails),
			dsl.Opt("Prefiro discutir", "A definir", StepAdditionalDetails),
		)

	b.Add(StepAdditionalDetails).
		Say("📝 INFORMAÇÕES EXTRAS (Opcional)\n\nTem algum detalhe importante que não perguntei?\n\nExemplos: Cores da marca, concorrentes, funcionalidades específicas, etc.\n\nDeixe em branco se não houver nada a acrescentar.").
		Input(domain.FieldDetails).
		Placeholder("Ex: Preciso integrar com..., Gosto do estilo...").
		Optional().
		Go(StepShowSummary)

	b.Add(StepShowSummary).
		SayFunc(Summary).
		Summary(
			dsl.Control("✅ Sim, enviar para WhatsApp", domain.ControlFinish),
			dsl.Control("🔄 Revisar / Corrigir algo", domain.ControlReview),
		).
		Go(StepFinalize)

	b.Add(StepFinalize).
		Say("🎉 Perfeito!\n\nVocê será redirecionado para o WhatsApp em instantes.\n\nLá eu envio:\n• Proposta comercial detalhada\n• Formas de pagamento do sinal\n• Próximos passos do projeto\n\nAté já, e obrigado pela confiança! 🚀").
		Terminal()

	return b
}

const summaryDivider = "━━━━━━━━━━━━━━━━"

// Summary renders the review text of the summary step.
func Summary(d domain.Draft) string {
	var b strings.Builder

	fmt.Fprintf(&b, "📋 RESUMO DO SEU PROJETO\n%s\n\n", summaryDivider)

	b.WriteString("👤 CLIENTE\n")
	fmt.Fprintf(&b, "• Nome: %s\n", d.Name)
	fmt.Fprintf(&b, "• Público: %s\n\n", orDefault(d.TargetAudience, "Não especificado"))

	b.WriteString("💼 PROJETO\n")
	fmt.Fprintf(&b, "• Pacote: %s\n", d.ProjectType)
	fmt.Fprintf(&b, "• Design: %s\n", d.DesignStatus)
	fmt.Fprintf(&b, "• Prazo: %s\n", d.Timeline)
	fmt.Fprintf(&b, "• Budget: %s\n\n", d.BudgetRange)

	b.WriteString("⚙️ FUNCIONALIDADES\n")
	if len(d.Functionalities) > 0 {
		for _, f := range d.Functionalities {
			fmt.Fprintf(&b, "• %s\n", f)
		}
	} else {
		b.WriteString("• Padrão do pacote\n")
	}
	b.WriteString("\n")

	b.WriteString("🌐 INFRAESTRUTURA\n")
	fmt.Fprintf(&b, "• Domínio: %s\n", yesNo(d.HasDomain, "✅ Possui", "❌ Precisa adquirir"))
	fmt.Fprintf(&b, "• Hospedagem: %s\n", yesNo(d.HasHosting, "✅ Possui", "❌ Precisa contratar"))

	if strings.TrimSpace(d.Details) != "" {
		b.WriteString("\n📝 OBSERVAÇÕES\n")
		fmt.Fprintf(&b, "%s\n", d.Details)
	}

	fmt.Fprintf(&b, "\n%s\n", summaryDivider)
	b.WriteString("\n⚠️ Importante: Para garantir a reserva da data e início do desenvolvimento, trabalhamos com um **sinal de 50%**. O restante é pago apenas na entrega.\n\n")
	b.WriteString("Está tudo correto?")

	return b.String()
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func yesNo(answer, yes, no string) string {
	if answer == domain.AnswerYes {
		return yes
	}
	return no
}
