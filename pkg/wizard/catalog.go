package wizard

import (
	"fmt"
	"slices"
	"strings"

	"github.com/phdev/briefing/pkg/domain"
)

// Package titles as stored in the record.
const (
	LandingPage  = "Landing Page Express"
	Professional = "Site Profissional"
	Custom       = "Projeto Sob Medida"
)

// Package is one service package a visitor can hire.
type Package struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Label    string   `json:"label"`
	Summary  string   `json:"summary"`
	Price    string   `json:"price"`
	Aliases  []string `json:"aliases,omitempty"`
	features []domain.Option
}

var baseFeatures = []domain.Option{
	{Label: "📱 Design Responsivo (Mobile/Tablet/Desktop)", Value: "Design Responsivo"},
	{Label: "⚡ Performance Otimizada", Value: "Performance Otimizada"},
	{Label: "🔍 SEO Básico", Value: "SEO Básico"},
	{Label: "💬 Botão WhatsApp", Value: "Botão WhatsApp"},
}

var catalog = []Package{
	{
		ID:      "essential",
		Title:   LandingPage,
		Label:   "🚀 Landing Page Express",
		Summary: "Páginas de conversão rápidas (7-10 dias)",
		Price:   "A partir de R$ 900",
		features: []domain.Option{
			{Label: "📝 Formulário de Captura", Value: "Formulário de Captura"},
			{Label: "🖼️ Galeria de Imagens", Value: "Galeria de Imagens"},
			{Label: "📍 Google Maps", Value: "Google Maps"},
			{Label: "🌙 Modo Escuro", Value: "Modo Escuro"},
			{Label: "🎬 Vídeos Integrados", Value: "Vídeos Integrados"},
		},
	},
	{
		ID:      "business",
		Title:   Professional,
		Label:   "💼 Site Profissional",
		Summary: "Sites institucionais completos (15-20 dias)",
		Price:   "A partir de R$ 1.800",
		features: []domain.Option{
			{Label: "📄 Múltiplas Páginas", Value: "Múltiplas Páginas"},
			{Label: "📮 Formulário de Contato", Value: "Formulário de Contato"},
			{Label: "📰 Seção Blog/Notícias", Value: "Seção Blog"},
			{Label: "🖼️ Portfólio/Galeria", Value: "Portfólio"},
			{Label: "📱 Feed Instagram", Value: "Feed Instagram"},
			{Label: "🌙 Modo Escuro", Value: "Modo Escuro"},
			{Label: "💬 Chat Widget", Value: "Chat Widget"},
		},
	},
	{
		ID:      "custom",
		Title:   Custom,
		Label:   "🛠️ Projeto Sob Medida",
		Summary: "Soluções customizadas e complexas",
		Price:   "A Combinar",
		Aliases: []string{"Sob Medida"},
		features: []domain.Option{
			{Label: "📊 Dashboards Interativos", Value: "Dashboards"},
			{Label: "🛍️ Interface E-commerce", Value: "Interface E-commerce"},
			{Label: "🔍 Sistema de Busca", Value: "Sistema de Busca"},
			{Label: "🎯 Filtros Avançados", Value: "Filtros Avançados"},
			{Label: "💬 Modais & Popups", Value: "Modais Personalizados"},
			{Label: "🌙 Modo Escuro", Value: "Modo Escuro"},
			{Label: "🔐 Área de Membros (UI)", Value: "Área de Membros"},
		},
	},
}

// Packages returns the service catalog.
func Packages() []Package {
	out := make([]Package, len(catalog))
	for i, p := range catalog {
		p.Aliases = slices.Clone(p.Aliases)
		p.features = slices.Clone(p.features)
		out[i] = p
	}
	return out
}

// LookupPackage finds a package by catalog id, title or alias, ignoring case.
func LookupPackage(key string) (Package, bool) {
	key = strings.TrimSpace(key)
	if key == "" {
		return Package{}, false
	}
	for _, p := range catalog {
		if strings.EqualFold(p.ID, key) || strings.EqualFold(p.Title, key) {
			return p, true
		}
		for _, alias := range p.Aliases {
			if strings.EqualFold(alias, key) {
				return p, true
			}
		}
	}
	return Package{}, false
}

// ResolvePackage maps a package reference to the title stored in the
// record. It fits the engine's seed resolver.
func ResolvePackage(ref string) (string, bool) {
	p, ok := LookupPackage(ref)
	return p.Title, ok
}

// Features returns the checklist for a package title: the shared baseline
// followed by the package's own items. Unknown titles get the custom set.
func Features(projectType string) []domain.Option {
	pkg, ok := LookupPackage(projectType)
	if !ok {
		pkg = catalog[len(catalog)-1]
	}
	out := make([]domain.Option, 0, len(baseFeatures)+len(pkg.features))
	out = append(out, baseFeatures...)
	return append(out, pkg.features...)
}

func packageOptions(next domain.StepID) []domain.Option {
	out := make([]domain.Option, len(catalog))
	for i, p := range catalog {
		out[i] = domain.Option{Label: p.Label, Value: p.Title, Next: next}
	}
	return out
}

// ProcessStep is one stage of the working methodology shown in the info card.
type ProcessStep struct {
	Number      int      `json:"number"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Checklist   []string `json:"checklist"`
}

var process = []ProcessStep{
	{
		Number:      1,
		Title:       "Briefing & Conversa",
		Description: "Vou entender o que você precisa e quais são seus gostos.",
		Checklist: []string{
			"Reunião rápida ou conversa por chat",
			"Envio de referências (sites que você gosta)",
			"Definição do conteúdo (textos/fotos)",
			"Acordo de prazos e valores",
		},
	},
	{
		Number:      2,
		Title:       "Estrutura Visual",
		Description: `Definimos a "cara" do site antes de codificar.`,
		Checklist: []string{
			"Criação baseada nas suas referências",
			"Definição de cores e tipografia",
			"Aprovação do layout básico",
			"Organização do conteúdo",
		},
	},
	{
		Number:      3,
		Title:       "Codificação",
		Description: "Mão na massa! Transformo o visual em site real.",
		Checklist: []string{
			"Criação das páginas em React",
			"Adaptação para celular (Responsivo)",
			"Configuração do arquivo de edição de textos",
			"Otimização para carregar rápido",
		},
	},
	{
		Number:      4,
		Title:       "Entrega & Publicação",
		Description: "Seu site no ar, pronto para receber visitas.",
		Checklist: []string{
			"Testes finais em celular e computador",
			"Configuração do seu domínio (.com.br)",
			"Entrega dos arquivos do projeto",
			"Tutorial de como editar os textos",
		},
	},
}

// ProcessSteps returns the methodology stages.
func ProcessSteps() []ProcessStep {
	out := make([]ProcessStep, len(process))
	for i, p := range process {
		p.Checklist = slices.Clone(p.Checklist)
		out[i] = p
	}
	return out
}

// ProcessCard renders the methodology as plain text for the process-card turn.
func ProcessCard() string {
	var b strings.Builder
	b.WriteString("METODOLOGIA PH.DEV\n")
	for _, p := range process {
		fmt.Fprintf(&b, "\n%d. %s\n   %s", p.Number, p.Title, p.Description)
	}
	return b.String()
}
