package studio

import "github.com/jvesely/portfolio/internal/content"

// Field describes one editable field of a document type.
type Field struct {
	Name        string   `json:"name"`
	Title       string   `json:"title"`
	Type        string   `json:"type"`
	Required    bool     `json:"required,omitempty"`
	Min         int      `json:"min,omitempty"`
	Max         int      `json:"max,omitempty"`
	Options     []string `json:"options,omitempty"`
	Description string   `json:"description,omitempty"`
}

// Schema describes a document type for authoring clients.
type Schema struct {
	Name   content.DocType `json:"name"`
	Title  string          `json:"title"`
	Fields []Field         `json:"fields"`
}

var orderField = Field{Name: "order", Title: "Pořadí", Type: "number", Description: "Nižší číslo = zobrazí se výše v seznamu"}

// Schemas lists the authoring schema of every document type.
var Schemas = []Schema{
	{
		Name:  content.TypeProject,
		Title: "Projekt",
		Fields: []Field{
			{Name: "title", Title: "Název projektu", Type: "string", Required: true, Min: content.MinTitleLength, Max: content.MaxTitleLength},
			{Name: "slug", Title: "Slug", Type: "slug", Required: true, Max: content.MaxSlugLength, Description: "Vygeneruje se z názvu, pokud chybí"},
			{Name: "short_description", Title: "Stručný popis", Type: "string", Max: content.MaxShortDescription},
			{Name: "description", Title: "Hlavní text – úvodní popis", Type: "markdown"},
			{Name: "main_image", Title: "Hlavní obrázek", Type: "image"},
			{Name: "url", Title: "URL projektu", Type: "url"},
			{Name: "goal", Title: "Cíl projektu", Type: "markdown"},
			{Name: "workflow", Title: "Proces / Workflow", Type: "array<string>"},
			{Name: "results", Title: "Výsledky projektu", Type: "markdown"},
			{Name: "features", Title: "Co jsem vytvořil / přínosy", Type: "array<string>"},
			{Name: "gallery", Title: "Obrázková galerie", Type: "array<image>"},
			{Name: "client", Title: "Klient", Type: "string"},
			{Name: "year", Title: "Rok projektu", Type: "number"},
			orderField,
		},
	},
	{
		Name:  content.TypeService,
		Title: "Služba",
		Fields: []Field{
			{Name: "title", Title: "Název služby", Type: "string", Required: true, Min: content.MinTitleLength, Max: content.MaxTitleLength},
			{Name: "short_description", Title: "Krátký popis", Type: "string", Max: content.MaxShortDescription},
			{Name: "description", Title: "Detailní popis", Type: "markdown"},
			{Name: "icon", Title: "Ikona (emoji nebo název ikony)", Type: "string"},
			orderField,
		},
	},
	{
		Name:  content.TypeTestimonial,
		Title: "Reference",
		Fields: []Field{
			{Name: "name", Title: "Jméno", Type: "string", Required: true, Max: content.MaxNameLength},
			{Name: "company", Title: "Firma", Type: "string"},
			{Name: "role", Title: "Pozice", Type: "string"},
			{Name: "quote", Title: "Text doporučení", Type: "text", Required: true, Min: content.MinQuoteLength, Max: content.MaxQuoteLength},
			{Name: "avatar", Title: "Fotka / avatar", Type: "image"},
			orderField,
		},
	},
	{
		Name:  content.TypeSkill,
		Title: "Technologie / Skill",
		Fields: []Field{
			{Name: "name", Title: "Název technologie", Type: "string", Required: true, Min: content.MinSkillNameLength, Max: content.MaxSkillNameLength},
			{Name: "emoji", Title: "Emoji", Type: "string", Max: content.MaxSkillEmojiLength},
			{Name: "level", Title: "Úroveň", Type: "string", Options: []string{
				string(content.LevelBeginner), string(content.LevelIntermediate),
				string(content.LevelAdvanced), string(content.LevelExpert),
			}},
			orderField,
		},
	},
}
