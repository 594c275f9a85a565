// Package scraper provides constants used throughout the scraping functionality.
package scraper

// Search results page selectors
const (
	SectionHeaderSelector = "div[class*='help-block']"
	ResultRowSelector     = "div.linea_resultados"
	EntityLinkSelector    = "a[href*='/numeros/'], a[href*='/colecciones/'], a[href*='/sagas/']"
)

// Issue page selectors
const (
	TitleBlockSelector    = "#titulo_ficha .titulo"
	TitleFallbackSelector = ".titulo"
	CollectionLinkSel     = "a[href*='/colecciones/']"
	PublisherLinkSel      = "a[href*='/entidades/']"
	LabeledRowSelector    = "div.row-fluid"
	RowLabelSelector      = "[class*='etiqueta']"
	RowValueSelector      = ".dato"
	AuthorRoleSelector    = "span.tab_subtitulo"
	GenreSelector         = "div.tab-pane#tab1 a"
	CharacterSelector     = "div.tab-pane#tab2 a, a[href*='/personajes/']"
	StoryArcSelector      = "a[href*='/sagas/']"
	CoverImageSelector    = "img#img_principal"
	GallerySrcFragment    = "T3_numeros"
	BodyTextSelector      = "p.texto"
	CrossRefSelector      = "[class*='relacion'], [class*='referencia'], [class*='ver_tambien']"
)

// Text processing constants
const (
	DoubleNewline = "\n\n"
	SingleNewline = "\n"
	SingleSpace   = " "
)

// Browser configuration
const (
	DefaultWindowWidth  = 1366
	DefaultWindowHeight = 900
)

// Synopsis length thresholds
const (
	MinMarkerSynopsisLen   = 100
	MinParagraphSynopsis   = 50
	MinCombinedParagraph   = 200
	ProductionWindow       = 200
	MaxProductionPrefixLen = 400
	MaxAuthorsPerRole      = 5
)

// OperationListIssues is the memo key for series issue listings
const OperationListIssues = "list_issues"

// Keyword families used by the synopsis heuristics
var (
	ProductionKeywords = []string{
		"páginas", "paginas", "encuadernación", "encuadernacion", "cartoné", "cartone",
		"rústica", "rustica", "tapa dura", "traducción", "traduccion", "formato",
	}
	ColophonKeywords = []string{
		"papel", "impres", "imprim", "sostenib", "fsc", "gestión forestal",
	}
	NarrativeKeywords = []string{
		"historia", "personaje", "aventura", "narra", "cuenta", "viaje", "muerte", "vida",
	}
	MetadataKeywords = []string{
		"isbn", "depósito", "deposito", "precio", "páginas", "paginas", "formato",
		"tamaño", "tamano", "color", "lengua",
	}
	QuoteMarks = []string{"\"", "“", "”", "«", "»"}
)
