package scraper

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const (
	narrativeText = "Valerian y Laureline viajan a la Tierra del siglo XX para detener a Xombul, un científico que pretende dominar el tiempo. Una aventura clásica de la ciencia ficción europea."
	combinedText  = "Álbum en cartoné de 48 páginas a todo color. Esta historia narra el primer viaje de los agentes espaciotemporales, que descubren una Nueva York inundada y deben enfrentarse a un villano que quiere cambiar el pasado de la humanidad para siempre."
	plainText     = "Los dos agentes llegan a Galaxity y descubren que la capital del imperio terrestre ha desaparecido sin dejar rastro."
	secondText    = "Segunda parte del relato: el viaje continúa por planetas lejanos y ciudades sumergidas."
)

func TestSynopsis_CommentMarkerBeatsCombinedParagraph(t *testing.T) {
	r := NewSynopsisResolver()

	page := `<html><body>
<h1>VALERIAN</h1>
<p>Cartoné. 48 páginas.</p>
<p><strong>Comentario de la editorial:</strong></p>
<p>` + narrativeText + `</p>
<h3>Más información</h3>
<p>` + combinedText + `</p>
</body></html>`

	assert.Equal(t, "Cartoné. 48 páginas.\n\n"+narrativeText, r.Resolve(page))
}

func TestSynopsis_CombinedParagraph(t *testing.T) {
	r := NewSynopsisResolver()

	page := `<body><p>Cartoné.</p><p>` + combinedText + `</p></body>`
	assert.Equal(t, combinedText, r.Resolve(page))
}

func TestSynopsis_InformationMarkerFormats(t *testing.T) {
	r := NewSynopsisResolver()

	tests := []struct {
		name string
		page string
		want string
	}{
		{
			name: "emphasis",
			page: `<body><p><b>Información de la editorial.</b> ` + plainText + `</p><p>` + secondText + `</p></body>`,
			want: plainText + "\n\n" + secondText,
		},
		{
			name: "heading",
			page: `<body><h4>Información de la editorial</h4><p>` + plainText + `</p></body>`,
			want: plainText,
		},
		{
			name: "plain",
			page: `<body><p>Informacion de la editorial: ` + plainText + `</p></body>`,
			want: plainText,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Resolve(tt.page))
		})
	}
}

func TestSynopsis_PromotionAndPlotMarkers(t *testing.T) {
	r := NewSynopsisResolver()

	assert.Equal(t, plainText, r.Resolve(`<body><p>Texto promocional: `+plainText+`</p></body>`))
	assert.Equal(t, plainText, r.Resolve(`<body><p>Promoción editorial</p><p>`+plainText+`</p></body>`))
	assert.Equal(t, plainText, r.Resolve(`<body><p>Argumento: `+plainText+`</p></body>`))
	assert.Equal(t, plainText, r.Resolve(`<body><h2>Argumento</h2><p>`+plainText+`</p></body>`))
}

func TestSynopsis_StopsAtCrossReference(t *testing.T) {
	r := NewSynopsisResolver()

	page := `<body>
<p>Argumento:</p>
<p>` + plainText + `</p>
<p>` + secondText + `</p>
<div class="relacionados"><p>Otro número de la colección</p></div>
<p>Texto posterior que no forma parte del argumento.</p>
</body>`

	assert.Equal(t, plainText+"\n\n"+secondText, r.Resolve(page))
}

func TestSynopsis_StopsAtNextMarker(t *testing.T) {
	r := NewSynopsisResolver()

	page := `<body>
<p>Comentario de la editorial:</p>
<p>` + plainText + `</p>
<p>Argumento: esto ya es otra sección.</p>
</body>`

	assert.Equal(t, plainText, r.Resolve(page))
}

func TestSynopsis_PreservesLineBreaks(t *testing.T) {
	r := NewSynopsisResolver()

	page := `<body><p>Comentario de la editorial:</p><p>Primera línea del texto.<br>` + plainText + `</p></body>`
	assert.Equal(t, "Primera línea del texto.\n"+plainText, r.Resolve(page))
}

func TestSynopsis_BodyText(t *testing.T) {
	r := NewSynopsisResolver()

	page := `<body><div><p class="texto">` + plainText + `</p><p>` + secondText + `</p></div></body>`
	assert.Equal(t, plainText+"\n\n"+secondText, r.Resolve(page))
}

func TestSynopsis_BestParagraph(t *testing.T) {
	r := NewSynopsisResolver()

	page := `<body>
<p>ISBN 978-84, precio 12 euros, 48 páginas, formato álbum y más datos técnicos.</p>
<p>` + narrativeText + `</p>
</body>`

	assert.Equal(t, narrativeText, r.Resolve(page))
}

func TestSynopsis_NothingQualifies(t *testing.T) {
	r := NewSynopsisResolver()

	assert.Empty(t, r.Resolve(`<body><p>Corto.</p></body>`))
	assert.Empty(t, r.Resolve(`<body><p>Comentario de la editorial: breve.</p></body>`))
	assert.Empty(t, r.Resolve(""))
}

func TestScoreParagraph(t *testing.T) {
	metadata := ScoreParagraph("ISBN 978-84-253, precio 12 euros, 48 páginas")
	assert.True(t, metadata.Skip)
	assert.Equal(t, 3, metadata.MetadataHits)

	narrative := ScoreParagraph(narrativeText)
	assert.False(t, narrative.Skip)
	assert.Equal(t, 1, narrative.NarrativeHits)
	assert.Equal(t, len([]rune(narrativeText))+narrativeKeywordBonus, narrative.Score)

	quoted := ScoreParagraph("«Nadie vuelve de allí», dijo.")
	assert.True(t, quoted.HasQuotes)
	assert.Equal(t, quoted.Length+quoteBonus, quoted.Score)
}

func TestBestParagraph_FirstWinsTies(t *testing.T) {
	a := "Una aventura en el espacio profundo con dos agentes del tiempo perdidos."
	b := "Una aventura en el espacio infinito con dos agentes del tiempo perdidos."
	assert.Equal(t, len([]rune(a)), len([]rune(b)))
	assert.Equal(t, a, BestParagraph([]string{a, b}, 10))
	assert.Empty(t, BestParagraph([]string{a, b}, 200))
}
