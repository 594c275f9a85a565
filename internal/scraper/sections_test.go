package scraper

import (
	"testing"

	"tebeosfera-scraper/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testBaseURL = "https://www.tebeosfera.com"

const searchResultsPage = `<html><body>
<div class="linea_resultados"><a href="/numeros/huerfano_1.html">FUERA DE SECCIÓN</a></div>

<div class="help-block">Colecciones</div>
<div class="linea_resultados">
  <a href="/colecciones/valerian_1978_grijalbo.html"><img src="/T3_colecciones/valerian.jpg"></a>
  <a href="/colecciones/valerian_1978_grijalbo.html">VALERIAN (1978, GRIJALBO)</a>
</div>
<div class="linea_resultados">
  <a href="/colecciones/valerian_1982_grijalbo.html">VALERIAN (1982, GRIJALBO)</a>
</div>

<div class="help-block">Sagas</div>
<div class="linea_resultados"><a href="/sagas/valerian_y_laureline.html">VALERIAN Y LAURELINE</a></div>

<div class="help-block">Números</div>
<div class="linea_resultados">
  <a href="/T3_numeros/grandes/valerian_1.jpg"><img src="/T3_numeros/valerian_1.jpg"></a>
  <a href="/numeros/valerian_1978_grijalbo_1.html">VALERIAN (1978, GRIJALBO) 1 : LA CIUDAD DE LAS AGUAS TURBULENTAS</a>
</div>
<div class="linea_resultados"><a href="/numeros/valerian_1978_grijalbo_2.html">VALERIAN (1978, GRIJALBO) 2 : EL IMPERIO DE LOS MIL PLANETAS</a></div>
<div class="linea_resultados"><a href="/numeros/valerian_1978_grijalbo_3.html">VALERIAN (1978, GRIJALBO) 3</a></div>

<div class="help-block">Autores</div>
<div class="linea_resultados"><a href="/autores/mezieres_jean-claude.html">MÉZIÈRES, JEAN-CLAUDE</a></div>
<div class="linea_resultados"><a href="/numeros/no_deberia_salir.html">NO DEBERÍA SALIR</a></div>
</body></html>`

func TestClassify_Sections(t *testing.T) {
	c := NewSectionClassifier(testBaseURL)

	stubs := c.Classify(searchResultsPage)
	require.Len(t, stubs, 6)

	kinds := make(map[models.Kind]int)
	for _, s := range stubs {
		kinds[s.Kind]++
		assert.NotEmpty(t, s.Key)
	}
	assert.Equal(t, 2, kinds[models.KindSeries])
	assert.Equal(t, 1, kinds[models.KindSaga])
	assert.Equal(t, 3, kinds[models.KindIssue])

	series := stubs[0]
	assert.Equal(t, models.KindSeries, series.Kind)
	assert.Equal(t, "valerian_1978_grijalbo", series.Key)
	assert.Equal(t, "VALERIAN (1978, GRIJALBO)", series.DisplayTitle)
	assert.Equal(t, "https://www.tebeosfera.com/colecciones/valerian_1978_grijalbo.html", series.URL)
	assert.Equal(t, "https://www.tebeosfera.com/T3_colecciones/valerian.jpg", series.ThumbnailURL)
	assert.Empty(t, series.FullImageURL)

	saga := stubs[2]
	assert.Equal(t, models.KindSaga, saga.Kind)
	assert.Equal(t, "valerian_y_laureline", saga.Key)

	issue := stubs[3]
	assert.Equal(t, models.KindIssue, issue.Kind)
	assert.Equal(t, "valerian_1978_grijalbo_1", issue.Key)
	assert.Equal(t, "VALERIAN", issue.DerivedSeriesName)
	assert.Equal(t, "LA CIUDAD DE LAS AGUAS TURBULENTAS", issue.DerivedIssueTitle)
	assert.Equal(t, "https://www.tebeosfera.com/T3_numeros/valerian_1.jpg", issue.ThumbnailURL)
	assert.Equal(t, "https://www.tebeosfera.com/T3_numeros/grandes/valerian_1.jpg", issue.FullImageURL)

	last := stubs[5]
	assert.Equal(t, "VALERIAN", last.DerivedSeriesName)
	assert.Empty(t, last.DerivedIssueTitle)

	for _, s := range stubs {
		assert.NotEqual(t, "huerfano_1", s.Key, "rows before the first header are dropped")
		assert.NotEqual(t, "no_deberia_salir", s.Key, "author section rows are skipped")
	}
}

func TestClassify_NoHeaders(t *testing.T) {
	c := NewSectionClassifier(testBaseURL)

	page := `<div class="linea_resultados"><a href="/numeros/mortadelo_1.html">MORTADELO (1970) 1</a></div>
<div class="linea_resultados"><a href="/colecciones/mortadelo_1970.html">MORTADELO (1970)</a></div>`

	stubs := c.Classify(page)
	require.Len(t, stubs, 2)
	assert.Equal(t, models.KindIssue, stubs[0].Kind)
	assert.Equal(t, "MORTADELO", stubs[0].DerivedSeriesName)
	// the link decides when the default section kind does not match
	assert.Equal(t, models.KindSeries, stubs[1].Kind)
}

func TestClassify_NestedRowsCountOnce(t *testing.T) {
	c := NewSectionClassifier(testBaseURL)

	page := `<div class="help-block">Números</div>
<div class="linea_resultados">
  <a href="/numeros/thorgal_1.html">THORGAL (1977, ROSINSKI) 1</a>
  <div class="linea_resultados"><a href="/numeros/thorgal_2.html">THORGAL (1977, ROSINSKI) 2</a></div>
</div>`

	stubs := c.Classify(page)
	require.Len(t, stubs, 1)
	assert.Equal(t, "thorgal_1", stubs[0].Key)
}

func TestClassify_RowWithoutUsableLink(t *testing.T) {
	c := NewSectionClassifier(testBaseURL)

	page := `<div class="help-block">Números</div>
<div class="linea_resultados"><a href="/numeros/sin_texto.html"><img src="/x.jpg"></a></div>
<div class="linea_resultados"><span>sin enlace</span></div>`

	assert.Empty(t, c.Classify(page))
}

func TestClassify_FlatLinks(t *testing.T) {
	c := NewSectionClassifier(testBaseURL)

	page := `<ul>
  <li><a href="/numeros/tintin_1.html">TINTÍN (1958, JUVENTUD) 1 : TINTÍN EN EL CONGO</a></li>
  <li><a href="/numeros/tintin_1.html">TINTÍN (1958, JUVENTUD) 1 : TINTÍN EN EL CONGO</a></li>
  <li><a href="/sagas/tintin.html">TINTÍN</a></li>
  <li><a href="/autores/herge.html">HERGÉ</a></li>
</ul>`

	stubs := c.Classify(page)
	require.Len(t, stubs, 2)
	assert.Equal(t, models.KindIssue, stubs[0].Kind)
	assert.Equal(t, "TINTÍN EN EL CONGO", stubs[0].DerivedIssueTitle)
	assert.Equal(t, models.KindSaga, stubs[1].Kind)
}

func TestClassifyHeader(t *testing.T) {
	assert.Equal(t, models.KindSeries, classifyHeader("Colecciones (2)").kind)
	assert.Equal(t, models.KindSaga, classifyHeader("SAGAS").kind)
	assert.Equal(t, models.KindIssue, classifyHeader("Números").kind)
	assert.True(t, classifyHeader("Autores").skip)
	assert.Equal(t, models.KindIssue, classifyHeader("Otros").kind)
}
