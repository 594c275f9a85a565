package scraper

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"

	"tebeosfera-scraper/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const issueListBody = `<div class="help-block">Números</div>
<div class="linea_resultados"><a href="/numeros/valerian_1978_grijalbo_1.html">VALERIAN (1978, GRIJALBO) 1 : LA CIUDAD DE LAS AGUAS TURBULENTAS</a></div>
<div class="linea_resultados"><a href="/numeros/valerian_1978_grijalbo_2.html">VALERIAN (1978, GRIJALBO) 2 : EL IMPERIO DE LOS MIL PLANETAS</a></div>`

// fakeDataFetcher answers data calls from a table keyed by endpoint
type fakeDataFetcher struct {
	responses map[string]*DataResponse
	errs      map[string]error
	calls     []string
	params    []url.Values
}

func (f *fakeDataFetcher) FetchViaDataCall(_ context.Context, endpoint string, params url.Values) (*DataResponse, error) {
	f.calls = append(f.calls, endpoint)
	f.params = append(f.params, params)
	if err := f.errs[endpoint]; err != nil {
		return nil, err
	}
	if resp, ok := f.responses[endpoint]; ok {
		return resp, nil
	}
	return nil, errors.New("not found")
}

func htmlResponse(body string) *DataResponse {
	return &DataResponse{ContentType: "text/html; charset=utf-8", Body: []byte(body)}
}

func newTestResolver(f DataFetcher) *EndpointResolver {
	return NewEndpointResolver(f, NewEndpointMemo(), config.DefaultEndpointConfig())
}

func TestAttempts_Order(t *testing.T) {
	r := newTestResolver(&fakeDataFetcher{})

	var names []string
	for _, a := range r.Attempts("valerian_1978_grijalbo", "4711") {
		names = append(names, a.Name)
	}
	assert.Equal(t, []string{AttemptIssuesByID, AttemptChildrenByID, AttemptListingByID, AttemptSlug, AttemptNameSearch}, names)

	names = nil
	for _, a := range r.Attempts("valerian_1978_grijalbo", "") {
		names = append(names, a.Name)
	}
	assert.Equal(t, []string{AttemptSlug, AttemptNameSearch}, names)

	search := r.Attempts("valerian_1978_grijalbo", "")[1]
	assert.Equal(t, "/buscador/valerian/", search.Endpoint)
	assert.Equal(t, "valerian_1978_grijalbo", search.FilterSlug)
}

func TestResolve_FirstValidAttemptWinsAndIsMemoized(t *testing.T) {
	f := &fakeDataFetcher{
		responses: map[string]*DataResponse{
			"/neko/xajax_ajax.php":                     htmlResponse("vacío"),
			"/colecciones/listado.php":                 htmlResponse(issueListBody),
			"/colecciones/valerian_1978_grijalbo.html": htmlResponse(issueListBody),
		},
	}
	memo := NewEndpointMemo()
	r := NewEndpointResolver(f, memo, config.DefaultEndpointConfig())

	body, ok := r.Resolve(context.Background(), "valerian_1978_grijalbo", "4711")
	require.True(t, ok)
	assert.Equal(t, issueListBody, body)
	assert.Equal(t, []string{"/neko/xajax_ajax.php", "/neko/xajax_ajax.php", "/colecciones/listado.php"}, f.calls)
	assert.Equal(t, "4711", f.params[0].Get("xjxargs[]"))

	winner, ok := memo.Get(OperationListIssues)
	require.True(t, ok)
	assert.Equal(t, AttemptListingByID, winner)

	// the memoized winner is tried first on the next call
	f.calls = nil
	_, ok = r.Resolve(context.Background(), "valerian_1978_grijalbo", "4711")
	require.True(t, ok)
	assert.Equal(t, []string{"/colecciones/listado.php"}, f.calls)

	assert.Equal(t, AttemptListingByID, r.Attempts("x", "1")[0].Name)
	memo.Reset()
	assert.Equal(t, AttemptIssuesByID, r.Attempts("x", "1")[0].Name)
}

func TestResolve_SkipsErrorsAndInvalidResponses(t *testing.T) {
	searchForm := `<html><body><form id="formulario_busqueda"><h2>Búsqueda avanzada</h2></form>` +
		strings.Repeat(" ", 300) + `</body></html>`

	tests := []struct {
		name string
		resp *DataResponse
	}{
		{name: "content type not allowed", resp: &DataResponse{ContentType: "application/json", Body: []byte(issueListBody)}},
		{name: "unparseable content type", resp: &DataResponse{ContentType: "", Body: []byte(issueListBody)}},
		{name: "short body", resp: htmlResponse("<div>nada</div>")},
		{name: "search form", resp: htmlResponse(searchForm)},
		{name: "broken gzip", resp: &DataResponse{ContentType: "text/html", ContentEncoding: "gzip", Body: []byte("no es gzip")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &fakeDataFetcher{
				responses: map[string]*DataResponse{"/colecciones/valerian_1978_grijalbo.html": tt.resp},
				errs:      map[string]error{"/buscador/valerian/": errors.New("timeout")},
			}
			memo := NewEndpointMemo()
			r := NewEndpointResolver(f, memo, config.DefaultEndpointConfig())

			body, ok := r.Resolve(context.Background(), "valerian_1978_grijalbo", "")
			assert.False(t, ok)
			assert.Empty(t, body)
			assert.Len(t, f.calls, 2)

			_, memoized := memo.Get(OperationListIssues)
			assert.False(t, memoized)
		})
	}
}

func TestResolve_GzipBody(t *testing.T) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write([]byte(issueListBody))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	// magic bytes are honored without an encoding header
	f := &fakeDataFetcher{responses: map[string]*DataResponse{
		"/colecciones/valerian_1978_grijalbo.html": {ContentType: "text/html", Body: buf.Bytes()},
	}}

	body, ok := newTestResolver(f).Resolve(context.Background(), "valerian_1978_grijalbo", "")
	require.True(t, ok)
	assert.Equal(t, issueListBody, body)
}

func TestResolve_UnwrapsCDATA(t *testing.T) {
	xml := `<?xml version="1.0" encoding="utf-8"?><xjx><cmd n="as" t="numeros" p="innerHTML"><![CDATA[` +
		issueListBody + `]]></cmd></xjx>`
	f := &fakeDataFetcher{responses: map[string]*DataResponse{
		"/neko/xajax_ajax.php": {ContentType: "text/xml; charset=utf-8", Body: []byte(xml)},
	}}

	body, ok := newTestResolver(f).Resolve(context.Background(), "valerian_1978_grijalbo", "4711")
	require.True(t, ok)
	assert.Equal(t, issueListBody+"\n", body)
}

func TestResolve_NameSearchFiltersBySlug(t *testing.T) {
	results := `<div class="help-block">Números</div>
<div class="linea_resultados"><a href="/numeros/valerian_1982_grijalbo_1.html">VALERIAN (1982, GRIJALBO) 1</a></div>
<div class="linea_resultados"><a href="/numeros/valerian_1978_grijalbo_1.html">VALERIAN (1978, GRIJALBO) 1</a></div>
<div class="linea_resultados"><a href="/numeros/valerian_1978_grijalbo_2.html">VALERIAN (1978, GRIJALBO) 2</a></div>`

	f := &fakeDataFetcher{responses: map[string]*DataResponse{"/buscador/valerian/": htmlResponse(results)}}
	body, ok := newTestResolver(f).Resolve(context.Background(), "valerian_1978_grijalbo", "")
	require.True(t, ok)

	stubs := NewSectionClassifier(testBaseURL).Classify(body)
	require.Len(t, stubs, 2)
	assert.Equal(t, "valerian_1978_grijalbo_1", stubs[0].Key)
	assert.Equal(t, "valerian_1978_grijalbo_2", stubs[1].Key)
}

func TestResolve_NameSearchWithoutMatchingRows(t *testing.T) {
	results := `<div class="help-block">Números</div>
<div class="linea_resultados"><a href="/numeros/valerian_1982_grijalbo_1.html">VALERIAN (1982, GRIJALBO) 1 : EL PAÍS SIN ESTRELLA Y OTRAS HISTORIAS</a></div>
<div class="linea_resultados"><a href="/numeros/valerian_1982_grijalbo_2.html">VALERIAN (1982, GRIJALBO) 2 : BIENVENIDOS A ALFLOLOL</a></div>`

	f := &fakeDataFetcher{responses: map[string]*DataResponse{"/buscador/valerian/": htmlResponse(results)}}
	_, ok := newTestResolver(f).Resolve(context.Background(), "valerian_1978_grijalbo", "")
	assert.False(t, ok)
}

func TestResolve_StopsOnCancelledContext(t *testing.T) {
	f := &fakeDataFetcher{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, ok := newTestResolver(f).Resolve(ctx, "valerian_1978_grijalbo", "4711")
	assert.False(t, ok)
	assert.Empty(t, f.calls)
}

func TestFindSeriesID(t *testing.T) {
	assert.Equal(t, "4711", FindSeriesID(`<script>var id_coleccion = "4711";</script>`))
	assert.Equal(t, "88", FindSeriesID(`<a onclick="xajax_muestraNumerosColeccion('88')">ver</a>`))
	assert.Empty(t, FindSeriesID(`<p>sin identificador</p>`))
}
