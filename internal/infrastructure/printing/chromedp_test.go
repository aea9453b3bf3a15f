package printing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewChromedpRenderer_Defaults(t *testing.T) {
	r, err := NewChromedpRenderer(nil)
	require.NoError(t, err)
	defer r.Close()

	assert.Equal(t, defaultChromeTimeout, r.config.DefaultTimeout)
	assert.Equal(t, defaultScale, r.config.Scale)
	assert.NotNil(t, r.allocCtx)
}

func TestChromedpRenderer_RenderRejectsBadRequests(t *testing.T) {
	r, err := NewChromedpRenderer(&ChromedpConfig{})
	require.NoError(t, err)
	defer r.Close()

	tests := []struct {
		name string
		req  *RenderRequest
		code string
	}{
		{"nil request", nil, ErrCodeInvalidHTML},
		{"empty HTML", &RenderRequest{PaperSize: PaperA4}, ErrCodeInvalidHTML},
		{"whitespace HTML", &RenderRequest{HTML: " \n\t ", PaperSize: PaperA4}, ErrCodeInvalidHTML},
		{"no paper size", &RenderRequest{HTML: "<p>x</p>"}, ErrCodeInvalidPaperSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Render(context.Background(), tt.req)
			var renderErr *RenderError
			require.ErrorAs(t, err, &renderErr)
			assert.Equal(t, tt.code, renderErr.Code)
		})
	}
}

func TestBuildPrintParams_A4Portrait(t *testing.T) {
	r := &ChromedpRenderer{config: &ChromedpConfig{Scale: 1.0}}

	params := r.buildPrintParams(&RenderRequest{
		HTML:      "<html>test</html>",
		PaperSize: PaperA4,
		Margins:   DefaultMargins(),
	})

	assert.InDelta(t, 8.27, params.paperWidth, 0.01)
	assert.InDelta(t, 11.69, params.paperHeight, 0.01)
	assert.InDelta(t, mmToInches(14), params.marginLeft, 0.001)
	assert.False(t, params.landscape)
	assert.True(t, params.printBackground)
	assert.False(t, params.displayHeaderFooter)
}

func TestBuildPrintParams_Landscape(t *testing.T) {
	r := &ChromedpRenderer{config: &ChromedpConfig{Scale: 1.0}}
	params := r.buildPrintParams(&RenderRequest{PaperSize: PaperLetter, Landscape: true})
	assert.True(t, params.landscape)
	assert.InDelta(t, 8.5, params.paperWidth, 0.01)
}

func TestBuildPrintParams_FooterOnly(t *testing.T) {
	r := &ChromedpRenderer{config: &ChromedpConfig{Scale: 1.0}}

	params := r.buildPrintParams(&RenderRequest{
		PaperSize:  PaperA4,
		Margins:    Margins{Top: 2, Bottom: 2},
		FooterHTML: "<div>Página <span class=\"pageNumber\"></span></div>",
	})

	assert.True(t, params.displayHeaderFooter)
	assert.Contains(t, params.footerTemplate, "pageNumber")
	assert.Equal(t, "<span></span>", params.headerTemplate)
	assert.InDelta(t, mmToInches(minHeaderFooterMM), params.marginBottom, 0.001)
	assert.InDelta(t, mmToInches(2), params.marginTop, 0.001)
}

func TestBuildCompleteHTML(t *testing.T) {
	t.Run("wraps fragments", func(t *testing.T) {
		doc := buildCompleteHTML(&RenderRequest{HTML: "<p>hola</p>", Title: "Clientes & Co"})
		assert.Contains(t, doc, "<!DOCTYPE html>")
		assert.Contains(t, doc, `<meta charset="UTF-8">`)
		assert.Contains(t, doc, "<title>Clientes &amp; Co</title>")
		assert.Contains(t, doc, "<body><p>hola</p></body>")
	})

	t.Run("keeps full documents", func(t *testing.T) {
		full := "<!doctype html><html><body>x</body></html>"
		assert.Equal(t, full, buildCompleteHTML(&RenderRequest{HTML: full}))
	})
}

func TestEstimatePageCount(t *testing.T) {
	pdf := []byte("1 0 obj << /Type /Pages /Count 2 >> 2 0 obj << /Type /Page >> 3 0 obj << /Type /Page >>")
	assert.Equal(t, 2, estimatePageCount(pdf))
	assert.Equal(t, 1, estimatePageCount([]byte("%PDF-1.4")))
}

func TestRenderError(t *testing.T) {
	cause := context.DeadlineExceeded
	err := NewRenderError(ErrCodeRenderTimeout, "PDF rendering timed out", cause)
	assert.Equal(t, "PDF rendering timed out: context deadline exceeded", err.Error())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, "bare", NewRenderError(ErrCodeRenderFailed, "bare", nil).Error())
}

func TestPaperSizeByName(t *testing.T) {
	size, ok := PaperSizeByName("a4")
	assert.True(t, ok)
	assert.Equal(t, PaperA4, size)

	size, ok = PaperSizeByName(" Letter ")
	assert.True(t, ok)
	assert.Equal(t, PaperLetter, size)

	_, ok = PaperSizeByName("A3")
	assert.False(t, ok)
}
