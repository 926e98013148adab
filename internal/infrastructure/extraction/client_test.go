package extraction

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockpro/internal/core/apperror"
)

const sampleExtract = `{
	"fornecedor": {"nome": "LOIA FOODS", "cnpj": "11222333000181"},
	"notaFiscal": {"numero": "12345", "pesoLiquido": "120.5", "pesoBruto": "130.0"},
	"produtos": [
		{"code": "PC-20", "name": "Potato Chips 20X300Gr", "quantity": 10, "costPrice": "5.00"}
	]
}`

func TestExtractSendsSecretAndDecodesSingleObject(t *testing.T) {
	var gotSecret, gotContentType string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSecret = r.Header.Get(secretHeader)
		gotContentType = r.Header.Get("Content-Type")

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "nota.xml", header.Filename)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(sampleExtract))
	}))
	defer server.Close()

	client := NewClient(Config{URL: server.URL, SharedSecret: "s3cret"})
	extracts, err := client.Extract(context.Background(), "nota.xml", strings.NewReader("<nfe/>"))
	require.NoError(t, err)

	assert.Equal(t, "s3cret", gotSecret)
	assert.Contains(t, gotContentType, "multipart/form-data")
	require.Len(t, extracts, 1)
	assert.Equal(t, "LOIA FOODS", extracts[0].Fornecedor.Nome)
	assert.Equal(t, "12345", extracts[0].NotaFiscal.Numero)
	require.Len(t, extracts[0].Produtos, 1)
	assert.Equal(t, "PC-20", extracts[0].Produtos[0].Code)
}

func TestExtractDecodesList(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte("[" + sampleExtract + "," + sampleExtract + "]"))
	}))
	defer server.Close()

	client := NewClient(Config{URL: server.URL, SharedSecret: "s3cret"})
	extracts, err := client.Extract(context.Background(), "planilha.xlsx", strings.NewReader("data"))
	require.NoError(t, err)
	assert.Len(t, extracts, 2)
}

func TestExtractSurfacesBackendErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"error": "arquivo não é uma NF-e válida"}`))
	}))
	defer server.Close()

	client := NewClient(Config{URL: server.URL, SharedSecret: "s3cret"})
	_, err := client.Extract(context.Background(), "nota.xml", strings.NewReader("junk"))
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Contains(t, appErr.Message, "NF-e")
}

func TestExtractRequiresConfiguredURL(t *testing.T) {
	client := NewClient(Config{})
	_, err := client.Extract(context.Background(), "nota.xml", strings.NewReader("<nfe/>"))
	require.Error(t, err)
}
