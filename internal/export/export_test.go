package export

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveAnswer(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	now := time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC)

	answer := "Miau\nRecuerdo algunos episodios relacionados:\n- [S01E02] Sandy's Rocket — Gary finds Sandy's old rocket."
	mdPath, htmlPath, err := SaveAnswer(dir, `Gary: "el caracol"`, "¿Qué comes?", answer, now)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "Gary_ _el caracol__respuesta_20240309_140507.md"), mdPath)
	assert.Equal(t, filepath.Join(dir, "Gary_ _el caracol__respuesta_20240309_140507.html"), htmlPath)

	md, err := os.ReadFile(mdPath)
	require.NoError(t, err)
	assert.Contains(t, string(md), "Fecha/Hora: 2024-03-09T14:05:07")
	assert.Contains(t, string(md), "## Pregunta\n\n¿Qué comes?")

	page, err := os.ReadFile(htmlPath)
	require.NoError(t, err)
	assert.Contains(t, string(page), "<h2>Respuesta</h2>")
	assert.Contains(t, string(page), "<li>[S01E02] Sandy's Rocket")
	assert.Contains(t, string(page), "<title>Respuesta de Gary: &#34;el caracol&#34;</title>")
}

func TestDocumentBaseName(t *testing.T) {
	doc := Document{Character: "a/b\\c", CreatedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)}
	assert.Equal(t, "a_b_c_respuesta_20240102_030405", doc.BaseName())
}
