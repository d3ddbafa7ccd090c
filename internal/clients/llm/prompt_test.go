package llm

import (
	"strings"
	"testing"

	"TikTokFactCheck/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestBuildPrompt_EmptyTranscriptNoMetadata(t *testing.T) {
	p := BuildPrompt("", nil)
	assert.True(t, strings.HasPrefix(p, "Tu es un expert en analyse de contenu"))
	assert.Contains(t, p, "TEXTE À ANALYSER:\n\n\nEffectue une analyse complète")
	assert.True(t, strings.HasSuffix(p, "structure ta réponse de manière claire."))
	assert.NotContains(t, p, "MÉTADONNÉES VIDÉO")
	assert.NotContains(t, p, "{transcription}")
}

func TestBuildPrompt_WithMetadata(t *testing.T) {
	p := BuildPrompt("Les vaccins <contiennent> des puces", &models.VideoMetadata{
		Title:     "Vérité cachée",
		Uploader:  "@someone",
		ViewCount: 1200,
	})
	assert.Contains(t, p, "Les vaccins <contiennent> des puces")
	idx := strings.Index(p, "\n\nMÉTADONNÉES VIDÉO:\n")
	assert.Greater(t, idx, 0)
	meta := p[idx:]
	assert.Contains(t, meta, `"title": "Vérité cachée"`)
	assert.Contains(t, meta, `"view_count": 1200`)
}

func TestExtractClaims_FromAnalysisSection(t *testing.T) {
	analysis := `1. **Résumé du contenu** : La vidéo parle de la Terre.

2. **Affirmations clés** :
   - La Terre est plate
   - **Les satellites n'existent pas**
   - La Terre est plate

3. **Ton et style** : alarmiste
   - ne pas prendre`

	claims := ExtractClaims(analysis, "", 5)
	assert.Equal(t, []string{"La Terre est plate", "Les satellites n'existent pas"}, claims)
}

func TestExtractClaims_BoldNumberedItems(t *testing.T) {
	analysis := `3. **Affirmations clés** :
1. **La Terre est plate**
2. **Les vaccins causent l'autisme**
4. **Ton et style** : alarmiste
- ne pas prendre`

	claims := ExtractClaims(analysis, "", 5)
	assert.Equal(t, []string{"La Terre est plate", "Les vaccins causent l'autisme"}, claims)
}

func TestExtractClaims_IndentedItemsNeverEndSection(t *testing.T) {
	analysis := "2. **Affirmations clés**\n   3. **Les satellites sont faux**\n   4. **La Lune est creuse**\n3. **Ton**\n- ne pas prendre"
	claims := ExtractClaims(analysis, "", 5)
	assert.Equal(t, []string{"Les satellites sont faux", "La Lune est creuse"}, claims)
}

func TestExtractClaims_InlineOnHeading(t *testing.T) {
	analysis := "2. **Affirmations clés** : La Terre est plate\n   - Les vaccins causent l'autisme\n3. **Ton** : alarmiste"
	claims := ExtractClaims(analysis, "", 5)
	assert.Equal(t, []string{"La Terre est plate", "Les vaccins causent l'autisme"}, claims)

	assert.Equal(t, []string{"La Terre est plate"}, ExtractClaims(analysis, "", 1))
}

func TestExtractClaims_UnnumberedHeading(t *testing.T) {
	analysis := "**Affirmations clés**\n1. **Le climat ne change pas**\n2. **Le CO2 est inoffensif**\n## Ton"
	claims := ExtractClaims(analysis, "", 5)
	assert.Equal(t, []string{"Le climat ne change pas", "Le CO2 est inoffensif"}, claims)
}

func TestExtractClaims_Limit(t *testing.T) {
	analysis := "## Affirmations clés\n- a1\n- a2\n- a3\n## Ton"
	assert.Len(t, ExtractClaims(analysis, "", 2), 2)
	assert.Nil(t, ExtractClaims(analysis, "", 0))
}

func TestExtractClaims_FallbackToTranscript(t *testing.T) {
	transcript := "Salut tout le monde. Le gouvernement cache la vérité sur les vaccins! Court. La Terre tourne autour du Soleil en un an."
	claims := ExtractClaims("Pas de section ici", transcript, 5)
	assert.Equal(t, []string{
		"Le gouvernement cache la vérité sur les vaccins",
		"La Terre tourne autour du Soleil en un an",
	}, claims)
}
