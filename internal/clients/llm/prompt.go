package llm

import (
	"bytes"
	"encoding/json"
	"strings"

	"TikTokFactCheck/internal/models"
)

// SystemMessage 為 OpenAI 對話中的系統訊息
const SystemMessage = "Tu es un expert en analyse de contenu et vérification de faits."

const promptTemplate = `Tu es un expert en analyse de contenu et vérification de faits. Analyse le texte suivant d'une vidéo TikTok et fournis une analyse détaillée.

TEXTE À ANALYSER:
{transcription}

Effectue une analyse complète incluant:
1. **Résumé du contenu** : Résume les points principaux abordés
2. **Affirmations clés** : Liste toutes les affirmations factuelles faites dans la vidéo
3. **Ton et style** : Analyse le ton utilisé (neutre, alarmiste, persuasif, etc.)
4. **Sources mentionnées** : Note si des sources sont citées ou mentionnées
5. **Points à vérifier** : Identifie les affirmations qui nécessitent une vérification factuelle
6. **Score de crédibilité initial** : Donne un score de 0 à 100 basé sur la structure et la présentation du contenu

Réponds en français et structure ta réponse de manière claire.`

const metadataHeader = "\n\nMÉTADONNÉES VIDÉO:\n"

// BuildPrompt 組出固定的法文分析提示；metadata 為 nil 時不附加中繼資料區塊
func BuildPrompt(transcription string, metadata *models.VideoMetadata) string {
	prompt := strings.Replace(promptTemplate, "{transcription}", transcription, 1)
	if metadata != nil {
		prompt += metadataHeader + formatMetadata(metadata)
	}
	return prompt
}

func formatMetadata(metadata *models.VideoMetadata) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(metadata); err != nil {
		return metadata.Title
	}
	return strings.TrimRight(buf.String(), "\n")
}
