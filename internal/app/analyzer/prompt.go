package analyzer

import (
	"fmt"

	"github.com/saifaddin/tadabbur-backend/internal/domain"
)

// VersePrompt builds the base-phase prompt for one verse: the word list and
// the literal word-aligned translation. Root and grammar analysis is
// explicitly deferred to the word phase. Pure function of its input.
func VersePrompt(v domain.SourceVerse) string {
	return fmt.Sprintf(`You are a classical Arabic linguistics expert preparing word-by-word study data for Quranic verses.

Verse %s:
Arabic: %s
Translation: %s
Transliteration: %s

Break the verse into its words, in order, and give a literal word-aligned translation of the whole verse.

Output ONLY a valid JSON object matching this exact schema:
{
  "words": [
    {
      "wordNumber": 1,
      "arabic": "<the word exactly as written in the verse>",
      "transliteration": "<romanized pronunciation>",
      "meaning": "<concise contextual meaning in English>"
    }
  ],
  "literalTranslation": "<word-for-word rendering of the verse, words separated naturally>"
}

Rules:
- wordNumber starts at 1 and increases by 1 for every word, in verse order
- Include every word of the verse, none skipped, none merged
- meaning is the contextual sense of the word in this verse, not a dictionary gloss
- Do NOT include root letters or grammatical analysis; that is requested separately per word
- Do NOT include interpretive or theological commentary
- Output ONLY the JSON, no markdown, no explanations`,
		v.Key, v.Arabic, v.Translation, v.Transliteration)
}

// WordPrompt builds the word-phase prompt for a single word of a verse:
// root and compound decomposition only. Pure function of its input.
func WordPrompt(v domain.SourceVerse, stub domain.WordStub) string {
	return fmt.Sprintf(`You are a classical Arabic morphology expert analyzing one word of a Quranic verse.

Verse %s: %s

Word %d of the verse:
Arabic: %s
Transliteration: %s
Meaning: %s

Give the root and, if the word is a compound form, its morphological decomposition.

Output ONLY a valid JSON object matching this exact schema:
{
  "root": {
    "letters": "<root letters joined by dashes, e.g. ر-ح-م>",
    "meaning": "<core meaning of the root in English>"
  },
  "components": [
    {"arabic": "<prefix, stem, or suffix>", "meaning": "<its function or meaning>"}
  ]
}

Rules:
- If the word has no root (particles, pronouns, proper nouns), OMIT the "root" field entirely; never output an empty object
- If the word is not a compound form, OMIT the "components" field entirely
- components, when present, are listed in the order they appear in the word
- Analyze only this word in this verse; no commentary
- Output ONLY the JSON, no markdown, no explanations`,
		v.Key, v.Arabic, stub.Number, stub.Arabic, stub.Transliteration, stub.Meaning)
}
