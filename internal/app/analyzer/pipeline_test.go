package analyzer

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saifaddin/tadabbur-backend/internal/adapter/storage"
	"github.com/saifaddin/tadabbur-backend/internal/corpus"
	"github.com/saifaddin/tadabbur-backend/internal/domain"
)

// testVerses is the fixture corpus: surah 1 with seven verses. Verse 1 is
// the four-word basmala used by the detail scenarios; the rest are short.
var testVerses = map[int]string{
	1: "بِسْمِ اللَّهِ الرَّحْمَٰنِ الرَّحِيمِ",
	2: "الْحَمْدُ لِلَّهِ",
	3: "الرَّحْمَٰنِ الرَّحِيمِ",
	4: "مَالِكِ يَوْمِ الدِّينِ",
	5: "إِيَّاكَ نَعْبُدُ",
	6: "اهْدِنَا الصِّرَاطَ",
	7: "صِرَاطَ الَّذِينَ",
}

func writeTestCorpus(t *testing.T) *corpus.Library {
	t.Helper()
	dir := t.TempDir()

	surahs := `[{"id": 1, "name": "Al-Fatihah", "arabicName": "الفاتحة", "verseCount": 7}]`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "surahs.json"), []byte(surahs), 0o644))

	var records []map[string]any
	for n := 1; n <= 7; n++ {
		records = append(records, map[string]any{
			"verseNumber":     n,
			"arabic":          testVerses[n],
			"translation":     fmt.Sprintf("translation of verse %d", n),
			"transliteration": fmt.Sprintf("transliteration of verse %d", n),
		})
	}
	data, err := json.Marshal(records)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "1.json"), []byte(data), 0o644))

	return corpus.New(dir)
}

var (
	promptVerseRe = regexp.MustCompile(`Verse (\d+:\d+)`)
	promptWordRe  = regexp.MustCompile(`Word (\d+) of the verse`)
)

// scriptedGen is a func-field mock generator. It classifies each prompt as
// base or word phase and dispatches; the default script answers every verse
// from the fixture corpus and gives every word an empty detail.
type scriptedGen struct {
	t       *testing.T
	baseFn  func(verseID string) (string, error)
	wordFn  func(verseID string, wordNumber int) (string, error)
	calls   int
	baseFor []string
	wordFor []string // "verseID/wordNumber"
}

func newScriptedGen(t *testing.T) *scriptedGen {
	g := &scriptedGen{t: t}
	g.baseFn = func(verseID string) (string, error) { return defaultBaseResponse(t, verseID), nil }
	g.wordFn = func(string, int) (string, error) { return `{}`, nil }
	return g
}

func (g *scriptedGen) Generate(_ context.Context, prompt string) (string, error) {
	g.calls++

	m := promptVerseRe.FindStringSubmatch(prompt)
	if m == nil {
		g.t.Fatalf("prompt has no verse id: %q", prompt)
	}
	verseID := m[1]

	if w := promptWordRe.FindStringSubmatch(prompt); w != nil {
		n, _ := strconv.Atoi(w[1])
		g.wordFor = append(g.wordFor, fmt.Sprintf("%s/%d", verseID, n))
		return g.wordFn(verseID, n)
	}
	g.baseFor = append(g.baseFor, verseID)
	return g.baseFn(verseID)
}

// defaultBaseResponse builds a valid base-phase response by tokenizing the
// fixture verse on spaces.
func defaultBaseResponse(t *testing.T, verseID string) string {
	t.Helper()

	key, err := domain.ParseVerseKey(verseID)
	require.NoError(t, err)
	arabic, ok := testVerses[key.Verse]
	require.True(t, ok, "unknown fixture verse %s", verseID)

	var words []map[string]any
	for i, token := range strings.Fields(arabic) {
		words = append(words, map[string]any{
			"wordNumber":      i + 1,
			"arabic":          token,
			"transliteration": fmt.Sprintf("word-%d", i+1),
			"meaning":         fmt.Sprintf("meaning-%d", i+1),
		})
	}
	data, err := json.Marshal(map[string]any{
		"words":              words,
		"literalTranslation": "literal " + verseID,
	})
	require.NoError(t, err)
	return string(data)
}

func newTestPipeline(t *testing.T) (*Pipeline, *scriptedGen, storage.Store) {
	t.Helper()
	store := newTestStore(t)
	gen := newScriptedGen(t)
	return New(writeTestCorpus(t), store, gen, discardLogger()), gen, store
}

func TestPipeline_EndToEnd(t *testing.T) {
	t.Parallel()

	pipe, gen, store := newTestPipeline(t)
	ctx := context.Background()
	key := domain.VerseKey{Surah: 1, Verse: 1}

	// Word 1 is the compound بِسْمِ; word 2 is the name of Allah (no root
	// by convention here); words 3 and 4 share the mercy root.
	gen.wordFn = func(verseID string, n int) (string, error) {
		require.Equal(t, "1:1", verseID)
		switch n {
		case 1:
			return `{
				"root": {"letters": "س-م-و", "meaning": "to be high; name"},
				"components": [
					{"arabic": "بِ", "meaning": "with, in"},
					{"arabic": "اسْم", "meaning": "name"}
				]
			}`, nil
		case 2:
			return `{}`, nil
		case 3, 4:
			return `{"root": {"letters": "ر-ح-م", "meaning": "mercy"}}`, nil
		default:
			return "", fmt.Errorf("unexpected word %d", n)
		}
	}

	outcome, err := pipe.Process(ctx, key)
	require.NoError(t, err)
	assert.True(t, outcome.Completed)
	assert.False(t, outcome.WasAlreadyDone)
	assert.Equal(t, 5, gen.calls, "one base call plus four word calls")

	// The artifact.
	data, err := store.Get(ctx, "analysis/1-1")
	require.NoError(t, err)

	var artifact domain.VerseAnalysis
	require.NoError(t, json.Unmarshal(data, &artifact))
	require.Len(t, artifact.Words, 4)
	assert.Equal(t, "translation of verse 1", artifact.Translation)
	assert.Equal(t, "literal 1:1", artifact.LiteralTranslation)
	assert.False(t, artifact.GeneratedAt.IsZero())

	require.NotNil(t, artifact.Words[0].Root)
	assert.Len(t, artifact.Words[0].Components, 2)
	assert.Equal(t, "بِ", artifact.Words[0].Components[0].Arabic)

	assert.Nil(t, artifact.Words[1].Root)
	assert.Nil(t, artifact.Words[1].Components)

	require.NotNil(t, artifact.Words[2].Root)
	require.NotNil(t, artifact.Words[3].Root)
	assert.Equal(t, artifact.Words[2].Root.Letters, artifact.Words[3].Root.Letters)

	// Absent root must be absent in the JSON, not an empty object.
	var rawWords struct {
		Words []map[string]json.RawMessage `json:"words"`
	}
	require.NoError(t, json.Unmarshal(data, &rawWords))
	_, hasRoot := rawWords.Words[1]["root"]
	assert.False(t, hasRoot, "word 2 must not carry a root key")
	_, hasComponents := rawWords.Words[1]["components"]
	assert.False(t, hasComponents, "word 2 must not carry a components key")

	// Checkpoints are gone, the manifest lists the verse.
	leftovers, err := store.List(ctx, "analysis/_temp/")
	require.NoError(t, err)
	assert.Empty(t, leftovers)

	m, err := pipe.Manifest().Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"1:1"}, m.VerseIDs)
}

func TestPipeline_Idempotence(t *testing.T) {
	t.Parallel()

	pipe, gen, _ := newTestPipeline(t)
	ctx := context.Background()
	key := domain.VerseKey{Surah: 1, Verse: 2}

	_, err := pipe.Process(ctx, key)
	require.NoError(t, err)
	callsAfterFirst := gen.calls

	outcome, err := pipe.Process(ctx, key)
	require.NoError(t, err)
	assert.True(t, outcome.WasAlreadyDone)
	assert.Equal(t, callsAfterFirst, gen.calls, "second call must issue zero generation calls")
}

func TestPipeline_Resumability(t *testing.T) {
	t.Parallel()

	pipe, gen, _ := newTestPipeline(t)
	ctx := context.Background()
	key := domain.VerseKey{Surah: 1, Verse: 1}

	// Simulate an interrupted run: base done, words 1 and 2 done.
	base, err := DecodeBase(mustVerse(t, pipe, key), defaultBaseResponse(t, "1:1"))
	require.NoError(t, err)
	require.NoError(t, pipe.checkpoints.SaveBase(ctx, key, base))
	require.NoError(t, pipe.checkpoints.SaveWord(ctx, key, 1, domain.WordDetail{
		Root: &domain.Root{Letters: "س-م-و", Meaning: "name"},
	}))
	require.NoError(t, pipe.checkpoints.SaveWord(ctx, key, 2, domain.WordDetail{}))

	outcome, err := pipe.Process(ctx, key)
	require.NoError(t, err)
	assert.True(t, outcome.Completed)

	assert.Empty(t, gen.baseFor, "base must not be re-requested")
	assert.Equal(t, []string{"1:1/3", "1:1/4"}, gen.wordFor, "only the missing words are requested")

	// The checkpointed detail survived into the artifact.
	data, err := pipe.store.Get(ctx, "analysis/1-1")
	require.NoError(t, err)
	var artifact domain.VerseAnalysis
	require.NoError(t, json.Unmarshal(data, &artifact))
	require.NotNil(t, artifact.Words[0].Root)
	assert.Equal(t, "س-م-و", artifact.Words[0].Root.Letters)
}

func mustVerse(t *testing.T, pipe *Pipeline, key domain.VerseKey) domain.SourceVerse {
	t.Helper()
	v, err := pipe.library.Verse(key)
	require.NoError(t, err)
	return v
}

func TestPipeline_ManifestRepair(t *testing.T) {
	t.Parallel()

	pipe, gen, store := newTestPipeline(t)
	ctx := context.Background()
	key := domain.VerseKey{Surah: 1, Verse: 3}

	// Crash happened between the artifact write and the manifest update.
	require.NoError(t, store.Put(ctx, "analysis/1-3", []byte(`{}`)))

	outcome, err := pipe.Process(ctx, key)
	require.NoError(t, err)
	assert.True(t, outcome.WasAlreadyDone)
	assert.Zero(t, gen.calls)

	m, err := pipe.Manifest().Load(ctx)
	require.NoError(t, err)
	assert.Contains(t, m.VerseIDs, "1:3")
}

func TestPipeline_FailureContainment(t *testing.T) {
	t.Parallel()

	pipe, gen, store := newTestPipeline(t)
	ctx := context.Background()

	// Verse 1:4 answers with prose no repair can save.
	gen.baseFn = func(verseID string) (string, error) {
		if verseID == "1:4" {
			return "I'm sorry, I cannot analyze this verse.", nil
		}
		return defaultBaseResponse(t, verseID), nil
	}

	summary, err := pipe.Run(ctx, 1, 1)
	require.NoError(t, err)

	assert.Equal(t, 7, summary.Processed)
	assert.Equal(t, 6, summary.Completed)
	assert.Equal(t, 0, summary.Skipped)
	assert.Equal(t, 1, summary.Failed)

	// Every other verse completed.
	for verse := 1; verse <= 7; verse++ {
		exists, err := store.Exists(ctx, fmt.Sprintf("analysis/1-%d", verse))
		require.NoError(t, err)
		assert.Equal(t, verse != 4, exists, "artifact for verse %d", verse)
	}

	// Exactly one error-log line, naming 1:4.
	data, err := store.Get(ctx, "analysis/_errors.log")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "1:4")

	// The manifest matches what is actually durable.
	m, err := pipe.Manifest().Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"1:1", "1:2", "1:3", "1:5", "1:6", "1:7"}, m.VerseIDs)
}

func TestPipeline_FailedPhaseLeavesNoCheckpoint(t *testing.T) {
	t.Parallel()

	pipe, gen, store := newTestPipeline(t)
	ctx := context.Background()
	key := domain.VerseKey{Surah: 1, Verse: 1}

	// Word 3 fails; base and words 1-2 succeed and must stay durable.
	gen.wordFn = func(_ string, n int) (string, error) {
		if n == 3 {
			return "no json at all", nil
		}
		return `{}`, nil
	}

	_, err := pipe.Process(ctx, key)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnparsable)

	has, err := pipe.checkpoints.HasBase(ctx, key)
	require.NoError(t, err)
	assert.True(t, has, "base checkpoint survives the failure")
	for n := 1; n <= 2; n++ {
		has, err := pipe.checkpoints.HasWord(ctx, key, n)
		require.NoError(t, err)
		assert.True(t, has, "word %d checkpoint survives", n)
	}
	has, err = pipe.checkpoints.HasWord(ctx, key, 3)
	require.NoError(t, err)
	assert.False(t, has, "no checkpoint for the failed step")

	exists, err := store.Exists(ctx, "analysis/1-1")
	require.NoError(t, err)
	assert.False(t, exists, "no artifact for a failed verse")

	// Re-running resumes at word 3 exactly.
	gen.wordFn = func(string, int) (string, error) { return `{}`, nil }
	gen.wordFor = nil
	gen.baseFor = nil

	_, err = pipe.Process(ctx, key)
	require.NoError(t, err)
	assert.Empty(t, gen.baseFor)
	assert.Equal(t, []string{"1:1/3", "1:1/4"}, gen.wordFor)
}

func TestPipeline_WordNumberGapFailsUnit(t *testing.T) {
	t.Parallel()

	pipe, gen, _ := newTestPipeline(t)
	ctx := context.Background()

	gen.baseFn = func(string) (string, error) {
		return `{"words": [
			{"wordNumber": 1, "arabic": "a", "meaning": "m"},
			{"wordNumber": 3, "arabic": "b", "meaning": "m"}
		], "literalTranslation": "x"}`, nil
	}

	_, err := pipe.Process(ctx, domain.VerseKey{Surah: 1, Verse: 2})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrValidation)

	// The invalid base was not checkpointed; the next run retries it.
	has, err := pipe.checkpoints.HasBase(ctx, domain.VerseKey{Surah: 1, Verse: 2})
	require.NoError(t, err)
	assert.False(t, has)
}

func TestPipeline_Run_RangeOutsideCorpus(t *testing.T) {
	t.Parallel()

	pipe, _, _ := newTestPipeline(t)

	_, err := pipe.Run(context.Background(), 1, 114)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "outside corpus")
}

func TestPipeline_Run_SkipsAlreadyDone(t *testing.T) {
	t.Parallel()

	pipe, _, _ := newTestPipeline(t)
	ctx := context.Background()

	first, err := pipe.Run(ctx, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, 7, first.Completed)

	second, err := pipe.Run(ctx, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, 7, second.Processed)
	assert.Equal(t, 0, second.Completed)
	assert.Equal(t, 7, second.Skipped)
	assert.Equal(t, 0, second.Failed)
}

func TestPipeline_MissingSourceVerseFailsUnit(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	gen := newScriptedGen(t)

	// A corpus whose surah index promises more verses than the verse file
	// delivers.
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "surahs.json"),
		[]byte(`[{"id": 1, "name": "Al-Fatihah", "arabicName": "الفاتحة", "verseCount": 2}]`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "1.json"),
		[]byte(`[{"verseNumber": 1, "arabic": "bismillah", "translation": "t", "transliteration": "tr"}]`), 0o644))

	pipe := New(corpus.New(dir), store, gen, discardLogger())

	_, err := pipe.Process(context.Background(), domain.VerseKey{Surah: 1, Verse: 2})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
