package analyzer

import (
	"fmt"
	"strings"

	"github.com/saifaddin/tadabbur-backend/internal/domain"
)

// Storage key layout. Final artifacts live directly under the analysis
// prefix; checkpoints under _temp/ are deleted once their verse completes.
const (
	artifactPrefix = "analysis/"
	tempPrefix     = "analysis/_temp/"
	manifestKey    = "analysis/manifest"
	errorLogKey    = "analysis/_errors.log"
)

func artifactKey(k domain.VerseKey) string {
	return fmt.Sprintf("%s%d-%d", artifactPrefix, k.Surah, k.Verse)
}

func baseCheckpointKey(k domain.VerseKey) string {
	return fmt.Sprintf("%s%d-%d.base", tempPrefix, k.Surah, k.Verse)
}

func wordCheckpointKey(k domain.VerseKey, wordNumber int) string {
	return fmt.Sprintf("%s%d-%d.w%d", tempPrefix, k.Surah, k.Verse, wordNumber)
}

// checkpointPrefix covers every checkpoint key of one verse.
func checkpointPrefix(k domain.VerseKey) string {
	return fmt.Sprintf("%s%d-%d.", tempPrefix, k.Surah, k.Verse)
}

// verseIDFromArtifactKey maps "analysis/2-255" back to "2:255". Keys under
// _temp/, the manifest, and the error log are not artifacts.
func verseIDFromArtifactKey(key string) (string, bool) {
	if key == manifestKey || key == errorLogKey || strings.HasPrefix(key, tempPrefix) {
		return "", false
	}
	name, ok := strings.CutPrefix(key, artifactPrefix)
	if !ok || strings.Contains(name, "/") {
		return "", false
	}

	id := strings.Replace(name, "-", ":", 1)
	if _, err := domain.ParseVerseKey(id); err != nil {
		return "", false
	}
	return id, true
}
