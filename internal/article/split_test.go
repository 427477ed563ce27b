package article

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitBody_ThreeParts(t *testing.T) {
	raw := "Intro text.\n[SPLIT]\nMiddle section.\n[SPLIT]\nClosing thoughts."

	content := SplitBody(raw)

	assert.Equal(t, "Intro text.", content.BodyPart1)
	assert.Equal(t, "Middle section.", content.BodyPart2)
	assert.Equal(t, "Closing thoughts.", content.BodyPart3)
}

func TestSplitBody_NoMarker(t *testing.T) {
	content := SplitBody("Just one block of text.")

	assert.Equal(t, "Just one block of text.", content.BodyPart1)
	assert.Empty(t, content.BodyPart2)
	assert.Empty(t, content.BodyPart3)
}

func TestSplitBody_OneMarker(t *testing.T) {
	content := SplitBody("First.[SPLIT]Second.")

	assert.Equal(t, "First.", content.BodyPart1)
	assert.Equal(t, "Second.", content.BodyPart2)
	assert.Empty(t, content.BodyPart3)
}

func TestSplitBody_ExtraMarkersFoldIntoPartThree(t *testing.T) {
	content := SplitBody("a[SPLIT]b[SPLIT]c[SPLIT]d[SPLIT]e")

	assert.Equal(t, "a", content.BodyPart1)
	assert.Equal(t, "b", content.BodyPart2)
	// Nothing is dropped: everything past the second marker lands in part 3.
	assert.Contains(t, content.BodyPart3, "c")
	assert.Contains(t, content.BodyPart3, "d")
	assert.Contains(t, content.BodyPart3, "e")
}

func TestSplitBody_EmptyInput(t *testing.T) {
	content := SplitBody("")

	assert.Empty(t, content.BodyPart1)
	assert.Empty(t, content.BodyPart2)
	assert.Empty(t, content.BodyPart3)
}

func TestContentJoin_RoundTrip(t *testing.T) {
	original := Content{
		BodyPart1: "Intro.",
		BodyPart2: "Middle.",
		BodyPart3: "End.",
	}

	again := SplitBody(original.Join())
	assert.Equal(t, original, again)
}

func TestContentJoin_OnePartDoesNotGrowMarkers(t *testing.T) {
	content := Content{BodyPart1: "Only part."}

	joined := content.Join()
	assert.Equal(t, "Only part.", joined)
	assert.NotContains(t, joined, SplitMarker)
}

func TestContentJoin_KeepsEmptyMiddlePart(t *testing.T) {
	content := Content{BodyPart1: "First.", BodyPart3: "Third."}

	joined := content.Join()
	// Two markers are needed so the third part stays in slot three.
	assert.Equal(t, 2, strings.Count(joined, SplitMarker))
	assert.Equal(t, content, SplitBody(joined))
}

func TestContentJoinPlain_SkipsEmptyParts(t *testing.T) {
	content := Content{BodyPart1: "First.", BodyPart3: "Third."}

	plain := content.JoinPlain()
	assert.Equal(t, "First.\n\nThird.", plain)
	assert.NotContains(t, plain, SplitMarker)
}
