package article

import "strings"

// SplitMarker is the literal delimiter the writer places between the three
// body parts so images can be inserted between them.
const SplitMarker = "[SPLIT]"

// SplitBody splits raw writer output into the three-part body. Fewer markers
// than expected is valid: a text with no marker becomes a one-part article
// (parts 2 and 3 empty). Extra parts beyond the third are folded into part 3
// so no content is dropped.
func SplitBody(raw string) Content {
	parts := strings.Split(raw, SplitMarker)
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	content := Content{}
	switch {
	case len(parts) >= 3:
		content.BodyPart1 = parts[0]
		content.BodyPart2 = parts[1]
		content.BodyPart3 = strings.TrimSpace(strings.Join(parts[2:], "\n\n"))
	case len(parts) == 2:
		content.BodyPart1 = parts[0]
		content.BodyPart2 = parts[1]
	case len(parts) == 1:
		content.BodyPart1 = parts[0]
	}
	return content
}

// Join reassembles the body into one string with the split markers restored.
// Empty trailing parts are omitted, so a one-part article round-trips without
// growing markers.
func (c Content) Join() string {
	parts := []string{c.BodyPart1, c.BodyPart2, c.BodyPart3}
	for len(parts) > 1 && parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}
	return strings.Join(parts, "\n"+SplitMarker+"\n")
}

// JoinPlain reassembles the body without markers, for prompt excerpts.
func (c Content) JoinPlain() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{c.BodyPart1, c.BodyPart2, c.BodyPart3} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, "\n\n")
}
