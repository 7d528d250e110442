package model

import (
	"path/filepath"
	"strings"
)

type ArtifactKind string

const (
	ArtifactKindText     ArtifactKind = "txt"
	ArtifactKindSubtitle ArtifactKind = "srt"
	ArtifactKindCaption  ArtifactKind = "vtt"
)

var ArtifactKinds = []ArtifactKind{ArtifactKindText, ArtifactKindSubtitle, ArtifactKindCaption}

// Artifact is one worker output file inside a job result directory.
type Artifact struct {
	Kind     ArtifactKind
	Filename string
	Size     int64
}

// KindOf returns the artifact kind of filename, matching the suffix case-insensitively.
func KindOf(filename string) (ArtifactKind, bool) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	for _, k := range ArtifactKinds {
		if string(k) == ext {
			return k, true
		}
	}
	return "", false
}
