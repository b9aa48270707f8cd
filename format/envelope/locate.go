package envelope

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"gopkg.in/yaml.v3"

	apperrors "github.com/Tsinling0525/synapse/errors"
)

const (
	pathSpec     = "spec"
	pathVersions = "spec.versions"
	pathFirst    = "spec.versions[0]"
	pathDocument = "spec.versions[0].document"

	documentKey = "document:"
)

// Located is the workflow document found by both extraction routes.
type Located struct {
	// Tree is the document as decoded from the generic envelope tree.
	Tree any
	// Text is the document region of the source, re-indented to stand alone.
	Text string
	// Checksum is the SHA-256 of the document's canonical JSON rendering.
	Checksum string
}

// Probe walks the generic envelope tree down to spec.versions[0].document and
// returns the value found there.
func Probe(raw []byte) (any, error) {
	var root map[string]any
	if err := yaml.Unmarshal(raw, &root); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeEnvelopeShape, "parse envelope", err)
	}
	spec, ok := root["spec"].(map[string]any)
	if !ok {
		return nil, shapeError(pathSpec, "spec must be a mapping")
	}
	versions, ok := spec["versions"].([]any)
	if !ok {
		return nil, shapeError(pathVersions, "spec.versions must be a sequence")
	}
	if len(versions) == 0 {
		return nil, shapeError(pathVersions, "spec.versions is empty")
	}
	first, ok := versions[0].(map[string]any)
	if !ok {
		return nil, shapeError(pathFirst, "spec.versions[0] must be a mapping")
	}
	doc, ok := first["document"]
	if !ok {
		return nil, shapeError(pathDocument, "spec.versions[0] has no document")
	}
	return doc, nil
}

func shapeError(path, msg string) error {
	return apperrors.WithMetadata(apperrors.CodeEnvelopeShape,
		"failed to find spec.versions[0].document: "+msg,
		map[string]string{apperrors.MetaPath: path})
}

// ExtractText finds the first "document:" line of raw and returns the lines
// nested under it with two leading spaces removed from each. Comment and
// blank lines are kept, other lines without two leading spaces are dropped.
// The region ends at the first non-blank, non-comment line indented no
// deeper than the marker. An inline value on the
// marker line ("document: {...}") is returned as is.
func ExtractText(raw []byte) (string, error) {
	lines := strings.Split(string(raw), "\n")
	for i := range lines {
		lines[i] = strings.TrimSuffix(lines[i], "\r")
	}

	start, indent, inline := -1, 0, ""
	for i, l := range lines {
		col, rest, ok := markerAt(l)
		if !ok {
			continue
		}
		start, indent, inline = i, col, rest
		break
	}
	if start < 0 {
		return "", apperrors.New(apperrors.CodeDocumentMarkerNotFound, "could not find 'document:' line")
	}
	if inline != "" {
		return inline, nil
	}

	var body []string
	for _, l := range lines[start+1:] {
		trimmed := strings.TrimSpace(l)
		blank := trimmed == ""
		if !blank && !strings.HasPrefix(trimmed, "#") && leadingSpaces(l) <= indent {
			break
		}
		switch {
		case strings.HasPrefix(l, "  "):
			body = append(body, l[2:])
		case blank:
			// Keeps empty lines inside block scalars.
			body = append(body, "")
		}
	}
	for len(body) > 0 && strings.TrimSpace(body[len(body)-1]) == "" {
		body = body[:len(body)-1]
	}
	if len(body) == 0 {
		return "", nil
	}
	return strings.Join(body, "\n") + "\n", nil
}

// markerAt reports whether l is a "document:" key line. col is the column of
// the key and rest any inline value after the colon.
func markerAt(l string) (col int, rest string, ok bool) {
	col = leadingSpaces(l)
	t := l[col:]
	for strings.HasPrefix(t, "- ") {
		t = strings.TrimLeft(t[1:], " ")
		col = len(l) - len(t)
	}
	if !strings.HasPrefix(t, documentKey) {
		return 0, "", false
	}
	rest = t[len(documentKey):]
	if rest != "" && rest[0] != ' ' && rest[0] != '\t' {
		return 0, "", false
	}
	rest = strings.TrimSpace(rest)
	if strings.HasPrefix(rest, "#") {
		rest = ""
	}
	return col, rest, true
}

func leadingSpaces(l string) int {
	return len(l) - len(strings.TrimLeft(l, " "))
}

// Locate extracts the document by both routes and requires them to agree.
func Locate(raw []byte) (*Located, error) {
	tree, probeErr := Probe(raw)
	text, textErr := ExtractText(raw)
	if probeErr != nil {
		// With no document key anywhere the marker error is the precise one.
		if textErr != nil && apperrors.Meta(probeErr, apperrors.MetaPath) == pathDocument {
			return nil, textErr
		}
		return nil, probeErr
	}
	if textErr != nil {
		return nil, textErr
	}

	var fromText any
	if err := yaml.Unmarshal([]byte(text), &fromText); err != nil {
		return nil, apperrors.WrapWithMetadata(apperrors.CodeDocumentExtractionMismatch,
			"re-indented document is not valid YAML",
			map[string]string{apperrors.MetaPath: pathDocument, "textual": text}, err)
	}
	if !reflect.DeepEqual(tree, fromText) {
		return nil, apperrors.WithMetadata(apperrors.CodeDocumentExtractionMismatch,
			"structural and textual document extraction disagree",
			map[string]string{
				apperrors.MetaPath: pathDocument,
				"structural":       render(tree),
				"textual":          render(fromText),
			})
	}
	return &Located{Tree: tree, Text: text, Checksum: checksum(tree, text)}, nil
}

func render(v any) string {
	if b, err := json.Marshal(v); err == nil {
		return string(b)
	}
	return fmt.Sprintf("%v", v)
}

func checksum(v any, fallback string) string {
	b, err := json.Marshal(v)
	if err != nil {
		b = []byte(fallback)
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
