package errors

import (
	"path/filepath"
	"slices"
	"strings"
	"unicode"

	"github.com/matzehuels/nodeflow/pkg/graph"
)

// maxIDLength bounds node IDs and names accepted from untrusted documents.
const maxIDLength = 256

// ValidatePath validates a file path given on the command line.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}
	return nil
}

// ValidateExtension checks that path ends in one of the allowed
// extensions, compared case-insensitively.
func ValidateExtension(path string, allowed ...string) error {
	if err := ValidatePath(path); err != nil {
		return err
	}
	ext := strings.ToLower(filepath.Ext(path))
	if !slices.Contains(allowed, ext) {
		return New(ErrCodeInvalidFormat, "unsupported file extension %q (want one of %s)", ext, strings.Join(allowed, ", "))
	}
	return nil
}

// ValidateDocumentPath checks that path names a JSON or YAML document.
func ValidateDocumentPath(path string) error {
	return ValidateExtension(path, ".json", ".yaml", ".yml")
}

// ValidateIdentifier validates a node ID or type name from a document.
// It rejects empty values, overly long values and control characters.
func ValidateIdentifier(kind, value string) error {
	if value == "" {
		return New(ErrCodeInvalidDocument, "%s cannot be empty", kind)
	}
	if len(value) > maxIDLength {
		return New(ErrCodeInvalidDocument, "%s too long (max %d characters)", kind, maxIDLength)
	}
	for _, r := range value {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidDocument, "%s contains invalid control characters", kind)
		}
	}
	return nil
}

// ValidateNodeID validates a node ID. On top of [ValidateIdentifier] it
// rejects "->", which would make edge IDs ambiguous.
func ValidateNodeID(kind, value string) error {
	if err := ValidateIdentifier(kind, value); err != nil {
		return err
	}
	return rejectSeparators(kind, value, "->")
}

// ValidatePortName validates a port name. On top of [ValidateIdentifier]
// it rejects ":" and "->", which would make edge IDs ambiguous.
func ValidatePortName(kind, value string) error {
	if err := ValidateIdentifier(kind, value); err != nil {
		return err
	}
	return rejectSeparators(kind, value, ":", "->")
}

func rejectSeparators(kind, value string, seps ...string) error {
	for _, sep := range seps {
		if strings.Contains(value, sep) {
			return New(ErrCodeInvalidDocument, "%s %q must not contain %q", kind, value, sep)
		}
	}
	return nil
}

// ValidateDocument checks the identifiers of every record in doc before it
// is deserialized. Referential integrity is left to [graph.Graph].
func ValidateDocument(doc graph.Document) error {
	for i, rec := range doc.Nodes {
		if err := ValidateNodeID("node id", rec.ID); err != nil {
			return Wrap(ErrCodeInvalidDocument, err, "nodes[%d]", i)
		}
		if err := ValidateIdentifier("node name", rec.Name); err != nil {
			return Wrap(ErrCodeInvalidDocument, err, "nodes[%d]", i)
		}
	}
	for i, rec := range doc.Edges {
		for _, field := range []struct {
			kind, value string
			check       func(kind, value string) error
		}{
			{"source node id", rec.SourceNodeID, ValidateNodeID},
			{"source output name", rec.SourceOutputName, ValidatePortName},
			{"target node id", rec.TargetNodeID, ValidateNodeID},
			{"target input name", rec.TargetInputName, ValidatePortName},
		} {
			if err := field.check(field.kind, field.value); err != nil {
				return Wrap(ErrCodeInvalidDocument, err, "edges[%d]", i)
			}
		}
	}
	return nil
}
