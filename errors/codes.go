package errors

// Code is a machine-readable error classification.
type Code string

const (
	CodeUnknown Code = "UNKNOWN"
	CodeUsage   Code = "USAGE"
	CodeConfig  Code = "CONFIG"

	// Input and extraction failures.
	CodeFileNotFound               Code = "FILE_NOT_FOUND"
	CodeEnvelopeShape              Code = "ENVELOPE_SHAPE"
	CodeDocumentMarkerNotFound     Code = "DOCUMENT_MARKER_NOT_FOUND"
	CodeDocumentExtractionMismatch Code = "DOCUMENT_EXTRACTION_MISMATCH"
	CodeBinding                    Code = "BINDING"
	CodeMissingDocument            Code = "MISSING_DOCUMENT"

	// Submission failures.
	CodeTransport    Code = "TRANSPORT"
	CodeAPIRejection Code = "API_REJECTION"
	// CodeTimeout covers both an expired deadline and a cancelled
	// submission (SIGINT/SIGTERM).
	CodeTimeout Code = "TIMEOUT"
)

// Metadata keys used across the taxonomy.
const (
	MetaPath   = "path"
	MetaStatus = "status"
	MetaBody   = "body"
)

// ExitCode maps the code to a process exit status.
func (c Code) ExitCode() int {
	switch c {
	case "":
		return 0
	case CodeUsage:
		return 2
	case CodeFileNotFound:
		return 3
	case CodeEnvelopeShape:
		return 4
	case CodeDocumentMarkerNotFound:
		return 5
	case CodeDocumentExtractionMismatch:
		return 6
	case CodeBinding:
		return 7
	case CodeMissingDocument:
		return 8
	case CodeTransport:
		return 9
	case CodeAPIRejection:
		return 10
	case CodeConfig:
		return 11
	case CodeTimeout:
		return 124
	default:
		return 1
	}
}

// ExitCode maps err to a process exit status.
func ExitCode(err error) int {
	return CodeOf(err).ExitCode()
}
