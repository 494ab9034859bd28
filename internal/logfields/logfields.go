package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyDocument    = "document"
	KeyStage       = "stage"
	KeyArtifact    = "artifact"
	KeyFingerprint = "fingerprint"
	KeyOutcome     = "outcome"
	KeyStyle       = "process_style"
	KeyExtension   = "ext"
	KeyDurationMS  = "duration_ms"
	KeyInvocation  = "invocation_id"
	KeyError       = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func Document(key string) slog.Attr    { return slog.String(KeyDocument, key) }
func Stage(name string) slog.Attr      { return slog.String(KeyStage, name) }
func Artifact(key string) slog.Attr    { return slog.String(KeyArtifact, key) }
func Fingerprint(fp string) slog.Attr  { return slog.String(KeyFingerprint, fp) }
func Outcome(o string) slog.Attr       { return slog.String(KeyOutcome, o) }
func Style(s string) slog.Attr         { return slog.String(KeyStyle, s) }
func Extension(ext string) slog.Attr   { return slog.String(KeyExtension, ext) }
func DurationMS(ms float64) slog.Attr  { return slog.Float64(KeyDurationMS, ms) }
func InvocationID(id string) slog.Attr { return slog.String(KeyInvocation, id) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
