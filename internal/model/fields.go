package model

// KnownFields is the typed projection of the status document fields the
// server actively reasons about. Everything else in StatusData passes
// through untouched.
type KnownFields struct {
	Language     string
	FileName     string
	LanguageIcon string
	IsDebugging  bool
}

// ProjectKnownFields extracts the known fields from an opaque status
// document. Missing or mistyped values are left at their zero value.
func ProjectKnownFields(status map[string]any) KnownFields {
	var f KnownFields
	if v, ok := status["language"].(string); ok {
		f.Language = v
	}
	if v, ok := status["fileName"].(string); ok {
		f.FileName = v
	}
	if v, ok := status["languageIcon"].(string); ok {
		f.LanguageIcon = v
	}
	if v, ok := status["isDebugging"].(bool); ok {
		f.IsDebugging = v
	}
	return f
}
