// Package common contains shared constants, user-facing messages and small
// helpers used across the AI Doc Pro client.
package common

// Header names used on outbound API requests and read from responses.
const (
	UserIDHeaderName        = "X-User-ID"
	RequestIDHeaderName     = "X-Request-ID"
	ChangesCountHeaderName  = "X-Changes-Count"
	AuthorizationHeaderName = "Authorization"
	ContentDisposition      = "Content-Disposition"
)

// Local store keys. Shortcut namespaces keep the names used by the web client
// so exported data stays recognisable.
const (
	ExcelShortcutsNamespace    = "excel_templates"
	AutofillShortcutsNamespace = "autofill_templates"
	SessionMetadataKey         = "identity_session"
)

// Filename fallbacks used when the server does not name an artifact.
const (
	DefaultSpreadsheetName = "hujjat.xlsx"
	DefaultFilledDocName   = "tahrirlangan_hujjat.docx"
	DefaultFilledZipName   = "tahrirlangan_hujjatlar.zip"
	FilledDocPrefix        = "tahrirlangan_"
)
