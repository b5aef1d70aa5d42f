// Package config holds process-wide constants shared by the evaluator,
// the document engine, and the CLI.
package config

// Version is the current Afed version.
var Version = "0.1.0"

const SourceFileExt = ".afed"

// SourceFileExtensions are all recognized source file extensions.
var SourceFileExtensions = []string{".afed"}

// PluginSymbolName is the fixed export symbol every plug-in must present.
const PluginSymbolName = "_build_pkg"

// ProtocolVersion is the plug-in protocol version this host declares.
// A plug-in whose reported version does not match is rejected at load time.
const ProtocolVersion = "1"

// NumericTolerance is the absolute tolerance used when comparing a Ratio
// against a Real (spec: 1e-10). A var, not a const, so the CLI's
// --config file can override it at start-up; the default is otherwise
// this exact value.
var NumericTolerance = 1e-10

// IsTestMode indicates the program is running under `go test`.
var IsTestMode = false

// Built-in keyword names recognized by the parser.
const (
	KeywordNull  = "null"
	KeywordTrue  = "true"
	KeywordFalse = "false"
	KeywordIf    = "if"
	KeywordUse   = "use"
)

// TrimSourceExt removes a recognized source extension from a filename.
func TrimSourceExt(name string) string {
	for _, ext := range SourceFileExtensions {
		if len(name) >= len(ext) && name[len(name)-len(ext):] == ext {
			return name[:len(name)-len(ext)]
		}
	}
	return name
}

// HasSourceExt reports whether path ends with a recognized source extension.
func HasSourceExt(path string) bool {
	for _, ext := range SourceFileExtensions {
		if len(path) >= len(ext) && path[len(path)-len(ext):] == ext {
			return true
		}
	}
	return false
}
