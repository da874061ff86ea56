package config

// ConfigFileName is the naming configuration looked up from the working
// directory upwards.
const ConfigFileName = "caselower.yaml"

// ConfigFileAltName is the accepted alternative spelling.
const ConfigFileAltName = "caselower.yml"

// FixtureFileExtensions are the recognized typed-tree fixture extensions.
var FixtureFileExtensions = []string{".yaml", ".yml"}

// Defaults applied when the configuration leaves a field empty.
const (
	DefaultUnusedPrefix = "_"
	DefaultTempPattern  = `^_*(g|tmp|hx_tmp)\d*$`
	DefaultReceiver     = "struct"
)

// DefaultReservedNames are names never taken from the source as binder
// names.
var DefaultReservedNames = []string{
	"_", "param", "params", "arg", "args", "this", "self",
	"tmp", "temp", "enum", "index", "obj",
}

// DefaultCanonicalNames are substituted for generic declared parameter
// names, keyed by constructor name, one entry per parameter.
var DefaultCanonicalNames = map[string][]string{
	"Ok":    {"value"},
	"Error": {"reason"},
	"Err":   {"reason"},
	"Some":  {"value"},
	"Left":  {"left"},
	"Right": {"right"},
}
