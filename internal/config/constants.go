package config

const SourceFileExt = ".angel"

// SourceFileExtensions are all recognized source file extensions.
var SourceFileExtensions = []string{".angel", ".an"}

// ProjectFileName is the optional per-project configuration file.
const ProjectFileName = "angel.yaml"

// Built-in function names.
const (
	PrintFuncName = "print"
	ReadFuncName  = "read"
)

// Built-in member names.
const (
	LengthFieldName = "length"
	AppendFuncName  = "append"
	SplitFuncName   = "split"
	RefValueField   = "value"
)

// Runtime shim symbols emitted into generated translation units. The
// C++ runtime header defines these.
const (
	RuntimePrint       = "__print"
	RuntimeRead        = "__read"
	RuntimeSplitChar   = "__string_split_char"
	RuntimeVectorToStr = "__vector_to_string"
)

// PrivatePrefix marks a name as private to its declaring scope.
const PrivatePrefix = "_"
