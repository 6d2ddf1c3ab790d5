package setting

// Kind identifies the declared value type of a setting. It drives casting on
// the read/write paths and stringification for environment projection.
type Kind string

// Supported setting kinds. The zero value means "untyped": values pass
// through casting unchanged.
const (
	KindString   Kind = "string"
	KindInteger  Kind = "integer"
	KindBoolean  Kind = "boolean"
	KindObject   Kind = "object"
	KindArray    Kind = "array"
	KindPassword Kind = "password"
	KindHidden   Kind = "hidden"
)
