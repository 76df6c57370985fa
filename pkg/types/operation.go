package types

// OperationStatus defines the state of a planned operation
type OperationStatus string

const (
	// StatusReady means the operation is ready to be executed
	StatusReady OperationStatus = "ready"
	// StatusSkipped means the operation resolved to nothing to do
	// (e.g. removing a path that does not exist)
	StatusSkipped OperationStatus = "skipped"
	// StatusConflict means the operation cannot be performed safely and
	// the target is left untouched (e.g. a file found where the pattern
	// claimed a directory)
	StatusConflict OperationStatus = "conflict"
)

// RemovalOp is a planned deletion of a file or directory belonging to an
// unselected item. Path is absolute; Pattern is the original config entry.
type RemovalOp struct {
	Layer     string
	Item      string
	Pattern   string
	Path      string
	Recursive bool
	Status    OperationStatus
	Reason    string
}

// WriteKind says which engine produced a planned file write
type WriteKind string

const (
	// WriteManifest rewrites the extension manifest with keys removed
	WriteManifest WriteKind = "manifest"
	// WritePrune rewrites a source file with code patterns stripped
	WritePrune WriteKind = "prune"
	// WriteDeps rewrites package.json with reconciled dependencies
	WriteDeps WriteKind = "deps"
)

// FileWriteOp is a planned full-content rewrite of one file. Content is
// computed entirely at plan time; executing the plan performs no further
// reads of the project tree.
type FileWriteOp struct {
	Kind    WriteKind
	Layer   string
	Item    string
	Path    string
	Content []byte
}

// Warning records a non-fatal problem encountered while building or
// executing a plan. Warnings never abort the pass.
type Warning struct {
	Stage   string
	Path    string
	Message string
}
