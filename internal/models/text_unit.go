package models

// TextUnit is one line of a scanned file. All detectors operate on these
// units uniformly. A unit is created once during tokenization, owned
// exclusively by the scan of a single file, and never mutated.
type TextUnit struct {
	Path       string
	LineNumber int // 1-based
	ByteOffset int // offset of the line start within the file
	Content    string
}

// FileRecord is the unit consumed from the file-traversal collaborator.
// ReadError is set when the collaborator could not read the file's content;
// such records become failure entries in the scan result.
type FileRecord struct {
	Path      string
	Content   []byte
	IsBinary  bool
	ReadError string
}
