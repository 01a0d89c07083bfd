package domain

type EntryKind string

const (
	EntryFile      EntryKind = "file"
	EntryDirectory EntryKind = "dir"
)

type DirEntry struct {
	Name string
	Kind EntryKind
}

type FileStat struct {
	Kind EntryKind
	Size int64
}

func (s FileStat) Same(other FileStat) bool {
	return s.Kind == other.Kind && s.Size == other.Size
}
