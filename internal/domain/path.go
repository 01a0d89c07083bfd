package domain

// ResolvedPath is the only filesystem location handlers may act on. Absolute
// always sits inside the workspace root; Display is the root-relative form
// shown to the user, "." for the root itself.
type ResolvedPath struct {
	Absolute string
	Display  string
}
