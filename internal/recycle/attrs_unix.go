//go:build !windows

package recycle

// hideFile is a no-op on POSIX systems: the hidden-sibling scheme
// already keeps the file out of a casual listing by tucking it behind
// the "~~adt...~~" prefix; true dotfile hiding would change the visible
// name contract the rest of this package relies on.
func hideFile(path string) {}
