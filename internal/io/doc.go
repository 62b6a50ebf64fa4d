// Package ioutils places downloaded files in the destination tree.
//
// # Placement
//
//	if ioutils.Exists(filepath.Join(dir, name)) {
//	    return // already downloaded
//	}
//	final, temp, err := ioutils.PlaceFile(dir, name, data)
//
// PlaceFile writes to a temporary file in the system temp directory, creates
// dir with its parents and moves the file into place. Moves across file
// systems fall back to copy and remove.
//
// # Locking
//
// LockDir takes an advisory lock on a file next to the destination root
// ("dl.lock" for "dl") so two runs on the same tree do not race around the
// existence check:
//
//	unlock, err := ioutils.LockDir(ctx, "dl", time.Second)
//	defer unlock()
package ioutils
