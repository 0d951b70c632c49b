package filesystem

import (
	"errors"
	"unsafe"

	"golang.org/x/sys/unix"
)

// renameatxNPExcl is the RENAME_EXCL flag accepted by Darwin's renameatx_np,
// causing the call to fail rather than replace an existing target.
const renameatxNPExcl = 0x4

// renameatxNP invokes Darwin's renameatx_np(2) directly, since
// golang.org/x/sys/unix does not wrap it.
func renameatxNP(oldDirectory int, oldPath string, newDirectory int, newPath string, flags uint32) error {
	oldPathPtr, err := unix.BytePtrFromString(oldPath)
	if err != nil {
		return err
	}
	newPathPtr, err := unix.BytePtrFromString(newPath)
	if err != nil {
		return err
	}
	_, _, errno := unix.Syscall6(
		unix.SYS_RENAMEATX_NP,
		uintptr(oldDirectory),
		uintptr(unsafe.Pointer(oldPathPtr)),
		uintptr(newDirectory),
		uintptr(unsafe.Pointer(newPathPtr)),
		uintptr(flags),
		0,
	)
	if errno != 0 {
		return errno
	}
	return nil
}

// renameatNoReplaceRetryingOnEINTR is a wrapper around platform-specific
// renameat variants that can perform a renameat operation that fails (with
// EEXIST) if the target already exists. It returns ENOTSUP if the functionality
// is not supported on the target filesystem and ENOSYS if the functionality is
// not supported on the platform as a whole. It retries on EINTR errors and
// returns on the first successful call or non-EINTR error.
func renameatNoReplaceRetryingOnEINTR(oldDirectory int, oldPath string, newDirectory int, newPath string) error {
	for {
		err := renameatxNP(oldDirectory, oldPath, newDirectory, newPath, renameatxNPExcl)
		if errors.Is(err, unix.EINTR) {
			continue
		}
		return err
	}
}
