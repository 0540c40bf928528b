package hostfs

import "golang.org/x/sys/unix"

// unixFlags is the set of open(2) flags hostfs honors from a client's
// Tlopen/Tlcreate request. Some clients set bits that don't make sense
// for a 9P export — most notably the Linux v9fs kernel client
// propagating O_DIRECT through TCREATE/TOPEN, which then breaks because
// our reads and writes aren't aligned the way O_DIRECT requires.
// Masking to a known-good set fixes that instead of chasing every
// buggy client individually.
const unixFlags = unix.O_WRONLY | unix.O_RDONLY | unix.O_RDWR | unix.O_CREAT | unix.O_TRUNC

func maskFlags(flags uint32) int {
	return int(flags) & unixFlags
}
