// Package hostfs implements a 9P2000.L backend over a real directory
// tree, grounded in rs9p's unpfs reference filesystem: every fid tracks
// the host path it currently resolves to, an optional open file handle,
// and how many real path components it has descended from the export
// root.
package hostfs

import (
	"os"
	"sync"
)

// Fid is the per-fid auxiliary state hostfs.Backend attaches to every
// ninep.Fid[*Fid]. Mirrors unpfs's UnpfsFId{realpath, file, depth}.
type Fid struct {
	mu       sync.RWMutex
	realpath string
	file     *os.File
	depth    int
}

func (f *Fid) path() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.realpath
}

func (f *Fid) setPath(p string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.realpath = p
}

func (f *Fid) getDepth() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.depth
}

func (f *Fid) setDepth(d int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.depth = d
}

func (f *Fid) openFile() *os.File {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.file
}

func (f *Fid) setOpenFile(file *os.File) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.file = file
}
