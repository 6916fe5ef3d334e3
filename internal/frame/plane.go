package frame

import (
	"fmt"
	"sync"

	"golang.org/x/sys/unix"
)

// Plane exclusively owns a duplicated close-on-exec descriptor.
type Plane struct {
	Offset uint32
	Stride uint32

	fd   int
	once sync.Once
}

// DupPlane duplicates fd; the caller keeps ownership of the original.
func DupPlane(fd int, offset, stride uint32) (*Plane, error) {
	dup, err := DupFD(fd)
	if err != nil {
		return nil, err
	}
	return &Plane{fd: dup, Offset: offset, Stride: stride}, nil
}

// FD is valid until Close.
func (p *Plane) FD() int { return p.fd }

func (p *Plane) Close() error {
	var err error
	p.once.Do(func() {
		err = unix.Close(p.fd)
		p.fd = -1
	})
	return err
}

// DupFD returns an independent close-on-exec duplicate of fd.
func DupFD(fd int) (int, error) {
	if fd < 0 {
		return -1, fmt.Errorf("invalid file descriptor %d", fd)
	}
	dup, err := unix.FcntlInt(uintptr(fd), unix.F_DUPFD_CLOEXEC, 0)
	if err != nil {
		return -1, fmt.Errorf("duplicating fd %d: %w", fd, err)
	}
	return dup, nil
}
