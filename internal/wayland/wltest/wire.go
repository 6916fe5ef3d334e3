package wltest

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net"

	"golang.org/x/sys/unix"
)

const (
	headerSize       = 8
	maxFdsPerMessage = 28
	readSize         = 4096
)

var errShort = errors.New("wltest: truncated request")

var order = binary.NativeEndian

type encoder struct {
	buf []byte
}

func newEncoder(sender uint32, opcode uint16) *encoder {
	e := &encoder{buf: make([]byte, headerSize, 64)}
	order.PutUint32(e.buf[0:], sender)
	order.PutUint32(e.buf[4:], uint32(opcode))
	return e
}

func (e *encoder) uint(v uint32) { e.buf = order.AppendUint32(e.buf, v) }

func (e *encoder) string(s string) {
	e.uint(uint32(len(s) + 1))
	e.buf = append(e.buf, s...)
	e.buf = append(e.buf, 0)
	for len(e.buf)%4 != 0 {
		e.buf = append(e.buf, 0)
	}
}

func (e *encoder) bytes() []byte {
	op := order.Uint32(e.buf[4:]) & 0xffff
	order.PutUint32(e.buf[4:], uint32(len(e.buf))<<16|op)
	return e.buf
}

// decoder reads request arguments. The first failure sticks.
type decoder struct {
	data []byte
	off  int
	fds  func() (int, bool)
	err  error
}

func (d *decoder) uint() uint32 {
	if d.off+4 > len(d.data) {
		if d.err == nil {
			d.err = errShort
		}
		return 0
	}
	v := order.Uint32(d.data[d.off:])
	d.off += 4
	return v
}

func (d *decoder) int() int32 { return int32(d.uint()) }

func (d *decoder) fixed() float64 { return float64(d.int()) / 256 }

func (d *decoder) string() string {
	n := int(d.uint())
	padded := (n + 3) &^ 3
	if d.err != nil || d.off+padded > len(d.data) {
		if d.err == nil {
			d.err = errShort
		}
		return ""
	}
	b := d.data[d.off : d.off+n]
	d.off += padded
	if len(b) > 0 && b[len(b)-1] == 0 {
		b = b[:len(b)-1]
	}
	return string(b)
}

func (d *decoder) fd() int {
	fd, ok := d.fds()
	if !ok {
		if d.err == nil {
			d.err = errors.New("wltest: request is missing its file descriptor")
		}
		return -1
	}
	return fd
}

type message struct {
	sender uint32
	opcode uint16
	args   *decoder
}

// wire frames messages on the server end and collects SCM_RIGHTS
// descriptors in arrival order.
type wire struct {
	conn *net.UnixConn
	in   []byte
	fds  []int
	rbuf []byte
	oob  []byte
}

func newWire(conn *net.UnixConn) *wire {
	return &wire{
		conn: conn,
		rbuf: make([]byte, readSize),
		oob:  make([]byte, unix.CmsgSpace(maxFdsPerMessage*4)),
	}
}

func (w *wire) buffered() bool {
	if len(w.in) < headerSize {
		return false
	}
	return len(w.in) >= int(order.Uint32(w.in[4:])>>16)
}

func (w *wire) read() (*message, error) {
	for !w.buffered() {
		if err := w.fill(); err != nil {
			return nil, err
		}
	}
	sender := order.Uint32(w.in[0:])
	word := order.Uint32(w.in[4:])
	size := int(word >> 16)
	if size < headerSize {
		return nil, fmt.Errorf("wltest: invalid message size %d", size)
	}
	body := make([]byte, size-headerSize)
	copy(body, w.in[headerSize:size])
	w.in = w.in[size:]
	return &message{
		sender: sender,
		opcode: uint16(word & 0xffff),
		args:   &decoder{data: body, fds: w.popFD},
	}, nil
}

func (w *wire) fill() error {
	n, oobn, _, _, err := w.conn.ReadMsgUnix(w.rbuf, w.oob)
	if oobn > 0 {
		msgs, perr := unix.ParseSocketControlMessage(w.oob[:oobn])
		if perr != nil {
			return perr
		}
		for i := range msgs {
			if fds, err := unix.ParseUnixRights(&msgs[i]); err == nil {
				w.fds = append(w.fds, fds...)
			}
		}
	}
	if n > 0 {
		w.in = append(w.in, w.rbuf[:n]...)
	}
	if err != nil {
		return err
	}
	if n == 0 {
		return io.EOF
	}
	return nil
}

func (w *wire) popFD() (int, bool) {
	if len(w.fds) == 0 {
		return -1, false
	}
	fd := w.fds[0]
	w.fds = w.fds[1:]
	return fd, true
}

func (w *wire) write(data []byte) error {
	_, err := w.conn.Write(data)
	return err
}

func (w *wire) close() error {
	for _, fd := range w.fds {
		unix.Close(fd)
	}
	w.fds = nil
	return w.conn.Close()
}
