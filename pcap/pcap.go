// Copyright (c) 2023, The OTNS Authors.
// All rights reserved.
//
// Redistribution and use in source and binary forms, with or without
// modification, are permitted provided that the following conditions are met:
// 1. Redistributions of source code must retain the above copyright
//    notice, this list of conditions and the following disclaimer.
// 2. Redistributions in binary form must reproduce the above copyright
//    notice, this list of conditions and the following disclaimer in the
//    documentation and/or other materials provided with the distribution.
// 3. Neither the name of the copyright holder nor the
//    names of its contributors may be used to endorse or promote products
//    derived from this software without specific prior written permission.
//
// THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND CONTRIBUTORS "AS IS"
// AND ANY EXPRESS OR IMPLIED WARRANTIES, INCLUDING, BUT NOT LIMITED TO, THE
// IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS FOR A PARTICULAR PURPOSE
// ARE DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT HOLDER OR CONTRIBUTORS BE
// LIABLE FOR ANY DIRECT, INDIRECT, INCIDENTAL, SPECIAL, EXEMPLARY, OR
// CONSEQUENTIAL DAMAGES (INCLUDING, BUT NOT LIMITED TO, PROCUREMENT OF
// SUBSTITUTE GOODS OR SERVICES; LOSS OF USE, DATA, OR PROFITS; OR BUSINESS
// INTERRUPTION) HOWEVER CAUSED AND ON ANY THEORY OF LIABILITY, WHETHER IN
// CONTRACT, STRICT LIABILITY, OR TORT (INCLUDING NEGLIGENCE OR OTHERWISE)
// ARISING IN ANY WAY OUT OF THE USE OF THIS SOFTWARE, EVEN IF ADVISED OF THE
// POSSIBILITY OF SUCH DAMAGE.

// Package pcap writes IEEE 802.15.4 frames into PCAP files (link type 195, frames with FCS).
package pcap

import (
	"bufio"
	"encoding/binary"
	"io"
	"os"

	"github.com/pkg/errors"
)

const (
	dltIeee802154       = 195
	pcapMagicNumber     = 0xA1B2C3D4
	pcapVersionMajor    = 2
	pcapVersionMinor    = 4
	pcapSnapLen         = 256
	pcapFileHeaderSize  = 24
	pcapFrameHeaderSize = 16
)

type fileHeader struct {
	Magic        uint32
	VersionMajor uint16
	VersionMinor uint16
	ThisZone     int32
	SigFigs      uint32
	SnapLen      uint32
	LinkType     uint32
}

type recordHeader struct {
	TsSec   uint32
	TsUsec  uint32
	InclLen uint32
	OrigLen uint32
}

// Frame is a single PSDU written to a PCAP file, with its timestamp in microseconds.
type Frame struct {
	Timestamp uint64
	Data      []byte
}

// Writer encodes frames as PCAP records. Frames longer than the snapshot length are truncated.
type Writer struct {
	w      io.Writer
	frames int
}

// NewWriter writes the PCAP file header to w.
func NewWriter(w io.Writer) (*Writer, error) {
	hdr := fileHeader{
		Magic:        pcapMagicNumber,
		VersionMajor: pcapVersionMajor,
		VersionMinor: pcapVersionMinor,
		SnapLen:      pcapSnapLen,
		LinkType:     dltIeee802154,
	}
	if err := binary.Write(w, binary.LittleEndian, &hdr); err != nil {
		return nil, err
	}
	return &Writer{w: w}, nil
}

func (pw *Writer) WriteFrame(frame Frame) error {
	data := frame.Data
	if len(data) > pcapSnapLen {
		data = data[:pcapSnapLen]
	}
	rec := recordHeader{
		TsSec:   uint32(frame.Timestamp / 1000000),
		TsUsec:  uint32(frame.Timestamp % 1000000),
		InclLen: uint32(len(data)),
		OrigLen: uint32(len(frame.Data)),
	}
	if err := binary.Write(pw.w, binary.LittleEndian, &rec); err != nil {
		return err
	}
	if _, err := pw.w.Write(data); err != nil {
		return err
	}
	pw.frames++
	return nil
}

// Frames returns the number of frames written.
func (pw *Writer) Frames() int {
	return pw.frames
}

// File is a PCAP capture file. Frames are buffered until Sync or Close.
type File interface {
	AppendFrame(frame Frame) error
	Sync() error
	Close() error
}

type captureFile struct {
	fd  *os.File
	buf *bufio.Writer
	*Writer
}

// NewFile creates (or truncates) a PCAP file and writes its header.
func NewFile(filename string) (File, error) {
	fd, err := os.OpenFile(filename, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return nil, errors.Wrapf(err, "create pcap %s", filename)
	}

	cf := &captureFile{
		fd:  fd,
		buf: bufio.NewWriter(fd),
	}
	if cf.Writer, err = NewWriter(cf.buf); err == nil {
		err = cf.Sync()
	}
	if err != nil {
		_ = fd.Close()
		return nil, errors.Wrapf(err, "write pcap header %s", filename)
	}
	return cf, nil
}

func (cf *captureFile) AppendFrame(frame Frame) error {
	return cf.WriteFrame(frame)
}

func (cf *captureFile) Sync() error {
	if err := cf.buf.Flush(); err != nil {
		return err
	}
	return cf.fd.Sync()
}

func (cf *captureFile) Close() error {
	err := cf.buf.Flush()
	if cerr := cf.fd.Close(); err == nil {
		err = cerr
	}
	return err
}
