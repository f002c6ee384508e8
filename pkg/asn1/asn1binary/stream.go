package asn1binary

import (
	"io"

	"github.com/davidjspooner/asn1kit/pkg/asn1/asn1error"
)

// ReadFrom reads exactly one complete TLV from r, for framing BER values on a
// byte stream. Decoding still happens on the returned buffer.
func ReadFrom(r io.Reader, maxSize int) ([]byte, error) {
	var header [16]byte
	n := 0
	read := func(count int) error {
		if n+count > len(header) {
			return asn1error.New(asn1error.Unsupported, "Tag number too large")
		}
		_, err := io.ReadFull(r, header[n:n+count])
		n += count
		return err
	}

	if err := read(1); err != nil {
		return nil, err
	}
	if header[0]&0x1f == 0x1f {
		for {
			if err := read(1); err != nil {
				return nil, noEOF(err)
			}
			if header[n-1]&0x80 == 0 {
				break
			}
		}
	}
	if err := read(1); err != nil {
		return nil, noEOF(err)
	}
	if lb := header[n-1]; lb&0x80 != 0 {
		count := int(lb & 0x7f)
		if count == 0 {
			return nil, asn1error.New(asn1error.Unsupported, "Indefinite length not supported")
		}
		if count > 4 {
			return nil, asn1error.New(asn1error.MalformedLength, "Invalid length")
		}
		if err := read(count); err != nil {
			return nil, noEOF(err)
		}
	}

	_, headerLen, length, err := readHeader(header[:n])
	if err != nil {
		return nil, err
	}
	if maxSize > 0 && headerLen+length > maxSize {
		return nil, asn1error.New(asn1error.MalformedLength, "Element of %d bytes exceeds limit of %d", headerLen+length, maxSize)
	}
	buf := make([]byte, headerLen+length)
	copy(buf, header[:n])
	if _, err := io.ReadFull(r, buf[n:]); err != nil {
		return nil, noEOF(err)
	}
	return buf, nil
}

func noEOF(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}
