package token

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"

	"github.com/google/uuid"
)

const recordFormatVersionV1 = 1

func encodeRecord(r *Record) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte(recordFormatVersionV1)
	buf.Write(r.Series[:])

	if len(r.OwnerID) == 0 || len(r.OwnerID) > 255 {
		return nil, errors.New("invalid owner id length")
	}
	buf.WriteByte(byte(len(r.OwnerID)))
	buf.WriteString(r.OwnerID)

	if len(r.SecretHash) == 0 || len(r.SecretHash) > 65535 {
		return nil, errors.New("invalid secret hash length")
	}
	if err := binary.Write(&buf, binary.BigEndian, uint16(len(r.SecretHash))); err != nil {
		return nil, err
	}
	buf.WriteString(r.SecretHash)

	if err := binary.Write(&buf, binary.BigEndian, r.IssuedAt); err != nil {
		return nil, err
	}
	if err := binary.Write(&buf, binary.BigEndian, r.ExpiresAt); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func decodeRecord(data []byte) (*Record, error) {
	reader := bytes.NewReader(data)

	version, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}
	if version != recordFormatVersionV1 {
		return nil, errors.New("invalid record version")
	}

	r := &Record{}

	if _, err := io.ReadFull(reader, r.Series[:]); err != nil {
		return nil, err
	}
	if r.Series == uuid.Nil {
		return nil, errors.New("nil series in record")
	}

	ownerLen, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}
	owner := make([]byte, ownerLen)
	if _, err := io.ReadFull(reader, owner); err != nil {
		return nil, err
	}
	r.OwnerID = string(owner)

	var hashLen uint16
	if err := binary.Read(reader, binary.BigEndian, &hashLen); err != nil {
		return nil, err
	}
	hash := make([]byte, hashLen)
	if _, err := io.ReadFull(reader, hash); err != nil {
		return nil, err
	}
	r.SecretHash = string(hash)

	if err := binary.Read(reader, binary.BigEndian, &r.IssuedAt); err != nil {
		return nil, err
	}
	if err := binary.Read(reader, binary.BigEndian, &r.ExpiresAt); err != nil {
		return nil, err
	}

	if reader.Len() != 0 {
		return nil, errors.New("trailing bytes in record")
	}

	return r, nil
}
