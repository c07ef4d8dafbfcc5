package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainDocument = "blueprint/document/v1"
	DomainEntry    = "blueprint/entry/v1"
)

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
// The null byte (0x00) separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// DocumentHash computes the content-addressed hash of a document.
// Two documents hash equal iff their canonical encodings are equal, which
// includes schema order.
func DocumentHash(doc Document) (string, error) {
	canonical, err := MarshalCanonical(doc)
	if err != nil {
		return "", fmt.Errorf("DocumentHash: %w", err)
	}
	return hashWithDomain(DomainDocument, canonical), nil
}

// EntryID computes the chained ID of a journal entry.
// The previous entry's ID is part of the input, so rewriting any earlier
// entry changes every later ID.
func EntryID(prevID string, seq int64, opName, opArgs, documentHash string) string {
	var buf []byte
	buf = append(buf, prevID...)
	buf = append(buf, 0x00)
	buf = strconv.AppendInt(buf, seq, 10)
	buf = append(buf, 0x00)
	buf = append(buf, opName...)
	buf = append(buf, 0x00)
	buf = append(buf, opArgs...)
	buf = append(buf, 0x00)
	buf = append(buf, documentHash...)
	return hashWithDomain(DomainEntry, buf)
}

// MustDocumentHash is like DocumentHash but panics on error.
// Documents contain only strings, bools, ints and slices, so encoding
// cannot fail for values built through this package.
func MustDocumentHash(doc Document) string {
	h, err := DocumentHash(doc)
	if err != nil {
		panic(err)
	}
	return h
}
