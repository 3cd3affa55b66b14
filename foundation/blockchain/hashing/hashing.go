// Package hashing implements the SHA-256 and RIPEMD-160 digests that the
// block, transaction and address formats of the ledger are defined in terms
// of. Both are written out from their published standards (FIPS 180-4 and
// ISO/IEC 10118-3) so the ledger never depends on what a platform crypto
// provider happens to ship.
//
// All word arithmetic is unsigned 32-bit and wraps modulo 2^32. That wrap is
// part of both algorithms and not an overflow.
package hashing

import "encoding/binary"

// blockSize is the compression block size shared by both algorithms.
const blockSize = 64

// pad appends the 0x80 marker, zero bytes and the 64-bit message length in
// bits, using the byte order the algorithm defines for the length suffix.
// The result is always a multiple of blockSize.
func pad(data []byte, order binary.ByteOrder) []byte {
	n := len(data)

	// (n + 1 + zeros) % 64 must land on 56 so the length fills the block.
	zeros := (55 - n%blockSize + blockSize) % blockSize

	msg := make([]byte, n+1+zeros+8)
	copy(msg, data)
	msg[n] = 0x80
	order.PutUint64(msg[len(msg)-8:], uint64(n)*8)

	return msg
}

// rotl rotates x left by n bits.
func rotl(x uint32, n uint) uint32 {
	return x<<n | x>>(32-n)
}

// rotr rotates x right by n bits.
func rotr(x uint32, n uint) uint32 {
	return x>>n | x<<(32-n)
}
