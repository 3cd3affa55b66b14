package hashing

import "encoding/binary"

// Size160 is the length of a RIPEMD-160 digest in bytes.
const Size160 = 20

var ripemdIV = [5]uint32{0x67452301, 0xefcdab89, 0x98badcfe, 0x10325476, 0xc3d2e1f0}

// Message word selection for the left and right lines.
var (
	ripemdR = [80]uint{
		0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15,
		7, 4, 13, 1, 10, 6, 15, 3, 12, 0, 9, 5, 2, 14, 11, 8,
		3, 10, 14, 4, 9, 15, 8, 1, 2, 7, 0, 6, 13, 11, 5, 12,
		1, 9, 11, 10, 0, 8, 12, 4, 13, 3, 7, 15, 14, 5, 6, 2,
		4, 0, 5, 9, 7, 12, 2, 10, 14, 1, 3, 8, 11, 6, 15, 13,
	}

	ripemdRP = [80]uint{
		5, 14, 7, 0, 9, 2, 11, 4, 13, 6, 15, 8, 1, 10, 3, 12,
		6, 11, 3, 7, 0, 13, 5, 10, 14, 15, 8, 12, 4, 9, 1, 2,
		15, 5, 1, 3, 7, 14, 6, 9, 11, 8, 12, 2, 10, 0, 4, 13,
		8, 6, 4, 1, 3, 11, 15, 0, 5, 12, 2, 13, 9, 7, 10, 14,
		12, 15, 10, 4, 1, 5, 8, 7, 6, 2, 13, 14, 0, 3, 9, 11,
	}
)

// Rotation amounts for the left and right lines.
var (
	ripemdS = [80]uint{
		11, 14, 15, 12, 5, 8, 7, 9, 11, 13, 14, 15, 6, 7, 9, 8,
		7, 6, 8, 13, 11, 9, 7, 15, 7, 12, 15, 9, 11, 7, 13, 12,
		11, 13, 6, 7, 14, 9, 13, 15, 14, 8, 13, 6, 5, 12, 7, 5,
		11, 12, 14, 15, 14, 15, 9, 8, 9, 14, 5, 6, 8, 6, 5, 12,
		9, 15, 5, 11, 6, 8, 13, 12, 5, 12, 13, 14, 11, 8, 5, 6,
	}

	ripemdSP = [80]uint{
		8, 9, 9, 11, 13, 15, 15, 5, 7, 7, 8, 11, 14, 14, 12, 6,
		9, 13, 15, 7, 12, 8, 9, 11, 7, 7, 12, 7, 6, 15, 13, 11,
		9, 7, 15, 11, 8, 6, 6, 14, 12, 13, 5, 14, 13, 13, 7, 5,
		15, 5, 8, 11, 14, 14, 6, 14, 6, 9, 12, 9, 12, 5, 15, 8,
		8, 5, 12, 9, 12, 5, 14, 6, 8, 13, 6, 5, 15, 13, 11, 11,
	}
)

// Round constants, one per 16-step round.
var (
	ripemdK  = [5]uint32{0x00000000, 0x5a827999, 0x6ed9eba1, 0x8f1bbcdc, 0xa953fd4e}
	ripemdKP = [5]uint32{0x50a28be6, 0x5c4dd124, 0x6d703ef3, 0x7a6d76e9, 0x00000000}
)

// ripemdF is the nonlinear selection function for step j.
func ripemdF(j int, x, y, z uint32) uint32 {
	switch j / 16 {
	case 0:
		return x ^ y ^ z
	case 1:
		return (x & y) | (^x & z)
	case 2:
		return (x | ^y) ^ z
	case 3:
		return (x & z) | (y &^ z)
	default:
		return x ^ (y | ^z)
	}
}

// RIPEMD160 returns the RIPEMD-160 digest of data.
func RIPEMD160(data []byte) [Size160]byte {
	h := ripemdIV
	msg := pad(data, binary.LittleEndian)

	var x [16]uint32
	for off := 0; off < len(msg); off += blockSize {
		chunk := msg[off : off+blockSize]
		for i := 0; i < 16; i++ {
			x[i] = binary.LittleEndian.Uint32(chunk[i*4:])
		}

		al, bl, cl, dl, el := h[0], h[1], h[2], h[3], h[4]
		ar, br, cr, dr, er := h[0], h[1], h[2], h[3], h[4]

		for j := 0; j < 80; j++ {
			round := j / 16

			// Left line.
			t := al + ripemdF(j, bl, cl, dl) + x[ripemdR[j]] + ripemdK[round]
			t = rotl(t, ripemdS[j]) + el
			al = el
			el = dl
			dl = rotl(cl, 10)
			cl = bl
			bl = t

			// Right line runs the selection functions in reverse order.
			t = ar + ripemdF(79-j, br, cr, dr) + x[ripemdRP[j]] + ripemdKP[round]
			t = rotl(t, ripemdSP[j]) + er
			ar = er
			er = dr
			dr = rotl(cr, 10)
			cr = br
			br = t
		}

		t := h[1] + cl + dr
		h[1] = h[2] + dl + er
		h[2] = h[3] + el + ar
		h[3] = h[4] + al + br
		h[4] = h[0] + bl + cr
		h[0] = t
	}

	var digest [Size160]byte
	for i, v := range h {
		binary.LittleEndian.PutUint32(digest[i*4:], v)
	}

	return digest
}
