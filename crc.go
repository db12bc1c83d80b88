package png

// CRC-32 as used by PNG chunk records: reflected polynomial 0xEDB88320,
// all-ones initial value, final one's complement. The table construction
// follows the reference code in the PNG 1.2 specification appendix, so the
// output matches any standard CRC-32 implementation bit for bit.

const crcPolynomial = 0xEDB88320

// CRCTable memoizes the 256 per-byte CRC-32 remainders.
type CRCTable [256]uint32

// crcTable is built once and shared by every container. It is never
// mutated after construction, so concurrent reads need no locking.
var crcTable = NewCRCTable()

// NewCRCTable builds the lookup table by folding each byte value through
// eight shift/XOR iterations.
func NewCRCTable() *CRCTable {
	var table CRCTable

	for i := range table {
		crc := uint32(i)
		for k := 0; k < 8; k++ {
			if crc&1 == 1 {
				crc = crcPolynomial ^ (crc >> 1)
			} else {
				crc >>= 1
			}
		}

		table[i] = crc
	}

	return &table
}

// Checksum returns the CRC-32 of buf.
func (t *CRCTable) Checksum(buf []byte) uint32 {
	crc := uint32(0xFFFFFFFF)

	for _, b := range buf {
		crc = (crc >> 8) ^ t[byte(crc)^b]
	}

	return crc ^ 0xFFFFFFFF
}
