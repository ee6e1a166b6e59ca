/*
NAME
  crc.go

DESCRIPTION
  crc.go implements the CRC-32/MPEG-2 variant used to protect PSI sections:
  polynomial 0x04C11DB7, initial value 0xFFFFFFFF, MSB-first, no input or
  output reflection, no final xor. This differs from the reflected
  CRC-32/IEEE the standard library's hash/crc32 package computes, so it
  cannot be reused here.

AUTHOR
  es2ts contributors

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package psi

const mpeg2CRCPoly = 0x04C11DB7

// crcTable is the precomputed 256-entry MSB-first lookup table for
// CRC-32/MPEG-2, built once at init rather than bit-by-bit on every
// section, per the source's own design note.
var crcTable = makeCRCTable(mpeg2CRCPoly)

func makeCRCTable(poly uint32) [256]uint32 {
	var table [256]uint32
	for i := 0; i < 256; i++ {
		crc := uint32(i) << 24
		for j := 0; j < 8; j++ {
			if crc&0x80000000 != 0 {
				crc = (crc << 1) ^ poly
			} else {
				crc <<= 1
			}
		}
		table[i] = crc
	}
	return table
}

// updateCRC folds data into crc using the MSB-first table.
func updateCRC(crc uint32, data []byte) uint32 {
	for _, b := range data {
		crc = (crc << 8) ^ crcTable[byte(crc>>24)^b]
	}
	return crc
}

// AddCRC appends the CRC-32/MPEG-2 of section (computed from its first
// byte, typically table_id, onward) to section and returns the result.
func AddCRC(section []byte) []byte {
	crc := updateCRC(0xFFFFFFFF, section)
	return append(section, byte(crc>>24), byte(crc>>16), byte(crc>>8), byte(crc))
}
