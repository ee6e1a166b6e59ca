/*
NAME
  psi.go

DESCRIPTION
  psi.go builds the Program Association Table and Program Map Table
  sections emitted once at the head of every output stream, each protected
  by a trailing CRC-32/MPEG-2.

AUTHOR
  es2ts contributors

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package psi builds the minimal PAT and PMT sections needed to declare a
// single-program, single-elementary-stream Transport Stream.
package psi

// Table IDs.
const (
	TableIDPAT = 0x00
	TableIDPMT = 0x02
)

// PAT PID is fixed by the MPEG-2 standard.
const PATPID = 0x0000

// Elementary stream_type values carried in the PMT, one per supported
// codec family.
const (
	StreamTypeH262 = 0x02
	StreamTypeH264 = 0x1B
	StreamTypeAVS  = 0x42
)

// BuildPAT returns a complete PAT section (table_id through CRC-32)
// declaring one program, programNumber, mapped to pmtPID.
func BuildPAT(transportStreamID, programNumber, pmtPID uint16) []byte {
	// section_length covers every byte after the length field itself:
	// transport_stream_id(2) + reserved/version/current_next(1) +
	// section_number(1) + last_section_number(1) + one program
	// entry(4) + CRC(4) = 13.
	const sectionLength = 13

	section := make([]byte, 0, 3+sectionLength)
	section = append(section, TableIDPAT)
	section = append(section,
		byte(0xB0|(sectionLength>>8)&0x0F), // ssi=1, '0', reserved='11', len hi
		byte(sectionLength),                // len lo
	)
	section = append(section, byte(transportStreamID>>8), byte(transportStreamID))
	section = append(section, 0xC1) // reserved='11', version=0, current_next=1
	section = append(section, 0x00) // section_number
	section = append(section, 0x00) // last_section_number
	section = append(section, byte(programNumber>>8), byte(programNumber))
	section = append(section, byte(0xE0|(pmtPID>>8)&0x1F), byte(pmtPID)) // reserved='111' + PMT_PID

	return AddCRC(section)
}

// BuildPMT returns a complete PMT section (table_id through CRC-32)
// declaring one program, programNumber, with PCR_PID set to pcrPID and a
// single elementary stream of the given type and PID. This module never
// writes PCR fields, so the PID named as PCR_PID carries no PCR; this is a
// known simplification.
func BuildPMT(programNumber, pcrPID uint16, streamType byte, elementaryPID uint16) []byte {
	// section_length covers program_number(2) + reserved/version/cn(1) +
	// section_number(1) + last_section_number(1) + PCR_PID field(2) +
	// program_info_length field(2) + one ES entry(5) + CRC(4) = 18.
	const sectionLength = 18

	section := make([]byte, 0, 3+sectionLength)
	section = append(section, TableIDPMT)
	section = append(section,
		byte(0xB0|(sectionLength>>8)&0x0F),
		byte(sectionLength),
	)
	section = append(section, byte(programNumber>>8), byte(programNumber))
	section = append(section, 0xC1) // reserved='11', version=0, current_next=1
	section = append(section, 0x00) // section_number
	section = append(section, 0x00) // last_section_number
	section = append(section, byte(0xE0|(pcrPID>>8)&0x1F), byte(pcrPID))
	section = append(section, 0xF0, 0x00) // reserved='1111' + program_info_length=0

	section = append(section, streamType)
	section = append(section, byte(0xE0|(elementaryPID>>8)&0x1F), byte(elementaryPID))
	section = append(section, 0xF0, 0x00) // reserved='1111' + ES_info_length=0

	return AddCRC(section)
}
