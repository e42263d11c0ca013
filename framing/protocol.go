package framing

// ASCII control characters used by the ACARS framing protocol, per
// ARINC 618-7 and spec.md's GLOSSARY.
const (
	SOH = 0x01
	STX = 0x02
	ETX = 0x03
	SYN = 0x16
	ETB = 0x17

	preKeyChar = 0xff
	bitSync1   = '+'
	bitSync2   = '*'
)

// consecutivePreKeyLimit is 10ms of pre-key at the 2400 bit/s ACARS rate.
const consecutivePreKeyLimit = int(0.010 * 2400)

// syncErrorLimit is the maximum Hamming distance accepted when matching
// the formed 40-bit sync word against the expected BIT_SYNC+CHAR_SYNC+SOH
// pattern.
const syncErrorLimit = 3

// syncBitsLimit is how many bits may be consumed searching for sync
// before giving up and returning to HeadLost (5 words * 8 bits, plus
// slack).
const syncBitsLimit = 40 + 15

// maxTextBytes is the ACARS maximum text payload, per message.h.
const maxTextBytes = 220

// maxBlockBytes bounds rawFrame's growth in the Text state: SOH + mode +
// addr + ack + label + blkid + STX + seq + flightID + text + ETX/ETB.
const maxBlockBytes = 1 + 1 + 7 + 1 + 2 + 1 + 1 + 4 + 6 + maxTextBytes + 1
