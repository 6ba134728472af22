// Package ds1307 provides constants for register addresses and bitfields used
// in the operation of the DS1307 real-time clock.
package ds1307

const (
	// 7-bit I2C address (1101_000b).
	AddressDefault = 0x68

	// --- Register sub-addresses ---

	regSeconds = 0x00 // BCD seconds, bit7 = CH (clock halt)
	regMinutes = 0x01 // BCD minutes
	regHours   = 0x02 // BCD hours, 12/24 mode-encoded
	regWeekday = 0x03 // day of week 1-7
	regDay     = 0x04 // BCD day of month
	regMonth   = 0x05 // BCD month
	regYear    = 0x06 // BCD year since 2000
	regControl = 0x07 // SQW/OUT control
	regRAM     = 0x08 // first byte of battery-backed RAM

	// RAMSize is the number of general-purpose battery-backed bytes
	// (registers 0x08-0x3F).
	RAMSize = 56

	// The time block spans seconds through year.
	timeBlockLen = 7

	// --- Seconds register (0x00) ---
	bitClockHalt = 0x80

	// --- Hours register (0x02) ---
	bitMode12  = 0x40 // set = 12-hour encoding
	bitPM      = 0x20 // meaningful only in 12-hour mode
	mask12Hour = 0x1F // BCD 1-12
	mask24Hour = 0x3F // BCD 0-23

	// --- Control register (0x07) ---
	bitOutLevel  = 0x80 // OUT pin level while square wave is disabled
	bitSQWEnable = 0x10 // square-wave output enable
	maskDivider  = 0x03 // 1Hz, 4.096kHz, 8.192kHz, 32.768kHz
)
