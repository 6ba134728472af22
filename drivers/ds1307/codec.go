package ds1307

// BCD and hour-register codecs. The hour register carries the 12/24-hour
// mode in bit 6 and, in 12-hour mode, the PM flag in bit 5; the device
// mirrors both so writes reproduce the encoding the chip was last using.

// decToBcd packs 0-99 with the tens digit in bits 7-4 and units in bits 3-0.
func decToBcd(n int) byte {
	return byte(((n / 10) << 4) | (n % 10))
}

// bcdToDec is the inverse of decToBcd. Inputs with nibbles above 9 produce
// garbage; register contents are not validated on read.
func bcdToDec(b byte) int {
	return int(b>>4)*10 + int(b&0x0F)
}

// decodeHours converts a raw hour register to a canonical 24-hour value and
// records the observed mode and PM flag on the device.
func (d *Device) decodeHours(reg byte) int {
	if reg&bitMode12 == 0 {
		// 24-hour encoding: BCD in bits 5-0.
		d.mode12 = false
		d.pm = false
		return bcdToDec(reg & mask24Hour)
	}

	// 12-hour encoding: BCD 1-12 in bits 4-0, PM in bit 5.
	d.mode12 = true
	d.pm = reg&bitPM != 0
	h := bcdToDec(reg & mask12Hour)
	if d.pm {
		if h != 12 {
			h += 12 // 1-11 PM
		}
	} else if h == 12 {
		h = 0 // 12 AM is midnight
	}
	return h
}

// encodeHours converts a canonical 24-hour value into the register encoding
// selected by the device's hour mode.
func (d *Device) encodeHours(hour int) byte {
	if !d.mode12 {
		return decToBcd(hour)
	}

	d.pm = hour >= 12
	h := hour % 12
	if h == 0 {
		h = 12 // midnight and noon both read 12 on the dial
	}
	reg := decToBcd(h) | bitMode12
	if d.pm {
		reg |= bitPM
	}
	return reg
}
