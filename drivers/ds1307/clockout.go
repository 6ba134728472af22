package ds1307

// ClockOut mirrors the SQW/OUT control register (0x07).
type ClockOut struct {
	// Enabled drives the SQW/OUT pin with the divided oscillator output.
	Enabled bool
	// DefaultHigh is the pin level while the square wave is disabled.
	DefaultHigh bool
	// Divider selects the output frequency: 0 = 1Hz, 1 = 4.096kHz,
	// 2 = 8.192kHz, 3 = 32.768kHz. Only the low two bits are used.
	Divider uint8
}

// ConfigureClockOut composes the control register from c and writes it,
// adopting c as the device's mirrored clock-out state.
func (d *Device) ConfigureClockOut(c ClockOut) error {
	c.Divider &= maskDivider
	var reg byte
	if c.DefaultHigh {
		reg |= bitOutLevel
	}
	if c.Enabled {
		reg |= bitSQWEnable
	}
	reg |= c.Divider
	if err := d.WriteRegister(regControl, reg); err != nil {
		return err
	}
	d.sqw = c
	return nil
}

// UpdateClockOut reads the control register and decomposes it into the
// mirrored flags, resynchronising after an external change.
func (d *Device) UpdateClockOut() (ClockOut, error) {
	var buf [1]byte
	if err := d.readBlock(regControl, buf[:]); err != nil {
		return ClockOut{}, err
	}
	reg := buf[0]
	d.sqw = ClockOut{
		Enabled:     reg&bitSQWEnable != 0,
		DefaultHigh: reg&bitOutLevel != 0,
		Divider:     reg & maskDivider,
	}
	return d.sqw, nil
}
