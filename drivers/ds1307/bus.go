package ds1307

// Raw register access. Every transaction updates the presence flag: an
// acknowledged transfer marks the chip present, a failed one marks it absent.

// readBlock points the register counter at reg and reads len(buf) bytes in
// one write-then-read transaction.
func (d *Device) readBlock(reg byte, buf []byte) error {
	d.w[0] = reg
	if err := d.i2c.Tx(d.addr, d.w[:1], buf); err != nil {
		d.present = false
		return err
	}
	d.present = true
	return nil
}

// writeBlock writes the register pointer followed by data as a single atomic
// bus transaction.
func (d *Device) writeBlock(reg byte, data []byte) error {
	d.w[0] = reg
	n := copy(d.w[1:], data)
	if err := d.i2c.Tx(d.addr, d.w[:1+n], nil); err != nil {
		d.present = false
		return err
	}
	d.present = true
	return nil
}

// ReadRegister reads a single register. Callers treat these reads as
// best-effort status probes, so a failed transaction yields 0xFF rather than
// an error.
func (d *Device) ReadRegister(reg byte) byte {
	var buf [1]byte
	if err := d.readBlock(reg, buf[:]); err != nil {
		return 0xFF
	}
	return buf[0]
}

// WriteRegister writes a single register.
func (d *Device) WriteRegister(reg, val byte) error {
	d.w[0] = reg
	d.w[1] = val
	if err := d.i2c.Tx(d.addr, d.w[:2], nil); err != nil {
		d.present = false
		return err
	}
	d.present = true
	return nil
}
