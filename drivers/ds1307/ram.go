package ds1307

// Battery-backed RAM passthrough. Offsets are relative to the start of the
// RAM window (offset 0 is chip register 0x08); contents are opaque bytes.

// ReadRAM reads len(buf) bytes starting at offset.
func (d *Device) ReadRAM(offset uint8, buf []byte) error {
	if int(offset)+len(buf) > RAMSize {
		return ErrRAMBounds
	}
	return d.readBlock(regRAM+offset, buf)
}

// WriteRAM writes data starting at offset in one transaction.
func (d *Device) WriteRAM(offset uint8, data []byte) error {
	if int(offset)+len(data) > RAMSize {
		return ErrRAMBounds
	}
	return d.writeBlock(regRAM+offset, data)
}
