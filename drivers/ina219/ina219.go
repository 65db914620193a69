// Package ina219 is the reference driver for the INA219 current/voltage
// monitor (spec.md §1: "the only concrete sensor... treated as an
// example driver, not core behavior"). Register access is grounded on
// devicecode-go's drivers/ltc4015 word-register idiom (bus.go's
// readWord/writeWord): fixed-size write/read buffers, one Tx per
// register. INA219 register semantics (scaling, which registers back
// which fields) follow the original firmware's drivers/ina219.c.
package ina219

import (
	"time"

	"sensorhub/iohw"
)

// Registers. Gain and BusRange share register 0x00 in the reference
// firmware (a simplified stand-in for the real INA219 configuration
// register); each write is a full 8-bit overwrite, not a read-modify-write.
const (
	RegConfig      byte = 0x00
	RegShuntUv     byte = 0x01
	RegBusVoltage  byte = 0x02
	RegPower       byte = 0x03
	RegCurrent     byte = 0x04
	RegCalibration byte = 0x05
)

const txTimeout = 100 * time.Millisecond

func writeByte(bus iohw.I2CBus, addr7, reg, value byte) error {
	w := [2]byte{reg, value}
	return bus.WriteRead(addr7, w[:], nil, txTimeout)
}

func writeWord(bus iohw.I2CBus, addr7, reg byte, value uint16) error {
	w := [3]byte{reg, byte(value >> 8), byte(value)}
	return bus.WriteRead(addr7, w[:], nil, txTimeout)
}

func readWord(bus iohw.I2CBus, addr7, reg byte) (uint16, error) {
	w := [1]byte{reg}
	var r [2]byte
	if err := bus.WriteRead(addr7, w[:], r[:], txTimeout); err != nil {
		return 0, err
	}
	return uint16(r[0])<<8 | uint16(r[1]), nil
}

// SetGain writes register 0x00 (spec-supplemented field, restored from
// original_source's ina219.c).
func SetGain(bus iohw.I2CBus, addr7, value byte) error {
	return writeByte(bus, addr7, RegConfig, value)
}

// SetBusRange writes register 0x00.
func SetBusRange(bus iohw.I2CBus, addr7, value byte) error {
	return writeByte(bus, addr7, RegConfig, value)
}

// SetCalibration writes the 16-bit calibration register 0x05.
func SetCalibration(bus iohw.I2CBus, addr7 byte, value uint16) error {
	return writeWord(bus, addr7, RegCalibration, value)
}

// ReadBusVoltageMv reads register 0x02, scaled the way the original
// driver does: top 13 bits, *4 to get millivolts.
func ReadBusVoltageMv(bus iohw.I2CBus, addr7 byte) (uint16, error) {
	raw, err := readWord(bus, addr7, RegBusVoltage)
	if err != nil {
		return 0, err
	}
	return (raw >> 3 & 0x1FFF) * 4, nil
}

// ReadShuntVoltageUv reads register 0x01, scaled ×10 to microvolts.
func ReadShuntVoltageUv(bus iohw.I2CBus, addr7 byte) (int16, error) {
	raw, err := readWord(bus, addr7, RegShuntUv)
	if err != nil {
		return 0, err
	}
	return int16(raw) * 10, nil
}

// ReadCurrentUa reads register 0x04, already in microamps.
func ReadCurrentUa(bus iohw.I2CBus, addr7 byte) (int16, error) {
	raw, err := readWord(bus, addr7, RegCurrent)
	if err != nil {
		return 0, err
	}
	return int16(raw), nil
}

// ReadPowerMw reads register 0x03, scaled ×20 to milliwatts.
func ReadPowerMw(bus iohw.I2CBus, addr7 byte) (uint16, error) {
	raw, err := readWord(bus, addr7, RegPower)
	if err != nil {
		return 0, err
	}
	return raw * 20, nil
}
