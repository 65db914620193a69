// Package boardcfg is the JSON-tagged boot configuration shape for one
// hub node: its board id, serial params, and the sensors pre-provisioned
// at boot (spec.md's Non-goals rule out persistence of the live roster
// across reboots, but a JSON-described initial roster is still how a
// board is provisioned). Grounded on devicecode-go's
// services/hal/config.go (HALConfig/BusCfg/DevCfg shape).
package boardcfg

// Config is the top-level JSON document.
type Config struct {
	Version int        `json:"version"`
	BoardID byte       `json:"board_id"`
	Serial  SerialCfg  `json:"serial"`
	Sensors []SensorCfg `json:"sensors,omitempty"`
}

// SerialCfg describes the UART link (spec.md §6: "115200 8N1 reference").
type SerialCfg struct {
	BaudRate int `json:"baud_rate"`
}

// SensorCfg pre-provisions one sensor at boot, equivalent to an
// ADD_SENSOR command issued before the dispatcher starts.
type SensorCfg struct {
	TypeCode byte   `json:"type_code"`
	Addr7    byte   `json:"addr7"`
	PeriodMs uint32 `json:"period_ms,omitempty"` // 0 -> driver default.
}

// DefaultBoardID is spec.md's default BOARD_ID (§6).
const DefaultBoardID byte = 0x01

// DefaultBaudRate is spec.md's reference serial rate (§6).
const DefaultBaudRate = 115200

// Default returns a Config with no pre-provisioned sensors, matching
// the reference firmware's empty-roster boot state.
func Default() Config {
	return Config{
		Version: 1,
		BoardID: DefaultBoardID,
		Serial:  SerialCfg{BaudRate: DefaultBaudRate},
	}
}
