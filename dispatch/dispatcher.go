// Package dispatch implements the CommandDispatcher (spec.md §4.6): a
// long-running loop that drains parsed commands from a frame.Parser,
// routes them by opcode against a sensor.Manager, and transmits a
// response built by respbuild. Grounded on the reference firmware's
// CommandTask (cmd_task.c): one goroutine, one reused TX buffer sized
// for the worst-case SAMPLES frame, a single-threaded switch.
package dispatch

import (
	"sensorhub/drivers"
	"sensorhub/errcode"
	"sensorhub/frame"
	"sensorhub/iohw"
	"sensorhub/logx"
	"sensorhub/respbuild"
	"sensorhub/sensor"
)

// Opcodes (spec.md §4.6).
const (
	OpReadSamples    = 0
	OpAddSensor      = 1
	OpRemoveSensor   = 2
	OpPing           = 3
	OpListSensors    = 4
	OpSetPayloadMask = 5
	OpGetPayloadMask = 6
	OpGetConfig      = 7

	OpSetRangeLo = 20
	OpSetRangeHi = 29
	OpSetPeriod  = 20 // SET_PERIOD is the first of the 20-29 SET range.

	OpGetRangeLo = 30
	OpGetRangeHi = 39
)

// PeriodUnitMs mirrors sensor.PeriodUnitMs (param-to-ms for SET_PERIOD,
// spec.md §6).
const PeriodUnitMs = sensor.PeriodUnitMs

// Dispatcher owns the single reused TX buffer and the board identity
// every outgoing frame carries.
type Dispatcher struct {
	boardID byte
	mgr     *sensor.Manager
	link    iohw.SerialLink
	txbuf   []byte
}

// TxBufSize is the worst-case SAMPLES frame: header + QUEUE_DEPTH *
// (tick(4) + MAX_PAYLOAD) + checksum (spec.md §4.6).
func TxBufSize() int {
	return respbuild.HeaderLen + sensor.QueueDepth*(4+drivers.MaxPayload) + 1
}

// New returns a dispatcher bound to mgr and link, answering as boardID.
func New(boardID byte, mgr *sensor.Manager, link iohw.SerialLink) *Dispatcher {
	return &Dispatcher{boardID: boardID, mgr: mgr, link: link, txbuf: make([]byte, TxBufSize())}
}

// Run drains cmds until it is closed, dispatching and replying to each
// one in turn. Intended to run in its own goroutine.
func (d *Dispatcher) Run(cmds <-chan frame.Command) {
	for cmd := range cmds {
		d.handle(cmd)
	}
}

func (d *Dispatcher) handle(cmd frame.Command) {
	switch {
	case cmd.Cmd == OpPing:
		d.sendStatus(cmd, respbuild.StatusOK)

	case cmd.Cmd == OpListSensors:
		d.handleList(cmd)

	case cmd.Cmd == OpReadSamples:
		d.handleReadSamples(cmd)

	case cmd.Cmd == OpAddSensor:
		code := d.mgr.Add(cmd.Param, cmd.Addr7, 0)
		d.sendStatus(cmd, respbuild.StatusForCode(code))

	case cmd.Cmd == OpRemoveSensor:
		code := d.mgr.Remove(cmd.Addr7)
		d.sendStatus(cmd, respbuild.StatusForCode(code))

	case cmd.Cmd == OpSetPayloadMask:
		d.handleSetPayloadMask(cmd)

	case cmd.Cmd == OpGetPayloadMask:
		d.handleGetField(cmd, OpGetPayloadMask)

	case cmd.Cmd == OpGetConfig:
		d.handleGetConfig(cmd)

	case cmd.Cmd >= OpSetRangeLo && cmd.Cmd <= OpSetRangeHi:
		d.handleSet(cmd)

	case cmd.Cmd >= OpGetRangeLo && cmd.Cmd <= OpGetRangeHi:
		d.handleGetField(cmd, cmd.Cmd)

	default:
		d.sendStatus(cmd, respbuild.StatusUnknownCmd)
	}
}

func (d *Dispatcher) handleList(cmd frame.Command) {
	pairs := make([][2]byte, sensor.MaxSensors)
	n := d.mgr.List(pairs)
	if n == 0 {
		// spec.md §4.7 says LIST errors on count==0, but §4.8's own
		// failure-semantics recommendation is an empty roster should
		// still answer with a valid, zero-length frame rather than an
		// error -- the board has nothing wrong, it just has no
		// sensors (see design decision in SPEC_FULL.md).
		n = respbuild.List(d.txbuf, d.boardID, cmd.Addr7, cmd.Cmd, respbuild.StatusOK, nil, sensor.MaxSensors)
		if n == 0 {
			n = respbuild.Status(d.txbuf, d.boardID, cmd.Addr7, cmd.Cmd, respbuild.StatusOK)
		}
		d.send(n)
		return
	}
	total := respbuild.List(d.txbuf, d.boardID, cmd.Addr7, cmd.Cmd, respbuild.StatusOK, pairs[:n], sensor.MaxSensors)
	if total == 0 {
		d.sendStatus(cmd, respbuild.StatusError)
		return
	}
	d.send(total)
}

func (d *Dispatcher) handleReadSamples(cmd frame.Command) {
	task, ok := d.mgr.GetTask(cmd.Addr7)
	if !ok {
		d.sendStatus(cmd, respbuild.StatusNotFound)
		return
	}
	samples := make([]sensor.Sample, sensor.QueueDepth)
	n := task.ReadSamples(samples)
	if n == 0 {
		d.sendStatus(cmd, respbuild.StatusError)
		return
	}
	total := respbuild.Samples(d.txbuf, d.boardID, cmd.Addr7, cmd.Cmd, respbuild.StatusOK, samples[:n], task.SampleSize())
	if total == 0 {
		d.sendStatus(cmd, respbuild.StatusError)
		return
	}
	d.send(total)
}

func (d *Dispatcher) handleSetPayloadMask(cmd frame.Command) {
	code := d.mgr.Configure(cmd.Addr7, OpSetPayloadMask, cmd.Param)
	if code == errcode.OK {
		if task, ok := d.mgr.GetTask(cmd.Addr7); ok {
			task.Flush()
		}
	}
	d.sendStatus(cmd, respbuild.StatusForCode(code))
}

func (d *Dispatcher) handleSet(cmd frame.Command) {
	code := d.mgr.Configure(cmd.Addr7, cmd.Cmd, cmd.Param)
	if code == errcode.OK && cmd.Cmd == OpSetPeriod {
		periodCode := d.mgr.SetPeriod(cmd.Addr7, uint32(cmd.Param)*PeriodUnitMs)
		if periodCode != errcode.OK {
			code = periodCode
		}
	}
	d.sendStatus(cmd, respbuild.StatusForCode(code))
}

func (d *Dispatcher) handleGetField(cmd frame.Command, fieldID byte) {
	var buf [4]byte
	n, code := d.mgr.GetConfigBytes(cmd.Addr7, fieldID, buf[:])
	if code != errcode.OK {
		d.sendStatus(cmd, respbuild.StatusForCode(code))
		return
	}
	var total int
	if n == 1 {
		total = respbuild.Field(d.txbuf, d.boardID, cmd.Addr7, cmd.Cmd, respbuild.StatusOK, buf[0])
	} else {
		total = respbuild.Payload(d.txbuf, d.boardID, cmd.Addr7, cmd.Cmd, respbuild.StatusOK, buf[:n])
	}
	if total == 0 {
		d.sendStatus(cmd, respbuild.StatusError)
		return
	}
	d.send(total)
}

// handleGetConfig concatenates read_config_bytes for every field id the
// driver enumerates (spec.md §4.6, opcode GET_CONFIG).
func (d *Dispatcher) handleGetConfig(cmd frame.Command) {
	fieldIDs, code := d.mgr.ListFieldIDs(cmd.Addr7)
	if code != errcode.OK {
		d.sendStatus(cmd, respbuild.StatusForCode(code))
		return
	}
	payload := make([]byte, 0, 4)
	for _, f := range fieldIDs {
		var buf [4]byte
		n, c := d.mgr.GetConfigBytes(cmd.Addr7, f, buf[:])
		if c != errcode.OK {
			d.sendStatus(cmd, respbuild.StatusError)
			return
		}
		payload = append(payload, buf[:n]...)
	}
	total := respbuild.Payload(d.txbuf, d.boardID, cmd.Addr7, cmd.Cmd, respbuild.StatusOK, payload)
	if total == 0 {
		d.sendStatus(cmd, respbuild.StatusError)
		return
	}
	d.send(total)
}

func (d *Dispatcher) sendStatus(cmd frame.Command, status byte) {
	n := respbuild.Status(d.txbuf, d.boardID, cmd.Addr7, cmd.Cmd, status)
	d.send(n)
}

func (d *Dispatcher) send(n int) {
	if n == 0 {
		return
	}
	if err := d.link.Send(d.txbuf[:n]); err != nil {
		logx.Printf("dispatch: send failed: %v", err)
	}
}
