package ina219

import (
	"testing"

	"sensorhub/iohw"
)

func TestDriver_InitAppliesDefaults(t *testing.T) {
	bus := iohw.NewFakeBus()
	ctx := NewContext()

	if err := GetDriver().Init(ctx, bus, 0x40); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bus.Reg(RegCalibration) != 4096 {
		t.Errorf("expected calibration register seeded to 4096, got %d", bus.Reg(RegCalibration))
	}
	c := ctxOf(ctx)
	if c.payloadMask != DefaultPayloadMask {
		t.Errorf("expected default payload mask, got %#x", c.payloadMask)
	}
}

func TestDriver_ReadRespectsPayloadMask(t *testing.T) {
	bus := iohw.NewFakeBus()
	ctx := NewContext()
	GetDriver().Init(ctx, bus, 0x40)

	// bus voltage register: raw >> 3 & 0x1FFF, *4 -- seed so decoded mV is easy to check.
	bus.SetReg(RegBusVoltage, 1000<<3)
	bus.SetReg(RegShuntUv, 7)
	bus.SetReg(RegCurrent, 55)
	bus.SetReg(RegPower, 3)

	out := make([]byte, 16)
	n, err := GetDriver().Read(ctx, bus, 0x40, out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 4 { // default mask: bus voltage + shunt voltage, 2 bytes each.
		t.Fatalf("expected 4 bytes for default mask, got %d", n)
	}
	gotMv := uint16(out[0])<<8 | uint16(out[1])
	if gotMv != 4000 {
		t.Errorf("expected bus voltage 4000mV, got %d", gotMv)
	}
	gotUv := int16(uint16(out[2])<<8 | uint16(out[3]))
	if gotUv != 70 {
		t.Errorf("expected shunt voltage 70uV, got %d", gotUv)
	}
}

func TestDriver_ReadAllFieldsWithFullMask(t *testing.T) {
	bus := iohw.NewFakeBus()
	ctx := NewContext()
	GetDriver().Init(ctx, bus, 0x40)
	c := ctxOf(ctx)
	c.payloadMask = BitBusVoltage | BitShuntVoltage | BitCurrent | BitPower

	out := make([]byte, 16)
	n, err := GetDriver().Read(ctx, bus, 0x40, out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 8 {
		t.Fatalf("expected 8 bytes for full mask, got %d", n)
	}
	if GetDriver().SampleSize(ctx) != 8 {
		t.Errorf("expected SampleSize 8, got %d", GetDriver().SampleSize(ctx))
	}
}

func TestDriver_ConfigureAndReadConfigBytesRoundTrip(t *testing.T) {
	bus := iohw.NewFakeBus()
	ctx := NewContext()
	GetDriver().Init(ctx, bus, 0x40)

	if ok := GetDriver().Configure(ctx, bus, 0x40, FieldSetGain, 2); !ok {
		t.Fatal("expected Configure(SetGain) to succeed")
	}
	if ok := GetDriver().Configure(ctx, bus, 0x40, FieldSetRange, 1); !ok {
		t.Fatal("expected Configure(SetRange) to succeed")
	}
	if ok := GetDriver().Configure(ctx, bus, 0x40, FieldSetCal, 0x20); !ok {
		t.Fatal("expected Configure(SetCal) to succeed")
	}
	if ok := GetDriver().Configure(ctx, bus, 0x40, FieldSetPayloadMask, BitCurrent); !ok {
		t.Fatal("expected Configure(SetPayloadMask) to succeed")
	}

	out := make([]byte, 4)

	n, ok := GetDriver().ReadConfigBytes(ctx, FieldGetGain, out)
	if !ok || n != 1 || out[0] != 2 {
		t.Errorf("expected gain=2, got n=%d val=%d ok=%v", n, out[0], ok)
	}
	n, ok = GetDriver().ReadConfigBytes(ctx, FieldGetRange, out)
	if !ok || n != 1 || out[0] != 1 {
		t.Errorf("expected range=1, got n=%d val=%d ok=%v", n, out[0], ok)
	}
	n, ok = GetDriver().ReadConfigBytes(ctx, FieldGetCal, out)
	if !ok || n != 2 || out[0] != 0x00 || out[1] != 0x20 {
		t.Errorf("expected cal=0x0020, got %#x ok=%v", out[:n], ok)
	}
	n, ok = GetDriver().ReadConfigBytes(ctx, FieldGetPayloadMask, out)
	if !ok || n != 1 || out[0] != BitCurrent {
		t.Errorf("expected payload mask %#x, got %#x ok=%v", BitCurrent, out[0], ok)
	}
}

func TestDriver_ConfigureSetPeriodIsNoOpOnBus(t *testing.T) {
	bus := iohw.NewFakeBus()
	ctx := NewContext()
	GetDriver().Init(ctx, bus, 0x40)

	if ok := GetDriver().Configure(ctx, bus, 0x40, FieldSetPeriod, 9); !ok {
		t.Fatal("expected SetPeriod to report ok=true with no register write")
	}
}

func TestDriver_ConfigureRejectsUnknownField(t *testing.T) {
	bus := iohw.NewFakeBus()
	ctx := NewContext()
	GetDriver().Init(ctx, bus, 0x40)

	if ok := GetDriver().Configure(ctx, bus, 0x40, 0xEE, 0); ok {
		t.Error("expected unknown field id to be rejected")
	}
	if _, ok := GetDriver().ReadConfigBytes(ctx, 0xEE, make([]byte, 4)); ok {
		t.Error("expected unknown field id to be rejected")
	}
}

func TestDriver_ListFieldIDs(t *testing.T) {
	got := GetDriver().ListFieldIDs()
	want := []byte{FieldGetPeriod, FieldGetGain, FieldGetRange, FieldGetCal}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("expected %v, got %v", want, got)
			break
		}
	}
}
