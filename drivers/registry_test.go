package drivers

import "testing"

func TestRegistry_RegisterAndFind(t *testing.T) {
	r := NewRegistry()
	r.Register(Info{TypeCode: 1, Name: "a"})
	r.Register(Info{TypeCode: 2, Name: "b"})

	info, ok := r.Find(1)
	if !ok || info.Name != "a" {
		t.Fatalf("expected to find type 1 named a, got %+v ok=%v", info, ok)
	}

	if _, ok := r.Find(99); ok {
		t.Error("expected type 99 to be absent")
	}
}

func TestRegistry_DuplicateTypeCodeIgnored(t *testing.T) {
	r := NewRegistry()
	r.Register(Info{TypeCode: 1, Name: "first"})
	r.Register(Info{TypeCode: 1, Name: "second"})

	info, _ := r.Find(1)
	if info.Name != "first" {
		t.Errorf("expected first registration to win, got %q", info.Name)
	}
}

func TestRegistry_TypeCodesSorted(t *testing.T) {
	r := NewRegistry()
	r.Register(Info{TypeCode: 5})
	r.Register(Info{TypeCode: 1})
	r.Register(Info{TypeCode: 3})

	codes := r.TypeCodes()
	want := []byte{1, 3, 5}
	if len(codes) != len(want) {
		t.Fatalf("expected %v, got %v", want, codes)
	}
	for i := range want {
		if codes[i] != want[i] {
			t.Errorf("expected %v, got %v", want, codes)
			break
		}
	}
}
