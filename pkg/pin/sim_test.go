package pin

import "testing"

func TestSimLightStaysInBounds(t *testing.T) {
	s := NewSimLight(530)

	for i := 0; i < 10000; i++ {
		v, err := s.Read()
		if err != nil {
			t.Fatalf("Read() error = %v", err)
		}
		if v < s.Min || v > s.Max {
			t.Fatalf("Read() = %d, outside [%d, %d]", v, s.Min, s.Max)
		}
		if v > ADCMax {
			t.Fatalf("Read() = %d, above ADCMax", v)
		}
	}
}

func TestSimLightOscillates(t *testing.T) {
	s := NewSimLight(530)

	sawMin, sawMax := false, false
	for i := 0; i < 10000; i++ {
		v, _ := s.Read()
		if v == s.Min {
			sawMin = true
		}
		if v == s.Max {
			sawMax = true
		}
	}
	if !sawMin || !sawMax {
		t.Errorf("triangle wave never reached both bounds: sawMin=%v sawMax=%v", sawMin, sawMax)
	}
}

func TestSimButton(t *testing.T) {
	b := NewSimButton()

	pressed, err := b.Pressed()
	if err != nil || pressed {
		t.Fatalf("Pressed() = %v, %v; want false, nil", pressed, err)
	}

	b.Press()
	if pressed, _ = b.Pressed(); !pressed {
		t.Error("Pressed() = false after Press()")
	}

	b.Release()
	if pressed, _ = b.Pressed(); pressed {
		t.Error("Pressed() = true after Release()")
	}
}

func TestFakeAnalogRepeatsLastSample(t *testing.T) {
	f := NewFakeAnalog(1, 2, 3)

	want := []int{1, 2, 3, 3, 3}
	for i, w := range want {
		got, err := f.Read()
		if err != nil {
			t.Fatalf("Read() error = %v", err)
		}
		if got != w {
			t.Errorf("Read() #%d = %d, want %d", i+1, got, w)
		}
	}
}

func TestFakeAnalogNoSamples(t *testing.T) {
	f := NewFakeAnalog()
	if _, err := f.Read(); err == nil {
		t.Error("Read() with no samples must error")
	}
}
