package sensors

import (
	"errors"
	"strings"
	"testing"
	"time"
)

type fakeThermal struct {
	beginErr error
	order    *[]string
	temp     float64
	humidity float64
}

func (f *fakeThermal) Begin() error {
	*f.order = append(*f.order, "thermal")
	return f.beginErr
}
func (f *fakeThermal) ReadTemperature() (float64, error) { return f.temp, nil }
func (f *fakeThermal) ReadHumidity() (float64, error)    { return f.humidity, nil }

type fakePressure struct {
	beginErr error
	order    *[]string
	value    float64
	reads    int
}

func (f *fakePressure) Begin() error {
	*f.order = append(*f.order, "pressure")
	return f.beginErr
}
func (f *fakePressure) ReadPressure() (float64, error) {
	f.reads++
	return f.value, nil
}

type fakeColor struct {
	beginErr   error
	order      *[]string
	availAfter int // number of unavailable polls before a sample appears
	polls      int
	reads      int
	r, g, b, a int
}

func (f *fakeColor) Begin() error {
	*f.order = append(*f.order, "color")
	return f.beginErr
}
func (f *fakeColor) ColorAvailable() (bool, error) {
	f.polls++
	return f.polls > f.availAfter, nil
}
func (f *fakeColor) ReadColor() (int, int, int, int, error) {
	f.reads++
	return f.r, f.g, f.b, f.a, nil
}

func newTestBank(t *fakeThermal, p *fakePressure, c *fakeColor) *Bank {
	b := NewBank(t, p, c)
	b.settle = 0
	b.colorPoll = 0
	return b
}

func fakes() (*fakeThermal, *fakePressure, *fakeColor, *[]string) {
	order := &[]string{}
	return &fakeThermal{order: order},
		&fakePressure{order: order},
		&fakeColor{order: order},
		order
}

func TestBankInit_orderAndThrowawayRead(t *testing.T) {
	th, pr, co, order := fakes()
	b := newTestBank(th, pr, co)

	if err := b.Init(); err != nil {
		t.Fatalf("Init() error: %v", err)
	}

	want := []string{"thermal", "pressure", "color"}
	if len(*order) != 3 || (*order)[0] != want[0] || (*order)[1] != want[1] || (*order)[2] != want[2] {
		t.Errorf("Init() begin order = %v; want %v", *order, want)
	}
	if pr.reads != 1 {
		t.Errorf("Init() performed %d pressure reads; want exactly 1 throwaway", pr.reads)
	}
}

func TestBankInit_failuresStopStartup(t *testing.T) {
	cases := []struct {
		name     string
		failing  string
		wantSeen []string
	}{
		{"thermal fails", "thermal", []string{"thermal"}},
		{"pressure fails", "pressure", []string{"thermal", "pressure"}},
		{"color fails", "color", []string{"thermal", "pressure", "color"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			th, pr, co, order := fakes()
			boom := errors.New("no ack")
			switch tc.failing {
			case "thermal":
				th.beginErr = boom
			case "pressure":
				pr.beginErr = boom
			case "color":
				co.beginErr = boom
			}
			b := newTestBank(th, pr, co)

			err := b.Init()
			if err == nil {
				t.Fatal("Init() = nil error; want error")
			}
			if !errors.Is(err, boom) {
				t.Errorf("Init() error %v does not wrap the begin failure", err)
			}
			if !strings.Contains(err.Error(), tc.failing+" sensor init") {
				t.Errorf("Init() error %q does not name the %s sensor", err, tc.failing)
			}
			if len(*order) != len(tc.wantSeen) {
				t.Errorf("begins attempted = %v; want %v", *order, tc.wantSeen)
			}
		})
	}
}

func TestReadTemperature_offsetAppliedOnce(t *testing.T) {
	th, pr, co, _ := fakes()
	th.temp = 20.0
	b := newTestBank(th, pr, co)

	for i := 0; i < 3; i++ {
		got, err := b.ReadTemperature(2.5)
		if err != nil {
			t.Fatalf("ReadTemperature() error: %v", err)
		}
		if got != 22.5 {
			t.Fatalf("ReadTemperature() call %d = %v; want 22.5", i+1, got)
		}
	}

	got, err := b.ReadTemperature(-3.0)
	if err != nil {
		t.Fatalf("ReadTemperature() error: %v", err)
	}
	if got != 17.0 {
		t.Fatalf("ReadTemperature(-3.0) = %v; want 17.0", got)
	}
}

func TestReadColor_waitsForAvailability(t *testing.T) {
	th, pr, co, _ := fakes()
	co.availAfter = 3
	co.r, co.g, co.b, co.a = 16, 38, 53, 80
	b := newTestBank(th, pr, co)

	r, g, bl, a, err := b.ReadColor(time.Second)
	if err != nil {
		t.Fatalf("ReadColor() error: %v", err)
	}
	if r != 16 || g != 38 || bl != 53 || a != 80 {
		t.Errorf("ReadColor() = (%d, %d, %d, %d); want (16, 38, 53, 80)", r, g, bl, a)
	}
	if co.polls != 4 {
		t.Errorf("ReadColor() polled %d times; want 4", co.polls)
	}
}

func TestReadColor_timeout(t *testing.T) {
	th, pr, co, _ := fakes()
	co.availAfter = 1 << 30 // never available
	b := newTestBank(th, pr, co)
	b.colorPoll = time.Millisecond

	_, _, _, _, err := b.ReadColor(5 * time.Millisecond)
	if !errors.Is(err, ErrColorTimeout) {
		t.Fatalf("ReadColor() error = %v; want ErrColorTimeout", err)
	}
	if co.reads != 0 {
		t.Errorf("ReadColor() read channel values %d times while unavailable; want 0", co.reads)
	}
}

func TestReadPressure_passThrough(t *testing.T) {
	th, pr, co, _ := fakes()
	pr.value = 99.89
	b := newTestBank(th, pr, co)

	got, err := b.ReadPressure()
	if err != nil {
		t.Fatalf("ReadPressure() error: %v", err)
	}
	if got != 99.89 {
		t.Fatalf("ReadPressure() = %v; want 99.89", got)
	}
}

func TestReadHumidity_passThrough(t *testing.T) {
	th, pr, co, _ := fakes()
	th.humidity = 37.71
	b := newTestBank(th, pr, co)

	got, err := b.ReadHumidity()
	if err != nil {
		t.Fatalf("ReadHumidity() error: %v", err)
	}
	if got != 37.71 {
		t.Fatalf("ReadHumidity() = %v; want 37.71", got)
	}
}
