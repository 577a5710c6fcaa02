package data

import "testing"

func TestDifferenceScalar(t *testing.T) {
	a := Record{Tag: TagHumidity, Contents: Humidity{Percent: 30}}
	b := Record{Tag: TagHumidity, Contents: Humidity{Percent: 10}}
	if d := Difference(a, b); d != 20 {
		t.Fatalf("expected difference 20, got %d", d)
	}
}

func TestDifferenceComposite(t *testing.T) {
	a := Record{Tag: TagAcceleration, Contents: Acceleration{XGX1000: 100, YGX1000: 0, ZGX1000: 0}}
	b := Record{Tag: TagAcceleration, Contents: Acceleration{XGX1000: 0, YGX1000: 50, ZGX1000: 0}}
	if d := Difference(a, b); d != 100 {
		t.Fatalf("expected largest-component difference 100, got %d", d)
	}
}

func TestDifferenceHousekeepingIsAlwaysOne(t *testing.T) {
	a := Record{Tag: TagLog, Contents: LogRecord{}}
	b := Record{Tag: TagLog, Contents: LogRecord{}}
	if d := Difference(a, b); d != 1 {
		t.Fatalf("expected housekeeping difference 1, got %d", d)
	}
}

func TestAbsDifferenceDiscardsSign(t *testing.T) {
	a := Record{Tag: TagHumidity, Contents: Humidity{Percent: 10}}
	b := Record{Tag: TagHumidity, Contents: Humidity{Percent: 30}}

	if d := AbsDifference(a, b); d != 20 {
		t.Fatalf("expected |10-30|=20, got %d", d)
	}
	if d := AbsDifference(b, a); d != 20 {
		t.Fatalf("expected |30-10|=20 regardless of argument order, got %d", d)
	}
}
