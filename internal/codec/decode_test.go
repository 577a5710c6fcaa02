package codec

import "testing"

func TestDecodeAckHappyPath(t *testing.T) {
	index, err := DecodeAck([]byte(`{"n":"node-1","i":42}`), "node-1", 32)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if index != 42 {
		t.Fatalf("expected index 42, got %d", index)
	}
}

func TestDecodeAckToleratesWhitespace(t *testing.T) {
	index, err := DecodeAck([]byte(`{ "n" : "node-1" , "i" : 7 }`), "node-1", 32)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if index != 7 {
		t.Fatalf("expected index 7, got %d", index)
	}
}

func TestDecodeAckNameMismatch(t *testing.T) {
	_, err := DecodeAck([]byte(`{"n":"other","i":1}`), "node-1", 32)
	if err != ErrNoNameMatch {
		t.Fatalf("expected ErrNoNameMatch, got %v", err)
	}
}

func TestDecodeAckNotAckMessage(t *testing.T) {
	_, err := DecodeAck([]byte(`not json at all`), "node-1", 32)
	if err != ErrNotAckMessage {
		t.Fatalf("expected ErrNotAckMessage, got %v", err)
	}
}

func TestDecodeAckWrongFieldOrderIsRejected(t *testing.T) {
	_, err := DecodeAck([]byte(`{"i":1,"n":"node-1"}`), "node-1", 32)
	if err != ErrNotAckMessage {
		t.Fatalf("expected ErrNotAckMessage for reversed field order, got %v", err)
	}
}

func TestDecodeAckBadParameterOnOversizedExpectedName(t *testing.T) {
	_, err := DecodeAck([]byte(`{"n":"node-1","i":1}`), "too-long-a-name", 4)
	if err != ErrBadParameter {
		t.Fatalf("expected ErrBadParameter, got %v", err)
	}
}
