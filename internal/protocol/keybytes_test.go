package protocol

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestKeyBytesMarshalsAsIntArray(t *testing.T) {
	k := KeyBytes{0, 1, 128, 255}
	b, err := json.Marshal(k)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if got, want := string(b), "[0,1,128,255]"; got != want {
		t.Fatalf("got %s, want %s", got, want)
	}

	var back KeyBytes
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !bytes.Equal(back, k) {
		t.Fatalf("round trip mismatch: %v != %v", back, k)
	}
}

func TestKeyBytesRejectsOutOfRange(t *testing.T) {
	var k KeyBytes
	if err := json.Unmarshal([]byte("[0,256]"), &k); err == nil {
		t.Fatal("expected error for value 256")
	}
	if err := json.Unmarshal([]byte("[-1]"), &k); err == nil {
		t.Fatal("expected error for value -1")
	}
}

func TestRegisterFrameDecodesKeyMaterial(t *testing.T) {
	raw := []byte(`{"type":"register","clientId":"alice","kyberPublicKey":[1,2,3]}`)
	var p Register
	if err := json.Unmarshal(raw, &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if p.ClientID != "alice" {
		t.Errorf("clientId = %q", p.ClientID)
	}
	if !bytes.Equal(p.KyberPublicKey, []byte{1, 2, 3}) {
		t.Errorf("key material = %v", p.KyberPublicKey)
	}
}
