package serial

import (
	"bytes"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/planteur/planteur-core/internal/plant"
)

func testRegistry(t *testing.T) *plant.Registry {
	t.Helper()
	reg, err := plant.NewRegistry([]plant.Plant{
		{UID: "pgt_ficus_xbee", Name: "Ficus", Connection: plant.ConnectionSerial, Watering: plant.WateringConditional, SerialID: 1},
		{UID: "pgt_cactus_xbee", Name: "Cactus", Connection: plant.ConnectionSerial, Watering: plant.WateringNone, SerialID: 42},
	})
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}
	return reg
}

func TestReadFrame(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		want    Frame
		wantErr error
	}{
		{
			name: "plant frame",
			data: []byte{0, 1, 1, 2, 55, 24},
			want: Frame{Dest: 0, Src: 1, Type: 1, Payload: []byte{55, 24}},
		},
		{
			name: "empty payload",
			data: []byte{3, 4, 9, 0},
			want: Frame{Dest: 3, Src: 4, Type: 9},
		},
		{name: "clean end of stream", data: nil, wantErr: io.EOF},
		{name: "truncated header", data: []byte{0, 1}, wantErr: ErrTruncated},
		{name: "truncated payload", data: []byte{0, 1, 1, 3, 55}, wantErr: ErrTruncated},
		{name: "header only with length", data: []byte{0, 1, 1, 2}, wantErr: ErrTruncated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReadFrame(bytes.NewReader(tt.data))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ReadFrame() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ReadFrame() error = %v", err)
			}
			if got.Dest != tt.want.Dest || got.Src != tt.want.Src || got.Type != tt.want.Type ||
				!bytes.Equal(got.Payload, tt.want.Payload) {
				t.Errorf("ReadFrame() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestReadFrame_Stream(t *testing.T) {
	var stream bytes.Buffer
	stream.Write(Frame{Dest: 0, Src: 1, Type: FrameTypePlant, Payload: []byte{40}}.Encode())
	stream.Write(Frame{Dest: 0, Src: 42, Type: FrameTypePlant, Payload: []byte{70, 22}}.Encode())

	first, err := ReadFrame(&stream)
	if err != nil {
		t.Fatalf("first ReadFrame() error = %v", err)
	}
	second, err := ReadFrame(&stream)
	if err != nil {
		t.Fatalf("second ReadFrame() error = %v", err)
	}
	if first.Src != 1 || second.Src != 42 {
		t.Errorf("sources = %d, %d, want 1, 42", first.Src, second.Src)
	}
	if _, err := ReadFrame(&stream); !errors.Is(err, io.EOF) {
		t.Errorf("third ReadFrame() error = %v, want io.EOF", err)
	}
}

func TestFrameEncode(t *testing.T) {
	got := Frame{Dest: 0, Src: 7, Type: 1, Payload: []byte{55, 24}}.Encode()
	want := []byte{0, 7, 1, 2, 55, 24}
	if !bytes.Equal(got, want) {
		t.Errorf("Encode() = %v, want %v", got, want)
	}

	long := Frame{Payload: make([]byte, 300)}.Encode()
	if len(long) != headerSize+255 || long[3] != 255 {
		t.Errorf("oversized payload encoded to %d bytes, length byte %d", len(long), long[3])
	}
}

func TestDecode(t *testing.T) {
	reg := testRegistry(t)
	now := time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		frame    Frame
		wantUID  string
		wantHum  int
		wantTemp float64
		hasTemp  bool
		wantErr  error
	}{
		{
			name:     "humidity and temperature",
			frame:    Frame{Dest: 0, Src: 1, Type: 1, Payload: []byte{55, 24}},
			wantUID:  "pgt_ficus_xbee",
			wantHum:  55,
			wantTemp: 24,
			hasTemp:  true,
		},
		{
			name:    "humidity only",
			frame:   Frame{Dest: 0, Src: 42, Type: 1, Payload: []byte{12}},
			wantUID: "pgt_cactus_xbee",
			wantHum: 12,
		},
		{
			name:     "negative temperature",
			frame:    Frame{Dest: 0, Src: 1, Type: 1, Payload: []byte{80, 0xFB}},
			wantUID:  "pgt_ficus_xbee",
			wantHum:  80,
			wantTemp: -5,
			hasTemp:  true,
		},
		{name: "other destination", frame: Frame{Dest: 9, Src: 1, Type: 1, Payload: []byte{1}}, wantErr: ErrNotForGateway},
		{name: "unsupported type", frame: Frame{Dest: 0, Src: 1, Type: 2, Payload: []byte{1}}, wantErr: ErrUnsupportedType},
		{name: "unknown source", frame: Frame{Dest: 0, Src: 99, Type: 1, Payload: []byte{1}}, wantErr: ErrUnknownSource},
		{name: "empty payload", frame: Frame{Dest: 0, Src: 1, Type: 1}, wantErr: ErrInvalidPayload},
		{name: "humidity out of range", frame: Frame{Dest: 0, Src: 1, Type: 1, Payload: []byte{101}}, wantErr: ErrInvalidPayload},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := Decode(tt.frame, reg, now)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Decode() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}

			if r.PlantUID() != tt.wantUID {
				t.Errorf("uid = %q, want %q", r.PlantUID(), tt.wantUID)
			}
			if h, _ := r.Humidity(); h != tt.wantHum {
				t.Errorf("humidity = %d, want %d", h, tt.wantHum)
			}
			if c, ok := r.Temperature(); ok != tt.hasTemp || c != tt.wantTemp {
				t.Errorf("temperature = (%v, %v), want (%v, %v)", c, ok, tt.wantTemp, tt.hasTemp)
			}
			if !r.Timestamp().Equal(now) {
				t.Errorf("timestamp = %v, want %v", r.Timestamp(), now)
			}
		})
	}
}
