package gwr

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"testing"
)

// decodeData extracts and unescapes the inner XML document from an envelope.
func decodeData(t *testing.T, payload string) string {
	t.Helper()
	values, err := url.ParseQuery(payload)
	if err != nil {
		t.Fatalf("envelope is not parseable as a query string: %v", err)
	}
	return values.Get("data")
}

func TestEncodeEnvelopeShape(t *testing.T) {
	payload := encodeBatchQuery("TOK")

	if !strings.HasPrefix(payload, fmt.Sprintf("cmd=%d&data=", cmdBatchQuery)) {
		t.Errorf("envelope should start with cmd=%d&data=, got %q", cmdBatchQuery, payload)
	}
	if !strings.HasSuffix(payload, "&fmt=xml") {
		t.Errorf("envelope should end with &fmt=xml, got %q", payload)
	}

	inner := decodeData(t, payload)
	if !strings.Contains(inner, "<token>TOK</token>") {
		t.Errorf("inner document missing token, got %q", inner)
	}
	if !strings.Contains(inner, "<gcmd>RoomGetCarousel</gcmd>") {
		t.Errorf("inner document missing carousel command, got %q", inner)
	}
}

func TestEncodeCommandKinds(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		cmd     int
		want    string
	}{
		{"room on", encodeRoomCommand("T", "3", 1), cmdRoom, "<gip><version>1</version><token>T</token><rid>3</rid><value>1</value></gip>"},
		{"room off", encodeRoomCommand("T", "3", 0), cmdRoom, "<gip><version>1</version><token>T</token><rid>3</rid><value>0</value></gip>"},
		{"room level", encodeRoomLevel("T", "3", 60), cmdRoomLevel, "<gip><version>1</version><token>T</token><rid>3</rid><value>60</value><type>level</type></gip>"},
		{"device on", encodeDeviceCommand("T", "216", 1), cmdDevice, "<gip><version>1</version><token>T</token><did>216</did><value>1</value></gip>"},
		{"device level", encodeDeviceLevel("T", "216", 35), cmdDeviceLevel, "<gip><version>1</version><token>T</token><did>216</did><value>35</value><type>level</type></gip>"},
		{"login", encodeLogin("user", "pass"), cmdLogin, "<gip><version>1</version><email>user</email><password>pass</password></gip>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !strings.HasPrefix(tt.payload, fmt.Sprintf("cmd=%d&", tt.cmd)) {
				t.Errorf("payload %q should carry cmd=%d", tt.payload, tt.cmd)
			}
			if got := decodeData(t, tt.payload); got != tt.want {
				t.Errorf("inner document = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSentinelRecognition(t *testing.T) {
	if !isPermissionDenied("<gip><version>1</version><rc>401</rc></gip>") {
		t.Error("exact 401 body should be recognized")
	}
	if !isPermissionDenied("  <gip><version>1</version><rc>401</rc></gip>\n") {
		t.Error("surrounding whitespace should not defeat recognition")
	}
	if isPermissionDenied("<gip><version>1</version><rc>404</rc></gip>") {
		t.Error("404 body is not the permission sentinel")
	}
	if !isNotInSyncMode("<gip><version>1</version><rc>404</rc></gip>") {
		t.Error("exact 404 body should be recognized")
	}
	if isNotInSyncMode("<gip><version>1</version><rc>200</rc></gip>") {
		t.Error("success body is not the sync sentinel")
	}
}

const stateBody = `<gwrcmds><gwrcmd><gcmd>RoomGetCarousel</gcmd><gdata><gip><version>1</version><rc>200</rc>` +
	`<room><rid>1</rid><name>Office</name><color>ff9900</color>` +
	`<device><did>216</did><state>1</state><level>60</level><color>d5ff77</color></device></room>` +
	`<room><rid>2</rid><name>Bedroom</name><device></device></room>` +
	`</gip></gdata></gwrcmd></gwrcmds>`

func TestDecodeState(t *testing.T) {
	rooms, err := decodeState(stateBody)
	if err != nil {
		t.Fatalf("decodeState: %v", err)
	}
	if len(rooms) != 2 {
		t.Fatalf("got %d rooms, want 2", len(rooms))
	}

	office := rooms[0]
	if office.RID != "1" || office.Name != "Office" || office.Color != "ff9900" {
		t.Errorf("unexpected office room: %+v", office)
	}
	if office.Device.DID != "216" || office.Device.State != "1" || office.Device.Level != "60" {
		t.Errorf("unexpected office device: %+v", office.Device)
	}

	// A room may serialize its device as an empty field; it still decodes,
	// just without device data.
	bedroom := rooms[1]
	if bedroom.Name != "Bedroom" || bedroom.Device.DID != "" {
		t.Errorf("unexpected bedroom room: %+v", bedroom)
	}
}

func TestDecodeStateMalformed(t *testing.T) {
	bodies := []string{
		"",
		"not xml at all <",
		"<gip><version>1</version><rc>200</rc></gip>",
		"<gwrcmds><gwrcmd><gdata><gip></gip></gdata></gwrcmd></gwrcmds>",
	}
	for _, body := range bodies {
		if _, err := decodeState(body); !errors.Is(err, ErrMalformedGWR) {
			t.Errorf("decodeState(%q) = %v, want ErrMalformedGWR", body, err)
		}
	}
}

func TestDecodeToken(t *testing.T) {
	token, err := decodeToken("<gip><version>1</version><rc>200</rc><token>abc123</token></gip>")
	if err != nil {
		t.Fatalf("decodeToken: %v", err)
	}
	if token != "abc123" {
		t.Errorf("token = %q, want abc123", token)
	}

	if _, err := decodeToken("<gip><version>1</version><rc>200</rc></gip>"); !errors.Is(err, ErrMalformedGWR) {
		t.Errorf("missing token element should be malformed, got %v", err)
	}
}
