package gwr

import (
	"fmt"
	"net/url"
	"strings"
)

// Command codes carried in the cmd= field of the request envelope.
const (
	cmdLogin       = 110
	cmdBatchQuery  = 120
	cmdDevice      = 140
	cmdDeviceLevel = 141
	cmdRoom        = 150
	cmdRoomLevel   = 151
)

// Inner XML fragments. Field substitution is pure string templating: the
// whole inner document is URL-encoded into the envelope, but nothing escapes
// individual fields. That matches the upstream gateway clients and is a known
// limitation of the protocol, not something to guard here.
const (
	batchQueryTemplate = "<gwrcmds><gwrcmd><gcmd>RoomGetCarousel</gcmd><gdata><gip><version>1</version><token>%s" +
		"</token><fields>name,control,power,product,class,realtype,status</fields></gip></gdata></gwrcmd></gwrcmds>"

	roomSendTemplate      = "<gip><version>1</version><token>%s</token><rid>%s</rid><value>%d</value></gip>"
	roomSendLevelTemplate = "<gip><version>1</version><token>%s</token><rid>%s</rid><value>%d</value><type>level</type></gip>"

	deviceSendTemplate      = "<gip><version>1</version><token>%s</token><did>%s</did><value>%d</value></gip>"
	deviceSendLevelTemplate = "<gip><version>1</version><token>%s</token><did>%s</did><value>%d</value><type>level</type></gip>"

	loginTemplate = "<gip><version>1</version><email>%s</email><password>%s</password></gip>"
)

// Sentinel bodies the gateway returns instead of structured data. These are
// matched against the raw trimmed response text before any typed parsing,
// because error bodies do not fit the room schema at all.
const (
	permissionDeniedBody = "<gip><version>1</version><rc>401</rc></gip>"
	notInSyncModeBody    = "<gip><version>1</version><rc>404</rc></gip>"
)

// encodeEnvelope wraps an inner XML document in the gateway's request
// envelope: cmd=<int>&data=<url-encoded-xml>&fmt=xml.
func encodeEnvelope(cmd int, inner string) string {
	return fmt.Sprintf("cmd=%d&data=%s&fmt=xml", cmd, url.QueryEscape(inner))
}

func encodeBatchQuery(token string) string {
	return encodeEnvelope(cmdBatchQuery, fmt.Sprintf(batchQueryTemplate, token))
}

func encodeRoomCommand(token, rid string, value int) string {
	return encodeEnvelope(cmdRoom, fmt.Sprintf(roomSendTemplate, token, rid, value))
}

func encodeRoomLevel(token, rid string, level int) string {
	return encodeEnvelope(cmdRoomLevel, fmt.Sprintf(roomSendLevelTemplate, token, rid, level))
}

func encodeDeviceCommand(token, did string, value int) string {
	return encodeEnvelope(cmdDevice, fmt.Sprintf(deviceSendTemplate, token, did, value))
}

func encodeDeviceLevel(token, did string, level int) string {
	return encodeEnvelope(cmdDeviceLevel, fmt.Sprintf(deviceSendLevelTemplate, token, did, level))
}

func encodeLogin(email, password string) string {
	return encodeEnvelope(cmdLogin, fmt.Sprintf(loginTemplate, email, password))
}

// isPermissionDenied reports whether the raw body is the invalid-token sentinel.
func isPermissionDenied(body string) bool {
	return strings.TrimSpace(body) == permissionDeniedBody
}

// isNotInSyncMode reports whether the raw body is the not-in-sync-mode sentinel.
func isNotInSyncMode(body string) bool {
	return strings.TrimSpace(body) == notInSyncModeBody
}

// decodeToken extracts the token element from a successful login response.
func decodeToken(body string) (string, error) {
	root, err := parseTree(body)
	if err != nil {
		return "", ErrMalformedGWR
	}
	token := root.childText("token")
	if token == "" {
		return "", ErrMalformedGWR
	}
	return token, nil
}

// decodeState converts a batch-state response into typed rooms. The response
// goes through the generic tree first; if the top-level "has rooms" shape
// check fails, the whole body is rejected as malformed.
func decodeState(body string) ([]Room, error) {
	root, err := parseTree(body)
	if err != nil {
		return nil, ErrMalformedGWR
	}

	gip := root.child("gwrcmd").child("gdata").child("gip")
	if gip == nil {
		return nil, ErrMalformedGWR
	}
	roomNodes := gip.childAll("room")
	if len(roomNodes) == 0 {
		return nil, ErrMalformedGWR
	}

	rooms := make([]Room, 0, len(roomNodes))
	for _, rn := range roomNodes {
		room := Room{
			RID:   rn.childText("rid"),
			Name:  rn.childText("name"),
			Color: rn.childText("color"),
		}
		// A room's single device arrives as a nested element, or as an
		// empty field when the room has none.
		if dn := rn.child("device"); dn.hasChildren() {
			room.Device = Device{
				DID:   dn.childText("did"),
				State: dn.childText("state"),
				Level: dn.childText("level"),
				Color: dn.childText("color"),
			}
		}
		rooms = append(rooms, room)
	}
	return rooms, nil
}
