package backend

import "strings"

// Simulator send types. These mirror the IbSendInit enumeration in the
// simulator DLL; AnyDriver probes each known driver in turn.
const (
	sendAnyDriver              = 0
	sendSendInput              = 1
	sendLogitech               = 2
	sendRazer                  = 3
	sendDD                     = 4
	sendMouClassInputInjection = 5
	sendLogitechGHubNew        = 6
)

var driverSendTypes = map[string]int{
	"anydriver":              sendAnyDriver,
	"any":                    sendAnyDriver,
	"sendinput":              sendSendInput,
	"logitech":               sendLogitech,
	"razer":                  sendRazer,
	"dd":                     sendDD,
	"mouclassinputinjection": sendMouClassInputInjection,
	"logitechghubnew":        sendLogitechGHubNew,
}

// driverSendType maps a configured driver name to its simulator send type.
// Unknown names fall back to AnyDriver rather than failing startup.
func driverSendType(name string) int {
	if t, ok := driverSendTypes[strings.ToLower(strings.TrimSpace(name))]; ok {
		return t
	}
	return sendAnyDriver
}
