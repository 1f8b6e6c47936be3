package phytron

import (
	"strconv"
	"strings"
)

// Control characters of the wire protocol.
const (
	stx  = "\x02" // start of text
	etx  = "\x03" // end of text
	ack  = "\x06" // command acknowledged
	nack = "\x15" // command failed

	// NotAcknowledged is the sentinel a link returns when the controller
	// answered without an acknowledgment. It is payload, not an error, so a
	// legitimate empty response stays distinguishable from a rejection.
	NotAcknowledged = nack
)

// encodeCommand prefixes the addressing scheme of the profile to a command
// body: either "<address><axisLabel>" (MCC-2) or "<axisIndex>.1" (phyMOTION).
func (p *profile) encodeCommand(h AxisHandle, body string) string {
	if p.dotAddressing {
		return strconv.Itoa(h.Index) + ".1" + body
	}
	return strconv.Itoa(h.Address) + h.Label + body
}

// encodeBatch joins several commands into one framed exchange. Sub-commands
// are space separated; the controller answers them in order, separated by
// the ACK control character.
func (p *profile) encodeBatch(h AxisHandle, bodies []string) string {
	var b strings.Builder
	for _, body := range bodies {
		b.WriteString(" ")
		b.WriteString(p.encodeCommand(h, body))
	}
	return b.String()
}

// splitBatch splits a batched response into sub-responses, in request order.
func splitBatch(raw string) []string {
	return strings.Split(raw, ack)
}
