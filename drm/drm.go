// Package drm negotiates PlayReady license acquisition and clearance with a
// platform DRM agent (the OIPF application/oipfdrmagent object).
//
// The agent exposes one dispatch method and two callback slots. Negotiator
// turns that into a success/failure contract per transaction, serializes
// transactions and owns the agent handle.
package drm

import (
	"errors"
	"fmt"
)

const (
	// MessageType is the DRM message type understood by PlayReady agents.
	MessageType = "application/vnd.ms-playready.initiator+xml"

	// SystemID identifies PlayReady in the DVB CA system registry.
	SystemID = "urn:dvb:casystemid:19219"
)

const (
	xmlHeader      = `<?xml version="1.0" encoding="utf-8"?>`
	initiatorOpen  = `<PlayReadyInitiator xmlns="http://schemas.microsoft.com/DRM/2007/03/protocols/">`
	initiatorClose = `</PlayReadyInitiator>`
)

// Mode is the kind of message a transaction dispatches.
type Mode int

const (
	FullChallenge Mode = iota
	LicenseOverride
	Clear
)

func (m Mode) String() string {
	switch m {
	case FullChallenge:
		return "full_challenge"
	case LicenseOverride:
		return "license_override"
	case Clear:
		return "clear"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// ErrEmptyConfig is returned when a license request carries neither a challenge nor a server URL.
var ErrEmptyConfig = errors.New("drm: config has neither a challenge nor a license server url")

// Config describes a license request. FullChallengeXML wins when both fields are set.
type Config struct {
	// FullChallengeXML is the PlayReady header sent as a full license acquisition challenge.
	FullChallengeXML string `json:"full_challenge_xml,omitempty" jsonschema:"description=PlayReady header for a full license acquisition challenge"`

	// LicenseServerURL overrides the license server announced in the content header.
	LicenseServerURL string `json:"license_server_url,omitempty" jsonschema:"description=License server URL override"`
}

// IsZero reports whether c requests nothing.
func (c Config) IsZero() bool {
	return c.FullChallengeXML == "" && c.LicenseServerURL == ""
}

// Mode returns the request mode c selects.
func (c Config) Mode() (Mode, error) {
	switch {
	case c.FullChallengeXML != "":
		return FullChallenge, nil
	case c.LicenseServerURL != "":
		return LicenseOverride, nil
	default:
		return 0, ErrEmptyConfig
	}
}

// Envelope builds the request message for c.
func (c Config) Envelope() (Mode, string, error) {
	mode, err := c.Mode()
	if err != nil {
		return 0, "", err
	}

	if mode == FullChallenge {
		return mode, FullChallengeEnvelope(c.FullChallengeXML), nil
	}
	return mode, LicenseOverrideEnvelope(c.LicenseServerURL), nil
}

// FullChallengeEnvelope wraps a PlayReady header in a license acquisition initiator.
// The header is embedded verbatim.
func FullChallengeEnvelope(header string) string {
	return xmlHeader +
		initiatorOpen +
		"<LicenseAcquisition>" +
		"<Header>" + header + "</Header>" +
		"</LicenseAcquisition>" +
		initiatorClose
}

// LicenseOverrideEnvelope builds an initiator pointing the agent at url.
// The url is embedded verbatim, agents expect it unescaped.
func LicenseOverrideEnvelope(url string) string {
	return xmlHeader +
		initiatorOpen +
		"<LicenseServerUriOverride>" +
		"<LA_URL>" + url + "</LA_URL>" +
		"</LicenseServerUriOverride>" +
		initiatorClose
}

// ClearEnvelope builds the empty initiator that drops the active license.
func ClearEnvelope() string {
	return xmlHeader + initiatorOpen + initiatorClose
}
