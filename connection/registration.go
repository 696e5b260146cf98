// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package connection

// Registration describes the extension principal presented during the
// registry:1/register handshake (spec §3, §4.4.3).
type Registration struct {
	ExtensionID      string   `json:"extension_id"`
	DisplayName      string   `json:"display_name"`
	DisplayVersion   string   `json:"display_version"`
	Publisher        string   `json:"publisher"`
	Email            string   `json:"email"`
	Website          string   `json:"website,omitempty"`
	RequiredServices []string `json:"required_services"`
	OptionalServices []string `json:"optional_services,omitempty"`
	ProvidedServices []string `json:"provided_services"`
	Token            string   `json:"token,omitempty"`
}

const (
	serviceRegistry  = "com.roonlabs.registry:1"
	serviceTransport = "com.roonlabs.transport:2"
	serviceBrowse    = "com.roonlabs.browse:1"
	servicePing      = "com.roonlabs.ping:1"
)

// requiredServices are unconditionally required per spec §4.4.3: the
// registration record's required services must include transport and
// browse.
func requiredServices(extra []string) []string {
	set := map[string]bool{serviceTransport: true, serviceBrowse: true}
	out := []string{serviceTransport, serviceBrowse}
	for _, s := range extra {
		if !set[s] {
			set[s] = true
			out = append(out, s)
		}
	}
	return out
}

// providedServices are unconditionally provided per spec §4.4.3/§4.4.4: the
// client always serves ping.
func providedServices(extra []string) []string {
	set := map[string]bool{servicePing: true}
	out := []string{servicePing}
	for _, s := range extra {
		if !set[s] {
			set[s] = true
			out = append(out, s)
		}
	}
	return out
}
