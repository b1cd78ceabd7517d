// Copyright 2022 CFC4N <cfc4n.cs@gmail.com>. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package id provides the canonical identifiers for topology entities.
//
// An InterfaceID renders as "<switch>:<port>" and orders by switch, then by
// port. A LinkID is the SHA-256 digest of its two interfaces taken in that
// order, so both ends of a link derive the same identifier no matter which
// one was discovered first.
//
// Switch identifiers are not checked for the ":" separator. Datapath ids are
// colon separated themselves, so two different (switch, port) pairs can in
// principle render to the same text; callers must not rely on the text form
// being injective for arbitrary switch strings.
package id

import (
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"strings"

	sha256 "github.com/minio/sha256-simd"

	"github.com/viniarck/kytos/internal/errors"
)

// Separator joins the parts of an identifier.
const Separator = ":"

// DigestLength is the length of a LinkID in hex characters.
const DigestLength = sha256.Size * 2

// InterfaceID identifies a port on a switch.
// The zero value is the interface ":0".
type InterfaceID struct {
	switchID string
	port     uint32
}

// NewInterfaceID builds the identifier of port on switchID.
func NewInterfaceID(switchID string, port uint32) InterfaceID {
	return InterfaceID{switchID: switchID, port: port}
}

// ParseInterfaceID reconstructs an InterfaceID from its canonical text. The
// port is taken after the last separator and must be written exactly as
// String would write it.
func ParseInterfaceID(s string) (InterfaceID, error) {
	i := strings.LastIndex(s, Separator)
	if i < 0 {
		return InterfaceID{}, errors.NewMalformedIdentifierError(s, fmt.Errorf("missing %q separator", Separator))
	}
	portText := s[i+1:]
	port, err := strconv.ParseUint(portText, 10, 32)
	if err != nil {
		return InterfaceID{}, errors.NewMalformedIdentifierError(s, err)
	}
	if strconv.FormatUint(port, 10) != portText {
		return InterfaceID{}, errors.NewMalformedIdentifierError(s, fmt.Errorf("port %q is not canonical", portText))
	}
	return InterfaceID{switchID: s[:i], port: uint32(port)}, nil
}

// Switch returns the switch identifier.
func (i InterfaceID) Switch() string { return i.switchID }

// Port returns the port number.
func (i InterfaceID) Port() uint32 { return i.port }

// String returns the canonical "<switch>:<port>" form.
func (i InterfaceID) String() string {
	return i.switchID + Separator + strconv.FormatUint(uint64(i.port), 10)
}

// Compare orders by switch identifier, then numerically by port.
// It returns -1, 0 or +1.
func (i InterfaceID) Compare(o InterfaceID) int {
	if c := strings.Compare(i.switchID, o.switchID); c != 0 {
		return c
	}
	switch {
	case i.port < o.port:
		return -1
	case i.port > o.port:
		return 1
	}
	return 0
}

// Less reports whether i sorts before o.
func (i InterfaceID) Less(o InterfaceID) bool { return i.Compare(o) < 0 }

// Equal reports whether both identifiers name the same interface.
func (i InterfaceID) Equal(o InterfaceID) bool { return i == o }

// MarshalText implements encoding.TextMarshaler.
func (i InterfaceID) MarshalText() ([]byte, error) {
	return []byte(i.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (i *InterfaceID) UnmarshalText(text []byte) error {
	parsed, err := ParseInterfaceID(string(text))
	if err != nil {
		return err
	}
	*i = parsed
	return nil
}

// SortInterfaces sorts ids in place using InterfaceID.Compare.
func SortInterfaces(ids []InterfaceID) {
	sort.Slice(ids, func(a, b int) bool { return ids[a].Less(ids[b]) })
}

// LinkID identifies an undirected link between two interfaces. Two LinkIDs
// are equal when their digests are; the interface pair is informational.
// Use Key, not the struct itself, as a map key.
type LinkID struct {
	digest string
	a, b   InterfaceID
	// known is false when the LinkID was parsed from a digest.
	known bool
}

// NewLinkID derives the identifier of the link between a and b.
// NewLinkID(a, b) and NewLinkID(b, a) are equal.
func NewLinkID(a, b InterfaceID) LinkID {
	lo, hi := a, b
	if hi.Less(lo) {
		lo, hi = hi, lo
	}
	sum := sha256.Sum256([]byte(lo.String() + Separator + hi.String()))
	return LinkID{digest: hex.EncodeToString(sum[:]), a: a, b: b, known: true}
}

// ParseLinkID reconstructs a LinkID from its hex digest. The result carries
// no interface pair.
func ParseLinkID(s string) (LinkID, error) {
	if len(s) != DigestLength {
		return LinkID{}, errors.NewMalformedIdentifierError(s,
			fmt.Errorf("expected %d hex characters, got %d", DigestLength, len(s)))
	}
	for _, c := range s {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return LinkID{}, errors.NewMalformedIdentifierError(s, fmt.Errorf("invalid character %q", c))
		}
	}
	return LinkID{digest: s}, nil
}

// String returns the hex digest.
func (l LinkID) String() string { return l.digest }

// Key returns the digest, suitable as a map key.
func (l LinkID) Key() string { return l.digest }

// IsZero reports whether l was never set.
func (l LinkID) IsZero() bool { return l.digest == "" }

// Equal compares digests only.
func (l LinkID) Equal(o LinkID) bool { return l.digest == o.digest }

// Interfaces returns the pair the link was built from, in the order given to
// NewLinkID. ok is false for a LinkID parsed from its digest.
func (l LinkID) Interfaces() (a, b InterfaceID, ok bool) {
	return l.a, l.b, l.known
}

// MarshalText implements encoding.TextMarshaler.
func (l LinkID) MarshalText() ([]byte, error) {
	return []byte(l.digest), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *LinkID) UnmarshalText(text []byte) error {
	parsed, err := ParseLinkID(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}
