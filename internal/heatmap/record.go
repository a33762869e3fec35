package heatmap

import "fmt"

// TransmissionType is the 5-bit source code carried in the top bits of
// a position record's first word.
type TransmissionType uint8

const (
	TypeADSBICAO TransmissionType = iota
	TypeADSBICAONT
	TypeADSRICAO
	TypeTISBICAO
	TypeADSC
	TypeMLAT
	TypeOther
	TypeModeS
	TypeADSBOther
	TypeADSROther
	TypeTISBTrackfile
	TypeTISBOther
	TypeModeAC
)

var typeNames = [...]string{
	"adsb_icao",
	"adsb_icao_nt",
	"adsr_icao",
	"tisb_icao",
	"adsc",
	"mlat",
	"other",
	"mode_s",
	"adsb_other",
	"adsr_other",
	"tisb_trackfile",
	"tisb_other",
	"mode_ac",
}

func (t TransmissionType) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "unknown"
}

// Record is one decoded aircraft position.
type Record struct {
	T      float64          `json:"t"`
	Hex    string           `json:"hex"`
	Flight *string          `json:"flight"`
	Squawk *string          `json:"squawk"`
	Lat    float64          `json:"lat"`
	Lon    float64          `json:"lon"`
	Alt    int32            `json:"alt"`
	GS     *float64         `json:"gs"`
	Type   TransmissionType `json:"type"`
}

const (
	// identityThreshold separates the two record variants: a second
	// word above it cannot be a latitude and marks an identity update.
	identityThreshold = 1 << 30

	hexAddrMask  = 0xFFFFFF
	nonICAOFlag  = 1 << 24
	typeShift    = 27
	typeMask     = 31
	squawkMask   = 0xFFFF
	altGroundRaw = -123
)

// hexString renders a record's first word as the canonical aircraft
// identifier: six lowercase hex digits, prefixed "~" for non-ICAO
// addresses.
func hexString(w0 int32) string {
	hex := fmt.Sprintf("%06x", uint32(w0)&hexAddrMask)
	if uint32(w0)&nonICAOFlag != 0 {
		hex = "~" + hex
	}
	return hex
}

// isIdentity classifies the record starting at word i.
func isIdentity(w words, i int) bool {
	return w.i32(i+1) > identityThreshold
}

// decodeIdentity applies the identity record at word i to the state
// table. The 8 call-sign bytes span words i+2 and i+3 and are only
// present when their first byte is non-zero; all 8 bytes are payload,
// trailing spaces included. The squawk is the low 16 bits of the
// second word rendered as zero-padded decimal (the encoder pre-renders
// the conventional octal code into decimal digits).
func decodeIdentity(w words, i int, state *aircraftState) {
	var flight *string
	if b := w.text8(i + 2); b[0] != 0 {
		s := string(b)
		flight = &s
	}
	squawk := fmt.Sprintf("%04d", w.i32(i+1)&squawkMask)
	state.set(hexString(w.i32(i)), flight, &squawk)
}

// decodePosition decodes the position record at word i. The returned
// record has no timestamp; the caller assigns the frame time. ok is
// false when the coordinates fall outside the strict
// (-90, 90) x (-180, 180) window and the record must be dropped.
func decodePosition(w words, i int, state *aircraftState) (Record, bool) {
	lat := float64(w.i32(i+1)) / 1e6
	lon := float64(w.i32(i+2)) / 1e6
	if !(lat > -90 && lat < 90 && lon > -180 && lon < 180) {
		return Record{}, false
	}

	hex := hexString(w.i32(i))
	flight, squawk := state.lookup(hex)

	// Altitude: low 16 bits, sign-extended from bit 15 in two steps so
	// the -123 ground code survives, then scaled to feet.
	alt := w.i32(i+3) & 0xFFFF
	if alt&0x8000 != 0 {
		alt |= -65536
	}
	if alt != altGroundRaw {
		alt *= 25
	}

	// Ground speed: arithmetic shift keeps the all-ones "absent" code
	// at -1; a logical shift would read it as 65535 kt.
	var gs *float64
	if raw := w.i32(i+3) >> 16; raw != -1 {
		v := float64(raw) / 10
		gs = &v
	}

	return Record{
		Hex:    hex,
		Flight: flight,
		Squawk: squawk,
		Lat:    lat,
		Lon:    lon,
		Alt:    alt,
		GS:     gs,
		Type:   TransmissionType((w.u32(i) >> typeShift) & typeMask),
	}, true
}
